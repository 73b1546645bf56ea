// Пакет http — REST-фасад кассового терминала: каталог, корзина сессии,
// парковка черновиков и чекаут.
package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/service/cart"
	"github.com/vladislavdragonenkov/pos/internal/service/checkout"
	"github.com/vladislavdragonenkov/pos/internal/service/drafts"
)

const (
	requestTimeout     = 30 * time.Second
	maxRequestBodySize = 1 << 20 // 1MB
)

// Handler собирает все REST-обработчики терминала.
type Handler struct {
	catalog   domain.CatalogProvider
	directory domain.Directory
	monitor   domain.ConnectivityMonitor
	receipts  domain.ReceiptRepository
	drafts    *drafts.Store
	finalizer *checkout.Finalizer
	sessions  *SessionManager
	logger    *log.Entry
}

// NewHandler создаёт HTTP-обработчик терминала.
func NewHandler(
	catalog domain.CatalogProvider,
	directory domain.Directory,
	monitor domain.ConnectivityMonitor,
	receipts domain.ReceiptRepository,
	draftStore *drafts.Store,
	finalizer *checkout.Finalizer,
	sessions *SessionManager,
) *Handler {
	return &Handler{
		catalog:   catalog,
		directory: directory,
		monitor:   monitor,
		receipts:  receipts,
		drafts:    draftStore,
		finalizer: finalizer,
		sessions:  sessions,
		logger:    log.WithField("component", "http"),
	}
}

// Router собирает chi-маршрутизатор терминала.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", h.getStatus)

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/items", h.listItems)
			r.Get("/categories", h.listCategories)
		})

		r.Get("/groups", h.listGroups)
		r.Get("/customers/{customerID}", h.getCustomer)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.createSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Delete("/", h.closeSession)
				r.Post("/park", h.parkCart)
				r.Post("/checkout", h.checkoutCart)

				r.Route("/cart", func(r chi.Router) {
					r.Get("/", h.getCart)
					r.Delete("/", h.clearCart)
					r.Post("/items", h.addItem)
					r.Put("/items/{itemID}", h.setQuantity)
					r.Delete("/items/{itemID}", h.removeItem)
					r.Put("/customer", h.selectCustomer)
					r.Put("/group", h.selectGroup)
					r.Put("/discount", h.setGlobalDiscount)
				})
			})
		})

		r.Route("/drafts", func(r chi.Router) {
			r.Get("/", h.listDrafts)
			r.Post("/{draftID}/resume", h.resumeDraft)
			r.Delete("/{draftID}", h.discardDraft)
		})

		r.Get("/receipts/{receiptID}", h.getReceipt)
	})

	return r
}

type cartResponse struct {
	Cart   domain.Cart   `json:"cart"`
	Totals domain.Totals `json:"totals"`
}

type checkoutResponse struct {
	State   checkout.State `json:"state"`
	Receipt domain.Receipt `json:"receipt"`
}

type statusResponse struct {
	Online         bool       `json:"online"`
	QueuedReceipts int        `json:"queued_receipts"`
	OldestQueuedAt *time.Time `json:"oldest_queued_at,omitempty"`
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Online: h.monitor.IsOnline()}

	stats, err := h.receipts.Stats()
	if err != nil {
		h.logger.WithError(err).Warn("failed to read sync queue stats")
	} else {
		resp.QueuedReceipts = stats.QueuedCount
		if !stats.OldestQueuedAt.IsZero() {
			t := stats.OldestQueuedAt
			resp.OldestQueuedAt = &t
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.ListItems()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.directory.ListGroups()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, groups)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.directory.GetCustomer(chi.URLParam(r, "customerID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Create()
	respondJSON(w, http.StatusCreated, map[string]string{"session_id": session.ID})
}

func (h *Handler) closeSession(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.Close(chi.URLParam(r, "sessionID")) {
		respondError(w, http.StatusNotFound, "not_found", "session not found")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var resp cartResponse
	_ = session.Do(func(a *cart.Aggregator) error {
		resp = cartResponse{Cart: a.Cart(), Totals: a.Totals()}
		return nil
	})

	respondJSON(w, http.StatusOK, resp)
}

type addItemRequest struct {
	ItemID string `json:"item_id"`
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.ItemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "item_id is required")
		return
	}

	item, err := h.catalog.GetItem(req.ItemID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.mutateCart(w, session, func(a *cart.Aggregator) error {
		return a.AddItem(item)
	})
}

type setQuantityRequest struct {
	Quantity int32 `json:"quantity"`
}

func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req setQuantityRequest
	if !h.decode(w, r, &req) {
		return
	}

	itemID := chi.URLParam(r, "itemID")
	h.mutateCart(w, session, func(a *cart.Aggregator) error {
		return a.SetQuantity(itemID, req.Quantity)
	})
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	itemID := chi.URLParam(r, "itemID")
	h.mutateCart(w, session, func(a *cart.Aggregator) error {
		return a.SetQuantity(itemID, 0)
	})
}

type selectCustomerRequest struct {
	CustomerID string `json:"customer_id"`
}

// selectCustomer связывает покупателя с корзиной и применяет его группу.
// Пустой customer_id возвращает walk-in и снимает группу.
func (h *Handler) selectCustomer(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req selectCustomerRequest
	if !h.decode(w, r, &req) {
		return
	}

	if req.CustomerID == "" {
		h.mutateCart(w, session, func(a *cart.Aggregator) error {
			a.SelectCustomer(nil)
			return a.SelectCustomerGroup("")
		})
		return
	}

	customer, err := h.directory.GetCustomer(req.CustomerID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.mutateCart(w, session, func(a *cart.Aggregator) error {
		a.SelectCustomer(&customer)
		return a.SelectCustomerGroup(customer.GroupID)
	})
}

type selectGroupRequest struct {
	GroupID string `json:"group_id"`
}

func (h *Handler) selectGroup(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req selectGroupRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.mutateCart(w, session, func(a *cart.Aggregator) error {
		return a.SelectCustomerGroup(req.GroupID)
	})
}

type setDiscountRequest struct {
	AmountMinor int64 `json:"amount_minor"`
}

func (h *Handler) setGlobalDiscount(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req setDiscountRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.mutateCart(w, session, func(a *cart.Aggregator) error {
		return a.SetGlobalDiscount(req.AmountMinor)
	})
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	h.mutateCart(w, session, func(a *cart.Aggregator) error {
		a.Clear()
		return nil
	})
}

type parkRequest struct {
	Label string `json:"label"`
}

func (h *Handler) parkCart(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req parkRequest
	if !h.decode(w, r, &req) {
		return
	}

	var draft domain.DraftSale
	err := session.Do(func(a *cart.Aggregator) error {
		parked, parkErr := h.drafts.Park(a.Cart(), req.Label)
		if parkErr != nil {
			return parkErr
		}
		draft = parked
		a.Clear()
		return nil
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, draft)
}

func (h *Handler) listDrafts(w http.ResponseWriter, r *http.Request) {
	list, err := h.drafts.List()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

type resumeRequest struct {
	SessionID string `json:"session_id"`
}

// resumeDraft возобновляет черновик в указанную сессию. Черновик исчезает из
// хранилища атомарно: при двух конкурентных resume один получает 404.
func (h *Handler) resumeDraft(w http.ResponseWriter, r *http.Request) {
	var req resumeRequest
	if !h.decode(w, r, &req) {
		return
	}

	session, ok := h.sessions.Get(req.SessionID)
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "session not found")
		return
	}

	draftID := chi.URLParam(r, "draftID")

	var resp cartResponse
	err := session.Do(func(a *cart.Aggregator) error {
		resumed, resumeErr := h.drafts.Resume(draftID)
		if resumeErr != nil {
			return resumeErr
		}
		h.sessions.Restore(session, resumed)
		return nil
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	_ = session.Do(func(a *cart.Aggregator) error {
		resp = cartResponse{Cart: a.Cart(), Totals: a.Totals()}
		return nil
	})

	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) discardDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.drafts.Discard(chi.URLParam(r, "draftID")); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type checkoutRequest struct {
	PaymentMethod string `json:"payment_method"`
}

func (h *Handler) checkoutCart(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req checkoutRequest
	if !h.decode(w, r, &req) {
		return
	}

	var result checkout.Result
	err := session.Do(func(a *cart.Aggregator) error {
		finalized, finalizeErr := h.finalizer.Finalize(a.Cart(), domain.PaymentMethod(req.PaymentMethod))
		if finalizeErr != nil {
			return finalizeErr
		}
		result = finalized
		a.Clear()
		return nil
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, checkoutResponse{State: result.State, Receipt: result.Receipt})
}

func (h *Handler) getReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.receipts.Get(chi.URLParam(r, "receiptID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, receipt)
}

// session находит сессию запроса или отвечает 404.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	session, ok := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "session not found")
		return nil, false
	}
	return session, true
}

// mutateCart выполняет мутацию корзины и отвечает её свежим состоянием.
func (h *Handler) mutateCart(w http.ResponseWriter, session *Session, fn func(a *cart.Aggregator) error) {
	var resp cartResponse
	err := session.Do(func(a *cart.Aggregator) error {
		if err := fn(a); err != nil {
			return err
		}
		resp = cartResponse{Cart: a.Cart(), Totals: a.Totals()}
		return nil
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}
