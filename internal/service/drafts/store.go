// Пакет drafts реализует парковку незавершённых продаж. Хранилище черновиков
// разделяется терминалами; атомарность resume обеспечивает репозиторий,
// сервис добавляет бизнес-правила (запрет пустой корзины, независимый снимок).
package drafts

import (
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/metrics"
)

// Store — сервис припаркованных продаж поверх DraftRepository.
type Store struct {
	repo       domain.DraftRepository
	terminalID string
	logger     *log.Entry
	metrics    *metrics.CheckoutMetrics
}

// Option настраивает Store.
type Option func(*Store)

// WithLogger задаёт логгер сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics подключает метрики операций с черновиками.
func WithMetrics(m *metrics.CheckoutMetrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithTerminalID помечает черновики идентификатором терминала.
func WithTerminalID(terminalID string) Option {
	return func(s *Store) {
		s.terminalID = terminalID
	}
}

// NewStore создаёт сервис черновиков.
func NewStore(repo domain.DraftRepository, options ...Option) *Store {
	s := &Store{
		repo:   repo,
		logger: log.WithField("component", "drafts"),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Park сохраняет снимок корзины как черновик. Пустую корзину парковать
// нельзя — это зеркалирует пользовательское правило "cannot save empty cart".
func (s *Store) Park(cart domain.Cart, label string) (domain.DraftSale, error) {
	if cart.IsEmpty() {
		return domain.DraftSale{}, domain.ErrEmptyCart
	}

	draft := domain.DraftSale{
		ID:         uuid.NewString(),
		Cart:       cart.Clone(),
		Label:      label,
		TerminalID: s.terminalID,
		ParkedAt:   time.Now().UTC(),
	}

	if err := s.repo.Put(draft); err != nil {
		return domain.DraftSale{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordDraftParked()
	}
	s.logger.WithFields(log.Fields{
		"draft_id": draft.ID,
		"lines":    len(draft.Cart.LineItems),
	}).Info("sale parked")

	return draft, nil
}

// List возвращает черновики, недавно припаркованные первыми.
func (s *Store) List() ([]domain.DraftSale, error) {
	return s.repo.List()
}

// Resume атомарно извлекает черновик и возвращает свежую корзину из его
// снимка. Черновик при этом удаляется: из двух конкурентных resume по одному
// id ровно один получает корзину, второй — ErrDraftNotFound.
func (s *Store) Resume(draftID string) (domain.Cart, error) {
	draft, err := s.repo.Take(draftID)
	if err != nil {
		return domain.Cart{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordDraftResumed()
	}
	s.logger.WithField("draft_id", draftID).Info("sale resumed")

	return draft.Cart.Clone(), nil
}

// Discard удаляет черновик без восстановления корзины. Операция идемпотентна:
// отсутствие черновика (например, после конкурентного resume) — no-op.
func (s *Store) Discard(draftID string) error {
	err := s.repo.Delete(draftID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil
		}
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordDraftDiscarded()
	}
	s.logger.WithField("draft_id", draftID).Info("draft discarded")
	return nil
}
