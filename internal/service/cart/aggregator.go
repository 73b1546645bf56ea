// Пакет cart реализует агрегатор корзины — единственного владельца
// незавершённой транзакции. Агрегатор не рассчитан на конкурентные записи:
// все мутации выполняются в одном логическом потоке сессии, сериализацию
// обеспечивает вызывающая сторона (транспортный слой).
package cart

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/service/pricing"
)

// Option настраивает агрегатор.
type Option func(*Aggregator)

// WithOversellAllowed переключает политику остатков: вместо ErrStockExceeded
// продажа сверх остатка разрешается и помечается флагом OversellFlagged.
func WithOversellAllowed() Option {
	return func(a *Aggregator) {
		a.allowOversell = true
	}
}

// WithLogger задаёт логгер агрегатора.
func WithLogger(logger *log.Entry) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Aggregator владеет корзиной и пересчитывает итоги немедленно после каждой
// мутации, чтобы видимый итог никогда не был устаревшим независимо от того,
// какое событие инициировало отрисовку.
type Aggregator struct {
	cart          domain.Cart
	group         *domain.CustomerGroup
	totals        domain.Totals
	directory     domain.Directory
	allowOversell bool
	logger        *log.Entry
}

// New создаёт агрегатор с пустой корзиной.
func New(directory domain.Directory, options ...Option) *Aggregator {
	a := &Aggregator{
		directory: directory,
		logger:    log.WithField("component", "cart"),
	}
	for _, option := range options {
		option(a)
	}
	return a
}

// NewFromSnapshot поднимает агрегатор из снимка черновика. Применённая группа
// восстанавливается по справочнику; если группа успела исчезнуть, цены снимка
// сохраняются как есть.
func NewFromSnapshot(directory domain.Directory, snapshot domain.Cart, options ...Option) *Aggregator {
	a := New(directory, options...)
	a.cart = snapshot.Clone()

	if id := a.cart.AppliedGroupID; id != "" && directory != nil {
		group, err := directory.GetGroup(id)
		if err != nil {
			a.logger.WithError(err).WithField("group_id", id).Warn("applied group missing, keeping snapshot prices")
		} else {
			a.group = &group
		}
	}

	a.recompute()
	return a
}

// AddItem добавляет товар в корзину. Повторный выбор того же товара
// увеличивает количество существующей позиции и заново выводит цену и скидку
// через движок ценообразования — это покрывает случай, когда группа была
// выбрана после добавления товара.
func (a *Aggregator) AddItem(item domain.Item) error {
	idx := a.cart.Find(item.ID)

	requested := int32(1)
	if idx >= 0 {
		requested = a.cart.LineItems[idx].Quantity + 1
	}
	if requested > item.StockAvailable {
		if !a.allowOversell {
			return domain.ErrStockExceeded
		}
		a.cart.OversellFlagged = true
		a.logger.WithFields(log.Fields{
			"item_id":   item.ID,
			"requested": requested,
			"stock":     item.StockAvailable,
		}).Warn("selling beyond available stock")
	}

	quote := pricing.EffectivePrice(item, a.group)
	if idx >= 0 {
		line := &a.cart.LineItems[idx]
		line.Quantity = requested
		line.UnitPriceMinor = quote.UnitPriceMinor
		line.LineDiscountMinor = quote.LineDiscountMinor
	} else {
		a.cart.LineItems = append(a.cart.LineItems, domain.LineItem{
			ItemID:            item.ID,
			Name:              item.Name,
			Category:          item.Category,
			Quantity:          1,
			UnitPriceMinor:    quote.UnitPriceMinor,
			LineDiscountMinor: quote.LineDiscountMinor,
			AddedAt:           time.Now().UTC(),
		})
	}

	a.recompute()
	return nil
}

// SetQuantity задаёт явное количество позиции; значение <= 0 удаляет позицию.
func (a *Aggregator) SetQuantity(itemID string, quantity int32) error {
	idx := a.cart.Find(itemID)
	if idx < 0 {
		return domain.ErrLineItemNotFound
	}

	if quantity <= 0 {
		a.cart.LineItems = append(a.cart.LineItems[:idx], a.cart.LineItems[idx+1:]...)
	} else {
		a.cart.LineItems[idx].Quantity = quantity
	}

	a.recompute()
	return nil
}

// SelectCustomerGroup применяет группу покупателей и заново выводит цену и
// скидку каждой существующей позиции. Перерасчёт выполняется при изменении,
// а не при чтении, поэтому итоги консистентны сразу после любой мутации.
// Пустой id снимает группу.
func (a *Aggregator) SelectCustomerGroup(groupID string) error {
	if groupID == "" {
		a.group = nil
		a.cart.AppliedGroupID = ""
	} else {
		group, err := a.directory.GetGroup(groupID)
		if err != nil {
			return err
		}
		a.group = &group
		a.cart.AppliedGroupID = group.ID
	}

	a.repriceAll()
	a.recompute()
	return nil
}

// SelectCustomer связывает покупателя с транзакцией; nil возвращает walk-in.
func (a *Aggregator) SelectCustomer(customer *domain.Customer) {
	if customer == nil {
		a.cart.Customer = nil
		return
	}
	c := *customer
	a.cart.Customer = &c
}

// SetGlobalDiscount задаёт плоскую скидку на всю корзину.
func (a *Aggregator) SetGlobalDiscount(amountMinor int64) error {
	if amountMinor < 0 {
		return domain.ErrDiscountNegative
	}
	a.cart.GlobalDiscountMinor = amountMinor
	a.recompute()
	return nil
}

// Clear опустошает корзину и сбрасывает покупателя и группу.
// Вызывается после успешного чекаута или явной отмены.
func (a *Aggregator) Clear() {
	a.cart = domain.Cart{}
	a.group = nil
	a.recompute()
}

// Cart возвращает глубокую копию корзины: владельцем остаётся агрегатор.
func (a *Aggregator) Cart() domain.Cart {
	return a.cart.Clone()
}

// Totals возвращает итоги, вычисленные при последней мутации.
func (a *Aggregator) Totals() domain.Totals {
	return a.totals
}

func (a *Aggregator) repriceAll() {
	for i := range a.cart.LineItems {
		line := &a.cart.LineItems[i]
		quote := pricing.EffectivePrice(domain.Item{
			ID:             line.ItemID,
			Name:           line.Name,
			UnitPriceMinor: line.UnitPriceMinor,
			Category:       line.Category,
		}, a.group)
		line.UnitPriceMinor = quote.UnitPriceMinor
		line.LineDiscountMinor = quote.LineDiscountMinor
	}
}

func (a *Aggregator) recompute() {
	a.totals = a.cart.ComputeTotals()
}
