package domain

import "time"

// LineItem представляет одну агрегированную позицию корзины.
// Для каждого item_id в корзине существует не более одной позиции:
// повторный выбор товара увеличивает Quantity, а не создаёт дубликат.
type LineItem struct {
	// ItemID ссылается на позицию каталога.
	ItemID string `json:"item_id"`
	// Name — снимок названия на момент добавления (для чека и парковки).
	Name string `json:"name"`
	// Category нужна движку ценообразования при перерасчёте.
	Category string `json:"category"`
	// Quantity — количество единиц, всегда положительное.
	Quantity int32 `json:"quantity"`
	// UnitPriceMinor — цена за единицу на момент добавления; может отличаться
	// от каталожной после применения групповой скидки.
	UnitPriceMinor int64 `json:"unit_price_minor"`
	// LineDiscountMinor — скидка на единицу товара, неотрицательная.
	// Суммарная скидка по позиции равна Quantity * LineDiscountMinor.
	LineDiscountMinor int64 `json:"line_discount_minor"`
	// AddedAt фиксирует момент первого добавления позиции.
	AddedAt time.Time `json:"added_at"`
}

// Totals — результат вычисления итогов корзины.
type Totals struct {
	// SubtotalMinor = sum(quantity * unitPrice) по всем позициям.
	SubtotalMinor int64 `json:"subtotal_minor"`
	// DiscountMinor = sum(quantity * lineDiscount) + глобальная скидка.
	DiscountMinor int64 `json:"discount_minor"`
	// TotalMinor = subtotal - discount, не опускается ниже нуля.
	TotalMinor int64 `json:"total_minor"`
	// Clamped выставляется, если итог пришлось ограничить нулём.
	Clamped bool `json:"clamped"`
}

// Cart — живая транзакция. Единственный владелец — активная сессия терминала;
// все мутации выполняются последовательно.
type Cart struct {
	// LineItems хранятся в порядке первого добавления.
	LineItems []LineItem `json:"line_items"`
	// Customer задаёт покупателя; nil означает walk-in.
	Customer *Customer `json:"customer,omitempty"`
	// AppliedGroupID — применённая группа покупателя (ценовая политика).
	AppliedGroupID string `json:"applied_group_id,omitempty"`
	// GlobalDiscountMinor — фиксированная скидка на всю корзину.
	GlobalDiscountMinor int64 `json:"global_discount_minor"`
	// OversellFlagged выставляется, когда политика разрешила продать
	// больше доступного остатка.
	OversellFlagged bool `json:"oversell_flagged,omitempty"`
}

// IsEmpty сообщает, пуста ли корзина.
func (c *Cart) IsEmpty() bool {
	return len(c.LineItems) == 0
}

// Find возвращает индекс позиции по item_id или -1.
func (c *Cart) Find(itemID string) int {
	for i := range c.LineItems {
		if c.LineItems[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

// ComputeTotals — чистая деривация итогов из позиций корзины.
// Отрицательный итог ограничивается нулём с выставлением флага Clamped.
func (c *Cart) ComputeTotals() Totals {
	var t Totals
	for _, li := range c.LineItems {
		t.SubtotalMinor += int64(li.Quantity) * li.UnitPriceMinor
		t.DiscountMinor += int64(li.Quantity) * li.LineDiscountMinor
	}
	t.DiscountMinor += c.GlobalDiscountMinor

	t.TotalMinor = t.SubtotalMinor - t.DiscountMinor
	if t.TotalMinor < 0 {
		t.TotalMinor = 0
		t.Clamped = true
	}
	return t
}

// Clone возвращает глубокую независимую копию корзины.
// Используется при парковке и восстановлении черновиков: дальнейшие мутации
// живой корзины не должны затрагивать сохранённый снимок.
func (c *Cart) Clone() Cart {
	clone := *c
	clone.LineItems = make([]LineItem, len(c.LineItems))
	copy(clone.LineItems, c.LineItems)
	if c.Customer != nil {
		customer := *c.Customer
		clone.Customer = &customer
	}
	return clone
}

// ValidateInvariants проверяет инварианты корзины и возвращает список замечаний.
func (c *Cart) ValidateInvariants() []error {
	var errs []error

	seen := make(map[string]struct{}, len(c.LineItems))
	for _, li := range c.LineItems {
		if li.Quantity <= 0 {
			errs = append(errs, ErrLineQtyInvalid)
		}
		if li.UnitPriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
		if li.LineDiscountMinor < 0 || li.LineDiscountMinor > li.UnitPriceMinor {
			errs = append(errs, ErrLineDiscountInvalid)
		}
		if _, dup := seen[li.ItemID]; dup {
			errs = append(errs, ErrDuplicateLineItem)
		}
		seen[li.ItemID] = struct{}{}
	}
	if c.GlobalDiscountMinor < 0 {
		errs = append(errs, ErrDiscountNegative)
	}

	return errs
}
