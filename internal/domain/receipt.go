package domain

import "time"

// PaymentMethod — способ оплаты, выбранный при закрытии продажи.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

// Valid проверяет, что способ оплаты поддерживается.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer:
		return true
	default:
		return false
	}
}

// ReceiptStatus описывает состояние чека после финализации.
type ReceiptStatus string

const (
	// ReceiptStatusCommitted — чек подтверждён внешним леджером синхронно.
	ReceiptStatusCommitted ReceiptStatus = "committed"
	// ReceiptStatusQueued — чек создан офлайн с временным id и ждёт синхронизации.
	ReceiptStatusQueued ReceiptStatus = "queued"
	// ReceiptStatusSynced — офлайн-чек успешно передан леджеру.
	ReceiptStatusSynced ReceiptStatus = "synced"
	// ReceiptStatusFailed — финализация прервалась после начала; причина сохранена.
	ReceiptStatusFailed ReceiptStatus = "failed"
)

// Receipt — запечатанная запись завершённой продажи. Создаётся только
// финализатором из корзины с неотрицательным итогом и после создания неизменна.
type Receipt struct {
	ID         string `json:"id"`
	BranchID   string `json:"branch_id,omitempty"`
	CustomerID string `json:"customer_id,omitempty"`
	// LineItems — финальная неизменяемая копия позиций корзины.
	LineItems     []LineItem    `json:"line_items"`
	SubtotalMinor int64         `json:"subtotal_minor"`
	DiscountMinor int64         `json:"discount_minor"`
	TotalMinor    int64         `json:"total_minor"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Status        ReceiptStatus `json:"status"`
	// Offline выставляется для чеков, созданных без связи; вместе со статусом
	// Queued позволяет UI отличить "сохранено офлайн" от обычного подтверждения.
	Offline   bool      `json:"offline"`
	CreatedAt time.Time `json:"created_at"`
	// SyncedAt заполняется воркером синхронизации для офлайн-чеков.
	SyncedAt *time.Time `json:"synced_at,omitempty"`
	// FailReason хранит причину для статуса failed.
	FailReason string `json:"fail_reason,omitempty"`
}

// Validate проверяет корректность чека перед сохранением.
func (r *Receipt) Validate() []error {
	var errs []error

	if r.ID == "" {
		errs = append(errs, ErrReceiptIDRequired)
	}
	if len(r.LineItems) == 0 {
		errs = append(errs, ErrEmptyCart)
	}
	if r.TotalMinor < 0 {
		errs = append(errs, ErrInvalidTotal)
	}
	if !r.PaymentMethod.Valid() {
		errs = append(errs, ErrPaymentMethodInvalid)
	}

	// Сверяем итог с позициями: subtotal - discount, ограничено нулём.
	var subtotal, lineDiscount int64
	for _, li := range r.LineItems {
		subtotal += int64(li.Quantity) * li.UnitPriceMinor
		lineDiscount += int64(li.Quantity) * li.LineDiscountMinor
	}
	if subtotal != r.SubtotalMinor {
		errs = append(errs, ErrAmountMismatch)
	}
	want := subtotal - r.DiscountMinor
	if want < 0 {
		want = 0
	}
	if want != r.TotalMinor {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}

// QueueStats описывает backlog очереди офлайн-чеков.
type QueueStats struct {
	QueuedCount    int
	OldestQueuedAt time.Time
}
