package domain

import "errors"

var (
	// ErrStockExceeded возвращается, когда суммарное количество в корзине
	// превысило бы доступный остаток (при блокирующей политике).
	ErrStockExceeded = errors.New("requested quantity exceeds available stock")
	// ErrLineItemNotFound — в корзине нет позиции с таким item_id.
	ErrLineItemNotFound = errors.New("line item not found")
	// ErrEmptyCart — операция требует непустую корзину (park, finalize).
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidTotal — итог корзины не проходит проверку перед финализацией.
	ErrInvalidTotal = errors.New("cart total is invalid")
	// ErrDraftNotFound — черновик отсутствует в хранилище (уже возобновлён или удалён).
	ErrDraftNotFound = errors.New("draft sale not found")
	// ErrCommitFailed — внешний леджер/платёжный провайдер отклонил фиксацию чека.
	ErrCommitFailed = errors.New("receipt commit failed")
	// ErrItemNotFound — позиция каталога не найдена.
	ErrItemNotFound = errors.New("catalog item not found")
	// ErrCustomerNotFound — покупатель не найден в справочнике.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrGroupNotFound — группа покупателей не найдена в справочнике.
	ErrGroupNotFound = errors.New("customer group not found")
	// ErrReceiptNotFound — чек отсутствует в хранилище.
	ErrReceiptNotFound = errors.New("receipt not found")
	// ErrReceiptExists — чек с таким id уже сохранён.
	ErrReceiptExists = errors.New("receipt already exists")

	// Ошибки валидации инвариантов.
	ErrItemIDRequired       = errors.New("item id is required")
	ErrItemPriceInvalid     = errors.New("item price must be non-negative")
	ErrItemStockInvalid     = errors.New("item stock must be non-negative")
	ErrLineQtyInvalid       = errors.New("line item quantity must be greater than zero")
	ErrLineDiscountInvalid  = errors.New("line discount must be within [0, unit price]")
	ErrDuplicateLineItem    = errors.New("cart holds more than one line for the same item")
	ErrDiscountNegative     = errors.New("discount must be non-negative")
	ErrReceiptIDRequired    = errors.New("receipt id is required")
	ErrPaymentMethodInvalid = errors.New("payment method is not supported")
	ErrAmountMismatch       = errors.New("receipt total does not match line items")
)

// IsNotFound проверяет, относится ли ошибка к классу "не найдено".
// Идемпотентные операции (discard) поглощают такие ошибки как no-op.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDraftNotFound) ||
		errors.Is(err, ErrLineItemNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrGroupNotFound) ||
		errors.Is(err, ErrReceiptNotFound)
}
