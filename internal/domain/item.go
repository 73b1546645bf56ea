package domain

// Item описывает позицию каталога. Снимок неизменяем в рамках одной транзакции:
// ядро не кэширует каталог дольше, чем живёт текущая корзина.
type Item struct {
	// ID — уникальный идентификатор товара в каталоге.
	ID string `json:"id"`
	// Name — отображаемое название товара.
	Name string `json:"name"`
	// UnitPriceMinor — цена за единицу в минимальных денежных единицах (кобо).
	UnitPriceMinor int64 `json:"unit_price_minor"`
	// Category — категория каталога (beverages, food и т.д.).
	Category string `json:"category"`
	// StockAvailable — доступный остаток на момент снимка.
	StockAvailable int32 `json:"stock_available"`
}

// Validate проверяет базовые инварианты позиции каталога.
func (i *Item) Validate() []error {
	var errs []error

	if i.ID == "" {
		errs = append(errs, ErrItemIDRequired)
	}
	if i.UnitPriceMinor < 0 {
		errs = append(errs, ErrItemPriceInvalid)
	}
	if i.StockAvailable < 0 {
		errs = append(errs, ErrItemStockInvalid)
	}

	return errs
}
