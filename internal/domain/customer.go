package domain

// DiscountKind задаёт тип правила скидки.
type DiscountKind string

const (
	// DiscountKindPercent — процентная скидка от цены за единицу.
	DiscountKindPercent DiscountKind = "percent"
	// DiscountKindFixed — фиксированное удержание с цены за единицу.
	DiscountKindFixed DiscountKind = "fixed"
)

// WildcardCategory помечает правило, действующее на любую категорию.
const WildcardCategory = "*"

// DiscountRule описывает скидку группы для категории товаров.
// Правило с точным совпадением категории имеет приоритет над wildcard.
type DiscountRule struct {
	// Category каталога или WildcardCategory.
	Category string       `json:"category"`
	Kind     DiscountKind `json:"kind"`
	// PercentBP — процент в базисных пунктах (1000 = 10%), только для percent.
	PercentBP int64 `json:"percent_bp,omitempty"`
	// AmountMinor — размер удержания в минимальных единицах, только для fixed.
	AmountMinor int64 `json:"amount_minor,omitempty"`
}

// CustomerGroup — именованная ценовая политика, применяемая к транзакции.
type CustomerGroup struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Rules []DiscountRule `json:"rules"`
}

// RuleFor выбирает правило для категории: сначала точное совпадение,
// затем wildcard; nil означает отсутствие скидки.
func (g *CustomerGroup) RuleFor(category string) *DiscountRule {
	if g == nil {
		return nil
	}
	var wildcard *DiscountRule
	for i := range g.Rules {
		switch g.Rules[i].Category {
		case category:
			return &g.Rules[i]
		case WildcardCategory:
			if wildcard == nil {
				wildcard = &g.Rules[i]
			}
		}
	}
	return wildcard
}

// Customer описывает покупателя. Отсутствие покупателя у корзины означает walk-in.
type Customer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// GroupID — необязательная ссылка на группу покупателя.
	GroupID string `json:"group_id,omitempty"`
}
