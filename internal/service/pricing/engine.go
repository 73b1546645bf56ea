// Пакет pricing вычисляет эффективную цену позиции для группы покупателей.
// Все функции чистые: движок вызывается при каждой мутации корзины,
// поэтому не имеет ни состояния, ни побочных эффектов.
package pricing

import "github.com/vladislavdragonenkov/pos/internal/domain"

// Quote — результат расчёта: цена за единицу и скидка на единицу.
type Quote struct {
	UnitPriceMinor    int64
	LineDiscountMinor int64
}

// EffectivePrice возвращает цену и скидку для позиции каталога.
// Порядок разрешения правил: точная категория, затем wildcard; без правила
// цена проходит без изменений и скидка равна нулю. Отсутствие группы (nil)
// означает отсутствие скидки.
func EffectivePrice(item domain.Item, group *domain.CustomerGroup) Quote {
	quote := Quote{UnitPriceMinor: item.UnitPriceMinor}

	rule := group.RuleFor(item.Category)
	if rule == nil {
		return quote
	}

	switch rule.Kind {
	case domain.DiscountKindPercent:
		quote.LineDiscountMinor = percentOf(item.UnitPriceMinor, rule.PercentBP)
	case domain.DiscountKindFixed:
		quote.LineDiscountMinor = rule.AmountMinor
	}

	// Скидка никогда не делает эффективную цену отрицательной.
	if quote.LineDiscountMinor > quote.UnitPriceMinor {
		quote.LineDiscountMinor = quote.UnitPriceMinor
	}
	if quote.LineDiscountMinor < 0 {
		quote.LineDiscountMinor = 0
	}

	return quote
}

// percentOf считает долю в базисных пунктах с округлением round-half-up
// до минимальной денежной единицы. Единая политика округления исключает
// накопительный дрейф при многократном перерасчёте.
func percentOf(amountMinor, basisPoints int64) int64 {
	if amountMinor <= 0 || basisPoints <= 0 {
		return 0
	}
	return (amountMinor*basisPoints + 5000) / 10000
}
