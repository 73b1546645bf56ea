package pricing_test

import (
	"testing"

	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/service/pricing"
)

func cola() domain.Item {
	return domain.Item{ID: "item-1", Name: "Coca-Cola 50cl", UnitPriceMinor: 20000, Category: "beverages", StockAvailable: 24}
}

func TestEffectivePrice_NoGroup(t *testing.T) {
	quote := pricing.EffectivePrice(cola(), nil)
	if quote.UnitPriceMinor != 20000 {
		t.Fatalf("expected pass-through price 20000, got %d", quote.UnitPriceMinor)
	}
	if quote.LineDiscountMinor != 0 {
		t.Fatalf("expected zero discount, got %d", quote.LineDiscountMinor)
	}
}

func TestEffectivePrice_PercentRule(t *testing.T) {
	group := &domain.CustomerGroup{
		ID: "members",
		Rules: []domain.DiscountRule{
			{Category: "beverages", Kind: domain.DiscountKindPercent, PercentBP: 1000},
		},
	}

	quote := pricing.EffectivePrice(cola(), group)
	if quote.UnitPriceMinor != 20000 {
		t.Fatalf("unit price must stay 20000, got %d", quote.UnitPriceMinor)
	}
	// 10% от ₦200 = ₦20 с единицы.
	if quote.LineDiscountMinor != 2000 {
		t.Fatalf("expected line discount 2000, got %d", quote.LineDiscountMinor)
	}
}

func TestEffectivePrice_ExactBeatsWildcard(t *testing.T) {
	group := &domain.CustomerGroup{
		ID: "members",
		Rules: []domain.DiscountRule{
			{Category: domain.WildcardCategory, Kind: domain.DiscountKindPercent, PercentBP: 500},
			{Category: "beverages", Kind: domain.DiscountKindPercent, PercentBP: 1000},
		},
	}

	quote := pricing.EffectivePrice(cola(), group)
	if quote.LineDiscountMinor != 2000 {
		t.Fatalf("exact category rule must win, got discount %d", quote.LineDiscountMinor)
	}

	bread := domain.Item{ID: "item-2", Name: "Bread Sliced 600g", UnitPriceMinor: 95000, Category: "food"}
	quote = pricing.EffectivePrice(bread, group)
	// Wildcard 5% от ₦950 = ₦47.50, округляется вверх до ₦48 (4750 кобо).
	if quote.LineDiscountMinor != 4750 {
		t.Fatalf("expected wildcard discount 4750, got %d", quote.LineDiscountMinor)
	}
}

func TestEffectivePrice_RoundHalfUp(t *testing.T) {
	cases := []struct {
		name       string
		priceMinor int64
		bp         int64
		want       int64
	}{
		{name: "exact half rounds up", priceMinor: 100, bp: 50, want: 1},      // 0.5 -> 1
		{name: "below half rounds down", priceMinor: 100, bp: 49, want: 0},    // 0.49 -> 0
		{name: "above half rounds up", priceMinor: 100, bp: 51, want: 1},      // 0.51 -> 1
		{name: "whole value untouched", priceMinor: 20000, bp: 1000, want: 2000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := domain.Item{ID: "x", UnitPriceMinor: tc.priceMinor, Category: "food"}
			group := &domain.CustomerGroup{
				Rules: []domain.DiscountRule{
					{Category: "food", Kind: domain.DiscountKindPercent, PercentBP: tc.bp},
				},
			}
			quote := pricing.EffectivePrice(item, group)
			if quote.LineDiscountMinor != tc.want {
				t.Fatalf("expected discount %d, got %d", tc.want, quote.LineDiscountMinor)
			}
		})
	}
}

func TestEffectivePrice_FixedClampsToUnitPrice(t *testing.T) {
	item := domain.Item{ID: "item-9", Name: "Water 50cl", UnitPriceMinor: 15000, Category: "beverages"}
	group := &domain.CustomerGroup{
		Rules: []domain.DiscountRule{
			{Category: "beverages", Kind: domain.DiscountKindFixed, AmountMinor: 99999},
		},
	}

	quote := pricing.EffectivePrice(item, group)
	if quote.LineDiscountMinor != 15000 {
		t.Fatalf("fixed deduction must clamp to unit price, got %d", quote.LineDiscountMinor)
	}
}

func TestEffectivePrice_NoMatchingRule(t *testing.T) {
	group := &domain.CustomerGroup{
		Rules: []domain.DiscountRule{
			{Category: "electronics", Kind: domain.DiscountKindPercent, PercentBP: 1000},
		},
	}

	quote := pricing.EffectivePrice(cola(), group)
	if quote.LineDiscountMinor != 0 || quote.UnitPriceMinor != 20000 {
		t.Fatalf("expected pass-through quote, got %+v", quote)
	}
}
