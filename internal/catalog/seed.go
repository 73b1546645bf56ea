package catalog

import "github.com/vladislavdragonenkov/pos/internal/domain"

// SeedItems возвращает демонстрационный каталог магазина.
// Цены заданы в кобо (₦1 = 100 кобо).
func SeedItems() []domain.Item {
	return []domain.Item{
		{ID: "item-1", Name: "Coca-Cola 50cl", UnitPriceMinor: 20000, Category: "beverages", StockAvailable: 24},
		{ID: "item-2", Name: "Bread Sliced 600g", UnitPriceMinor: 95000, Category: "food", StockAvailable: 15},
		{ID: "item-3", Name: "iPhone Charger", UnitPriceMinor: 350000, Category: "electronics", StockAvailable: 8},
		{ID: "item-4", Name: "T-Shirt Plain", UnitPriceMinor: 250000, Category: "clothing", StockAvailable: 30},
		{ID: "item-5", Name: "Hand Soap", UnitPriceMinor: 80000, Category: "personal", StockAvailable: 12},
		{ID: "item-6", Name: "Pepsi 50cl", UnitPriceMinor: 20000, Category: "beverages", StockAvailable: 20},
		{ID: "item-7", Name: "Rice 1kg", UnitPriceMinor: 180000, Category: "food", StockAvailable: 25},
		{ID: "item-8", Name: "USB Cable", UnitPriceMinor: 150000, Category: "electronics", StockAvailable: 14},
		{ID: "item-9", Name: "Water 50cl", UnitPriceMinor: 15000, Category: "beverages", StockAvailable: 48},
	}
}

// SeedCustomers возвращает демонстрационных покупателей.
func SeedCustomers() []domain.Customer {
	return []domain.Customer{
		{ID: "cust-1", Name: "Ada Obi", GroupID: "members"},
		{ID: "cust-2", Name: "Chinedu Eze", GroupID: "wholesale"},
		{ID: "cust-3", Name: "Funke Alade"},
	}
}

// SeedGroups возвращает демонстрационные группы с ценовыми политиками.
func SeedGroups() []domain.CustomerGroup {
	return []domain.CustomerGroup{
		{
			ID:   "members",
			Name: "Members",
			Rules: []domain.DiscountRule{
				{Category: "beverages", Kind: domain.DiscountKindPercent, PercentBP: 1000},
			},
		},
		{
			ID:   "wholesale",
			Name: "Wholesale",
			Rules: []domain.DiscountRule{
				{Category: domain.WildcardCategory, Kind: domain.DiscountKindPercent, PercentBP: 500},
			},
		},
		{
			ID:   "staff",
			Name: "Staff",
			Rules: []domain.DiscountRule{
				{Category: "food", Kind: domain.DiscountKindFixed, AmountMinor: 5000},
				{Category: domain.WildcardCategory, Kind: domain.DiscountKindPercent, PercentBP: 250},
			},
		},
	}
}
