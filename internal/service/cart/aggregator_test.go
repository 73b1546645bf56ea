package cart_test

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/pos/internal/catalog"
	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/service/cart"
)

func testDirectory() domain.Directory {
	return catalog.NewDirectory(
		[]domain.Customer{
			{ID: "cust-1", Name: "Ada Obi", GroupID: "members"},
		},
		[]domain.CustomerGroup{
			{
				ID:   "members",
				Name: "Members",
				Rules: []domain.DiscountRule{
					{Category: "beverages", Kind: domain.DiscountKindPercent, PercentBP: 1000},
				},
			},
		},
	)
}

func colaItem() domain.Item {
	return domain.Item{ID: "item-1", Name: "Coca-Cola 50cl", UnitPriceMinor: 20000, Category: "beverages", StockAvailable: 24}
}

func breadItem() domain.Item {
	return domain.Item{ID: "item-2", Name: "Bread Sliced 600g", UnitPriceMinor: 95000, Category: "food", StockAvailable: 15}
}

func TestAggregator_AddItemMergesDuplicates(t *testing.T) {
	agg := cart.New(testDirectory())

	if err := agg.AddItem(colaItem()); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := agg.AddItem(colaItem()); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	c := agg.Cart()
	if len(c.LineItems) != 1 {
		t.Fatalf("expected exactly one line item, got %d", len(c.LineItems))
	}
	if c.LineItems[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", c.LineItems[0].Quantity)
	}
}

func TestAggregator_ReceiptScenario(t *testing.T) {
	// Coca-Cola ×2 по ₦200 + Bread ×1 по ₦950 с плоской скидкой ₦100:
	// subtotal ₦1,350, итог ₦1,250.
	agg := cart.New(testDirectory())

	for i := 0; i < 2; i++ {
		if err := agg.AddItem(colaItem()); err != nil {
			t.Fatalf("add cola failed: %v", err)
		}
	}
	if err := agg.AddItem(breadItem()); err != nil {
		t.Fatalf("add bread failed: %v", err)
	}
	if err := agg.SetGlobalDiscount(10000); err != nil {
		t.Fatalf("set discount failed: %v", err)
	}

	totals := agg.Totals()
	if totals.SubtotalMinor != 135000 {
		t.Fatalf("expected subtotal 135000, got %d", totals.SubtotalMinor)
	}
	if totals.TotalMinor != 125000 {
		t.Fatalf("expected total 125000, got %d", totals.TotalMinor)
	}
}

func TestAggregator_GroupSelectedAfterAdd(t *testing.T) {
	agg := cart.New(testDirectory())

	for i := 0; i < 2; i++ {
		if err := agg.AddItem(colaItem()); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	if err := agg.SelectCustomerGroup("members"); err != nil {
		t.Fatalf("select group failed: %v", err)
	}

	c := agg.Cart()
	line := c.LineItems[0]
	if line.UnitPriceMinor != 20000 {
		t.Fatalf("unit price must stay 20000, got %d", line.UnitPriceMinor)
	}
	if line.LineDiscountMinor != 2000 {
		t.Fatalf("expected per-unit discount 2000, got %d", line.LineDiscountMinor)
	}
	// Два товара по ₦20 скидки — суммарно ₦40.
	if totals := agg.Totals(); totals.DiscountMinor != 4000 {
		t.Fatalf("expected total discount 4000, got %d", totals.DiscountMinor)
	}
}

func TestAggregator_ClearGroupReprices(t *testing.T) {
	agg := cart.New(testDirectory())
	if err := agg.AddItem(colaItem()); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := agg.SelectCustomerGroup("members"); err != nil {
		t.Fatalf("select group failed: %v", err)
	}
	if err := agg.SelectCustomerGroup(""); err != nil {
		t.Fatalf("clear group failed: %v", err)
	}

	c := agg.Cart()
	if c.AppliedGroupID != "" {
		t.Fatalf("expected group cleared, got %q", c.AppliedGroupID)
	}
	if c.LineItems[0].LineDiscountMinor != 0 {
		t.Fatalf("expected discount reset, got %d", c.LineItems[0].LineDiscountMinor)
	}
}

func TestAggregator_UnknownGroup(t *testing.T) {
	agg := cart.New(testDirectory())
	if err := agg.SelectCustomerGroup("ghost"); !errors.Is(err, domain.ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
}

func TestAggregator_SetQuantity(t *testing.T) {
	agg := cart.New(testDirectory())
	if err := agg.AddItem(colaItem()); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if err := agg.SetQuantity("item-1", 5); err != nil {
		t.Fatalf("set quantity failed: %v", err)
	}
	if totals := agg.Totals(); totals.SubtotalMinor != 100000 {
		t.Fatalf("expected subtotal 100000, got %d", totals.SubtotalMinor)
	}

	// Нулевое количество удаляет позицию.
	if err := agg.SetQuantity("item-1", 0); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	emptied := agg.Cart()
	if !emptied.IsEmpty() {
		t.Fatal("expected empty cart after removing the only line")
	}

	if err := agg.SetQuantity("item-1", 1); !errors.Is(err, domain.ErrLineItemNotFound) {
		t.Fatalf("expected ErrLineItemNotFound, got %v", err)
	}
}

func TestAggregator_StockPolicy(t *testing.T) {
	item := colaItem()
	item.StockAvailable = 1

	blocking := cart.New(testDirectory())
	if err := blocking.AddItem(item); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := blocking.AddItem(item); !errors.Is(err, domain.ErrStockExceeded) {
		t.Fatalf("expected ErrStockExceeded, got %v", err)
	}
	// Отказ не должен менять корзину.
	if qty := blocking.Cart().LineItems[0].Quantity; qty != 1 {
		t.Fatalf("expected quantity 1 after rejected add, got %d", qty)
	}

	lenient := cart.New(testDirectory(), cart.WithOversellAllowed())
	if err := lenient.AddItem(item); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := lenient.AddItem(item); err != nil {
		t.Fatalf("oversell add failed: %v", err)
	}
	c := lenient.Cart()
	if c.LineItems[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", c.LineItems[0].Quantity)
	}
	if !c.OversellFlagged {
		t.Fatal("expected oversell flag")
	}
}

func TestAggregator_SubtotalNeverDrifts(t *testing.T) {
	agg := cart.New(testDirectory())

	steps := []func() error{
		func() error { return agg.AddItem(colaItem()) },
		func() error { return agg.AddItem(breadItem()) },
		func() error { return agg.AddItem(colaItem()) },
		func() error { return agg.SetQuantity("item-2", 4) },
		func() error { return agg.SelectCustomerGroup("members") },
		func() error { return agg.SetQuantity("item-1", 1) },
		func() error { return agg.SetGlobalDiscount(5000) },
	}

	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
		reported := agg.Totals()
		snapshot := agg.Cart()
		recomputed := snapshot.ComputeTotals()
		if reported != recomputed {
			t.Fatalf("step %d: reported totals %+v differ from recomputed %+v", i, reported, recomputed)
		}
	}
}

func TestAggregator_ClearResetsEverything(t *testing.T) {
	agg := cart.New(testDirectory())
	if err := agg.AddItem(colaItem()); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	agg.SelectCustomer(&domain.Customer{ID: "cust-1", Name: "Ada Obi"})
	if err := agg.SelectCustomerGroup("members"); err != nil {
		t.Fatalf("select group failed: %v", err)
	}

	agg.Clear()

	c := agg.Cart()
	if !c.IsEmpty() || c.Customer != nil || c.AppliedGroupID != "" {
		t.Fatalf("expected pristine cart after clear, got %+v", c)
	}
	if totals := agg.Totals(); totals.TotalMinor != 0 {
		t.Fatalf("expected zero totals, got %+v", totals)
	}
}

func TestAggregator_SnapshotRoundTrip(t *testing.T) {
	agg := cart.New(testDirectory())
	if err := agg.AddItem(colaItem()); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := agg.SelectCustomerGroup("members"); err != nil {
		t.Fatalf("select group failed: %v", err)
	}

	snapshot := agg.Cart()
	restored := cart.NewFromSnapshot(testDirectory(), snapshot)

	if restored.Totals() != agg.Totals() {
		t.Fatalf("restored totals %+v differ from original %+v", restored.Totals(), agg.Totals())
	}

	// Восстановленный агрегатор продолжает применять группу из снимка.
	if err := restored.AddItem(colaItem()); err != nil {
		t.Fatalf("add to restored failed: %v", err)
	}
	if line := restored.Cart().LineItems[0]; line.LineDiscountMinor != 2000 {
		t.Fatalf("expected group discount on restored cart, got %d", line.LineDiscountMinor)
	}
}
