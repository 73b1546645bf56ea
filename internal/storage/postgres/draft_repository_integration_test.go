package postgres

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

func sampleDraft(id string, parkedAt time.Time) domain.DraftSale {
	return domain.DraftSale{
		ID:         id,
		Label:      "customer stepped away",
		TerminalID: "terminal-1",
		ParkedAt:   parkedAt,
		Cart: domain.Cart{
			LineItems: []domain.LineItem{
				{
					ItemID:         "item-1",
					Name:           "Coca-Cola 50cl",
					Category:       "beverages",
					Quantity:       2,
					UnitPriceMinor: 20000,
					AddedAt:        parkedAt.Add(-time.Minute),
				},
			},
		},
	}
}

func TestDraftRepository_PostgresPutListTakeDelete(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewDraftRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	older := sampleDraft("draft-1", now.Add(-2*time.Minute))
	newer := sampleDraft("draft-2", now.Add(-time.Minute))

	if err := repo.Put(older); err != nil {
		t.Fatalf("put older draft: %v", err)
	}
	if err := repo.Put(newer); err != nil {
		t.Fatalf("put newer draft: %v", err)
	}

	listed, err := repo.List()
	if err != nil {
		t.Fatalf("list drafts: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 drafts, got %d", len(listed))
	}
	if listed[0].ID != "draft-2" || listed[1].ID != "draft-1" {
		t.Fatalf("drafts are not sorted newest-first: %s, %s", listed[0].ID, listed[1].ID)
	}
	if len(listed[0].Cart.LineItems) != 1 || listed[0].Cart.LineItems[0].ItemID != "item-1" {
		t.Fatalf("cart snapshot did not round-trip: %+v", listed[0].Cart)
	}

	taken, err := repo.Take("draft-1")
	if err != nil {
		t.Fatalf("take draft: %v", err)
	}
	if taken.ID != "draft-1" || taken.Label != "customer stepped away" {
		t.Fatalf("unexpected taken draft: %+v", taken)
	}
	if _, err := repo.Take("draft-1"); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Fatalf("second take should fail with ErrDraftNotFound, got %v", err)
	}

	if err := repo.Delete("draft-2"); err != nil {
		t.Fatalf("delete draft: %v", err)
	}
	if err := repo.Delete("draft-2"); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Fatalf("delete of missing draft should fail with ErrDraftNotFound, got %v", err)
	}
}

func TestDraftRepository_PostgresTakeIsAtomic(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewDraftRepository(store)

	if err := repo.Put(sampleDraft("draft-race", time.Now().UTC())); err != nil {
		t.Fatalf("put draft: %v", err)
	}

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Take("draft-race"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
}
