package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

func sampleReceipt(id string, status domain.ReceiptStatus, createdAt time.Time) domain.Receipt {
	return domain.Receipt{
		ID:         id,
		BranchID:   "B001",
		CustomerID: "cust-1",
		LineItems: []domain.LineItem{
			{
				ItemID:         "item-1",
				Name:           "Coca-Cola 50cl",
				Category:       "beverages",
				Quantity:       2,
				UnitPriceMinor: 20000,
			},
		},
		SubtotalMinor: 40000,
		DiscountMinor: 4000,
		TotalMinor:    36000,
		PaymentMethod: domain.PaymentMethodCash,
		Status:        status,
		Offline:       status == domain.ReceiptStatusQueued,
		CreatedAt:     createdAt,
	}
}

func TestReceiptRepository_PostgresCreateGetAndDuplicate(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewReceiptRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	receipt := sampleReceipt("receipt-1", domain.ReceiptStatusCommitted, now)

	if err := repo.Create(receipt); err != nil {
		t.Fatalf("create receipt: %v", err)
	}

	got, err := repo.Get("receipt-1")
	if err != nil {
		t.Fatalf("get receipt: %v", err)
	}
	if got.BranchID != "B001" || got.TotalMinor != 36000 || got.Status != domain.ReceiptStatusCommitted {
		t.Fatalf("unexpected receipt payload: %+v", got)
	}
	if len(got.LineItems) != 1 || got.LineItems[0].ItemID != "item-1" {
		t.Fatalf("line items did not round-trip: %+v", got.LineItems)
	}

	if err := repo.Create(receipt); !errors.Is(err, domain.ErrReceiptExists) {
		t.Fatalf("duplicate create should fail with ErrReceiptExists, got %v", err)
	}

	if _, err := repo.Get("missing"); !errors.Is(err, domain.ErrReceiptNotFound) {
		t.Fatalf("get of missing receipt should fail with ErrReceiptNotFound, got %v", err)
	}
}

func TestReceiptRepository_PostgresQueueLifecycle(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewReceiptRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	first := sampleReceipt("receipt-1", domain.ReceiptStatusQueued, now.Add(-2*time.Minute))
	second := sampleReceipt("receipt-2", domain.ReceiptStatusQueued, now.Add(-time.Minute))
	committed := sampleReceipt("receipt-3", domain.ReceiptStatusCommitted, now)

	for _, r := range []domain.Receipt{first, second, committed} {
		if err := repo.Create(r); err != nil {
			t.Fatalf("create receipt %s: %v", r.ID, err)
		}
	}

	queued, err := repo.PullQueued(10)
	if err != nil {
		t.Fatalf("pull queued: %v", err)
	}
	if len(queued) != 2 {
		t.Fatalf("expected 2 queued receipts, got %d", len(queued))
	}
	if queued[0].ID != "receipt-1" || queued[1].ID != "receipt-2" {
		t.Fatalf("queued receipts are not in creation order: %s, %s", queued[0].ID, queued[1].ID)
	}

	limited, err := repo.PullQueued(1)
	if err != nil {
		t.Fatalf("pull queued with limit: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "receipt-1" {
		t.Fatalf("unexpected limited pull: %+v", limited)
	}

	stats, err := repo.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.QueuedCount != 2 {
		t.Fatalf("expected 2 queued in stats, got %d", stats.QueuedCount)
	}
	if !stats.OldestQueuedAt.Equal(first.CreatedAt) {
		t.Fatalf("unexpected oldest queued at: %v", stats.OldestQueuedAt)
	}

	if err := repo.MarkSynced("receipt-1"); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	synced, err := repo.Get("receipt-1")
	if err != nil {
		t.Fatalf("get synced receipt: %v", err)
	}
	if synced.Status != domain.ReceiptStatusSynced || synced.SyncedAt == nil {
		t.Fatalf("unexpected synced receipt: %+v", synced)
	}

	if err := repo.MarkFailed("receipt-2"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	failed, err := repo.Get("receipt-2")
	if err != nil {
		t.Fatalf("get failed receipt: %v", err)
	}
	if failed.Status != domain.ReceiptStatusFailed {
		t.Fatalf("unexpected failed receipt status: %s", failed.Status)
	}

	empty, err := repo.PullQueued(10)
	if err != nil {
		t.Fatalf("pull queued after lifecycle: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("queue should be empty, got %d receipts", len(empty))
	}

	if err := repo.MarkSynced("missing"); !errors.Is(err, domain.ErrReceiptNotFound) {
		t.Fatalf("mark synced of missing receipt should fail with ErrReceiptNotFound, got %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	if !isUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("23505 should be a unique violation")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "22001"}) {
		t.Fatal("22001 should not be a unique violation")
	}
	if isUniqueViolation(errors.New("plain error")) {
		t.Fatal("plain error should not be a unique violation")
	}
}
