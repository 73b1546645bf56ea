package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/service/connectivity"
	"github.com/vladislavdragonenkov/pos/internal/storage/memory"
)

func TestHealthHandler(t *testing.T) {
	handler := NewHandler("v1.0.0")

	handler.RegisterChecker("storage", NewSimpleChecker("storage", func() error {
		return nil
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var response Response
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Status != StatusHealthy {
		t.Errorf("expected status healthy, got %s", response.Status)
	}
	if response.Version != "v1.0.0" {
		t.Errorf("expected version v1.0.0, got %s", response.Version)
	}
	if len(response.Checks) != 1 {
		t.Errorf("expected 1 check, got %d", len(response.Checks))
	}
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	handler := NewHandler("v1.0.0")

	handler.RegisterChecker("storage", NewSimpleChecker("storage", func() error {
		return errors.New("connection refused")
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}

	var response Response
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Status != StatusUnhealthy {
		t.Errorf("expected status unhealthy, got %s", response.Status)
	}
}

func TestHealthHandler_OfflineIsDegradedNotUnhealthy(t *testing.T) {
	handler := NewHandler("v1.0.0")
	handler.RegisterChecker("connectivity", NewConnectivityChecker(connectivity.NewManual(false)))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("degraded terminal should still answer 200, got %d", w.Code)
	}

	var response Response
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Status != StatusDegraded {
		t.Errorf("expected status degraded, got %s", response.Status)
	}

	// Readiness при degraded сохраняется.
	w = httptest.NewRecorder()
	handler.ReadinessHandler(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("degraded terminal should stay ready, got %d", w.Code)
	}
}

func TestLivenessHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	w := httptest.NewRecorder()

	LivenessHandler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestSyncBacklogChecker(t *testing.T) {
	repo := memory.NewReceiptRepository()
	checker := NewSyncBacklogChecker(repo, time.Minute)

	if check := checker.Check(); check.Status != StatusHealthy {
		t.Errorf("empty queue should be healthy, got %s", check.Status)
	}

	err := repo.Create(domain.Receipt{
		ID:       "receipt-1",
		BranchID: "B001",
		LineItems: []domain.LineItem{
			{ItemID: "item-1", Name: "Coca-Cola 50cl", Category: "beverages", Quantity: 1, UnitPriceMinor: 20000},
		},
		SubtotalMinor: 20000,
		TotalMinor:    20000,
		PaymentMethod: domain.PaymentMethodCash,
		Status:        domain.ReceiptStatusQueued,
		Offline:       true,
		CreatedAt:     time.Now().Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}

	check := checker.Check()
	if check.Status != StatusDegraded {
		t.Errorf("stale queue should be degraded, got %s", check.Status)
	}
	if check.Message == "" {
		t.Error("degraded check should carry a message")
	}
}
