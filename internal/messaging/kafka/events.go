package kafka

import (
	"time"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// EventType определяет тип события продажи
type EventType string

const (
	// Sale события
	EventTypeSaleCommitted  EventType = "sale.committed"
	EventTypeSaleQueued     EventType = "sale.queued"
	EventTypeSaleSynced     EventType = "sale.synced"
	EventTypeSaleSyncFailed EventType = "sale.sync_failed"
)

// Topics для Kafka
const (
	TopicSaleEvents      = "pos.sale.events"
	TopicDeadLetterQueue = "pos.dlq" // Dead Letter Queue для failed receipts
)

// Kafka headers для retry логики
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)

// SaleEvent представляет событие по чеку
type SaleEvent struct {
	EventType     EventType            `json:"event_type"`
	ReceiptID     string               `json:"receipt_id"`
	BranchID      string               `json:"branch_id"`
	CustomerID    string               `json:"customer_id,omitempty"`
	LineItems     []domain.LineItem    `json:"line_items"`
	SubtotalMinor int64                `json:"subtotal_minor"`
	DiscountMinor int64                `json:"discount_minor"`
	TotalMinor    int64                `json:"total_minor"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	Offline       bool                 `json:"offline"`
	CreatedAt     time.Time            `json:"created_at"`
	Timestamp     time.Time            `json:"timestamp"`
}

// NewSaleEvent создает событие по чеку. Тип события выводится из статуса чека.
func NewSaleEvent(receipt domain.Receipt) *SaleEvent {
	eventType := EventTypeSaleCommitted
	switch receipt.Status {
	case domain.ReceiptStatusQueued:
		eventType = EventTypeSaleQueued
	case domain.ReceiptStatusSynced:
		eventType = EventTypeSaleSynced
	case domain.ReceiptStatusFailed:
		eventType = EventTypeSaleSyncFailed
	}

	return &SaleEvent{
		EventType:     eventType,
		ReceiptID:     receipt.ID,
		BranchID:      receipt.BranchID,
		CustomerID:    receipt.CustomerID,
		LineItems:     receipt.LineItems,
		SubtotalMinor: receipt.SubtotalMinor,
		DiscountMinor: receipt.DiscountMinor,
		TotalMinor:    receipt.TotalMinor,
		PaymentMethod: receipt.PaymentMethod,
		Offline:       receipt.Offline,
		CreatedAt:     receipt.CreatedAt,
		Timestamp:     time.Now(),
	}
}
