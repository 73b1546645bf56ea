package kafka

import (
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

func testReceipt(status domain.ReceiptStatus) domain.Receipt {
	return domain.Receipt{
		ID:       "receipt-1",
		BranchID: "B001",
		LineItems: []domain.LineItem{
			{ItemID: "item-1", Name: "Coca-Cola 50cl", Category: "beverages", Quantity: 2, UnitPriceMinor: 20000},
		},
		SubtotalMinor: 40000,
		TotalMinor:    40000,
		PaymentMethod: domain.PaymentMethodCash,
		Status:        status,
		CreatedAt:     time.Now(),
	}
}

func TestReceiptPublisher_Publish(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageAndSucceed()

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-receipt-publisher-test"),
	}
	publisher := NewReceiptPublisher(producer, TopicSaleEvents)

	if err := publisher.Publish(testReceipt(domain.ReceiptStatusCommitted)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestReceiptPublisher_PublishProducerError(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-receipt-publisher-test"),
	}
	publisher := NewReceiptPublisher(producer, TopicSaleEvents)

	if err := publisher.Publish(testReceipt(domain.ReceiptStatusQueued)); err == nil {
		t.Fatal("expected publish error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestReceiptPublisher_PublishNilProducer(t *testing.T) {
	t.Parallel()

	publisher := NewReceiptPublisher(nil, TopicSaleEvents)
	if err := publisher.Publish(testReceipt(domain.ReceiptStatusQueued)); err == nil {
		t.Fatal("expected error for nil producer")
	}
}

func TestNewSaleEventTypeFromStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status domain.ReceiptStatus
		want   EventType
	}{
		{domain.ReceiptStatusCommitted, EventTypeSaleCommitted},
		{domain.ReceiptStatusQueued, EventTypeSaleQueued},
		{domain.ReceiptStatusSynced, EventTypeSaleSynced},
		{domain.ReceiptStatusFailed, EventTypeSaleSyncFailed},
	}
	for _, tc := range cases {
		event := NewSaleEvent(testReceipt(tc.status))
		if event.EventType != tc.want {
			t.Errorf("status %s: expected event type %s, got %s", tc.status, tc.want, event.EventType)
		}
		if event.ReceiptID != "receipt-1" {
			t.Errorf("unexpected receipt id %s", event.ReceiptID)
		}
		if event.Timestamp.IsZero() {
			t.Error("timestamp should not be zero")
		}
	}
}
