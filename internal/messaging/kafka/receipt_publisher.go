package kafka

import (
	"fmt"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// ReceiptTopicPublisher публикует чеки как SaleEvent в заданный Kafka topic.
type ReceiptTopicPublisher struct {
	producer *Producer
	topic    string
}

// NewReceiptPublisher создаёт Kafka-паблишер для событий продаж.
func NewReceiptPublisher(producer *Producer, topic string) domain.ReceiptPublisher {
	if topic == "" {
		topic = TopicSaleEvents
	}
	return &ReceiptTopicPublisher{
		producer: producer,
		topic:    topic,
	}
}

// NewDLQPublisher создаёт паблишер для чеков, исчерпавших повторы синхронизации.
func NewDLQPublisher(producer *Producer) domain.ReceiptPublisher {
	return &ReceiptTopicPublisher{
		producer: producer,
		topic:    TopicDeadLetterQueue,
	}
}

func (p *ReceiptTopicPublisher) Publish(receipt domain.Receipt) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka receipt publisher is not initialized")
	}

	// Ключ — id чека: события одного чека попадают в одну партицию
	// и сохраняют порядок queued -> synced.
	return p.producer.PublishEvent(p.topic, receipt.ID, NewSaleEvent(receipt))
}

var _ domain.ReceiptPublisher = (*ReceiptTopicPublisher)(nil)
