package app

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/messaging/kafka"
)

// initKafkaProducer создаёт продьюсер по списку брокеров из конфигурации.
// Пустой список означает работу без Kafka и не является ошибкой.
func initKafkaProducer(brokers string, logger *log.Entry) (*kafka.Producer, error) {
	brokers = strings.TrimSpace(brokers)
	if brokers == "" {
		logger.Info("kafka brokers are not configured, sale events are disabled")
		return nil, nil
	}

	list := strings.Split(brokers, ",")
	for i := range list {
		list[i] = strings.TrimSpace(list[i])
	}

	producer, err := kafka.NewProducer(list)
	if err != nil {
		return nil, err
	}
	logger.WithField("brokers", list).Info("kafka producer initialized")
	return producer, nil
}

func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}
	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	}
}
