// Пакет syncer публикует офлайн-чеки внешним потребителям, когда связь
// восстановлена. Воркер опрашивает очередь ReceiptRepository и передаёт чеки
// через ReceiptPublisher с ограниченным числом повторов.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

const (
	defaultPollInterval   = 5 * time.Second
	defaultBatchSize      = 50
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 100 * time.Millisecond
)

var (
	syncPublishAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_sync_publish_attempts_total",
		Help: "Total number of offline receipt publish attempts grouped by result.",
	}, []string{"result"})
	syncQueuedReceipts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pos_sync_queued_receipts",
		Help: "Current number of offline receipts awaiting sync.",
	})
	syncOldestQueuedAge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pos_sync_oldest_queued_age_seconds",
		Help: "Age in seconds of the oldest receipt awaiting sync.",
	})
)

// WorkerOptions задаёт параметры воркера синхронизации.
type WorkerOptions struct {
	Logger         *log.Entry
	DLQPublisher   domain.ReceiptPublisher
	PollInterval   time.Duration
	BatchSize      int
	MaxAttempts    int
	RetryBaseDelay time.Duration
}

// Option настраивает Worker.
type Option func(*WorkerOptions)

// WithLogger задаёт логгер воркера.
func WithLogger(logger *log.Entry) Option {
	return func(opts *WorkerOptions) {
		opts.Logger = logger
	}
}

// WithDLQPublisher задаёт publisher для чеков, исчерпавших повторы.
func WithDLQPublisher(publisher domain.ReceiptPublisher) Option {
	return func(opts *WorkerOptions) {
		opts.DLQPublisher = publisher
	}
}

// WithPollInterval задаёт частоту опроса очереди.
func WithPollInterval(interval time.Duration) Option {
	return func(opts *WorkerOptions) {
		opts.PollInterval = interval
	}
}

// WithBatchSize задаёт размер батча из очереди.
func WithBatchSize(batchSize int) Option {
	return func(opts *WorkerOptions) {
		opts.BatchSize = batchSize
	}
}

// WithMaxAttempts задаёт число попыток публикации до failed/DLQ.
func WithMaxAttempts(maxAttempts int) Option {
	return func(opts *WorkerOptions) {
		opts.MaxAttempts = maxAttempts
	}
}

// WithRetryBaseDelay задаёт базовый delay для exponential backoff.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(opts *WorkerOptions) {
		opts.RetryBaseDelay = delay
	}
}

// Worker синхронизирует офлайн-чеки с внешним потребителем.
type Worker struct {
	repo           domain.ReceiptRepository
	publisher      domain.ReceiptPublisher
	monitor        domain.ConnectivityMonitor
	dlqPublisher   domain.ReceiptPublisher
	logger         *log.Entry
	pollInterval   time.Duration
	batchSize      int
	maxAttempts    int
	retryBaseDelay time.Duration
}

// NewWorker создаёт воркер синхронизации.
func NewWorker(
	repo domain.ReceiptRepository,
	publisher domain.ReceiptPublisher,
	monitor domain.ConnectivityMonitor,
	options ...Option,
) *Worker {
	opts := WorkerOptions{
		PollInterval:   defaultPollInterval,
		BatchSize:      defaultBatchSize,
		MaxAttempts:    defaultMaxAttempts,
		RetryBaseDelay: defaultRetryBaseDelay,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "receipt-syncer")
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryBaseDelay < 0 {
		opts.RetryBaseDelay = 0
	}

	return &Worker{
		repo:           repo,
		publisher:      publisher,
		monitor:        monitor,
		dlqPublisher:   opts.DLQPublisher,
		logger:         logger,
		pollInterval:   opts.PollInterval,
		batchSize:      opts.BatchSize,
		maxAttempts:    opts.MaxAttempts,
		retryBaseDelay: opts.RetryBaseDelay,
	}
}

// Run запускает периодический опрос очереди до отмены ctx.
func (w *Worker) Run(ctx context.Context) {
	if w.repo == nil || w.publisher == nil {
		w.logger.Warn("receipt syncer is disabled: repo or publisher is nil")
		return
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.ProcessOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.ProcessOnce(ctx)
		}
	}
}

// ProcessOnce выполняет один цикл синхронизации. Без связи цикл только
// обновляет метрики backlog: очередь дождётся восстановления.
func (w *Worker) ProcessOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	w.refreshBacklogMetrics()

	if w.monitor != nil && !w.monitor.IsOnline() {
		return
	}

	receipts, err := w.repo.PullQueued(w.batchSize)
	if err != nil {
		w.logger.WithError(err).Warn("failed to pull queued receipts")
		return
	}
	if len(receipts) == 0 {
		return
	}

	for _, receipt := range receipts {
		if ctx.Err() != nil {
			return
		}

		if err := w.publishWithRetry(ctx, receipt); err != nil {
			w.logger.WithError(err).WithField("receipt_id", receipt.ID).Error("receipt sync failed after retries")
			syncPublishAttempts.WithLabelValues("failed").Inc()

			if dlqErr := w.publishToDLQ(receipt); dlqErr != nil {
				w.logger.WithError(dlqErr).WithField("receipt_id", receipt.ID).Warn("failed to publish receipt to DLQ")
				syncPublishAttempts.WithLabelValues("dlq_failed").Inc()
			}
			if markErr := w.repo.MarkFailed(receipt.ID); markErr != nil {
				w.logger.WithError(markErr).WithField("receipt_id", receipt.ID).Warn("failed to mark receipt as failed")
			}
			continue
		}

		if err := w.repo.MarkSynced(receipt.ID); err != nil {
			w.logger.WithError(err).WithField("receipt_id", receipt.ID).Warn("failed to mark receipt as synced")
		}
	}

	w.refreshBacklogMetrics()
}

func (w *Worker) publishWithRetry(ctx context.Context, receipt domain.Receipt) error {
	var lastErr error

	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		err := w.publisher.Publish(receipt)
		if err == nil {
			syncPublishAttempts.WithLabelValues("sent").Inc()
			return nil
		}
		lastErr = err
		syncPublishAttempts.WithLabelValues("retry_error").Inc()

		if attempt >= w.maxAttempts {
			break
		}

		delay := w.retryBackoff(attempt)
		if delay <= 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("publish failed after %d attempts: %w", w.maxAttempts, lastErr)
}

func (w *Worker) refreshBacklogMetrics() {
	stats, err := w.repo.Stats()
	if err != nil {
		w.logger.WithError(err).Warn("failed to collect sync backlog stats")
		return
	}

	syncQueuedReceipts.Set(float64(stats.QueuedCount))
	if stats.QueuedCount == 0 || stats.OldestQueuedAt.IsZero() {
		syncOldestQueuedAge.Set(0)
		return
	}

	age := time.Since(stats.OldestQueuedAt).Seconds()
	if age < 0 {
		age = 0
	}
	syncOldestQueuedAge.Set(age)
}

func (w *Worker) retryBackoff(attempt int) time.Duration {
	if w.retryBaseDelay <= 0 {
		return 0
	}
	if attempt <= 1 {
		return w.retryBaseDelay
	}

	const maxDuration = time.Duration(1<<63 - 1)
	delay := w.retryBaseDelay
	for i := 1; i < attempt; i++ {
		if delay > maxDuration/2 {
			return maxDuration
		}
		delay *= 2
	}
	return delay
}

func (w *Worker) publishToDLQ(receipt domain.Receipt) error {
	if w.dlqPublisher == nil {
		return nil
	}
	if err := w.dlqPublisher.Publish(receipt); err != nil {
		return fmt.Errorf("publish to dlq: %w", err)
	}
	return nil
}
