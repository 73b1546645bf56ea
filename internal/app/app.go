// Пакет app собирает терминал из зависимостей и управляет его жизненным
// циклом: REST API, сервер метрик, фоновые воркеры и graceful shutdown.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/pos/internal/health"
	"github.com/vladislavdragonenkov/pos/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/pos/internal/metrics"
	"github.com/vladislavdragonenkov/pos/internal/service/cart"
	"github.com/vladislavdragonenkov/pos/internal/service/checkout"
	"github.com/vladislavdragonenkov/pos/internal/service/drafts"
	"github.com/vladislavdragonenkov/pos/internal/service/ledger"
	"github.com/vladislavdragonenkov/pos/internal/service/syncer"
	transport "github.com/vladislavdragonenkov/pos/internal/transport/http"
	"github.com/vladislavdragonenkov/pos/internal/version"
)

const (
	staleQueueThreshold = 10 * time.Minute
	shutdownTimeout     = 5 * time.Second
)

// Run запускает терминал и блокируется до отмены ctx или фатальной ошибки.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()
	deps.StartProbe(ctx)

	checkoutMetrics := metrics.NewCheckoutMetrics()

	// Kafka опционален: без брокеров очередь дренируется напрямую в леджер.
	kafkaProducer, err := initKafkaProducer(cfg.KafkaBrokers, logger)
	if err != nil {
		logger.WithError(err).Warn("continuing without kafka")
	}
	defer closeKafka(kafkaProducer, logger)

	draftStore := drafts.NewStore(deps.Drafts,
		drafts.WithTerminalID(cfg.TerminalID),
		drafts.WithMetrics(checkoutMetrics),
	)
	finalizer := checkout.NewFinalizer(deps.Ledger, deps.Receipts, deps.Monitor,
		checkout.WithBranchID(cfg.BranchID),
		checkout.WithMetrics(checkoutMetrics),
	)

	var cartOptions []cart.Option
	if cfg.AllowOversell {
		cartOptions = append(cartOptions, cart.WithOversellAllowed())
	}
	sessions := transport.NewSessionManager(deps.Directory, cartOptions...)

	handler := transport.NewHandler(
		deps.Catalog, deps.Directory, deps.Monitor, deps.Receipts,
		draftStore, finalizer, sessions,
	)

	syncWorker := newSyncWorker(deps, kafkaProducer, cfg)
	go syncWorker.Run(ctx)

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("connectivity", healthcheck.NewConnectivityChecker(deps.Monitor))
	healthHandler.RegisterChecker("sync_backlog", healthcheck.NewSyncBacklogChecker(deps.Receipts, staleQueueThreshold))
	if deps.pgStore != nil {
		healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return deps.pgStore.Ping(pingCtx)
		}))
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: handler.Router()}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("REST API слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// newSyncWorker собирает воркер синхронизации: очередь офлайн-чеков уходит в
// леджер, при настроенном Kafka события продаж дублируются в topic, а чеки,
// исчерпавшие повторы, попадают в DLQ.
func newSyncWorker(deps *Dependencies, producer *kafka.Producer, cfg Config) *syncer.Worker {
	publisher := domain.ReceiptPublisher(ledger.NewPublisher(deps.Ledger))

	options := []syncer.Option{
		syncer.WithPollInterval(cfg.SyncInterval),
	}
	if producer != nil {
		publisher = multiPublisher{
			publisher,
			kafka.NewReceiptPublisher(producer, kafka.TopicSaleEvents),
		}
		options = append(options, syncer.WithDLQPublisher(kafka.NewDLQPublisher(producer)))
	}

	return syncer.NewWorker(deps.Receipts, publisher, deps.Monitor, options...)
}

// multiPublisher последовательно публикует чек всем получателям;
// первая ошибка прерывает цепочку.
type multiPublisher []domain.ReceiptPublisher

func (m multiPublisher) Publish(receipt domain.Receipt) error {
	for _, p := range m {
		if err := p.Publish(receipt); err != nil {
			return err
		}
	}
	return nil
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
