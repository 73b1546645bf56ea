package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/catalog"
	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/service/connectivity"
	"github.com/vladislavdragonenkov/pos/internal/service/ledger"
	"github.com/vladislavdragonenkov/pos/internal/storage/memory"
	"github.com/vladislavdragonenkov/pos/internal/storage/postgres"
	"github.com/vladislavdragonenkov/pos/internal/storage/redis"
)

// Dependencies содержит все зависимости терминала.
type Dependencies struct {
	Catalog   domain.CatalogProvider
	Directory domain.Directory
	Drafts    domain.DraftRepository
	Receipts  domain.ReceiptRepository
	Ledger    domain.LedgerService
	Monitor   domain.ConnectivityMonitor
	Logger    *log.Entry

	pgStore     *postgres.Store
	redisClient *goredis.Client
	probe       *connectivity.Probe
}

// NewDependencies собирает зависимости по конфигурации. Хранилище выбирается
// так: PostgreSQL при заданном DSN, Redis для черновиков при заданном адресе,
// иначе in-memory.
// NOTE: леджер пока mock; в production здесь будет клиент внешнего сервиса.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{
		Catalog:   catalog.NewMemory(catalog.SeedItems()),
		Directory: catalog.NewDirectory(catalog.SeedCustomers(), catalog.SeedGroups()),
		Ledger:    ledger.NewMockService(),
		Logger:    logger,
	}

	if err := deps.initStorage(ctx, cfg); err != nil {
		return nil, err
	}
	deps.initMonitor(cfg)

	return deps, nil
}

func (d *Dependencies) initStorage(ctx context.Context, cfg Config) error {
	if cfg.PostgresDSN != "" {
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return fmt.Errorf("ensure schema: %w", err)
		}
		d.pgStore = store
		d.Drafts = postgres.NewDraftRepository(store)
		d.Receipts = postgres.NewReceiptRepository(store)
		d.Logger.Info("using postgres storage")
		return nil
	}

	d.Receipts = memory.NewReceiptRepository()

	if cfg.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return fmt.Errorf("ping redis: %w", err)
		}
		d.redisClient = client
		d.Drafts = redis.NewDraftRepository(client)
		d.Logger.WithField("addr", cfg.RedisAddr).Info("using redis draft storage")
		return nil
	}

	d.Drafts = memory.NewDraftRepository()
	d.Logger.Info("using in-memory storage")
	return nil
}

func (d *Dependencies) initMonitor(cfg Config) {
	if cfg.LedgerProbeAddr == "" {
		d.Monitor = connectivity.NewManual(true)
		return
	}

	probe := connectivity.NewProbe(cfg.LedgerProbeAddr, cfg.ProbeInterval, 2*time.Second)
	d.probe = probe
	d.Monitor = probe
}

// StartProbe запускает фоновую проверку связи, если она настроена.
func (d *Dependencies) StartProbe(ctx context.Context) {
	if d.probe == nil {
		return
	}
	go d.probe.Run(ctx)
}

// Close освобождает ресурсы хранилищ.
func (d *Dependencies) Close() {
	if d.pgStore != nil {
		if err := d.pgStore.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close postgres store")
		}
	}
	if d.redisClient != nil {
		if err := d.redisClient.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close redis client")
		}
	}
}
