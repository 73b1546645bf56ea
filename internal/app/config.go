package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config описывает настройки запуска терминала.
type Config struct {
	// HTTPAddr — адрес REST API терминала.
	HTTPAddr string
	// MetricsAddr — адрес метрик и health-чеков.
	MetricsAddr string
	// BranchID помечает чеки филиалом.
	BranchID string
	// TerminalID помечает черновики терминалом.
	TerminalID string

	// PostgresDSN включает PostgreSQL-хранилище черновиков и чеков.
	PostgresDSN string
	// RedisAddr включает Redis-хранилище черновиков (чеки остаются в памяти
	// или в PostgreSQL, смотря что настроено).
	RedisAddr string
	// KafkaBrokers включает публикацию событий продаж (через запятую).
	KafkaBrokers string

	// LedgerProbeAddr — адрес, по которому проверяется связь с леджером.
	// Пустое значение оставляет терминал в ручном режиме "онлайн".
	LedgerProbeAddr string
	// ProbeInterval — частота проверки связи.
	ProbeInterval time.Duration

	// SyncInterval — частота опроса очереди офлайн-чеков.
	SyncInterval time.Duration

	// AllowOversell разрешает продажу сверх остатка с пометкой чека.
	AllowOversell bool
}

// DefaultConfig возвращает конфигурацию терминала по умолчанию:
// in-memory хранилище, ручной монитор связи, без Kafka.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:      ":8080",
		MetricsAddr:   ":9090",
		BranchID:      "B001",
		TerminalID:    "terminal-1",
		ProbeInterval: 10 * time.Second,
		SyncInterval:  5 * time.Second,
	}
}

// FromEnv накладывает переменные окружения POS_* на конфигурацию по умолчанию.
func FromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("POS_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("POS_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("POS_BRANCH_ID"); v != "" {
		cfg.BranchID = v
	}
	if v := os.Getenv("POS_TERMINAL_ID"); v != "" {
		cfg.TerminalID = v
	}
	cfg.PostgresDSN = strings.TrimSpace(os.Getenv("POS_POSTGRES_DSN"))
	cfg.RedisAddr = strings.TrimSpace(os.Getenv("POS_REDIS_ADDR"))
	cfg.KafkaBrokers = strings.TrimSpace(os.Getenv("POS_KAFKA_BROKERS"))
	cfg.LedgerProbeAddr = strings.TrimSpace(os.Getenv("POS_LEDGER_PROBE_ADDR"))

	if v := os.Getenv("POS_PROBE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ProbeInterval = d
		}
	}
	if v := os.Getenv("POS_SYNC_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SyncInterval = d
		}
	}
	if v := os.Getenv("POS_ALLOW_OVERSELL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AllowOversell = b
		}
	}

	return cfg
}
