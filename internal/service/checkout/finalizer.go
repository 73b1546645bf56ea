// Пакет checkout запечатывает корзину в неизменяемый чек.
// Финализация — конечный автомат Idle -> Computing -> {Committed, Queued, Failed}:
// при наличии связи чек фиксируется синхронно во внешнем леджере, без связи —
// получает временный локальный id и встаёт в очередь на синхронизацию.
package checkout

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/metrics"
)

// State — состояние финализации.
type State string

const (
	// StateIdle — финализация не начиналась (отказ на предусловиях).
	StateIdle State = "idle"
	// StateComputing — commit в полёте; с этого момента отмена невозможна
	// и автомат обязан достичь терминального состояния.
	StateComputing State = "computing"
	// StateCommitted — чек синхронно подтверждён леджером.
	StateCommitted State = "committed"
	// StateQueued — чек сохранён офлайн и ждёт синхронизации.
	StateQueued State = "queued"
	// StateFailed — финализация прервалась; причина возвращена вызывающему.
	StateFailed State = "failed"
)

// Result — исход финализации: терминальное состояние и чек (для Committed и Queued).
type Result struct {
	State   State
	Receipt domain.Receipt
}

// Option настраивает финализатор.
type Option func(*Finalizer)

// WithLogger задаёт логгер.
func WithLogger(logger *log.Entry) Option {
	return func(f *Finalizer) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithMetrics подключает метрики финализации.
func WithMetrics(m *metrics.CheckoutMetrics) Option {
	return func(f *Finalizer) {
		f.metrics = m
	}
}

// WithBranchID помечает чеки идентификатором филиала.
func WithBranchID(branchID string) Option {
	return func(f *Finalizer) {
		f.branchID = branchID
	}
}

// Finalizer превращает завершённую корзину и выбранный способ оплаты
// в запечатанный чек. Никогда не теряет транзакцию молча: каждый отказ
// после начала Computing возвращается вызывающему типизированной ошибкой.
type Finalizer struct {
	ledger   domain.LedgerService
	receipts domain.ReceiptRepository
	monitor  domain.ConnectivityMonitor
	branchID string
	logger   *log.Entry
	metrics  *metrics.CheckoutMetrics
}

// NewFinalizer создаёт финализатор с зависимостями.
func NewFinalizer(
	ledger domain.LedgerService,
	receipts domain.ReceiptRepository,
	monitor domain.ConnectivityMonitor,
	options ...Option,
) *Finalizer {
	f := &Finalizer{
		ledger:   ledger,
		receipts: receipts,
		monitor:  monitor,
		logger:   log.WithField("component", "checkout"),
	}
	for _, option := range options {
		option(f)
	}
	return f
}

// Finalize запечатывает корзину. Предусловия (непустая корзина, корректные
// инварианты) проверяются до перехода в Computing, поэтому их нарушение
// возвращает StateIdle и не оставляет следов в хранилище.
func (f *Finalizer) Finalize(cart domain.Cart, method domain.PaymentMethod) (Result, error) {
	start := time.Now()
	defer func() {
		if f.metrics != nil {
			f.metrics.RecordCheckoutDuration(time.Since(start))
		}
	}()

	if cart.IsEmpty() {
		return Result{State: StateIdle}, domain.ErrEmptyCart
	}
	if errs := cart.ValidateInvariants(); len(errs) != 0 {
		f.logger.WithField("violations", errs).Warn("cart failed invariant check before finalize")
		return Result{State: StateIdle}, domain.ErrInvalidTotal
	}
	if !method.Valid() {
		return Result{State: StateIdle}, domain.ErrPaymentMethodInvalid
	}

	totals := cart.ComputeTotals()
	receipt := f.buildReceipt(cart, totals, method)

	// Точка невозврата: с этого момента автомат обязан достичь
	// терминального состояния.
	if !f.monitor.IsOnline() {
		return f.queueOffline(receipt)
	}
	return f.commitOnline(receipt)
}

func (f *Finalizer) buildReceipt(cart domain.Cart, totals domain.Totals, method domain.PaymentMethod) domain.Receipt {
	receipt := domain.Receipt{
		BranchID:      f.branchID,
		LineItems:     append([]domain.LineItem(nil), cart.LineItems...),
		SubtotalMinor: totals.SubtotalMinor,
		DiscountMinor: totals.DiscountMinor,
		TotalMinor:    totals.TotalMinor,
		PaymentMethod: method,
		CreatedAt:     time.Now().UTC(),
	}
	if cart.Customer != nil {
		receipt.CustomerID = cart.Customer.ID
	}
	return receipt
}

func (f *Finalizer) commitOnline(receipt domain.Receipt) (Result, error) {
	committedID, err := f.ledger.Commit(receipt)
	if err != nil {
		return f.fail(receipt, err)
	}

	// id присваивается в момент фиксации.
	receipt.ID = committedID
	receipt.Status = domain.ReceiptStatusCommitted

	if err := f.receipts.Create(receipt); err != nil {
		// Леджер уже принял чек; локальный отказ хранения не отменяет продажу.
		f.logger.WithError(err).WithField("receipt_id", receipt.ID).Error("failed to persist committed receipt")
	}

	if f.metrics != nil {
		f.metrics.RecordCheckoutCommitted()
	}
	f.logger.WithFields(log.Fields{
		"receipt_id":  receipt.ID,
		"total_minor": receipt.TotalMinor,
		"payment":     receipt.PaymentMethod,
	}).Info("receipt committed")

	return Result{State: StateCommitted, Receipt: receipt}, nil
}

// queueOffline сохраняет чек с временным локальным id. Отсутствие связи —
// не отказ: продажа завершается состоянием Queued, а синхронизацией займётся
// фоновый воркер.
func (f *Finalizer) queueOffline(receipt domain.Receipt) (Result, error) {
	receipt.ID = uuid.NewString()
	receipt.Status = domain.ReceiptStatusQueued
	receipt.Offline = true

	if err := f.receipts.Create(receipt); err != nil {
		return f.fail(receipt, err)
	}

	if f.metrics != nil {
		f.metrics.RecordCheckoutQueued()
	}
	f.logger.WithFields(log.Fields{
		"receipt_id":  receipt.ID,
		"total_minor": receipt.TotalMinor,
	}).Info("receipt queued for offline sync")

	return Result{State: StateQueued, Receipt: receipt}, nil
}

func (f *Finalizer) fail(receipt domain.Receipt, cause error) (Result, error) {
	if f.metrics != nil {
		f.metrics.RecordCheckoutFailed()
	}
	f.logger.WithError(cause).WithField("total_minor", receipt.TotalMinor).Error("finalize failed")

	// Фиксируем отказ для аудита; сбой записи не должен прятать исходную причину.
	receipt.ID = uuid.NewString()
	receipt.Status = domain.ReceiptStatusFailed
	receipt.FailReason = cause.Error()
	if err := f.receipts.Create(receipt); err != nil {
		f.logger.WithError(err).Warn("failed to persist failed receipt record")
	}

	return Result{State: StateFailed}, fmt.Errorf("%w: %v", domain.ErrCommitFailed, cause)
}
