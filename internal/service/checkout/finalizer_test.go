package checkout_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/service/checkout"
	"github.com/vladislavdragonenkov/pos/internal/service/connectivity"
	"github.com/vladislavdragonenkov/pos/internal/service/ledger"
	"github.com/vladislavdragonenkov/pos/internal/storage/memory"
)

func sampleCart() domain.Cart {
	now := time.Now().UTC()
	return domain.Cart{
		LineItems: []domain.LineItem{
			{ItemID: "item-1", Name: "Coca-Cola 50cl", Category: "beverages", Quantity: 2, UnitPriceMinor: 20000, AddedAt: now},
			{ItemID: "item-2", Name: "Bread Sliced 600g", Category: "food", Quantity: 1, UnitPriceMinor: 95000, AddedAt: now},
		},
		GlobalDiscountMinor: 10000,
	}
}

func TestFinalize_OnlineCommit(t *testing.T) {
	mock := ledger.NewMockService()
	mock.CommitID = "ledger-42"
	receipts := memory.NewReceiptRepository()
	finalizer := checkout.NewFinalizer(mock, receipts, connectivity.NewManual(true), checkout.WithBranchID("B001"))

	result, err := finalizer.Finalize(sampleCart(), domain.PaymentMethodCash)
	require.NoError(t, err)
	require.Equal(t, checkout.StateCommitted, result.State)

	receipt := result.Receipt
	require.Equal(t, "ledger-42", receipt.ID)
	require.Equal(t, domain.ReceiptStatusCommitted, receipt.Status)
	require.False(t, receipt.Offline)
	require.Equal(t, int64(135000), receipt.SubtotalMinor)
	require.Equal(t, int64(125000), receipt.TotalMinor)
	require.Equal(t, "B001", receipt.BranchID)
	require.Equal(t, 1, mock.CommitCalls)

	stored, err := receipts.Get("ledger-42")
	require.NoError(t, err)
	require.Equal(t, domain.ReceiptStatusCommitted, stored.Status)
}

func TestFinalize_OfflineQueues(t *testing.T) {
	mock := ledger.NewMockService()
	receipts := memory.NewReceiptRepository()
	finalizer := checkout.NewFinalizer(mock, receipts, connectivity.NewManual(false))

	result, err := finalizer.Finalize(sampleCart(), domain.PaymentMethodCard)
	// Отсутствие связи само по себе никогда не даёт Failed.
	require.NoError(t, err)
	require.Equal(t, checkout.StateQueued, result.State)
	require.NotEmpty(t, result.Receipt.ID, "queued receipt must get a provisional id")
	require.True(t, result.Receipt.Offline)
	require.Equal(t, domain.ReceiptStatusQueued, result.Receipt.Status)
	require.Zero(t, mock.CommitCalls, "ledger must not be called while offline")

	queued, err := receipts.PullQueued(10)
	require.NoError(t, err)
	require.Len(t, queued, 1)
}

func TestFinalize_EmptyCart(t *testing.T) {
	finalizer := checkout.NewFinalizer(ledger.NewMockService(), memory.NewReceiptRepository(), connectivity.NewManual(true))

	result, err := finalizer.Finalize(domain.Cart{}, domain.PaymentMethodCash)
	require.ErrorIs(t, err, domain.ErrEmptyCart)
	require.Equal(t, checkout.StateIdle, result.State)
}

func TestFinalize_InvalidCart(t *testing.T) {
	finalizer := checkout.NewFinalizer(ledger.NewMockService(), memory.NewReceiptRepository(), connectivity.NewManual(true))

	cart := sampleCart()
	cart.LineItems[0].Quantity = -1

	result, err := finalizer.Finalize(cart, domain.PaymentMethodCash)
	require.ErrorIs(t, err, domain.ErrInvalidTotal)
	require.Equal(t, checkout.StateIdle, result.State)
}

func TestFinalize_UnknownPaymentMethod(t *testing.T) {
	finalizer := checkout.NewFinalizer(ledger.NewMockService(), memory.NewReceiptRepository(), connectivity.NewManual(true))

	_, err := finalizer.Finalize(sampleCart(), "barter")
	require.ErrorIs(t, err, domain.ErrPaymentMethodInvalid)
}

func TestFinalize_LedgerFailure(t *testing.T) {
	mock := ledger.NewMockService()
	mock.CommitErr = errors.New("payment gateway rejected transaction")
	receipts := memory.NewReceiptRepository()
	finalizer := checkout.NewFinalizer(mock, receipts, connectivity.NewManual(true))

	result, err := finalizer.Finalize(sampleCart(), domain.PaymentMethodCash)
	require.ErrorIs(t, err, domain.ErrCommitFailed)
	require.Contains(t, err.Error(), "payment gateway rejected")
	require.Equal(t, checkout.StateFailed, result.State)

	// Отказ не теряется: для аудита остаётся запись со статусом failed.
	failed, err := receipts.PullQueued(10)
	require.NoError(t, err)
	require.Empty(t, failed, "failed receipt must not enter the sync queue")
}

func TestFinalize_ClampedTotalStillFinalizes(t *testing.T) {
	cart := sampleCart()
	cart.GlobalDiscountMinor = 10000000 // скидка больше subtotal

	finalizer := checkout.NewFinalizer(ledger.NewMockService(), memory.NewReceiptRepository(), connectivity.NewManual(true))
	result, err := finalizer.Finalize(cart, domain.PaymentMethodCash)
	require.NoError(t, err)
	require.Equal(t, checkout.StateCommitted, result.State)
	require.Zero(t, result.Receipt.TotalMinor)
}

func TestFinalize_WalkInHasNoCustomer(t *testing.T) {
	cart := sampleCart()
	finalizer := checkout.NewFinalizer(ledger.NewMockService(), memory.NewReceiptRepository(), connectivity.NewManual(true))

	result, err := finalizer.Finalize(cart, domain.PaymentMethodTransfer)
	require.NoError(t, err)
	require.Empty(t, result.Receipt.CustomerID)

	cart.Customer = &domain.Customer{ID: "cust-1", Name: "Ada Obi"}
	result, err = finalizer.Finalize(cart, domain.PaymentMethodTransfer)
	require.NoError(t, err)
	require.Equal(t, "cust-1", result.Receipt.CustomerID)
}
