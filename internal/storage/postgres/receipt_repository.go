package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

type receiptRepository struct {
	db *sql.DB
}

// NewReceiptRepository создаёт PostgreSQL-реализацию ReceiptRepository.
func NewReceiptRepository(store *Store) domain.ReceiptRepository {
	return &receiptRepository{db: store.DB()}
}

func (r *receiptRepository) Create(receipt domain.Receipt) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	lineItemsJSON, err := json.Marshal(receipt.LineItems)
	if err != nil {
		return fmt.Errorf("marshal receipt line items: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO receipts (
			id, branch_id, customer_id, line_items,
			subtotal_minor, discount_minor, total_minor,
			payment_method, status, offline, fail_reason, created_at, synced_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		receipt.ID, receipt.BranchID, receipt.CustomerID, lineItemsJSON,
		receipt.SubtotalMinor, receipt.DiscountMinor, receipt.TotalMinor,
		string(receipt.PaymentMethod), string(receipt.Status), receipt.Offline,
		receipt.FailReason, receipt.CreatedAt, receipt.SyncedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrReceiptExists
		}
		return fmt.Errorf("insert receipt: %w", err)
	}

	return nil
}

func (r *receiptRepository) Get(id string) (domain.Receipt, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT id, branch_id, customer_id, line_items,
			subtotal_minor, discount_minor, total_minor,
			payment_method, status, offline, fail_reason, created_at, synced_at
		FROM receipts
		WHERE id = $1
	`, id)

	receipt, err := scanReceipt(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Receipt{}, domain.ErrReceiptNotFound
		}
		return domain.Receipt{}, err
	}

	return receipt, nil
}

func (r *receiptRepository) PullQueued(limit int) ([]domain.Receipt, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, branch_id, customer_id, line_items,
			subtotal_minor, discount_minor, total_minor,
			payment_method, status, offline, fail_reason, created_at, synced_at
		FROM receipts
		WHERE status = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2
	`, string(domain.ReceiptStatusQueued), limit)
	if err != nil {
		return nil, fmt.Errorf("select queued receipts: %w", err)
	}
	defer rows.Close()

	var receipts []domain.Receipt
	for rows.Next() {
		receipt, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate queued receipts: %w", err)
	}

	return receipts, nil
}

func (r *receiptRepository) MarkSynced(id string) error {
	return r.updateStatus(id, domain.ReceiptStatusSynced, true)
}

func (r *receiptRepository) MarkFailed(id string) error {
	return r.updateStatus(id, domain.ReceiptStatusFailed, false)
}

func (r *receiptRepository) Stats() (domain.QueueStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		stats  domain.QueueStats
		oldest sql.NullTime
	)
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), MIN(created_at)
		FROM receipts
		WHERE status = $1
	`, string(domain.ReceiptStatusQueued)).Scan(&stats.QueuedCount, &oldest); err != nil {
		return domain.QueueStats{}, fmt.Errorf("query receipt queue stats: %w", err)
	}
	if oldest.Valid {
		stats.OldestQueuedAt = oldest.Time
	}

	return stats, nil
}

func (r *receiptRepository) updateStatus(id string, status domain.ReceiptStatus, setSyncedAt bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		result sql.Result
		err    error
	)
	if setSyncedAt {
		result, err = r.db.ExecContext(ctx, `
			UPDATE receipts SET status = $1, synced_at = NOW() WHERE id = $2
		`, string(status), id)
	} else {
		result, err = r.db.ExecContext(ctx, `
			UPDATE receipts SET status = $1 WHERE id = $2
		`, string(status), id)
	}
	if err != nil {
		return fmt.Errorf("update receipt status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update receipt rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrReceiptNotFound
	}

	return nil
}

func scanReceipt(row rowScanner) (domain.Receipt, error) {
	var (
		receipt       domain.Receipt
		lineItemsJSON []byte
		method        string
		status        string
		syncedAt      sql.NullTime
	)
	if err := row.Scan(
		&receipt.ID, &receipt.BranchID, &receipt.CustomerID, &lineItemsJSON,
		&receipt.SubtotalMinor, &receipt.DiscountMinor, &receipt.TotalMinor,
		&method, &status, &receipt.Offline, &receipt.FailReason,
		&receipt.CreatedAt, &syncedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Receipt{}, err
		}
		return domain.Receipt{}, fmt.Errorf("scan receipt: %w", err)
	}

	receipt.PaymentMethod = domain.PaymentMethod(method)
	receipt.Status = domain.ReceiptStatus(status)
	if syncedAt.Valid {
		t := syncedAt.Time
		receipt.SyncedAt = &t
	}
	if err := json.Unmarshal(lineItemsJSON, &receipt.LineItems); err != nil {
		return domain.Receipt{}, fmt.Errorf("unmarshal receipt line items: %w", err)
	}

	return receipt, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.ReceiptRepository = (*receiptRepository)(nil)
