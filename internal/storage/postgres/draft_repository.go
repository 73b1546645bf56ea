package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

type draftRepository struct {
	db *sql.DB
}

// NewDraftRepository создаёт PostgreSQL-реализацию DraftRepository.
func NewDraftRepository(store *Store) domain.DraftRepository {
	return &draftRepository{db: store.DB()}
}

func (r *draftRepository) Put(draft domain.DraftSale) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	cartJSON, err := json.Marshal(draft.Cart)
	if err != nil {
		return fmt.Errorf("marshal draft cart: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO drafts (id, label, terminal_id, cart, parked_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET
			label = EXCLUDED.label,
			terminal_id = EXCLUDED.terminal_id,
			cart = EXCLUDED.cart,
			parked_at = EXCLUDED.parked_at
	`, draft.ID, draft.Label, draft.TerminalID, cartJSON, draft.ParkedAt); err != nil {
		return fmt.Errorf("insert draft: %w", err)
	}

	return nil
}

func (r *draftRepository) List() ([]domain.DraftSale, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, label, terminal_id, cart, parked_at
		FROM drafts
		ORDER BY parked_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("select drafts: %w", err)
	}
	defer rows.Close()

	var drafts []domain.DraftSale
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, draft)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drafts: %w", err)
	}

	return drafts, nil
}

// Take извлекает черновик одним DELETE ... RETURNING: при конкурентном resume
// по одному id строку получает ровно один из участников.
func (r *draftRepository) Take(id string) (domain.DraftSale, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		DELETE FROM drafts
		WHERE id = $1
		RETURNING id, label, terminal_id, cart, parked_at
	`, id)

	draft, err := scanDraft(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DraftSale{}, domain.ErrDraftNotFound
		}
		return domain.DraftSale{}, err
	}

	return draft, nil
}

func (r *draftRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `DELETE FROM drafts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete draft rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrDraftNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraft(row rowScanner) (domain.DraftSale, error) {
	var (
		draft    domain.DraftSale
		cartJSON []byte
	)
	if err := row.Scan(&draft.ID, &draft.Label, &draft.TerminalID, &cartJSON, &draft.ParkedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DraftSale{}, err
		}
		return domain.DraftSale{}, fmt.Errorf("scan draft: %w", err)
	}
	if err := json.Unmarshal(cartJSON, &draft.Cart); err != nil {
		return domain.DraftSale{}, fmt.Errorf("unmarshal draft cart: %w", err)
	}
	return draft, nil
}

var _ domain.DraftRepository = (*draftRepository)(nil)
