package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// receiptRepositoryInMemory — in-memory реализация ReceiptRepository.
type receiptRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Receipt
}

// NewReceiptRepository возвращает in-memory хранилище чеков.
func NewReceiptRepository() domain.ReceiptRepository {
	return &receiptRepositoryInMemory{
		items: make(map[string]domain.Receipt),
	}
}

// Create сохраняет новый чек, если id ещё не занят.
func (r *receiptRepositoryInMemory) Create(receipt domain.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[receipt.ID]; exists {
		return domain.ErrReceiptExists
	}
	// Сохраняем независимую копию позиций: чек неизменяем после создания.
	receipt.LineItems = append([]domain.LineItem(nil), receipt.LineItems...)
	r.items[receipt.ID] = receipt
	return nil
}

// Get возвращает чек или ErrReceiptNotFound.
func (r *receiptRepositoryInMemory) Get(id string) (domain.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	receipt, ok := r.items[id]
	if !ok {
		return domain.Receipt{}, domain.ErrReceiptNotFound
	}
	return receipt, nil
}

// PullQueued возвращает офлайн-чеки в порядке создания, не больше limit (если >0).
func (r *receiptRepositoryInMemory) PullQueued(limit int) ([]domain.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Receipt, 0)
	for _, receipt := range r.items {
		if receipt.Status != domain.ReceiptStatusQueued {
			continue
		}
		result = append(result, receipt)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// MarkSynced помечает офлайн-чек переданным леджеру.
func (r *receiptRepositoryInMemory) MarkSynced(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	receipt, ok := r.items[id]
	if !ok {
		return domain.ErrReceiptNotFound
	}
	now := time.Now().UTC()
	receipt.Status = domain.ReceiptStatusSynced
	receipt.SyncedAt = &now
	r.items[id] = receipt
	return nil
}

// MarkFailed помечает чек как не прошедший синхронизацию.
func (r *receiptRepositoryInMemory) MarkFailed(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	receipt, ok := r.items[id]
	if !ok {
		return domain.ErrReceiptNotFound
	}
	receipt.Status = domain.ReceiptStatusFailed
	r.items[id] = receipt
	return nil
}

// Stats возвращает размер очереди и возраст самого старого офлайн-чека.
func (r *receiptRepositoryInMemory) Stats() (domain.QueueStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats domain.QueueStats
	for _, receipt := range r.items {
		if receipt.Status != domain.ReceiptStatusQueued {
			continue
		}
		stats.QueuedCount++
		if stats.OldestQueuedAt.IsZero() || receipt.CreatedAt.Before(stats.OldestQueuedAt) {
			stats.OldestQueuedAt = receipt.CreatedAt
		}
	}
	return stats, nil
}

var _ domain.ReceiptRepository = (*receiptRepositoryInMemory)(nil)
