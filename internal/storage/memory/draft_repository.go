package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// draftRepositoryInMemory — простая in-memory реализация DraftRepository.
type draftRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.DraftSale
}

// NewDraftRepository возвращает in-memory хранилище черновиков
// для локальной разработки и тестов.
func NewDraftRepository() domain.DraftRepository {
	return &draftRepositoryInMemory{
		items: make(map[string]domain.DraftSale),
	}
}

// Put сохраняет черновик. Снимок корзины копируется, чтобы мутации живой
// корзины не затрагивали сохранённое состояние.
func (r *draftRepositoryInMemory) Put(draft domain.DraftSale) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	draft.Cart = draft.Cart.Clone()
	r.items[draft.ID] = draft
	return nil
}

// List возвращает черновики, недавние первыми; при равном времени
// порядок стабилизируется по id.
func (r *draftRepositoryInMemory) List() ([]domain.DraftSale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.DraftSale, 0, len(r.items))
	for _, draft := range r.items {
		draft.Cart = draft.Cart.Clone()
		result = append(result, draft)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].ParkedAt.Equal(result[j].ParkedAt) {
			return result[i].ParkedAt.After(result[j].ParkedAt)
		}
		return result[i].ID > result[j].ID
	})

	return result, nil
}

// Take атомарно извлекает и удаляет черновик под общей блокировкой:
// из двух конкурентных вызовов по одному id выигрывает ровно один.
func (r *draftRepositoryInMemory) Take(id string) (domain.DraftSale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	draft, ok := r.items[id]
	if !ok {
		return domain.DraftSale{}, domain.ErrDraftNotFound
	}
	delete(r.items, id)
	return draft, nil
}

// Delete удаляет черновик или возвращает ErrDraftNotFound.
func (r *draftRepositoryInMemory) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrDraftNotFound
	}
	delete(r.items, id)
	return nil
}

var _ domain.DraftRepository = (*draftRepositoryInMemory)(nil)
