// Пакет catalog предоставляет in-memory реализации каталога товаров и
// справочника покупателей. Ядро видит их только через интерфейсы
// domain.CatalogProvider и domain.Directory: никакого глобального состояния,
// провайдер внедряется явно.
package catalog

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// Memory — потокобезопасный read-only каталог поверх заданного набора позиций.
type Memory struct {
	mu    sync.RWMutex
	items map[string]domain.Item
	order []string
}

// NewMemory создаёт каталог из набора позиций, сохраняя исходный порядок.
func NewMemory(items []domain.Item) *Memory {
	m := &Memory{
		items: make(map[string]domain.Item, len(items)),
		order: make([]string, 0, len(items)),
	}
	for _, item := range items {
		if _, exists := m.items[item.ID]; !exists {
			m.order = append(m.order, item.ID)
		}
		m.items[item.ID] = item
	}
	return m
}

// ListItems возвращает копии всех позиций каталога.
func (m *Memory) ListItems() ([]domain.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]domain.Item, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.items[id])
	}
	return result, nil
}

// GetItem возвращает позицию или ErrItemNotFound.
func (m *Memory) GetItem(id string) (domain.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[id]
	if !ok {
		return domain.Item{}, domain.ErrItemNotFound
	}
	return item, nil
}

// ListCategories возвращает уникальные категории в алфавитном порядке.
func (m *Memory) ListCategories() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	var result []string
	for _, item := range m.items {
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		result = append(result, item.Category)
	}
	sort.Strings(result)
	return result, nil
}

var _ domain.CatalogProvider = (*Memory)(nil)
