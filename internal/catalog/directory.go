package catalog

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// Directory — in-memory справочник покупателей и их групп.
type Directory struct {
	mu        sync.RWMutex
	customers map[string]domain.Customer
	groups    map[string]domain.CustomerGroup
}

// NewDirectory создаёт справочник из заданных покупателей и групп.
func NewDirectory(customers []domain.Customer, groups []domain.CustomerGroup) *Directory {
	d := &Directory{
		customers: make(map[string]domain.Customer, len(customers)),
		groups:    make(map[string]domain.CustomerGroup, len(groups)),
	}
	for _, c := range customers {
		d.customers[c.ID] = c
	}
	for _, g := range groups {
		d.groups[g.ID] = g
	}
	return d
}

// GetCustomer возвращает покупателя или ErrCustomerNotFound.
func (d *Directory) GetCustomer(id string) (domain.Customer, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	customer, ok := d.customers[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return customer, nil
}

// GetGroup возвращает группу или ErrGroupNotFound.
func (d *Directory) GetGroup(id string) (domain.CustomerGroup, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	group, ok := d.groups[id]
	if !ok {
		return domain.CustomerGroup{}, domain.ErrGroupNotFound
	}
	return group, nil
}

// ListGroups возвращает группы, отсортированные по id.
func (d *Directory) ListGroups() ([]domain.CustomerGroup, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]domain.CustomerGroup, 0, len(d.groups))
	for _, g := range d.groups {
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

var _ domain.Directory = (*Directory)(nil)
