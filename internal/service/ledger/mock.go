package ledger

import (
	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// MockService — конфигурируемая заглушка LedgerService для разработки и тестов.
type MockService struct {
	// CommitID подставляется как id чека; пустое значение генерирует uuid.
	CommitID  string
	CommitErr error

	CommitCalls int
	LastReceipt domain.Receipt
}

// NewMockService возвращает mock с успешным сценарием по умолчанию.
func NewMockService() *MockService {
	return &MockService{}
}

// Commit возвращает настроенный результат и запоминает последний чек.
func (m *MockService) Commit(receipt domain.Receipt) (string, error) {
	m.CommitCalls++
	m.LastReceipt = receipt

	if m.CommitErr != nil {
		return "", m.CommitErr
	}
	if m.CommitID != "" {
		return m.CommitID, nil
	}
	return uuid.NewString(), nil
}

var _ domain.LedgerService = (*MockService)(nil)
