package ledger

import (
	"fmt"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// Publisher передаёт офлайн-чеки леджеру через Commit. Используется воркером
// синхронизации: очередь дренируется тем же внешним коллаборатором, который
// принимает онлайн-чеки.
type Publisher struct {
	svc domain.LedgerService
}

// NewPublisher оборачивает LedgerService в ReceiptPublisher.
func NewPublisher(svc domain.LedgerService) *Publisher {
	return &Publisher{svc: svc}
}

func (p *Publisher) Publish(receipt domain.Receipt) error {
	if p == nil || p.svc == nil {
		return fmt.Errorf("ledger publisher is not initialized")
	}
	if _, err := p.svc.Commit(receipt); err != nil {
		return fmt.Errorf("ledger commit: %w", err)
	}
	return nil
}

var _ domain.ReceiptPublisher = (*Publisher)(nil)
