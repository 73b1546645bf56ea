package ledger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

func TestPublisher_PublishCommitsToLedger(t *testing.T) {
	svc := &MockService{CommitID: "ledger-1"}
	publisher := NewPublisher(svc)

	receipt := domain.Receipt{ID: "receipt-1", TotalMinor: 20000}
	require.NoError(t, publisher.Publish(receipt))

	assert.Equal(t, 1, svc.CommitCalls)
	assert.Equal(t, "receipt-1", svc.LastReceipt.ID)
}

func TestPublisher_PublishPropagatesCommitError(t *testing.T) {
	svc := &MockService{CommitErr: errors.New("ledger rejected")}
	publisher := NewPublisher(svc)

	err := publisher.Publish(domain.Receipt{ID: "receipt-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger commit")
}

func TestPublisher_NilService(t *testing.T) {
	publisher := NewPublisher(nil)
	assert.Error(t, publisher.Publish(domain.Receipt{ID: "receipt-1"}))
}
