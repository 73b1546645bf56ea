package app

import (
	"context"
	"errors"
	"io"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

func testLogger() *log.Entry {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return log.NewEntry(logger)
}

func TestNewDependenciesInMemory(t *testing.T) {
	deps, err := NewDependencies(context.Background(), DefaultConfig(), testLogger())
	if err != nil {
		t.Fatalf("NewDependencies: %v", err)
	}
	defer deps.Close()

	if deps.Catalog == nil || deps.Directory == nil || deps.Drafts == nil ||
		deps.Receipts == nil || deps.Ledger == nil || deps.Monitor == nil {
		t.Fatalf("all dependencies must be wired: %+v", deps)
	}
	if !deps.Monitor.IsOnline() {
		t.Error("monitor must report online when probe address is not set")
	}

	items, err := deps.Catalog.ListItems()
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) == 0 {
		t.Error("catalog must be seeded with items")
	}
}

type recordingPublisher struct {
	published []string
	err       error
}

func (p *recordingPublisher) Publish(receipt domain.Receipt) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, receipt.ID)
	return nil
}

func TestMultiPublisherFanOut(t *testing.T) {
	first := &recordingPublisher{}
	second := &recordingPublisher{}
	mp := multiPublisher{first, second}

	if err := mp.Publish(domain.Receipt{ID: "r-1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(first.published) != 1 || len(second.published) != 1 {
		t.Fatalf("receipt must reach both publishers: %v / %v", first.published, second.published)
	}
}

func TestMultiPublisherStopsOnError(t *testing.T) {
	wantErr := errors.New("broker unavailable")
	first := &recordingPublisher{err: wantErr}
	second := &recordingPublisher{}
	mp := multiPublisher{first, second}

	if err := mp.Publish(domain.Receipt{ID: "r-1"}); !errors.Is(err, wantErr) {
		t.Fatalf("Publish error = %v, want %v", err, wantErr)
	}
	if len(second.published) != 0 {
		t.Error("publish chain must stop after the first error")
	}
}
