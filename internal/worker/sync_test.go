package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/polkiloo/floristportal/internal/adapter/shopify"
	domainErrors "github.com/polkiloo/floristportal/internal/domain/errors"
	"github.com/polkiloo/floristportal/internal/metrics"
	"github.com/polkiloo/floristportal/internal/usecase"
)

type syncFacadeStub struct {
	shop     string
	batches  [][]json.RawMessage
	recentFn func(context.Context, int) (string, []json.RawMessage, error)
	ingestFn func(context.Context, string, json.RawMessage) (*usecase.IngestResult, error)

	mu       sync.Mutex
	ingested []json.RawMessage
	limits   []int
	calls    int32
}

func (s *syncFacadeStub) RecentOrders(ctx context.Context, limit int) (string, []json.RawMessage, error) {
	s.mu.Lock()
	s.limits = append(s.limits, limit)
	s.mu.Unlock()
	if s.recentFn != nil {
		return s.recentFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.calls, 1)
	if int(call) <= len(s.batches) {
		return s.shop, s.batches[call-1], nil
	}
	return s.shop, nil, nil
}

func (s *syncFacadeStub) IngestOrder(ctx context.Context, shop string, raw json.RawMessage) (*usecase.IngestResult, error) {
	s.mu.Lock()
	s.ingested = append(s.ingested, raw)
	s.mu.Unlock()
	if s.ingestFn != nil {
		return s.ingestFn(ctx, shop, raw)
	}
	return &usecase.IngestResult{Created: true}, nil
}

func (s *syncFacadeStub) ingestedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ingested)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func rawOrders(ids ...string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(ids))
	for _, id := range ids {
		out = append(out, json.RawMessage(`{"id":`+id+`}`))
	}
	return out
}

func TestNewSyncWorkerDefaults(t *testing.T) {
	w := NewSyncWorker(&syncFacadeStub{}, time.Second, 0, 0, metrics.NewRegistry(), discardLogger())
	if w.batchSize != 1 {
		t.Fatalf("expected batch size default to 1, got %d", w.batchSize)
	}
	if w.workers != 1 {
		t.Fatalf("expected workers default to 1, got %d", w.workers)
	}
}

func TestRunOnceCountsOutcomes(t *testing.T) {
	facade := &syncFacadeStub{
		shop:    "flowers.myshopify.com",
		batches: [][]json.RawMessage{rawOrders("1", "2", "3", "4")},
		ingestFn: func(_ context.Context, shop string, raw json.RawMessage) (*usecase.IngestResult, error) {
			if shop != "flowers.myshopify.com" {
				t.Errorf("unexpected shop %q", shop)
			}
			switch string(raw) {
			case `{"id":1}`, `{"id":2}`:
				return &usecase.IngestResult{Created: true}, nil
			case `{"id":3}`:
				return &usecase.IngestResult{}, nil
			default:
				return nil, domainErrors.ErrInvalidPayload
			}
		},
	}
	reg := metrics.NewRegistry()
	w := NewSyncWorker(facade, 0, 25, 3, reg, discardLogger())

	result, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	want := SyncResult{Fetched: 4, Created: 2, Updated: 1, Failed: 1}
	if result != want {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(facade.limits) != 1 || facade.limits[0] != 25 {
		t.Fatalf("expected batch size passed as limit, got %v", facade.limits)
	}
	if got := testutil.CollectAndCount(reg.SyncDuration); got != 1 {
		t.Fatalf("expected sync duration observed, got %d series", got)
	}
}

func TestRunOnceReturnsFetchError(t *testing.T) {
	facade := &syncFacadeStub{recentFn: func(context.Context, int) (string, []json.RawMessage, error) {
		return "", nil, domainErrors.ErrShopNotConnected
	}}
	w := NewSyncWorker(facade, 0, 5, 1, metrics.NewRegistry(), discardLogger())

	if _, err := w.RunOnce(context.Background()); !errors.Is(err, domainErrors.ErrShopNotConnected) {
		t.Fatalf("expected ErrShopNotConnected, got %v", err)
	}
}

func TestRunOnceRejectsConcurrentRun(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	facade := &syncFacadeStub{recentFn: func(context.Context, int) (string, []json.RawMessage, error) {
		close(entered)
		<-release
		return "", nil, nil
	}}
	w := NewSyncWorker(facade, 0, 5, 1, metrics.NewRegistry(), discardLogger())

	done := make(chan error, 1)
	go func() {
		_, err := w.RunOnce(context.Background())
		done <- err
	}()
	<-entered

	if _, err := w.RunOnce(context.Background()); !errors.Is(err, ErrSyncInProgress) {
		t.Fatalf("expected ErrSyncInProgress, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first run: %v", err)
	}
}

func TestSyncWorkerProcessesOrdersPeriodically(t *testing.T) {
	facade := &syncFacadeStub{batches: [][]json.RawMessage{rawOrders("1"), rawOrders("2")}}
	w := NewSyncWorker(facade, 10*time.Millisecond, 5, 2, metrics.NewRegistry(), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	deadline := time.After(time.Second)
	for facade.ingestedCount() < 2 {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for sync")
		case <-time.After(5 * time.Millisecond):
		}
	}
	w.Stop()
}

func TestSyncWorkerWaitsOnRateLimit(t *testing.T) {
	var calls int32
	facade := &syncFacadeStub{recentFn: func(context.Context, int) (string, []json.RawMessage, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return "", nil, shopify.TooManyRequestsError{RetryAfter: 20 * time.Millisecond}
		}
		return "shop", rawOrders("9"), nil
	}}
	w := NewSyncWorker(facade, 5*time.Millisecond, 1, 1, metrics.NewRegistry(), discardLogger())

	w.Start(context.Background())
	deadline := time.After(time.Second)
	for facade.ingestedCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for sync after rate limit")
		case <-time.After(5 * time.Millisecond):
		}
	}
	w.Stop()
	if atomic.LoadInt32(&calls) < 2 {
		t.Fatalf("expected retry after rate limit, got %d calls", calls)
	}
}

func TestSyncWorkerDisabledWithoutInterval(t *testing.T) {
	facade := &syncFacadeStub{}
	w := NewSyncWorker(facade, 0, 1, 1, metrics.NewRegistry(), discardLogger())
	w.Start(context.Background())
	w.Stop()
	if len(facade.limits) != 0 {
		t.Fatalf("expected no sync runs, got %d", len(facade.limits))
	}
}
