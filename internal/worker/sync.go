package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/floristportal/internal/adapter/shopify"
	domainErrors "github.com/polkiloo/floristportal/internal/domain/errors"
	"github.com/polkiloo/floristportal/internal/metrics"
	"github.com/polkiloo/floristportal/internal/usecase"
)

// ErrSyncInProgress is returned when a sync is requested while one runs.
var ErrSyncInProgress = errors.New("order sync already running")

// SyncFacade exposes the subset of application functionality required by the worker.
type SyncFacade interface {
	RecentOrders(ctx context.Context, limit int) (shop string, orders []json.RawMessage, err error)
	IngestOrder(ctx context.Context, shop string, raw json.RawMessage) (*usecase.IngestResult, error)
}

// SyncResult counts the outcome of one sync run.
type SyncResult struct {
	Fetched int `json:"fetched"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// SyncWorker periodically pulls recent orders from the shop and ingests them
// concurrently. Webhooks stay the primary channel; the sync catches up on
// deliveries that never arrived.
type SyncWorker struct {
	facade    SyncFacade
	interval  time.Duration
	batchSize int
	workers   int
	metrics   *metrics.Registry
	logger    *slog.Logger

	running sync.Mutex
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	mu      sync.Mutex
}

// NewSyncWorker constructs the worker. A non-positive interval disables the
// periodic loop; RunOnce still works.
func NewSyncWorker(facade SyncFacade, interval time.Duration, batchSize, workers int, reg *metrics.Registry, logger *slog.Logger) *SyncWorker {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &SyncWorker{
		facade:    facade,
		interval:  interval,
		batchSize: batchSize,
		workers:   workers,
		metrics:   reg,
		logger:    logger,
	}
}

// Start launches the periodic sync loop.
func (w *SyncWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		w.logger.Info("order sync disabled")
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w.cancel = cancel

	w.wg.Add(1)
	go w.loop(runCtx)
}

// Stop cancels the loop and waits for an in-flight run to finish.
func (w *SyncWorker) Stop() {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *SyncWorker) loop(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		_, err := w.RunOnce(ctx)
		var limited shopify.TooManyRequestsError
		switch {
		case err == nil, errors.Is(err, context.Canceled), errors.Is(err, ErrSyncInProgress):
		case errors.Is(err, domainErrors.ErrShopNotConnected):
			w.logger.Debug("order sync skipped, shop not connected")
		case errors.As(err, &limited):
			w.logger.Warn("order sync rate limited", slog.Duration("retry_after", limited.RetryAfter))
			if !sleep(ctx, limited.RetryAfter) {
				return
			}
		default:
			w.logger.Error("order sync failed", slog.String("error", err.Error()))
		}
	}
}

// RunOnce fetches the latest batch of orders and ingests them with the
// worker pool. Only one run executes at a time.
func (w *SyncWorker) RunOnce(ctx context.Context) (SyncResult, error) {
	if !w.running.TryLock() {
		return SyncResult{}, ErrSyncInProgress
	}
	defer w.running.Unlock()

	started := time.Now()
	defer func() { w.metrics.SyncDuration.Observe(time.Since(started).Seconds()) }()

	shop, orders, err := w.facade.RecentOrders(ctx, w.batchSize)
	if err != nil {
		return SyncResult{}, err
	}

	jobs := make(chan json.RawMessage)
	var (
		mu     sync.Mutex
		result = SyncResult{Fetched: len(orders)}
		wg     sync.WaitGroup
	)
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for raw := range jobs {
				res, err := w.facade.IngestOrder(ctx, shop, raw)
				mu.Lock()
				switch {
				case err != nil:
					result.Failed++
				case res.Created:
					result.Created++
				default:
					result.Updated++
				}
				mu.Unlock()
				if err != nil {
					w.logger.Error("sync ingest failed", slog.String("error", err.Error()))
				}
			}
		}()
	}

dispatch:
	for _, raw := range orders {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- raw:
		}
	}
	close(jobs)
	wg.Wait()

	w.logger.Info("order sync finished",
		slog.String("shop", shop),
		slog.Int("fetched", result.Fetched),
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
		slog.Int("failed", result.Failed),
		slog.Duration("took", time.Since(started)),
	)
	return result, ctx.Err()
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
