package inbox

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
)

// Delivery states.
const (
	StateReceived  = "received"
	StateProcessed = "processed"
	StateFailed    = "failed"
)

var (
	receiptPrefix = []byte("delivery/")
	payloadPrefix = []byte("payload/")
)

// ErrUnknownDelivery is returned for delivery ids that were never claimed.
var ErrUnknownDelivery = errors.New("unknown delivery")

// Receipt records one webhook delivery.
type Receipt struct {
	DeliveryID  string    `json:"deliveryId"`
	Topic       string    `json:"topic"`
	Shop        string    `json:"shop"`
	ReceivedAt  time.Time `json:"receivedAt"`
	State       string    `json:"state"`
	Error       string    `json:"error,omitempty"`
	ProcessedAt time.Time `json:"processedAt"`
}

// Inbox is a durable webhook inbox backed by pebble. A delivery id can be
// claimed once; its raw payload is archived next to the receipt.
type Inbox struct {
	mu     sync.Mutex
	db     *pebble.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open opens or creates the inbox in dir.
func Open(dir string, logger *slog.Logger) (*Inbox, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &Inbox{db: db, logger: logger, now: time.Now}, nil
}

// Close flushes and closes the underlying store.
func (i *Inbox) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.db == nil {
		return nil
	}
	err := i.db.Close()
	i.db = nil
	return err
}

// Claim records a new delivery. It returns false when the id was already claimed.
func (i *Inbox) Claim(r Receipt, payload []byte) (bool, error) {
	if r.DeliveryID == "" {
		return false, errors.New("delivery id is required")
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if _, found, err := i.get(r.DeliveryID); err != nil {
		return false, err
	} else if found {
		return false, nil
	}

	if r.ReceivedAt.IsZero() {
		r.ReceivedAt = i.now().UTC()
	}
	r.State = StateReceived

	value, err := json.Marshal(r)
	if err != nil {
		return false, err
	}

	batch := i.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(receiptKey(r.DeliveryID), value, nil); err != nil {
		return false, err
	}
	if err := batch.Set(payloadKey(r.DeliveryID), payload, nil); err != nil {
		return false, err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return false, fmt.Errorf("commit delivery: %w", err)
	}
	return true, nil
}

// Complete stores the processing outcome of a claimed delivery.
func (i *Inbox) Complete(deliveryID string, procErr error) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	r, found, err := i.get(deliveryID)
	if err != nil {
		return err
	}
	if !found {
		return ErrUnknownDelivery
	}

	r.State = StateProcessed
	r.Error = ""
	if procErr != nil {
		r.State = StateFailed
		r.Error = procErr.Error()
	}
	r.ProcessedAt = i.now().UTC()

	value, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return i.db.Set(receiptKey(deliveryID), value, pebble.NoSync)
}

// Receipt returns the stored receipt for deliveryID.
func (i *Inbox) Receipt(deliveryID string) (Receipt, bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.get(deliveryID)
}

// Payload returns the archived raw body of a delivery.
func (i *Inbox) Payload(deliveryID string) ([]byte, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	v, closer, err := i.db.Get(payloadKey(deliveryID))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrUnknownDelivery
		}
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), v...), nil
}

// Pending lists deliveries that were claimed but never completed, oldest first.
func (i *Inbox) Pending(limit int) ([]Receipt, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	it, err := i.db.NewIter(&pebble.IterOptions{
		LowerBound: receiptPrefix,
		UpperBound: prefixEnd(receiptPrefix),
	})
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var pending []Receipt
	for it.First(); it.Valid(); it.Next() {
		var r Receipt
		if err := json.Unmarshal(it.Value(), &r); err != nil {
			i.logger.Warn("skipping corrupt inbox receipt", slog.String("key", string(it.Key())), slog.String("error", err.Error()))
			continue
		}
		if r.State == StateReceived {
			pending = append(pending, r)
		}
	}
	if err := it.Error(); err != nil {
		return nil, err
	}

	sort.SliceStable(pending, func(a, b int) bool {
		return pending[a].ReceivedAt.Before(pending[b].ReceivedAt)
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (i *Inbox) get(deliveryID string) (Receipt, bool, error) {
	v, closer, err := i.db.Get(receiptKey(deliveryID))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return Receipt{}, false, nil
		}
		return Receipt{}, false, err
	}
	defer closer.Close()

	var r Receipt
	if err := json.Unmarshal(v, &r); err != nil {
		return Receipt{}, false, fmt.Errorf("decode receipt: %w", err)
	}
	return r, true, nil
}

func receiptKey(id string) []byte {
	return append(append([]byte(nil), receiptPrefix...), id...)
}

func payloadKey(id string) []byte {
	return append(append([]byte(nil), payloadPrefix...), id...)
}

func prefixEnd(prefix []byte) []byte {
	end := bytes.Clone(prefix)
	end[len(end)-1]++
	return end
}
