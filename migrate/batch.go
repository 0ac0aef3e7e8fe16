package migrate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/toothbrush/wp-migrate/wordpress"
)

type State int8

const (
	Idle State = iota
	Exporting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Exporting:
		return "exporting"
	case Succeeded:
		return "success"
	case Failed:
		return "error"
	default:
		return "idle"
	}
}

// TransferStatus is one item's progress.  Message is only set for Failed.
type TransferStatus struct {
	State   State
	Message string
}

func (s TransferStatus) Terminal() bool {
	return s.State == Succeeded || s.State == Failed
}

var (
	ErrAlreadyExporting   = errors.New("migrate: item is already being transferred")
	ErrAlreadyTransferred = errors.New("migrate: item was already transferred")
	ErrNotFailed          = errors.New("migrate: only failed items can be retried")
)

// ItemTransferrer is satisfied by *Transferrer.
type ItemTransferrer interface {
	TransferItem(ctx context.Context, item wordpress.ContentItem) (*wordpress.ContentItem, error)
}

// Batch drives a selection of items through an ItemTransferrer one at a time, in selection order,
// so two items never race to create the same new term.
//
// A failed item never stops the rest of the batch.
type Batch struct {
	ID string

	// OnStatus, if set, hears every status change.  It's called without the lock held.
	OnStatus func(id int, status TransferStatus)

	transferrer ItemTransferrer
	order       []int
	items       map[int]wordpress.ContentItem

	mu             sync.Mutex
	statuses       map[int]TransferStatus
	destinationIDs map[int]int
}

// NewBatch selects items by source ID.  Duplicate IDs in the selection are ignored; unknown IDs
// are an error.
func NewBatch(transferrer ItemTransferrer, items []wordpress.ContentItem, selected []int) (*Batch, error) {
	byID := make(map[int]wordpress.ContentItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	b := &Batch{
		ID:             uuid.NewString(),
		transferrer:    transferrer,
		items:          make(map[int]wordpress.ContentItem, len(selected)),
		statuses:       make(map[int]TransferStatus, len(selected)),
		destinationIDs: make(map[int]int),
	}

	for _, id := range selected {
		if _, seen := b.items[id]; seen {
			continue
		}
		item, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("migrate: selected item %d isn't in the fetched list", id)
		}
		b.order = append(b.order, id)
		b.items[id] = item
		b.statuses[id] = TransferStatus{State: Idle}
	}

	return b, nil
}

// Run transfers every idle item in selection order and returns once each has a terminal status.
// Only a cancelled context stops it early; remaining items then stay idle.
func (b *Batch) Run(ctx context.Context) Summary {
	logger := zerolog.Ctx(ctx)

	for _, id := range b.order {
		if ctx.Err() != nil {
			logger.Warn().Err(ctx.Err()).Str("batch", b.ID).Msg("batch interrupted")
			break
		}
		if b.Status(id).State != Idle {
			continue
		}
		if err := b.transfer(ctx, id); err != nil {
			logger.Debug().Err(err).Int("source_id", id).Msg("skipped")
		}
	}

	summary := b.Summary()
	logger.Info().
		Str("batch", b.ID).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("pending", summary.Pending).
		Msg("batch finished")

	return summary
}

// Retry transfers a failed item again.
func (b *Batch) Retry(ctx context.Context, id int) error {
	status, ok := b.lookup(id)
	if !ok {
		return fmt.Errorf("migrate: item %d isn't part of batch %s", id, b.ID)
	}
	if status.State != Failed {
		return fmt.Errorf("migrate: can't retry item %d in state %s: %w", id, status.State, ErrNotFailed)
	}
	return b.transfer(ctx, id)
}

// transfer runs one item.  The returned error only reports a refused start; the transfer's own
// failure is recorded in the item's status.
func (b *Batch) transfer(ctx context.Context, id int) error {
	if err := b.begin(id); err != nil {
		return err
	}

	created, err := b.transferrer.TransferItem(ctx, b.items[id])
	if err != nil {
		b.finish(id, TransferStatus{State: Failed, Message: err.Error()}, 0)
		return nil
	}

	b.finish(id, TransferStatus{State: Succeeded}, created.ID)
	return nil
}

func (b *Batch) begin(id int) error {
	b.mu.Lock()
	status, ok := b.statuses[id]
	if !ok {
		b.mu.Unlock()
		return fmt.Errorf("migrate: item %d isn't part of batch %s", id, b.ID)
	}
	switch status.State {
	case Exporting:
		b.mu.Unlock()
		return fmt.Errorf("migrate: item %d: %w", id, ErrAlreadyExporting)
	case Succeeded:
		b.mu.Unlock()
		return fmt.Errorf("migrate: item %d: %w", id, ErrAlreadyTransferred)
	}
	next := TransferStatus{State: Exporting}
	b.statuses[id] = next
	b.mu.Unlock()

	b.notify(id, next)
	return nil
}

func (b *Batch) finish(id int, status TransferStatus, destinationID int) {
	b.mu.Lock()
	b.statuses[id] = status
	if destinationID != 0 {
		b.destinationIDs[id] = destinationID
	}
	b.mu.Unlock()

	b.notify(id, status)
}

func (b *Batch) notify(id int, status TransferStatus) {
	if b.OnStatus != nil {
		b.OnStatus(id, status)
	}
}

func (b *Batch) lookup(id int) (TransferStatus, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.statuses[id]
	return s, ok
}

// Status returns the current status of id; unknown IDs read as idle.
func (b *Batch) Status(id int) TransferStatus {
	s, _ := b.lookup(id)
	return s
}

// Order returns the selected source IDs in selection order.
func (b *Batch) Order() []int {
	return append([]int(nil), b.order...)
}

// DestinationID returns the ID an item was created under, if it succeeded.
func (b *Batch) DestinationID(id int) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.destinationIDs[id]
	return d, ok
}

type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Pending   int
}

// Done reports whether every item has a terminal status.
func (s Summary) Done() bool {
	return s.Pending == 0
}

func (b *Batch) Summary() Summary {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := Summary{Total: len(b.order)}
	for _, status := range b.statuses {
		switch status.State {
		case Succeeded:
			s.Succeeded++
		case Failed:
			s.Failed++
		default:
			s.Pending++
		}
	}
	return s
}
