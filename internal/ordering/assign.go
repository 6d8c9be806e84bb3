package ordering

import (
	"context"
	"fmt"
	"log/slog"
	"math"
)

const (
	// Increment is the gap between neighbours, both for appends and for
	// freshly reindexed groups.
	Increment int32 = 1000

	// MaxOrder is the largest storable position.
	MaxOrder int32 = math.MaxInt32

	// FallbackOrder is the position of the first item in an empty group.
	// It is also the only default a caller may use when the store cannot be
	// read, and then only for a group known to be brand new.
	FallbackOrder = Increment

	// DefaultBatchSize bounds positions written per round trip.
	DefaultBatchSize = 50
)

// Assigner computes the position for appending an item to a group.
type Assigner struct {
	store Store
	log   *slog.Logger
}

// NewAssigner returns an Assigner reading from store. A nil log discards
// output.
func NewAssigner(store Store, log *slog.Logger) *Assigner {
	return &Assigner{store: store, log: orDiscard(log)}
}

// NextOrder returns a position greater than every order in g, or MaxOrder
// once g has run out of room (see Saturated). It only reads; the caller
// writes the item. A store failure is returned as is, never papered over
// with a default.
func (a *Assigner) NextOrder(ctx context.Context, g Group) (int32, error) {
	q := g.Query()
	q.Descending = true
	q.Limit = 1

	items, err := a.store.Query(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("failed to get next order for %s: %w", g, err)
	}
	if len(items) == 0 {
		return FallbackOrder, nil
	}

	next := after(items[0].Order)
	if Saturated(next) {
		a.log.Warn("order space exhausted, group needs reindex", "group", g.String(), "max", items[0].Order)
	}
	return next, nil
}

// Saturated reports whether order sits at the top of the range. Appending
// after it would collide, so the group should be reindexed first.
func Saturated(order int32) bool {
	return order >= MaxOrder
}

func after(max int32) int32 {
	if max < 1 {
		return Increment
	}
	next := int64(max) + int64(Increment)
	if next > int64(MaxOrder) {
		return MaxOrder
	}
	return int32(next)
}

func orDiscard(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return log
}
