package ordering

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/baiirun/backlog/internal/model"
)

// PartialReindexError reports a reindex that stopped after some writes
// landed. Written items already hold their new positions; re-running the
// reindex over the current membership converges.
type PartialReindexError struct {
	Group   Group
	Applied int
	Total   int
	Err     error
}

func (e *PartialReindexError) Error() string {
	return fmt.Sprintf("partial reindex of %s: %d of %d updates applied: %v", e.Group, e.Applied, e.Total, e.Err)
}

func (e *PartialReindexError) Unwrap() error { return e.Err }

// Plan returns evenly spaced positions for items, one per item, in sort
// order: order ascending, then created_at, then ID. The i-th item (from 1)
// gets min(i*Increment, MaxOrder). The input slice is not modified.
func Plan(items []model.Item) []Assignment {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, compareItems)

	plan := make([]Assignment, len(sorted))
	for i, it := range sorted {
		plan[i] = Assignment{ID: it.ID, Order: position(i + 1)}
	}
	return plan
}

func compareItems(a, b model.Item) int {
	if c := cmp.Compare(a.Order, b.Order); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func position(i int) int32 {
	v := int64(i) * int64(Increment)
	if v > int64(MaxOrder) {
		return MaxOrder
	}
	return int32(v)
}

// Reindexer renumbers whole groups.
type Reindexer struct {
	store     Store
	batchSize int
	log       *slog.Logger
}

// NewReindexer returns a Reindexer writing at most batchSize positions per
// round trip. batchSize 0 writes everything in one batch; negative values
// use DefaultBatchSize.
func NewReindexer(store Store, batchSize int, log *slog.Logger) *Reindexer {
	if batchSize < 0 {
		batchSize = DefaultBatchSize
	}
	return &Reindexer{store: store, batchSize: batchSize, log: orDiscard(log)}
}

// ReindexGroup renumbers items, which must be the full membership of g, and
// returns the complete plan. Only positions that change are written, in an
// order that keeps the sequence intact if a write fails part way. g is used
// for reporting; items are not filtered by it.
func (r *Reindexer) ReindexGroup(ctx context.Context, items []model.Item, g Group) ([]Assignment, error) {
	plan := Plan(items)

	current := make(map[string]int32, len(items))
	for _, it := range items {
		current[it.ID] = it.Order
		if !g.Contains(it) {
			r.log.Warn("reindexing item outside its group", "item", it.ID, "group", g.String(), "item_group", GroupOf(it).String())
		}
	}

	changed := writeOrder(plan, current)
	if len(changed) == 0 {
		return plan, nil
	}

	applied, err := r.write(ctx, changed)
	if err != nil {
		if applied == 0 {
			return plan, fmt.Errorf("failed to reindex %s: %w", g, err)
		}
		return plan, &PartialReindexError{Group: g, Applied: applied, Total: len(changed), Err: err}
	}

	r.log.Debug("reindexed group", "group", g.String(), "items", len(plan), "written", len(changed))
	return plan, nil
}

// ReindexStored loads g's current members from the store and reindexes them.
func (r *Reindexer) ReindexStored(ctx context.Context, g Group) ([]Assignment, error) {
	items, err := r.store.Query(ctx, g.Query())
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", g, err)
	}
	return r.ReindexGroup(ctx, items, g)
}

// writeOrder returns the assignments in plan that change a position, in the
// order they must be written so that every prefix keeps the group's sequence:
// items moving down head first, then items moving up tail first.
func writeOrder(plan []Assignment, current map[string]int32) []Assignment {
	var down, up []Assignment
	for _, a := range plan {
		switch old := current[a.ID]; {
		case a.Order < old:
			down = append(down, a)
		case a.Order > old:
			up = append(up, a)
		}
	}
	slices.Reverse(up)
	return append(down, up...)
}

// write persists updates and returns how many landed before any failure.
func (r *Reindexer) write(ctx context.Context, updates []Assignment) (int, error) {
	bu, ok := r.store.(BatchUpdater)
	if !ok {
		for i, a := range updates {
			order := a.Order
			if err := r.store.Update(ctx, a.ID, Fields{Order: &order}); err != nil {
				return i, err
			}
		}
		return len(updates), nil
	}

	applied := 0
	for _, batch := range chunk(updates, r.batchSize) {
		if err := bu.BatchUpdate(ctx, batch); err != nil {
			return applied, err
		}
		applied += len(batch)
	}
	return applied, nil
}

func chunk(updates []Assignment, size int) [][]Assignment {
	if size <= 0 || len(updates) <= size {
		return [][]Assignment{updates}
	}
	var out [][]Assignment
	for start := 0; start < len(updates); start += size {
		end := min(start+size, len(updates))
		out = append(out, updates[start:end])
	}
	return out
}
