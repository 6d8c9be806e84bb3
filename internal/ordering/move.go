package ordering

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/baiirun/backlog/internal/model"
)

var (
	ErrCycle          = errors.New("cannot nest an item under itself or its children")
	ErrInvalidNesting = errors.New("invalid nesting")
	ErrWIPLimit       = errors.New("column has reached its WIP limit")
	ErrScopeMismatch  = errors.New("destination belongs to a different project")
)

// MoveResult describes a completed move. Order is the position assigned
// at write time; Item.Order is the final position after reindexing.
type MoveResult struct {
	Item       model.Item
	From       Group
	To         Group
	Order      int32
	Saturated  bool
	SourcePlan []Assignment
	DestPlan   []Assignment
}

// Mover implements the move / re-parent protocol on top of an Assigner
// and a Reindexer.
type Mover struct {
	store     Store
	assigner  *Assigner
	reindexer *Reindexer
	log       *slog.Logger
}

// NewMover returns a Mover. A nil log discards output.
func NewMover(store Store, assigner *Assigner, reindexer *Reindexer, log *slog.Logger) *Mover {
	return &Mover{store: store, assigner: assigner, reindexer: reindexer, log: orDiscard(log)}
}

// Move appends item itemID to the end of dest, then reindexes the group it
// left and the group it joined. dest.Scope may be empty to mean the item's
// own project.
//
// If the write succeeds but a reindex fails, the returned error wraps the
// reindex failure and the move itself stays applied; reindexing the two
// groups again finishes the job.
func (m *Mover) Move(ctx context.Context, itemID string, dest Group) (*MoveResult, error) {
	item, err := m.store.Get(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load item %s: %w", itemID, err)
	}
	if dest.Scope == "" {
		dest.Scope = item.Project
	}
	if err := m.CheckPlacement(ctx, *item, dest); err != nil {
		return nil, err
	}

	from := GroupOf(*item)
	order, err := m.assigner.NextOrder(ctx, dest)
	if err != nil {
		return nil, err
	}
	saturated := Saturated(order)
	if saturated {
		// Make room first; writing at MaxOrder would tie with the current tail.
		if _, err := m.reindexer.ReindexStored(ctx, dest); err != nil {
			return nil, fmt.Errorf("failed to make room in %s: %w", dest, err)
		}
		if order, err = m.assigner.NextOrder(ctx, dest); err != nil {
			return nil, err
		}
	}
	if err := m.store.Update(ctx, item.ID, Fields{Order: &order, Group: &dest}); err != nil {
		return nil, fmt.Errorf("failed to move %s: %w", item.ID, err)
	}

	res := &MoveResult{From: from, To: dest, Order: order, Saturated: saturated}
	res.Item = *item
	res.Item.ParentID = dest.ParentID
	res.Item.ContainerID = dest.ContainerID
	res.Item.Order = order

	m.log.Info("moved item", "item", item.ID, "from", from.String(), "to", dest.String(), "order", order)

	if from.Key() != dest.Key() {
		res.SourcePlan, err = m.reindexer.ReindexStored(ctx, from)
		if err != nil {
			return res, fmt.Errorf("moved %s but failed to reindex source: %w", item.ID, err)
		}
	}
	res.DestPlan, err = m.reindexer.ReindexStored(ctx, dest)
	if err != nil {
		return res, fmt.Errorf("moved %s but failed to reindex destination: %w", item.ID, err)
	}
	for _, a := range res.DestPlan {
		if a.ID == item.ID {
			res.Item.Order = a.Order
		}
	}
	return res, nil
}

// Append returns the position for a new item at the end of g. If g has run
// out of room it is reindexed first.
func (m *Mover) Append(ctx context.Context, g Group) (int32, error) {
	order, err := m.assigner.NextOrder(ctx, g)
	if err != nil {
		return 0, err
	}
	if !Saturated(order) {
		return order, nil
	}

	if _, err := m.reindexer.ReindexStored(ctx, g); err != nil {
		return 0, err
	}
	return m.assigner.NextOrder(ctx, g)
}

// CheckPlacement validates putting item into dest: the parent must exist in
// the same project, accept the item's type, and not be the item or one of
// its descendants; a column container must have room under its WIP limit.
// item need not be stored yet.
func (m *Mover) CheckPlacement(ctx context.Context, item model.Item, dest Group) error {
	if dest.Scope != item.Project {
		return fmt.Errorf("%w: %s is in %q, not %q", ErrScopeMismatch, item.ID, item.Project, dest.Scope)
	}
	if dest.ParentID != nil {
		if err := m.checkParent(ctx, item, *dest.ParentID); err != nil {
			return err
		}
	}
	if dest.ContainerID != nil {
		if err := m.checkContainer(ctx, item, *dest.ContainerID); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mover) checkParent(ctx context.Context, item model.Item, parentID string) error {
	if parentID == item.ID {
		return ErrCycle
	}
	parent, err := m.store.Get(ctx, parentID)
	if err != nil {
		return fmt.Errorf("parent %s: %w", parentID, err)
	}
	if parent.Project != item.Project {
		return fmt.Errorf("%w: parent %s is in %q", ErrScopeMismatch, parentID, parent.Project)
	}

	all, err := m.store.Query(ctx, Query{Scope: item.Project, Parent: Any(), Container: Any()})
	if err != nil {
		return fmt.Errorf("failed to load hierarchy: %w", err)
	}
	if model.IsDescendantOf(item.ID, parentID, model.ParentIndex(all)) {
		return ErrCycle
	}

	if !model.CanNest(parent.Type, item.Type) {
		return fmt.Errorf("%w: %s cannot contain %s", ErrInvalidNesting, parent.Type, item.Type)
	}
	return nil
}

func (m *Mover) checkContainer(ctx context.Context, item model.Item, containerID string) error {
	cs, ok := m.store.(ContainerStore)
	if !ok {
		return nil
	}
	c, err := cs.Container(ctx, containerID)
	if err != nil {
		return fmt.Errorf("container %s: %w", containerID, err)
	}
	if c.Project != item.Project {
		return fmt.Errorf("%w: container %s is in %q", ErrScopeMismatch, containerID, c.Project)
	}
	if c.Kind != model.ContainerColumn || c.WIPLimit <= 0 {
		return nil
	}
	if item.ContainerID != nil && *item.ContainerID == containerID {
		return nil
	}

	members, err := m.store.Query(ctx, Query{Scope: item.Project, Parent: Any(), Container: Eq(containerID)})
	if err != nil {
		return fmt.Errorf("failed to count items in %s: %w", containerID, err)
	}
	if len(members) >= c.WIPLimit {
		return fmt.Errorf("%w: %q holds %d of %d", ErrWIPLimit, c.Name, len(members), c.WIPLimit)
	}
	return nil
}
