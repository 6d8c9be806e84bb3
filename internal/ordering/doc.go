// Package ordering assigns and maintains sort positions for work items.
//
// Items sort within a group, the pair (parent, container) inside one
// project. Positions are sparse int32 values spaced Increment apart so an
// append never has to touch siblings:
//
//	assigner := ordering.NewAssigner(store, log)
//	order, err := assigner.NextOrder(ctx, ordering.GroupOf(item))
//
// When spacing drifts (bulk moves, ties from concurrent appends, or the top
// of the int32 range) a Reindexer rewrites the whole group to
// Increment, 2*Increment, ... while keeping relative order. Mover composes
// both into the move / re-parent protocol.
//
// Nothing here takes locks. Two clients appending to the same group at the
// same moment can both receive the same order; ties sort by creation time
// and disappear on the next reindex. Every operation is safe to re-run
// after a failure.
package ordering
