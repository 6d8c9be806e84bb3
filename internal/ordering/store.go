package ordering

import (
	"context"
	"errors"

	"github.com/baiirun/backlog/internal/model"
)

var ErrNotFound = errors.New("not found")

// Store is the item store the ordering subsystem reads and writes through.
type Store interface {
	Query(ctx context.Context, q Query) ([]model.Item, error)
	// Get returns an error wrapping ErrNotFound for unknown IDs.
	Get(ctx context.Context, id string) (*model.Item, error)
	Update(ctx context.Context, id string, f Fields) error
}

// BatchUpdater is implemented by stores that can write many positions in
// one round trip. Each call is applied atomically or not at all.
type BatchUpdater interface {
	BatchUpdate(ctx context.Context, updates []Assignment) error
}

// ContainerStore is implemented by stores that know about containers.
// Mover uses it to validate destinations and enforce WIP limits.
type ContainerStore interface {
	Container(ctx context.Context, id string) (*model.Container, error)
}

// Fields is a partial item update. Nil fields are left untouched.
// Group moves the item to Group.ParentID / Group.ContainerID (Scope is
// ignored); a nil ParentID or ContainerID in it clears that column.
type Fields struct {
	Order *int32
	Group *Group
}

// Assignment is one computed position.
type Assignment struct {
	ID    string `json:"id" yaml:"id"`
	Order int32  `json:"order" yaml:"order"`
}
