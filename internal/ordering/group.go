package ordering

import (
	"fmt"

	"github.com/baiirun/backlog/internal/model"
)

type filterKind int

const (
	filterAny filterKind = iota
	filterEq
	filterNull
)

// Filter matches a nullable column. IsNull matches only NULL, which is
// different from Any: grouping code must never use Any, or "no sprint"
// items would merge with every sprint.
type Filter struct {
	kind  filterKind
	value string
}

// Eq matches rows whose column equals v.
func Eq(v string) Filter { return Filter{kind: filterEq, value: v} }

// IsNull matches rows whose column is NULL.
func IsNull() Filter { return Filter{kind: filterNull} }

// Any matches every row.
func Any() Filter { return Filter{kind: filterAny} }

// FilterFor returns Eq(*v), or IsNull for a nil pointer. It never returns Any.
func FilterFor(v *string) Filter {
	if v == nil {
		return IsNull()
	}
	return Eq(*v)
}

// IsAny reports whether f matches every value.
func (f Filter) IsAny() bool { return f.kind == filterAny }

// IsNull reports whether f only matches a missing value.
func (f Filter) IsNull() bool { return f.kind == filterNull }

// Value returns the compared value and true for an Eq filter.
func (f Filter) Value() (string, bool) {
	return f.value, f.kind == filterEq
}

// Matches reports whether a column holding v passes the filter.
func (f Filter) Matches(v *string) bool {
	switch f.kind {
	case filterEq:
		return v != nil && *v == f.value
	case filterNull:
		return v == nil
	}
	return true
}

func (f Filter) String() string {
	switch f.kind {
	case filterEq:
		return f.value
	case filterNull:
		return "null"
	}
	return "*"
}

// Query selects items for the ordering subsystem. Limit 0 means no limit.
// Results sort by order then created_at, ascending unless Descending is set.
type Query struct {
	Scope      string
	Parent     Filter
	Container  Filter
	Descending bool
	Limit      int
}

// Group identifies one ordering group: items of Scope with exactly this
// parent and container.
type Group struct {
	Scope       string
	ParentID    *string
	ContainerID *string
}

// GroupOf returns the group an item currently sorts in.
func GroupOf(item model.Item) Group {
	return Group{Scope: item.Project, ParentID: item.ParentID, ContainerID: item.ContainerID}
}

// Key is a comparable form of Group, usable as a map key.
type Key struct {
	Scope        string
	Parent       string
	HasParent    bool
	Container    string
	HasContainer bool
}

func (g Group) Key() Key {
	return Key{
		Scope:        g.Scope,
		Parent:       model.Deref(g.ParentID),
		HasParent:    g.ParentID != nil,
		Container:    model.Deref(g.ContainerID),
		HasContainer: g.ContainerID != nil,
	}
}

// KeyOf is GroupOf(item).Key().
func KeyOf(item model.Item) Key {
	return GroupOf(item).Key()
}

// Contains reports whether item belongs to g.
func (g Group) Contains(item model.Item) bool {
	return KeyOf(item) == g.Key()
}

// Query returns the exact-match query for g's members in ascending order.
func (g Group) Query() Query {
	return Query{
		Scope:     g.Scope,
		Parent:    FilterFor(g.ParentID),
		Container: FilterFor(g.ContainerID),
	}
}

func (g Group) String() string {
	return fmt.Sprintf("%s/parent=%s/container=%s", g.Scope, FilterFor(g.ParentID), FilterFor(g.ContainerID))
}
