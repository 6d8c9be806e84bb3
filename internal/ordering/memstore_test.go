package ordering

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/baiirun/backlog/internal/model"
)

var errInjected = errors.New("injected store failure")

// memStore is an in-memory Store. failQuery / failUpdateAfter inject
// errors; failUpdateAfter counts successful Update calls before failing.
type memStore struct {
	items map[string]*model.Item

	failQuery       bool
	failUpdateAfter int // -1 disables
	updates         int
	queries         int
}

func newMemStore() *memStore {
	return &memStore{
		items:           map[string]*model.Item{},
		failUpdateAfter: -1,
	}
}

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// add stores an item; seq offsets its created_at by seconds.
func (s *memStore) add(id, project string, typ model.ItemType, parent, container *string, order int32, seq int) *model.Item {
	it := &model.Item{
		ID:          id,
		Project:     project,
		Type:        typ,
		Title:       id,
		Status:      model.StatusBacklog,
		ParentID:    parent,
		ContainerID: container,
		Order:       order,
		CreatedAt:   baseTime.Add(time.Duration(seq) * time.Second),
	}
	s.items[id] = it
	return it
}

func (s *memStore) Query(_ context.Context, q Query) ([]model.Item, error) {
	s.queries++
	if s.failQuery {
		return nil, errInjected
	}
	var out []model.Item
	for _, it := range s.items {
		if it.Project != q.Scope || !q.Parent.Matches(it.ParentID) || !q.Container.Matches(it.ContainerID) {
			continue
		}
		out = append(out, *it)
	}
	slices.SortFunc(out, func(a, b model.Item) int {
		c := cmp.Compare(a.Order, b.Order)
		if c == 0 {
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if q.Descending {
			return -c
		}
		return c
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *memStore) Get(_ context.Context, id string) (*model.Item, error) {
	it, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	cp := *it
	return &cp, nil
}

func (s *memStore) Update(_ context.Context, id string, f Fields) error {
	if s.failUpdateAfter >= 0 && s.updates >= s.failUpdateAfter {
		return errInjected
	}
	it, ok := s.items[id]
	if !ok {
		return fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	s.updates++
	if f.Order != nil {
		it.Order = *f.Order
	}
	if f.Group != nil {
		it.ParentID = f.Group.ParentID
		it.ContainerID = f.Group.ContainerID
	}
	return nil
}

func (s *memStore) orders(t *testing.T, g Group) map[string]int32 {
	t.Helper()
	items, err := s.Query(context.Background(), g.Query())
	if err != nil {
		t.Fatalf("query %s: %v", g, err)
	}
	out := make(map[string]int32, len(items))
	for _, it := range items {
		out[it.ID] = it.Order
	}
	return out
}

// sequence returns g's item IDs in stored order.
func (s *memStore) sequence(t *testing.T, g Group) []string {
	t.Helper()
	items, err := s.Query(context.Background(), g.Query())
	if err != nil {
		t.Fatalf("query %s: %v", g, err)
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

// batchStore adds BatchUpdate on top of memStore. Each call is atomic;
// failBatchAfter counts successful calls before failing.
type batchStore struct {
	*memStore
	batches        [][]Assignment
	failBatchAfter int
}

func newBatchStore() *batchStore {
	return &batchStore{memStore: newMemStore(), failBatchAfter: -1}
}

func (s *batchStore) BatchUpdate(_ context.Context, updates []Assignment) error {
	if s.failBatchAfter >= 0 && len(s.batches) >= s.failBatchAfter {
		return errInjected
	}
	for _, a := range updates {
		if _, ok := s.items[a.ID]; !ok {
			return fmt.Errorf("item %s: %w", a.ID, ErrNotFound)
		}
	}
	for _, a := range updates {
		s.items[a.ID].Order = a.Order
	}
	s.batches = append(s.batches, slices.Clone(updates))
	return nil
}

// columnStore also knows containers, so Mover enforces WIP limits.
type columnStore struct {
	*batchStore
	containers map[string]*model.Container
}

func newColumnStore() *columnStore {
	return &columnStore{batchStore: newBatchStore(), containers: map[string]*model.Container{}}
}

func (s *columnStore) Container(_ context.Context, id string) (*model.Container, error) {
	c, ok := s.containers[id]
	if !ok {
		return nil, fmt.Errorf("container %s: %w", id, ErrNotFound)
	}
	return c, nil
}

func sp(s string) *string { return &s }
