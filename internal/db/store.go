package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/baiirun/backlog/internal/model"
	"github.com/baiirun/backlog/internal/ordering"
)

// ItemStore adapts DB to ordering.Store, ordering.BatchUpdater and
// ordering.ContainerStore.
type ItemStore struct {
	db *DB
}

// Items returns the ordering view of the database.
func (db *DB) Items() *ItemStore {
	return &ItemStore{db: db}
}

var (
	_ ordering.Store          = (*ItemStore)(nil)
	_ ordering.BatchUpdater   = (*ItemStore)(nil)
	_ ordering.ContainerStore = (*ItemStore)(nil)
)

// filterClause renders f against column. Any adds nothing; IsNull renders
// IS NULL rather than "= NULL", which would never match.
func filterClause(column string, f ordering.Filter) (string, []any) {
	if v, ok := f.Value(); ok {
		return ` AND ` + column + ` = ?`, []any{v}
	}
	if f.IsNull() {
		return ` AND ` + column + ` IS NULL`, nil
	}
	return "", nil
}

// buildQuery turns an ordering.Query into SQL.
func buildQuery(q ordering.Query) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT ` + itemColumns + ` FROM items WHERE project = ?`)
	args := []any{q.Scope}

	for _, f := range []struct {
		column string
		filter ordering.Filter
	}{
		{"parent_id", q.Parent},
		{"container_id", q.Container},
	} {
		clause, a := filterClause(f.column, f.filter)
		b.WriteString(clause)
		args = append(args, a...)
	}

	if q.Descending {
		b.WriteString(` ORDER BY sort_order DESC, created_at DESC, id DESC`)
	} else {
		b.WriteString(` ORDER BY sort_order ASC, created_at ASC, id ASC`)
	}
	if q.Limit > 0 {
		b.WriteString(` LIMIT ?`)
		args = append(args, q.Limit)
	}
	return b.String(), args
}

// Query returns the items matching q.
func (s *ItemStore) Query(ctx context.Context, q ordering.Query) ([]model.Item, error) {
	query, args := buildQuery(q)
	return s.db.queryItems(ctx, query, args...)
}

// Get retrieves one item.
func (s *ItemStore) Get(ctx context.Context, id string) (*model.Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// Update applies a partial update: order, and/or parent plus container.
func (s *ItemStore) Update(ctx context.Context, id string, f ordering.Fields) error {
	sets := []string{`updated_at = ?`}
	args := []any{time.Now()}

	if f.Order != nil {
		sets = append(sets, `sort_order = ?`)
		args = append(args, *f.Order)
	}
	if f.Group != nil {
		sets = append(sets, `parent_id = ?`, `container_id = ?`)
		args = append(args, f.Group.ParentID, f.Group.ContainerID)
	}
	args = append(args, id)

	result, err := s.db.ExecContext(ctx, `UPDATE items SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return notFound(id)
	}
	return nil
}

// BatchUpdate writes all positions in one transaction. Either every row
// changes or none do; an unknown ID aborts the batch.
func (s *ItemStore) BatchUpdate(ctx context.Context, updates []ordering.Assignment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `UPDATE items SET sort_order = ?, updated_at = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare order update: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now()
	for _, u := range updates {
		result, err := stmt.ExecContext(ctx, u.Order, now, u.ID)
		if err != nil {
			return fmt.Errorf("failed to update order of %s: %w", u.ID, err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return notFound(u.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Container retrieves a container by ID.
func (s *ItemStore) Container(ctx context.Context, id string) (*model.Container, error) {
	return s.db.getContainer(ctx, id)
}
