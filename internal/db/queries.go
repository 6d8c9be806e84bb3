package db

import (
	"context"
	"fmt"

	"github.com/baiirun/backlog/internal/model"
)

// ListItems returns items filtered by project and/or status, grouped by
// container and parent and in board order within each group.
func (db *DB) ListItems(project string, status *model.Status) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`
	args := []any{}

	if project != "" {
		query += ` AND project = ?`
		args = append(args, project)
	}
	if status != nil {
		if !status.IsValid() {
			return nil, fmt.Errorf("invalid status: %s", *status)
		}
		query += ` AND status = ?`
		args = append(args, *status)
	}
	query += ` ORDER BY project, container_id NULLS FIRST, parent_id NULLS FIRST, sort_order ASC, created_at ASC, id ASC`

	return db.queryItems(context.Background(), query, args...)
}

// Children returns the direct children of an item in board order.
func (db *DB) Children(id string) ([]model.Item, error) {
	return db.queryItems(context.Background(), `
		SELECT `+itemColumns+` FROM items
		WHERE parent_id = ?
		ORDER BY container_id NULLS FIRST, sort_order ASC, created_at ASC, id ASC`, id)
}

// EnsureProject creates the project row if it doesn't exist.
func (db *DB) EnsureProject(name string) error {
	_, err := db.Exec(`
		INSERT OR IGNORE INTO projects (name, created_at, updated_at)
		VALUES (?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`, name)
	if err != nil {
		return fmt.Errorf("failed to ensure project: %w", err)
	}
	return nil
}

// ListProjects returns all project names from the projects table.
func (db *DB) ListProjects() ([]string, error) {
	rows, err := db.Query(`SELECT name FROM projects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, name)
	}
	return projects, rows.Err()
}

// queryItems is a helper to scan item rows.
func (db *DB) queryItems(ctx context.Context, query string, args ...any) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
