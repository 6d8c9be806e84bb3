package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/baiirun/backlog/internal/model"
	"github.com/baiirun/backlog/internal/ordering"
)

const containerColumns = `id, project, kind, name, goal, wip_limit, start_date, end_date, created_at`

// CreateContainer inserts a sprint or board column.
func (db *DB) CreateContainer(c *model.Container) error {
	if !c.Kind.IsValid() {
		return fmt.Errorf("invalid container kind: %s", c.Kind)
	}
	if c.WIPLimit < 0 {
		return fmt.Errorf("invalid WIP limit %d", c.WIPLimit)
	}
	if c.Project != "" {
		if err := db.EnsureProject(c.Project); err != nil {
			return err
		}
	}

	_, err := db.Exec(`
		INSERT INTO containers (`+containerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Project, c.Kind, c.Name, c.Goal, c.WIPLimit, c.StartDate, c.EndDate, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create container: %w", err)
	}
	return nil
}

// GetContainer retrieves a container by ID.
func (db *DB) GetContainer(id string) (*model.Container, error) {
	return db.getContainer(context.Background(), id)
}

func (db *DB) getContainer(ctx context.Context, id string) (*model.Container, error) {
	row := db.QueryRowContext(ctx, `SELECT `+containerColumns+` FROM containers WHERE id = ?`, id)
	c, err := scanContainer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("container %w: %s (use 'backlog container list')", ordering.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get container: %w", err)
	}
	return c, nil
}

// ListContainers returns a project's containers, optionally of one kind,
// oldest first.
func (db *DB) ListContainers(project string, kind *model.ContainerKind) ([]model.Container, error) {
	query := `SELECT ` + containerColumns + ` FROM containers WHERE project = ?`
	args := []any{project}
	if kind != nil {
		query += ` AND kind = ?`
		args = append(args, *kind)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query containers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Container
	for rows.Next() {
		c, err := scanContainer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan container: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// CountInContainer returns how many items sit in a container.
func (db *DB) CountInContainer(id string) (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM items WHERE container_id = ?`, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return n, nil
}

func scanContainer(row scanner) (*model.Container, error) {
	c := &model.Container{}
	var goal sql.NullString
	var start, end sql.NullTime
	if err := row.Scan(&c.ID, &c.Project, &c.Kind, &c.Name, &goal, &c.WIPLimit, &start, &end, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Goal = goal.String
	if start.Valid {
		c.StartDate = &start.Time
	}
	if end.Valid {
		c.EndDate = &end.Time
	}
	return c, nil
}
