package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/baiirun/backlog/internal/model"
	"github.com/baiirun/backlog/internal/ordering"
)

const itemColumns = `id, project, type, title, description, status, priority, parent_id, container_id, sort_order, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*model.Item, error) {
	item := &model.Item{}
	var description, parentID, containerID sql.NullString
	if err := row.Scan(
		&item.ID, &item.Project, &item.Type, &item.Title, &description,
		&item.Status, &item.Priority, &parentID, &containerID, &item.Order,
		&item.CreatedAt, &item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	item.Description = description.String
	if parentID.Valid {
		item.ParentID = &parentID.String
	}
	if containerID.Valid {
		item.ContainerID = &containerID.String
	}
	return item, nil
}

func notFound(id string) error {
	return fmt.Errorf("item %w: %s (use 'backlog list' to see available items)", ordering.ErrNotFound, id)
}

// CreateItem inserts a new item into the database.
// The caller assigns item.Order, normally from ordering.Mover.Append.
// If the item has a project, it will be auto-created if it doesn't exist.
func (db *DB) CreateItem(item *model.Item) error {
	if !item.Type.IsValid() {
		return fmt.Errorf("invalid item type: %s", item.Type)
	}
	if !item.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", item.Status)
	}
	if item.Order < 1 {
		return fmt.Errorf("invalid order %d: must be between 1 and %d", item.Order, ordering.MaxOrder)
	}

	// Auto-create project if specified
	if item.Project != "" {
		if err := db.EnsureProject(item.Project); err != nil {
			return err
		}
	}

	_, err := db.Exec(`
		INSERT INTO items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Project, item.Type, item.Title, item.Description,
		item.Status, item.Priority, item.ParentID, item.ContainerID, item.Order,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// GetItem retrieves an item by ID.
func (db *DB) GetItem(id string) (*model.Item, error) {
	row := db.QueryRow(`SELECT `+itemColumns+` FROM items WHERE id = ?`, id)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// UpdateStatus changes an item's status. Status is not part of the
// ordering group, so the item keeps its position.
func (db *DB) UpdateStatus(id string, status model.Status) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid status: %s", status)
	}

	result, err := db.Exec(`
		UPDATE items SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return notFound(id)
	}
	return nil
}

// SetDescription replaces an item's description entirely.
func (db *DB) SetDescription(id string, text string) error {
	result, err := db.Exec(`
		UPDATE items
		SET description = ?,
		    updated_at = ?
		WHERE id = ?`,
		text, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set description: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return notFound(id)
	}
	return nil
}

// SetTitle replaces an item's title.
func (db *DB) SetTitle(id string, title string) error {
	result, err := db.Exec(`
		UPDATE items
		SET title = ?,
		    updated_at = ?
		WHERE id = ?`,
		title, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set title: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return notFound(id)
	}
	return nil
}

// DeleteItem removes an item and its logs. Items with children are refused:
// re-homing children would change their group without a fresh order.
// Siblings are left alone; the gap is harmless.
func (db *DB) DeleteItem(id string) error {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM items WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check item: %w", err)
	}
	if count == 0 {
		return notFound(id)
	}

	var children int
	err = db.QueryRow(`SELECT COUNT(*) FROM items WHERE parent_id = ?`, id).Scan(&children)
	if err != nil {
		return fmt.Errorf("failed to count children: %w", err)
	}
	if children > 0 {
		return fmt.Errorf("item %s has %d children; move or delete them first", id, children)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM logs WHERE item_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete logs: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
