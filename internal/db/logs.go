package db

import (
	"fmt"
	"time"

	"github.com/baiirun/backlog/internal/model"
)

// AddLog appends an activity entry to an item.
func (db *DB) AddLog(itemID, message string) error {
	_, err := db.Exec(`
		INSERT INTO logs (item_id, message, created_at) VALUES (?, ?, ?)`,
		itemID, message, time.Now())
	if err != nil {
		return fmt.Errorf("failed to add log: %w", err)
	}
	return nil
}

// GetLogs returns an item's activity entries, oldest first.
func (db *DB) GetLogs(itemID string) ([]model.Log, error) {
	rows, err := db.Query(`
		SELECT id, item_id, message, created_at FROM logs
		WHERE item_id = ?
		ORDER BY created_at ASC, id ASC`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var logs []model.Log
	for rows.Next() {
		var l model.Log
		if err := rows.Scan(&l.ID, &l.ItemID, &l.Message, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
