package db

import (
	"testing"

	"github.com/baiirun/backlog/internal/model"
)

func TestLogs_KeepInsertionOrder(t *testing.T) {
	db := setupTestDB(t)
	item := createTestItem(t, db, "test", "Card", model.ItemTypeTask, nil, nil, 1000)
	other := createTestItem(t, db, "test", "Other", model.ItemTypeTask, nil, nil, 2000)

	history := []string{
		"Created in test/parent=null/container=null",
		"Moved from test/parent=null/container=null to test/parent=null/container=co-1",
		"Status set to in_progress",
	}
	for _, msg := range history {
		if err := db.AddLog(item.ID, msg); err != nil {
			t.Fatalf("failed to add log %q: %v", msg, err)
		}
	}
	if err := db.AddLog(other.ID, "unrelated"); err != nil {
		t.Fatalf("failed to add log: %v", err)
	}

	logs, err := db.GetLogs(item.ID)
	if err != nil {
		t.Fatalf("failed to get logs: %v", err)
	}
	if len(logs) != len(history) {
		t.Fatalf("expected %d logs, got %d", len(history), len(logs))
	}
	for i, l := range logs {
		if l.Message != history[i] {
			t.Errorf("log %d = %q, want %q", i, l.Message, history[i])
		}
		if l.ItemID != item.ID {
			t.Errorf("log %d belongs to %s", i, l.ItemID)
		}
	}
}

func TestLogs_NoneForNewItem(t *testing.T) {
	db := setupTestDB(t)
	item := createTestItem(t, db, "test", "Fresh", model.ItemTypeBug, nil, nil, 1000)

	logs, err := db.GetLogs(item.ID)
	if err != nil {
		t.Fatalf("failed to get logs: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("expected no logs, got %v", logs)
	}
}

func TestLogs_RemovedWithItem(t *testing.T) {
	db := setupTestDB(t)
	item := createTestItem(t, db, "test", "Doomed", model.ItemTypeTask, nil, nil, 1000)
	if err := db.AddLog(item.ID, "about to go"); err != nil {
		t.Fatalf("failed to add log: %v", err)
	}

	if err := db.DeleteItem(item.ID); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	logs, err := db.GetLogs(item.ID)
	if err != nil {
		t.Fatalf("failed to get logs: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("expected logs deleted with item, got %d", len(logs))
	}
}
