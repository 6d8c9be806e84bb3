package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/baiirun/backlog/internal/model"
	"github.com/baiirun/backlog/internal/ordering"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}

	if err := db.Init(); err != nil {
		t.Fatalf("failed to init db: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

var seq int

// createTestItem inserts an item with an explicit order; created_at
// advances by one second per call so tie-breaks are deterministic.
func createTestItem(t *testing.T, db *DB, project, title string, typ model.ItemType, parent, container *string, order int32) *model.Item {
	t.Helper()
	seq++
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(seq) * time.Second)
	item := &model.Item{
		ID:          model.GenerateID(typ),
		Project:     project,
		Type:        typ,
		Title:       title,
		Status:      model.StatusBacklog,
		Priority:    2,
		ParentID:    parent,
		ContainerID: container,
		Order:       order,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	if err := db.CreateItem(item); err != nil {
		t.Fatalf("failed to create item: %v", err)
	}
	return item
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "test.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Should create parent directories
	if _, err := os.Stat(filepath.Dir(path)); os.IsNotExist(err) {
		t.Error("expected directory to be created")
	}
}

func TestInit_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Init(); err != nil {
		t.Fatalf("second init failed: %v", err)
	}
}

func TestDefaultPath(t *testing.T) {
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("failed to get default path: %v", err)
	}

	if !filepath.IsAbs(path) {
		t.Errorf("expected absolute path, got %q", path)
	}

	if !strings.HasSuffix(path, filepath.Join(".backlog", "backlog.db")) {
		t.Errorf("expected path to end with .backlog/backlog.db, got %q", path)
	}
}

func TestCreateItem(t *testing.T) {
	db := setupTestDB(t)

	item := createTestItem(t, db, "test", "Test task", model.ItemTypeTask, nil, nil, 1000)

	got, err := db.GetItem(item.ID)
	if err != nil {
		t.Fatalf("failed to get item: %v", err)
	}

	if got.Title != item.Title {
		t.Errorf("title = %q, want %q", got.Title, item.Title)
	}
	if got.Project != item.Project {
		t.Errorf("project = %q, want %q", got.Project, item.Project)
	}
	if got.Order != 1000 {
		t.Errorf("order = %d, want 1000", got.Order)
	}
	if got.ParentID != nil || got.ContainerID != nil {
		t.Errorf("expected nil parent and container, got %v %v", got.ParentID, got.ContainerID)
	}
	if !got.CreatedAt.Equal(item.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, item.CreatedAt)
	}

	projects, _ := db.ListProjects()
	if len(projects) != 1 || projects[0] != "test" {
		t.Errorf("projects = %v, want [test]", projects)
	}
}

func TestCreateItem_Invalid(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		name string
		item model.Item
	}{
		{"type", model.Item{ID: "x-1", Project: "test", Type: "invalid", Status: model.StatusBacklog, Order: 1000}},
		{"status", model.Item{ID: "x-2", Project: "test", Type: model.ItemTypeTask, Status: "invalid", Order: 1000}},
		{"zero order", model.Item{ID: "x-3", Project: "test", Type: model.ItemTypeTask, Status: model.StatusBacklog}},
		{"negative order", model.Item{ID: "x-4", Project: "test", Type: model.ItemTypeTask, Status: model.StatusBacklog, Order: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := tt.item
			if err := db.CreateItem(&item); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestGetItem_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetItem("nonexistent")
	if err == nil {
		t.Fatal("expected error for nonexistent item")
	}
	if !errors.Is(err, ordering.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	item := createTestItem(t, db, "test", "Test", model.ItemTypeTask, nil, nil, 1000)

	if err := db.UpdateStatus(item.ID, model.StatusInProgress); err != nil {
		t.Fatalf("failed to update status: %v", err)
	}

	got, _ := db.GetItem(item.ID)
	if got.Status != model.StatusInProgress {
		t.Errorf("status = %q, want %q", got.Status, model.StatusInProgress)
	}
	if got.Order != 1000 {
		t.Errorf("status change moved the item: order = %d", got.Order)
	}
}

func TestUpdateStatus_Errors(t *testing.T) {
	db := setupTestDB(t)

	if err := db.UpdateStatus("nonexistent", model.StatusDone); err == nil {
		t.Error("expected error for nonexistent item")
	}
	if err := db.UpdateStatus("ts-123456", model.Status("invalid")); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestSetTitleAndDescription(t *testing.T) {
	db := setupTestDB(t)
	item := createTestItem(t, db, "test", "Old", model.ItemTypeTask, nil, nil, 1000)

	if err := db.SetTitle(item.ID, "New"); err != nil {
		t.Fatalf("failed to set title: %v", err)
	}
	if err := db.SetDescription(item.ID, "Details"); err != nil {
		t.Fatalf("failed to set description: %v", err)
	}

	got, _ := db.GetItem(item.ID)
	if got.Title != "New" {
		t.Errorf("title = %q, want %q", got.Title, "New")
	}
	if got.Description != "Details" {
		t.Errorf("description = %q, want %q", got.Description, "Details")
	}

	if err := db.SetTitle("nonexistent", "x"); err == nil {
		t.Error("expected error for nonexistent item")
	}
}

func TestDeleteItem(t *testing.T) {
	db := setupTestDB(t)
	a := createTestItem(t, db, "test", "A", model.ItemTypeTask, nil, nil, 1000)
	b := createTestItem(t, db, "test", "B", model.ItemTypeTask, nil, nil, 2000)
	c := createTestItem(t, db, "test", "C", model.ItemTypeTask, nil, nil, 3000)
	if err := db.AddLog(b.ID, "created"); err != nil {
		t.Fatalf("failed to add log: %v", err)
	}

	if err := db.DeleteItem(b.ID); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}

	if _, err := db.GetItem(b.ID); err == nil {
		t.Error("expected deleted item to be gone")
	}
	logs, _ := db.GetLogs(b.ID)
	if len(logs) != 0 {
		t.Errorf("expected logs to be deleted, got %d", len(logs))
	}

	// Siblings keep their positions; the gap is harmless.
	gotA, _ := db.GetItem(a.ID)
	gotC, _ := db.GetItem(c.ID)
	if gotA.Order != 1000 || gotC.Order != 3000 {
		t.Errorf("siblings moved: %d, %d", gotA.Order, gotC.Order)
	}
}

func TestDeleteItem_WithChildren(t *testing.T) {
	db := setupTestDB(t)
	epic := createTestItem(t, db, "test", "Epic", model.ItemTypeEpic, nil, nil, 1000)
	createTestItem(t, db, "test", "Story", model.ItemTypeUserStory, &epic.ID, nil, 1000)

	if err := db.DeleteItem(epic.ID); err == nil {
		t.Error("expected error deleting an item with children")
	}
}

func TestDeleteItem_NotFound(t *testing.T) {
	db := setupTestDB(t)
	if err := db.DeleteItem("nonexistent"); err == nil {
		t.Error("expected error for nonexistent item")
	}
}

func TestSortOrderConstraint(t *testing.T) {
	db := setupTestDB(t)
	item := createTestItem(t, db, "test", "A", model.ItemTypeTask, nil, nil, 1000)

	_, err := db.Exec(`UPDATE items SET sort_order = 0 WHERE id = ?`, item.ID)
	if err == nil {
		t.Error("expected CHECK constraint to reject order 0")
	}
}
