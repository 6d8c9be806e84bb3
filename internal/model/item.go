package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ItemType string

const (
	ItemTypeEpic      ItemType = "epic"
	ItemTypeUserStory ItemType = "user_story"
	ItemTypeTask      ItemType = "task"
	ItemTypeBug       ItemType = "bug"
)

// IsValid returns true if the item type is recognized.
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeEpic, ItemTypeUserStory, ItemTypeTask, ItemTypeBug:
		return true
	}
	return false
}

type Status string

const (
	StatusBacklog    Status = "backlog"
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

// IsValid returns true if the status is recognized.
func (s Status) IsValid() bool {
	switch s {
	case StatusBacklog, StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

// Item is a unit of work (epic, story, task, bug) or a board card.
// ParentID and ContainerID together decide which ordering group the item
// sorts in; nil is a value of its own, not a wildcard.
type Item struct {
	ID          string
	Project     string
	Type        ItemType
	Title       string
	Description string
	Status      Status
	Priority    int
	ParentID    *string
	ContainerID *string
	Order       int32
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Log struct {
	ID        int64
	ItemID    string
	Message   string
	CreatedAt time.Time
}

var idPrefixes = map[ItemType]string{
	ItemTypeEpic:      "ep-",
	ItemTypeUserStory: "us-",
	ItemTypeTask:      "ts-",
	ItemTypeBug:       "bg-",
}

// GenerateID returns a short random ID such as "ts-1a2b3c4d".
func GenerateID(t ItemType) string {
	prefix, ok := idPrefixes[t]
	if !ok {
		prefix = "it-"
	}
	return prefix + shortUUID()
}

func shortUUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// StringPtr returns nil for an empty string, otherwise a pointer to s.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string, or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
