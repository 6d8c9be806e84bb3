package model

import "testing"

func ptr(s string) *string { return &s }

func TestCanNest(t *testing.T) {
	tests := []struct {
		parent, child ItemType
		want          bool
	}{
		{ItemTypeEpic, ItemTypeUserStory, true},
		{ItemTypeEpic, ItemTypeTask, false},
		{ItemTypeEpic, ItemTypeEpic, false},
		{ItemTypeUserStory, ItemTypeTask, true},
		{ItemTypeUserStory, ItemTypeBug, true},
		{ItemTypeUserStory, ItemTypeUserStory, false},
		{ItemTypeTask, ItemTypeBug, false},
		{ItemTypeBug, ItemTypeTask, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.parent)+">"+string(tt.child), func(t *testing.T) {
			if got := CanNest(tt.parent, tt.child); got != tt.want {
				t.Errorf("CanNest(%s, %s) = %v, want %v", tt.parent, tt.child, got, tt.want)
			}
		})
	}
}

func TestIsDescendantOf(t *testing.T) {
	// epic -> story -> task, plus an unrelated top-level bug
	parents := map[string]*string{
		"ep-1": nil,
		"us-1": ptr("ep-1"),
		"ts-1": ptr("us-1"),
		"bg-1": nil,
	}

	tests := []struct {
		name     string
		ancestor string
		item     string
		want     bool
	}{
		{"direct child", "ep-1", "us-1", true},
		{"grandchild", "ep-1", "ts-1", true},
		{"reverse", "ts-1", "ep-1", false},
		{"self", "ep-1", "ep-1", false},
		{"unrelated", "bg-1", "ts-1", false},
		{"unknown item", "ep-1", "missing", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDescendantOf(tt.ancestor, tt.item, parents); got != tt.want {
				t.Errorf("IsDescendantOf(%s, %s) = %v, want %v", tt.ancestor, tt.item, got, tt.want)
			}
		})
	}
}

func TestIsDescendantOf_TerminatesOnCorruptCycle(t *testing.T) {
	parents := map[string]*string{
		"a": ptr("b"),
		"b": ptr("c"),
		"c": ptr("b"),
	}
	if IsDescendantOf("z", "a", parents) {
		t.Error("expected false for ancestor outside the loop")
	}
	if !IsDescendantOf("c", "a", parents) {
		t.Error("expected c to be found above a")
	}
}

func TestParentIndex(t *testing.T) {
	items := []Item{
		{ID: "ep-1"},
		{ID: "us-1", ParentID: ptr("ep-1")},
	}
	idx := ParentIndex(items)
	if len(idx) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(idx))
	}
	if idx["ep-1"] != nil {
		t.Error("epic should have nil parent")
	}
	if idx["us-1"] == nil || *idx["us-1"] != "ep-1" {
		t.Errorf("story parent = %v, want ep-1", idx["us-1"])
	}
}
