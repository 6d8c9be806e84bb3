package model

// CanNest reports whether an item of type child may sit directly under an
// item of type parent. Epics hold user stories; user stories hold tasks and
// bugs. Nothing nests under tasks or bugs.
func CanNest(parent, child ItemType) bool {
	switch parent {
	case ItemTypeEpic:
		return child == ItemTypeUserStory
	case ItemTypeUserStory:
		return child == ItemTypeTask || child == ItemTypeBug
	}
	return false
}

// ParentIndex maps each item ID to its parent ID (nil for top level).
func ParentIndex(items []Item) map[string]*string {
	parents := make(map[string]*string, len(items))
	for _, it := range items {
		parents[it.ID] = it.ParentID
	}
	return parents
}

// IsDescendantOf reports whether itemID sits somewhere below
// candidateAncestorID in the parent chain. An item is not its own
// descendant. The walk stops on IDs missing from parents and on cycles
// already present in the data.
func IsDescendantOf(candidateAncestorID, itemID string, parents map[string]*string) bool {
	seen := map[string]bool{itemID: true}
	cur := parents[itemID]
	for cur != nil {
		if *cur == candidateAncestorID {
			return true
		}
		if seen[*cur] {
			return false
		}
		seen[*cur] = true
		cur = parents[*cur]
	}
	return false
}
