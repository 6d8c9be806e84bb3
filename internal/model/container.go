package model

import "time"

type ContainerKind string

const (
	ContainerSprint ContainerKind = "sprint"
	ContainerColumn ContainerKind = "column"
)

// IsValid returns true if the container kind is recognized.
func (k ContainerKind) IsValid() bool {
	return k == ContainerSprint || k == ContainerColumn
}

// Container is the secondary grouping axis next to the parent: a sprint or
// a board column. WIPLimit of 0 means unlimited.
type Container struct {
	ID        string
	Project   string
	Kind      ContainerKind
	Name      string
	Goal      string
	WIPLimit  int
	StartDate *time.Time
	EndDate   *time.Time
	CreatedAt time.Time
}

// GenerateContainerID returns a short random container ID ("sp-" or "co-").
func GenerateContainerID(k ContainerKind) string {
	if k == ContainerSprint {
		return "sp-" + shortUUID()
	}
	return "co-" + shortUUID()
}
