package main

import (
	"time"

	"github.com/baiirun/backlog/internal/model"
)

// ItemJSON is the --json and export shape of an item.
type ItemJSON struct {
	ID          string    `json:"id" yaml:"id"`
	Project     string    `json:"project" yaml:"project"`
	Type        string    `json:"type" yaml:"type"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Status      string    `json:"status" yaml:"status"`
	Priority    int       `json:"priority" yaml:"priority"`
	Parent      *string   `json:"parent" yaml:"parent,omitempty"`
	Container   *string   `json:"container" yaml:"container,omitempty"`
	Order       int32     `json:"order" yaml:"order"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

func itemJSON(item model.Item) ItemJSON {
	return ItemJSON{
		ID:          item.ID,
		Project:     item.Project,
		Type:        string(item.Type),
		Title:       item.Title,
		Description: item.Description,
		Status:      string(item.Status),
		Priority:    item.Priority,
		Parent:      item.ParentID,
		Container:   item.ContainerID,
		Order:       item.Order,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func itemsJSON(items []model.Item) []ItemJSON {
	out := make([]ItemJSON, 0, len(items))
	for _, item := range items {
		out = append(out, itemJSON(item))
	}
	return out
}

type LogJSON struct {
	Message   string    `json:"message" yaml:"message"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// ItemDetailJSON is the --json shape of show.
type ItemDetailJSON struct {
	ItemJSON
	Children []ItemJSON `json:"children"`
	Logs     []LogJSON  `json:"logs"`
}

type ContainerJSON struct {
	ID        string     `json:"id" yaml:"id"`
	Kind      string     `json:"kind" yaml:"kind"`
	Name      string     `json:"name" yaml:"name"`
	Goal      string     `json:"goal,omitempty" yaml:"goal,omitempty"`
	WIPLimit  int        `json:"wip_limit" yaml:"wip_limit"`
	StartDate *time.Time `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty" yaml:"end_date,omitempty"`
}

func containerJSON(c model.Container) ContainerJSON {
	return ContainerJSON{
		ID:        c.ID,
		Kind:      string(c.Kind),
		Name:      c.Name,
		Goal:      c.Goal,
		WIPLimit:  c.WIPLimit,
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
	}
}

// MoveJSON is the --json shape of move.
type MoveJSON struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Order     int32  `json:"order"`
	Final     int32  `json:"final_order"`
	Saturated bool   `json:"saturated"`
}

// ReindexJSON reports one reindexed group.
type ReindexJSON struct {
	Group     string `json:"group"`
	Items     int    `json:"items"`
	Rewritten int    `json:"rewritten"`
}
