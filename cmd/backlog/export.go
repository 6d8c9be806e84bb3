package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/baiirun/backlog/internal/ordering"
)

// Snapshot is the exported board: containers and every group in order.
type Snapshot struct {
	Project    string          `json:"project" yaml:"project"`
	ExportedAt time.Time       `json:"exported_at" yaml:"exported_at"`
	Containers []ContainerJSON `json:"containers" yaml:"containers"`
	Groups     []GroupSnapshot `json:"groups" yaml:"groups"`
}

type GroupSnapshot struct {
	Group string     `json:"group" yaml:"group"`
	Items []ItemJSON `json:"items" yaml:"items"`
}

func buildSnapshot(a *app) (*Snapshot, error) {
	containers, err := a.db.ListContainers(a.project, nil)
	if err != nil {
		return nil, err
	}
	items, err := a.db.ListItems(a.project, nil)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Project:    a.project,
		ExportedAt: time.Now().UTC(),
		Containers: []ContainerJSON{},
		Groups:     []GroupSnapshot{},
	}
	for _, c := range containers {
		snap.Containers = append(snap.Containers, containerJSON(c))
	}

	index := map[ordering.Key]int{}
	for _, item := range items {
		key := ordering.KeyOf(item)
		i, ok := index[key]
		if !ok {
			i = len(snap.Groups)
			index[key] = i
			snap.Groups = append(snap.Groups, GroupSnapshot{Group: ordering.GroupOf(item).String()})
		}
		snap.Groups[i].Items = append(snap.Groups[i].Items, itemJSON(item))
	}
	return snap, nil
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the project's board as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			snap, err := buildSnapshot(a)
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(snap)
			}
			enc := yaml.NewEncoder(a.out)
			enc.SetIndent(2)
			if err := enc.Encode(snap); err != nil {
				return fmt.Errorf("failed to encode YAML: %w", err)
			}
			return enc.Close()
		})
	},
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			projects, err := a.db.ListProjects()
			if err != nil {
				return err
			}
			if a.json {
				if projects == nil {
					projects = []string{}
				}
				return a.printJSON(projects)
			}
			for _, p := range projects {
				fmt.Fprintln(a.out, p)
			}
			return nil
		})
	},
}
