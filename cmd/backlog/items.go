package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/baiirun/backlog/internal/config"
	"github.com/baiirun/backlog/internal/model"
	"github.com/baiirun/backlog/internal/ordering"
)

var (
	flagAddType        string
	flagAddParent      string
	flagAddContainer   string
	flagAddPriority    int
	flagAddDescription string
	flagListStatus     string
	flagInitConfig     bool
	flagEditTitle      string
	flagEditDesc       string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the backlog database",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := dbPath()
		if err != nil {
			return err
		}
		database, err := openDB()
		if err != nil {
			return err
		}
		defer func() { _ = database.Close() }()

		if flagInitConfig {
			if err := config.WriteDefault(config.ProjectConfigPath(".")); err != nil {
				return err
			}
		}
		if !flagJSON {
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized backlog database at %s\n", path)
		}
		return nil
	},
}

// addOptions carries add's flags.
type addOptions struct {
	Type        model.ItemType
	Parent      *string
	Container   *string
	Priority    int
	Description string
}

// runAdd creates an item at the end of its group.
func runAdd(ctx context.Context, a *app, title string, opts addOptions) (*model.Item, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("title must not be empty")
	}
	if !opts.Type.IsValid() {
		return nil, fmt.Errorf("invalid item type: %s (use epic, user_story, task or bug)", opts.Type)
	}
	if opts.Priority < 1 || opts.Priority > 3 {
		return nil, fmt.Errorf("invalid priority %d: must be 1, 2 or 3", opts.Priority)
	}

	now := time.Now()
	item := &model.Item{
		ID:          model.GenerateID(opts.Type),
		Project:     a.project,
		Type:        opts.Type,
		Title:       title,
		Description: opts.Description,
		Status:      model.StatusBacklog,
		Priority:    opts.Priority,
		ParentID:    opts.Parent,
		ContainerID: opts.Container,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	g := ordering.GroupOf(*item)
	if err := a.mover.CheckPlacement(ctx, *item, g); err != nil {
		return nil, err
	}
	order, err := a.mover.Append(ctx, g)
	if err != nil {
		return nil, err
	}
	item.Order = order

	if err := a.db.CreateItem(item); err != nil {
		return nil, err
	}
	if err := a.db.AddLog(item.ID, "Created in "+g.String()); err != nil {
		return nil, err
	}
	return item, nil
}

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create an item at the end of its group",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			item, err := runAdd(cmd.Context(), a, strings.Join(args, " "), addOptions{
				Type:        model.ItemType(flagAddType),
				Parent:      model.StringPtr(flagAddParent),
				Container:   model.StringPtr(flagAddContainer),
				Priority:    flagAddPriority,
				Description: flagAddDescription,
			})
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(itemJSON(*item))
			}
			fmt.Fprintln(a.out, item.ID)
			return nil
		})
	},
}

// runList prints the project's items grouped the way they are ordered.
func runList(a *app, status *model.Status) error {
	items, err := a.db.ListItems(a.project, status)
	if err != nil {
		return err
	}
	if a.json {
		return a.printJSON(itemsJSON(items))
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No items")
		return nil
	}

	var last ordering.Key
	for i, item := range items {
		key := ordering.KeyOf(item)
		if i == 0 || key != last {
			if i > 0 {
				fmt.Fprintln(a.out)
			}
			fmt.Fprintf(a.out, "%s\n", ordering.GroupOf(item))
			last = key
		}
		fmt.Fprintf(a.out, "  %-12s %6d  [%s] %s: %s\n", item.ID, item.Order, item.Status, item.Type, item.Title)
	}
	return nil
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List items in order, grouped by parent and container",
	RunE: func(cmd *cobra.Command, args []string) error {
		var status *model.Status
		if flagListStatus != "" {
			s := model.Status(flagListStatus)
			status = &s
		}
		return withApp(cmd, func(a *app) error {
			return runList(a, status)
		})
	},
}

func runShow(a *app, id string) error {
	item, err := a.db.GetItem(id)
	if err != nil {
		return err
	}
	children, err := a.db.Children(id)
	if err != nil {
		return err
	}
	logs, err := a.db.GetLogs(id)
	if err != nil {
		return err
	}

	if a.json {
		detail := ItemDetailJSON{ItemJSON: itemJSON(*item), Children: itemsJSON(children), Logs: []LogJSON{}}
		for _, l := range logs {
			detail.Logs = append(detail.Logs, LogJSON{Message: l.Message, CreatedAt: l.CreatedAt})
		}
		return a.printJSON(detail)
	}

	fmt.Fprintf(a.out, "%s  %s\n", item.ID, item.Title)
	fmt.Fprintf(a.out, "Type:      %s\n", item.Type)
	fmt.Fprintf(a.out, "Status:    %s\n", item.Status)
	fmt.Fprintf(a.out, "Priority:  %d\n", item.Priority)
	fmt.Fprintf(a.out, "Group:     %s\n", ordering.GroupOf(*item))
	fmt.Fprintf(a.out, "Order:     %d\n", item.Order)
	fmt.Fprintf(a.out, "Created:   %s\n", humanize.Time(item.CreatedAt))
	fmt.Fprintf(a.out, "Updated:   %s\n", humanize.Time(item.UpdatedAt))
	if item.Description != "" {
		fmt.Fprintf(a.out, "\n%s\n", item.Description)
	}
	if len(children) > 0 {
		fmt.Fprintln(a.out, "\nChildren:")
		for _, c := range children {
			fmt.Fprintf(a.out, "  %-12s [%s] %s\n", c.ID, c.Status, c.Title)
		}
	}
	if len(logs) > 0 {
		fmt.Fprintln(a.out, "\nLog:")
		for _, l := range logs {
			fmt.Fprintf(a.out, "  %s  %s\n", humanize.Time(l.CreatedAt), l.Message)
		}
	}
	return nil
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show item details, children and log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			return runShow(a, args[0])
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Set an item's status (backlog, todo, in_progress, review, done)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			status := model.Status(args[1])
			if err := a.db.UpdateStatus(args[0], status); err != nil {
				return err
			}
			if err := a.db.AddLog(args[0], "Status set to "+string(status)); err != nil {
				return err
			}
			if !a.json {
				fmt.Fprintf(a.out, "%s -> %s\n", args[0], status)
			}
			return nil
		})
	},
}

var logCmd = &cobra.Command{
	Use:   "log <id> <message>",
	Short: "Add a log entry to an item",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if _, err := a.db.GetItem(args[0]); err != nil {
				return err
			}
			return a.db.AddLog(args[0], strings.Join(args[1:], " "))
		})
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change an item's title or description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleSet := cmd.Flags().Changed("title")
		descSet := cmd.Flags().Changed("description")
		if !titleSet && !descSet {
			return fmt.Errorf("nothing to edit: pass --title and/or --description")
		}
		return withApp(cmd, func(a *app) error {
			if titleSet {
				if strings.TrimSpace(flagEditTitle) == "" {
					return fmt.Errorf("title must not be empty")
				}
				if err := a.db.SetTitle(args[0], flagEditTitle); err != nil {
					return err
				}
			}
			if descSet {
				if err := a.db.SetDescription(args[0], flagEditDesc); err != nil {
					return err
				}
			}
			return a.db.AddLog(args[0], "Edited")
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an item that has no children",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if err := a.db.DeleteItem(args[0]); err != nil {
				return err
			}
			if !a.json {
				fmt.Fprintf(a.out, "Deleted %s\n", args[0])
			}
			return nil
		})
	},
}

func init() {
	initCmd.Flags().BoolVar(&flagInitConfig, "write-config", false, "also write ./.backlog/config.yaml with defaults")

	addCmd.Flags().StringVarP(&flagAddType, "type", "t", string(model.ItemTypeTask), "item type (epic, user_story, task, bug)")
	addCmd.Flags().StringVar(&flagAddParent, "parent", "", "parent item ID")
	addCmd.Flags().StringVar(&flagAddContainer, "container", "", "sprint or column ID")
	addCmd.Flags().IntVar(&flagAddPriority, "priority", 2, "priority (1=high, 2=medium, 3=low)")
	addCmd.Flags().StringVarP(&flagAddDescription, "description", "d", "", "item description")

	listCmd.Flags().StringVar(&flagListStatus, "status", "", "only items with this status")

	editCmd.Flags().StringVar(&flagEditTitle, "title", "", "new title")
	editCmd.Flags().StringVarP(&flagEditDesc, "description", "d", "", "new description")
}
