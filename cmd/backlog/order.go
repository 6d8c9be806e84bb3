package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baiirun/backlog/internal/model"
	"github.com/baiirun/backlog/internal/ordering"
)

var (
	flagMoveParent       string
	flagMoveContainer    string
	flagMoveTopLevel     bool
	flagMoveUnassigned   bool
	flagReindexParent    string
	flagReindexContainer string
	flagReindexAll       bool
)

// moveOptions picks the destination relative to the item's current group.
// Unset fields keep the current value.
type moveOptions struct {
	Parent     *string
	Container  *string
	TopLevel   bool
	Unassigned bool
}

func (o moveOptions) validate() error {
	if o.Parent != nil && o.TopLevel {
		return fmt.Errorf("--parent and --top-level are mutually exclusive")
	}
	if o.Container != nil && o.Unassigned {
		return fmt.Errorf("--container and --unassigned are mutually exclusive")
	}
	return nil
}

// destination applies o to the item's current group.
func (o moveOptions) destination(item model.Item) ordering.Group {
	dest := ordering.GroupOf(item)
	switch {
	case o.TopLevel:
		dest.ParentID = nil
	case o.Parent != nil:
		dest.ParentID = o.Parent
	}
	switch {
	case o.Unassigned:
		dest.ContainerID = nil
	case o.Container != nil:
		dest.ContainerID = o.Container
	}
	return dest
}

// runMove moves an item to the end of its destination group. On a partial
// failure the result is still returned alongside the error.
func runMove(ctx context.Context, a *app, id string, opts moveOptions) (*ordering.MoveResult, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	item, err := a.db.GetItem(id)
	if err != nil {
		return nil, err
	}
	if item.Project != a.project {
		return nil, fmt.Errorf("%w: %s is in %q, not %q", ordering.ErrScopeMismatch, id, item.Project, a.project)
	}

	res, err := a.mover.Move(ctx, id, opts.destination(*item))
	if res != nil {
		msg := fmt.Sprintf("Moved from %s to %s", res.From, res.To)
		if logErr := a.db.AddLog(id, msg); logErr != nil && err == nil {
			err = logErr
		}
	}
	return res, err
}

// reindexHint tells the user how to finish a move whose reindex failed.
func reindexHint(res *ordering.MoveResult) string {
	return fmt.Sprintf("the move was saved; run '%s' and '%s' to finish",
		reindexCommand(res.From), reindexCommand(res.To))
}

func reindexCommand(g ordering.Group) string {
	parts := []string{"backlog reindex", "--project " + g.Scope}
	if g.ParentID != nil {
		parts = append(parts, "--parent "+*g.ParentID)
	}
	if g.ContainerID != nil {
		parts = append(parts, "--container "+*g.ContainerID)
	}
	return strings.Join(parts, " ")
}

var moveCmd = &cobra.Command{
	Use:   "move <id>",
	Short: "Move an item to the end of another group",
	Long: `Move an item to the end of the group given by its parent and container.
Flags that are not given keep the item's current value, so a move without
flags sends the item to the end of its own group.

Examples:
  backlog move ts-1a2b3c4d --parent us-9f8e7d6c
  backlog move ts-1a2b3c4d --container sp-00aa11bb
  backlog move ts-1a2b3c4d --top-level --unassigned`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := moveOptions{
			Parent:     model.StringPtr(flagMoveParent),
			Container:  model.StringPtr(flagMoveContainer),
			TopLevel:   flagMoveTopLevel,
			Unassigned: flagMoveUnassigned,
		}
		return withApp(cmd, func(a *app) error {
			res, err := runMove(cmd.Context(), a, args[0], opts)
			if err != nil {
				if res != nil {
					return fmt.Errorf("%w\n%s", err, reindexHint(res))
				}
				return err
			}

			if a.json {
				return a.printJSON(MoveJSON{
					ID:        res.Item.ID,
					From:      res.From.String(),
					To:        res.To.String(),
					Order:     res.Order,
					Final:     res.Item.Order,
					Saturated: res.Saturated,
				})
			}
			fmt.Fprintf(a.out, "Moved %s to %s at position %d\n", res.Item.ID, res.To, res.Item.Order)
			if res.Saturated {
				fmt.Fprintln(a.out, "Destination was out of room and has been reindexed")
			}
			return nil
		})
	},
}

// runReindex renumbers one group, or every group in the project when all
// is set, and reports what was rewritten.
func runReindex(ctx context.Context, a *app, g ordering.Group, all bool) ([]ReindexJSON, error) {
	groups := []ordering.Group{g}
	if all {
		var err error
		groups, err = projectGroups(a)
		if err != nil {
			return nil, err
		}
	}

	var report []ReindexJSON
	for _, g := range groups {
		items, err := a.store.Query(ctx, g.Query())
		if err != nil {
			return report, err
		}
		plan, err := a.reindex.ReindexGroup(ctx, items, g)
		if err != nil {
			return report, err
		}
		report = append(report, ReindexJSON{Group: g.String(), Items: len(plan), Rewritten: rewritten(items, plan)})
		if len(plan) > 0 {
			if err := a.db.AddLog(plan[0].ID, fmt.Sprintf("Reindexed %s", g)); err != nil {
				return report, err
			}
		}
	}
	return report, nil
}

// projectGroups lists every non-empty group of the project.
func projectGroups(a *app) ([]ordering.Group, error) {
	items, err := a.db.ListItems(a.project, nil)
	if err != nil {
		return nil, err
	}
	seen := map[ordering.Key]bool{}
	var groups []ordering.Group
	for _, item := range items {
		key := ordering.KeyOf(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		groups = append(groups, ordering.GroupOf(item))
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].String() < groups[j].String() })
	return groups, nil
}

func rewritten(items []model.Item, plan []ordering.Assignment) int {
	current := make(map[string]int32, len(items))
	for _, it := range items {
		current[it.ID] = it.Order
	}
	n := 0
	for _, a := range plan {
		if current[a.ID] != a.Order {
			n++
		}
	}
	return n
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Renumber a group to 1000, 2000, 3000, ...",
	Long: `Renumber a group so its positions are evenly spaced again, keeping the
current order. Without flags the top-level unassigned group is reindexed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			g := ordering.Group{
				Scope:       a.project,
				ParentID:    model.StringPtr(flagReindexParent),
				ContainerID: model.StringPtr(flagReindexContainer),
			}
			report, err := runReindex(cmd.Context(), a, g, flagReindexAll)
			if err != nil {
				var partial *ordering.PartialReindexError
				if errors.As(err, &partial) {
					return fmt.Errorf("%w\nrun the same reindex again to finish", err)
				}
				return err
			}

			if a.json {
				if report == nil {
					report = []ReindexJSON{}
				}
				return a.printJSON(report)
			}
			for _, r := range report {
				fmt.Fprintf(a.out, "%s: %d items, %d rewritten\n", r.Group, r.Items, r.Rewritten)
			}
			return nil
		})
	},
}

func init() {
	moveCmd.Flags().StringVar(&flagMoveParent, "parent", "", "new parent item ID")
	moveCmd.Flags().StringVar(&flagMoveContainer, "container", "", "new sprint or column ID")
	moveCmd.Flags().BoolVar(&flagMoveTopLevel, "top-level", false, "remove the parent")
	moveCmd.Flags().BoolVar(&flagMoveUnassigned, "unassigned", false, "remove the container")

	reindexCmd.Flags().StringVar(&flagReindexParent, "parent", "", "parent of the group (default: top level)")
	reindexCmd.Flags().StringVar(&flagReindexContainer, "container", "", "container of the group (default: unassigned)")
	reindexCmd.Flags().BoolVar(&flagReindexAll, "all", false, "reindex every group in the project")
}
