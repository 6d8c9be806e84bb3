package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/baiirun/backlog/internal/model"
)

var (
	flagContainerKind  string
	flagContainerWIP   int
	flagContainerGoal  string
	flagContainerStart string
	flagContainerEnd   string
	flagContainerList  string
)

const dateLayout = "2006-01-02"

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return &t, nil
}

// containerOptions carries container add's flags.
type containerOptions struct {
	Kind     model.ContainerKind
	WIPLimit int
	Goal     string
	Start    string
	End      string
}

func runContainerAdd(a *app, name string, opts containerOptions) (*model.Container, error) {
	start, err := parseDate(opts.Start)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(opts.End)
	if err != nil {
		return nil, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, fmt.Errorf("end date %s is before start date %s", opts.End, opts.Start)
	}
	if opts.Kind == model.ContainerSprint && opts.WIPLimit != 0 {
		return nil, fmt.Errorf("WIP limits apply to columns, not sprints")
	}

	c := &model.Container{
		ID:        model.GenerateContainerID(opts.Kind),
		Project:   a.project,
		Kind:      opts.Kind,
		Name:      name,
		Goal:      opts.Goal,
		WIPLimit:  opts.WIPLimit,
		StartDate: start,
		EndDate:   end,
		CreatedAt: time.Now(),
	}
	if err := a.db.CreateContainer(c); err != nil {
		return nil, err
	}
	return c, nil
}

func runContainerList(a *app, kind *model.ContainerKind) error {
	containers, err := a.db.ListContainers(a.project, kind)
	if err != nil {
		return err
	}

	if a.json {
		out := make([]ContainerJSON, 0, len(containers))
		for _, c := range containers {
			out = append(out, containerJSON(c))
		}
		return a.printJSON(out)
	}
	if len(containers) == 0 {
		fmt.Fprintln(a.out, "No containers")
		return nil
	}
	for _, c := range containers {
		n, err := a.db.CountInContainer(c.ID)
		if err != nil {
			return err
		}
		load := fmt.Sprintf("%d items", n)
		if c.WIPLimit > 0 {
			load = fmt.Sprintf("%d/%d", n, c.WIPLimit)
		}
		fmt.Fprintf(a.out, "%-12s %-7s %-24s %s\n", c.ID, c.Kind, c.Name, load)
	}
	return nil
}

var containerCmd = &cobra.Command{
	Use:     "container",
	Aliases: []string{"containers"},
	Short:   "Manage sprints and board columns",
}

var containerAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a sprint or column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			c, err := runContainerAdd(a, args[0], containerOptions{
				Kind:     model.ContainerKind(flagContainerKind),
				WIPLimit: flagContainerWIP,
				Goal:     flagContainerGoal,
				Start:    flagContainerStart,
				End:      flagContainerEnd,
			})
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(containerJSON(*c))
			}
			fmt.Fprintln(a.out, c.ID)
			return nil
		})
	},
}

var containerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sprints and columns with their load",
	RunE: func(cmd *cobra.Command, args []string) error {
		var kind *model.ContainerKind
		if flagContainerList != "" {
			k := model.ContainerKind(flagContainerList)
			if !k.IsValid() {
				return fmt.Errorf("invalid container kind: %s (use sprint or column)", k)
			}
			kind = &k
		}
		return withApp(cmd, func(a *app) error {
			return runContainerList(a, kind)
		})
	},
}

func init() {
	containerAddCmd.Flags().StringVarP(&flagContainerKind, "kind", "k", string(model.ContainerSprint), "sprint or column")
	containerAddCmd.Flags().IntVar(&flagContainerWIP, "wip", 0, "WIP limit for a column (0 = unlimited)")
	containerAddCmd.Flags().StringVar(&flagContainerGoal, "goal", "", "sprint goal")
	containerAddCmd.Flags().StringVar(&flagContainerStart, "start", "", "start date (YYYY-MM-DD)")
	containerAddCmd.Flags().StringVar(&flagContainerEnd, "end", "", "end date (YYYY-MM-DD)")

	containerListCmd.Flags().StringVarP(&flagContainerList, "kind", "k", "", "only sprints or only columns")

	containerCmd.AddCommand(containerAddCmd)
	containerCmd.AddCommand(containerListCmd)
}
