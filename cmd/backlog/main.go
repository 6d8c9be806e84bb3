package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/baiirun/backlog/internal/config"
	"github.com/baiirun/backlog/internal/db"
	"github.com/baiirun/backlog/internal/logging"
	"github.com/baiirun/backlog/internal/ordering"
)

var (
	flagDB      string
	flagProject string
	flagJSON    bool
	flagConfig  string
	flagVerbose bool
)

var (
	cfg    = config.DefaultConfig()
	logger = slog.New(slog.DiscardHandler)
)

var rootCmd = &cobra.Command{
	Use:   "backlog",
	Short: "Ordered backlogs, sprints and boards from the command line",
	Long: `A CLI for keeping epics, stories, tasks and bugs in a stable manual order.
Items are ordered within their group (parent + sprint/column) and groups are
reindexed automatically when they are moved between.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// BACKLOG_* variables may come from a local .env; real env wins.
		_ = godotenv.Load(".env")

		loaded, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.Log.Level
		if flagVerbose {
			level = "debug"
		}
		logger = logging.New(os.Stderr, level)
		return nil
	},
}

// app bundles the collaborators a command needs.
type app struct {
	db      *db.DB
	store   *db.ItemStore
	mover   *ordering.Mover
	reindex *ordering.Reindexer
	project string
	json    bool
	out     io.Writer
}

func newApp(database *db.DB, project string, batchSize int, log *slog.Logger, out io.Writer) *app {
	store := database.Items()
	reindexer := ordering.NewReindexer(store, batchSize, log)
	return &app{
		db:      database,
		store:   store,
		mover:   ordering.NewMover(store, ordering.NewAssigner(store, log), reindexer, log),
		reindex: reindexer,
		project: project,
		json:    flagJSON,
		out:     out,
	}
}

func dbPath() (string, error) {
	if flagDB != "" {
		return flagDB, nil
	}
	if cfg.DB.Path != "" {
		return cfg.DB.Path, nil
	}
	return db.DefaultPath()
}

func openDB() (*db.DB, error) {
	path, err := dbPath()
	if err != nil {
		return nil, err
	}
	database, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	if err := database.Init(); err != nil {
		_ = database.Close()
		return nil, err
	}
	return database, nil
}

func currentProject() string {
	if flagProject != "" {
		return flagProject
	}
	if cfg.Project.Default != "" {
		return cfg.Project.Default
	}
	return "default"
}

// withApp opens the database and runs fn against it.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	return fn(newApp(database, currentProject(), cfg.Ordering.BatchSize, logger, cmd.OutOrStdout()))
}

func (a *app) printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	_, err = fmt.Fprintln(a.out, string(b))
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default ~/.backlog/backlog.db)")
	rootCmd.PersistentFlags().StringVarP(&flagProject, "project", "p", "", "project name (default from config, else \"default\")")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "print JSON output")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "explicit config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging on stderr")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(containerCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(projectsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
