// Package main provides the crossref binary entry point. Crossref validates
// a book manuscript tree: cross-document links, chapter numbering against
// the canonical mapping, required sections, word-count bounds, and asset
// existence.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/crossref/config"
	"github.com/c360studio/crossref/rules"
	"github.com/c360studio/crossref/taskstore"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "crossref"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		rootDir  string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "crossref",
		Short: "Documentation cross-reference validator",
		Long: `Crossref validates a book manuscript tree against its canonical
chapter mapping.

It detects:
- broken cross-document links
- chapter mentions asserting the wrong number
- missing required sections
- word counts outside the configured bounds
- references to missing assets

Configuration (including the canonical mapping) is read from crossref.yaml
in the corpus root or a parent directory.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&rootDir, "root", ".", "Corpus root directory")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	newApp := func() (*App, error) {
		logger := newLogger(logLevel)
		cfg, err := config.NewLoader(logger).Load(rootDir)
		if err != nil {
			return nil, err
		}
		return NewApp(cfg, rootDir, logger), nil
	}

	cmd.AddCommand(validateCmd(newApp))
	cmd.AddCommand(reportCmd(newApp))
	cmd.AddCommand(tasksCmd(newApp))

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// validateCmd runs a validation pass and prints the summary. It exits
// non-zero when critical findings exist, so CI can gate on it.
func validateCmd(newApp func() (*App, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Run all validators and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			rep, err := app.Run()
			if err != nil {
				return err
			}

			counts := make(map[rules.Category]int)
			for _, f := range rep.Findings {
				counts[f.Category]++
			}
			for _, cat := range rules.Categories {
				fmt.Printf("%-18s %d\n", cat, counts[cat])
			}
			fmt.Printf("%-18s %d\n", "misalignments", len(rep.Misalignments))
			fmt.Printf("%-18s %d\n", "total", len(rep.Findings))

			if n := rep.CriticalCount(); n > 0 {
				return fmt.Errorf("%d critical finding(s)", n)
			}
			return nil
		},
	}
}

// reportCmd renders the full markdown report.
func reportCmd(newApp func() (*App, error)) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the full markdown report",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			rep, err := app.Run()
			if err != nil {
				return err
			}
			return writeArtifact(out, rep.Render)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the report to a file instead of stdout")
	return cmd
}

// tasksCmd emits the ordered task list as JSON, optionally persisting it to
// the configured NATS task store.
func tasksCmd(newApp func() (*App, error)) *cobra.Command {
	var (
		out   string
		store bool
	)

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Emit the ordered remediation task list as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			rep, err := app.Run()
			if err != nil {
				return err
			}

			if store {
				if err := app.StoreTasks(cmd.Context(), rep); err != nil {
					return err
				}
			}
			return writeArtifact(out, rep.WriteTasks)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the task list to a file instead of stdout")
	cmd.Flags().BoolVar(&store, "store", false, "Persist tasks to the configured NATS task store")

	cmd.AddCommand(tasksListCmd(newApp))
	cmd.AddCommand(tasksStatusCmd(newApp))
	return cmd
}

// tasksListCmd shows the stored tasks and their remediation status.
func tasksListCmd(newApp func() (*App, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored tasks and their remediation status",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			records, err := app.ListTasks(cmd.Context())
			if err != nil {
				return err
			}

			if len(records) == 0 {
				fmt.Println("no stored tasks")
				return nil
			}
			fmt.Printf("%-40s %-10s %-12s %-8s %s\n", "ID", "PRIORITY", "STATUS", "FINDINGS", "UPDATED")
			for _, rec := range records {
				fmt.Printf("%-40s %-10s %-12s %-8d %s\n",
					rec.ID, rec.Priority, rec.Status, rec.Findings,
					rec.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

// tasksStatusCmd transitions a stored task's remediation status.
func tasksStatusCmd(newApp func() (*App, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "status <task-id> <open|in_progress|resolved>",
		Short: "Set a stored task's remediation status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := taskstore.ParseStatus(args[1])
			if err != nil {
				return err
			}
			app, err := newApp()
			if err != nil {
				return err
			}
			return app.SetTaskStatus(cmd.Context(), args[0], status)
		},
	}
}

// writeArtifact writes via render to the named file, or stdout when path is
// empty.
func writeArtifact(path string, render func(w io.Writer) error) error {
	if path == "" {
		return render(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return render(f)
}

// newLogger builds the process logger at the requested level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
