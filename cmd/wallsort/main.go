package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"wallsort/internal/app"
	"wallsort/internal/config"
	"wallsort/internal/journal"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// configPath returns the --config flag value, or the default location.
func configPath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path, nil
	}
	defaults, err := app.GetDefaults()
	if err != nil {
		return "", fmt.Errorf("getting defaults: %w", err)
	}
	return defaults.ConfigPath, nil
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := configPath(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if cmd.Flags().Changed("parents") {
		cfg.Move.CreateParents, _ = cmd.Flags().GetBool("parents")
	}
	if cmd.Flags().Changed("workers") {
		cfg.Move.Workers, _ = cmd.Flags().GetInt("workers")
	}
	return cfg, nil
}

// newApp reads the config and creates an App. The caller must defer a.Close().
func newApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	verbose, _ := cmd.Flags().GetBool("verbose")

	a, err := app.New(cfg, app.Options{
		Verbose: verbose,
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "wallsort ORIGIN DESTINATION RATIO",
	Short: "Move wide images into their own directory",
	Long: `wallsort walks ORIGIN, reads the dimensions of every JPEG and PNG file
from its header, and moves each image whose width/height ratio is strictly
greater than RATIO into DESTINATION.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := config.Parse(append([]string{cmd.Root().Name()}, args...))
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		showSummary, _ := cmd.Flags().GetBool("summary")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		summary, err := a.Run(ctx, opts, dryRun)
		if summary != nil && showSummary {
			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary, isTerminal(cmd.OutOrStdout())))
		}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return fmt.Errorf("interrupted: %w", err)
			}
			return err
		}
		return nil
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with file logging and a SQLite journal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}
		path, err := configPath(cmd)
		if err != nil {
			return err
		}

		cfg := config.NewConfig(defaults.BaseDir)
		if err := config.Init(path, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration initialized at %s\n", path)
		fmt.Fprintf(out, "Log Dir:  %s\n", cfg.LogDir)
		fmt.Fprintf(out, "Journal:  %s\n", cfg.Journal.DataDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath(cmd)
		if err != nil {
			return err
		}
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration from %s:\n\n", path)
		fmt.Fprintf(out, "Log Dir:        %s\n", orNone(cfg.LogDir))
		fmt.Fprintf(out, "Log Level:      %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "Journal:        %s\n", cfg.Journal.Type)
		if cfg.Journal.Type == config.JournalSQLite {
			fmt.Fprintf(out, "Journal Dir:    %s\n", cfg.Journal.DataDir)
		}
		fmt.Fprintf(out, "Ignore:         %s\n", orNone(strings.Join(cfg.Filesystem.Ignore, ", ")))
		fmt.Fprintf(out, "Create Parents: %t\n", cfg.Move.CreateParents)
		fmt.Fprintf(out, "Workers:        %d\n", cfg.Move.Workers)
		return nil
	},
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View journaled runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderRuns(runs, isTerminal(cmd.OutOrStdout())))
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show RUN_ID",
	Short: "View the per-file outcomes of one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		outcomes, err := a.RunOutcomes(args[0])
		if err != nil {
			return err
		}

		if len(outcomes) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No outcomes recorded for run %s.\n", args[0])
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderOutcomes(outcomes, isTerminal(cmd.OutOrStdout())))
		return nil
	},
}

func runDuration(r *journal.RunRecord) string {
	if !r.FinishedAt.Valid {
		return ""
	}
	return r.FinishedAt.Time.Sub(r.StartedAt).Truncate(time.Millisecond).String()
}

func formatRatio(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file path (default $WALLSORT_CONFIG_PATH or ~/.config/wallsort.toml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log at debug level")

	rootCmd.Flags().Bool("dry-run", false, "Report what would move without moving anything")
	rootCmd.Flags().Bool("parents", false, "Create missing parent directories of DESTINATION")
	rootCmd.Flags().IntP("workers", "j", 1, "Number of files to process concurrently")
	rootCmd.Flags().Bool("summary", false, "Print a table of outcome counts when done")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// history subcommands
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs to show")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
}
