package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/sercha-scan/internal/adapters/driving/tui"
	"github.com/custodia-labs/sercha-scan/internal/logger"
)

// errNoTerminal is returned when stdout is not an interactive terminal.
var errNoTerminal = errors.New("tui needs an interactive terminal; use 'sercha-scan search' instead")

// stdoutIsTerminal reports whether stdout is a TTY. Tests replace it.
var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// runTUIApp runs the program. Tests replace it.
var runTUIApp = func(app *tui.App) error {
	return app.Run()
}

var tuiPageSize int

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for sercha-scan.

The TUI searches the configured backend, pages through results and shows
every extracted field of a record. Queries mix free terms and field:value
pairs, for example: alice email:gmail.com

Controls:
  ↑/k, ↓/j - Navigate results
  Enter    - Search / Show record
  ←/h, →/l - Previous / next page
  Esc      - Back
  ctrl+c   - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVarP(&tuiPageSize, "limit", "n", 0, "records per page (default 20)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if !stdoutIsTerminal() {
		return errNoTerminal
	}

	ctx := cmd.Context()
	if err := requireBackend(ctx); err != nil {
		return err
	}

	// The TUI is long-running, so background refresh runs alongside it.
	if err := requireScheduler(ctx); err != nil {
		logger.Warn("Background tasks disabled: %v", err)
	} else {
		schedulerCtx, schedulerCancel := context.WithCancel(ctx)
		defer schedulerCancel()

		go func() {
			if err := scheduler.Start(schedulerCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("Scheduler stopped: %v", err)
			}
		}()
		defer func() {
			if err := scheduler.Stop(); err != nil {
				logger.Warn("Scheduler stop error: %v", err)
			}
		}()
	}

	app, err := tui.NewApp(tui.NewPorts(searchService, inventoryService))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(ctx)
	if tuiPageSize > 0 {
		app.WithPageSize(tuiPageSize)
	}

	if err := runTUIApp(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
