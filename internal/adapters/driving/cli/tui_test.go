package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-scan/internal/adapters/driving/tui"
)

// stubTUI replaces terminal detection and the program runner.
func stubTUI(t *testing.T, isTTY bool) *int {
	t.Helper()
	origTTY, origRun := stdoutIsTerminal, runTUIApp
	runs := new(int)
	stdoutIsTerminal = func() bool { return isTTY }
	runTUIApp = func(app *tui.App) error {
		*runs++
		return nil
	}
	t.Cleanup(func() {
		stdoutIsTerminal, runTUIApp = origTTY, origRun
	})
	return runs
}

func TestTUICmd_Registered(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Use == "tui" {
			found = true
			break
		}
	}
	assert.True(t, found, "tui command should be registered")
	assert.Equal(t, "Launch the interactive terminal UI", tuiCmd.Short)
	assert.Contains(t, tuiCmd.Long, "Controls:")
}

func TestTUICmd_RequiresTerminal(t *testing.T) {
	setupTestServices(t)
	runs := stubTUI(t, false)

	_, err := execute(t, "tui")

	require.ErrorIs(t, err, errNoTerminal)
	assert.Zero(t, *runs)
}

func TestTUICmd_Runs(t *testing.T) {
	ts := setupTestServices(t)
	runs := stubTUI(t, true)

	_, err := execute(t, "tui", "-n", "50")

	require.NoError(t, err)
	assert.Equal(t, 1, *runs)
	assert.True(t, ts.scheduler.stopped)
}
