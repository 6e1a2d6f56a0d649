// Package cli provides the cobra command tree for sercha-scan.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-scan/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "sercha-scan",
	Short: "Concurrent search over flat text files",
	Long: `sercha-scan searches large collections of flat text files held in an
object store (S3, R2, MinIO or a local directory) for records matching
every given criterion.

Lines are parsed into records with email, ip, telephone, url, identifiant
and password fields. Searches stream files concurrently in batches and
return whatever was found when the deadline fires.

Three backends are available:
  stream - scan object store files directly (default)
  index  - query local SQLite FTS5 databases
  bridge - forward searches to a remote bridge`,
	SilenceUsage:      true,
	PersistentPreRunE: initSettings,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.sercha-scan)")
}

// Execute runs the root command and releases every opened resource.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}

// initSettings resolves settings and configures the logger before any command runs.
func initSettings(_ *cobra.Command, _ []string) error {
	if settingsService == nil {
		svc, err := newSettingsService(configDir)
		if err != nil {
			return fmt.Errorf("failed to open config: %w", err)
		}
		settingsService = svc
	}

	loaded, err := settingsService.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	appSettings = loaded

	logger.SetFormat(loaded.Log.Format)
	logger.SetVerbose(verbose)
	logger.SetLevel(loaded.Log.Level)
	return nil
}

// errNotConfigured builds the error returned when a command lacks a service.
func errNotConfigured(what string) error {
	return errors.New(what + " not configured")
}
