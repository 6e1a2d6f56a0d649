package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the object store, search backend, index, bridge and
HTTP server settings.

Settings are resolved from defaults, the config file and the environment,
in increasing order of precedence. Use subcommands to edit the config file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show resolved settings",
	RunE:  runSettingsShow,
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List config keys and their file values",
	RunE:  runSettingsList,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a config file value",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set a config file value",
	Long: `Validates and stores a config value. When the value is omitted it is
read from stdin without echo, which suits secrets.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE:  runSettingsPath,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsPathCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings service")
	}
	s := currentSettings()

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Backend: %s\n", s.Search.Backend.Description())
	cmd.Printf("  Workers: %d\n", s.Search.Workers)
	cmd.Printf("  Timeout: %s\n", s.Search.Timeout)
	cmd.Printf("  Catalog TTL: %s\n", s.Search.CatalogTTL)
	cmd.Printf("  Extensions: %s\n", strings.Join(s.Search.Extensions, ", "))
	cmd.Printf("  Blacklist: %d name(s)\n", len(s.Search.Blacklist))
	cmd.Println()

	cmd.Println("[Store]")
	cmd.Printf("  Driver: %s\n", s.Store.Driver)
	if s.Store.Driver == domain.StoreDriverLocal {
		cmd.Printf("  Root: %s\n", s.Store.LocalRoot)
	} else {
		cmd.Printf("  Endpoint: %s\n", valueOrUnset(s.Store.Endpoint))
		cmd.Printf("  Region: %s\n", s.Store.Region)
		cmd.Printf("  Bucket: %s\n", valueOrUnset(s.Store.Bucket))
		cmd.Printf("  Prefix: %s\n", s.Store.Prefix)
		cmd.Printf("  Access Key: %s\n", maskedOrUnset(s.Store.AccessKeyID))
		cmd.Printf("  Secret Key: %s\n", maskedOrUnset(s.Store.SecretAccessKey))
	}
	cmd.Printf("  Status: %s\n", configuredStatus(s.Store.IsConfigured()))
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Data Dir: %s\n", s.Index.DataDir)
	cmd.Printf("  Watch: %t\n", s.Index.Watch)
	cmd.Printf("  Sync Prefix: %s\n", valueOrUnset(s.Index.SyncPrefix))
	cmd.Println()

	cmd.Println("[Bridge]")
	cmd.Printf("  URL: %s\n", valueOrUnset(s.Bridge.URL))
	cmd.Printf("  Secret: %s\n", maskedOrUnset(s.Bridge.Secret))
	cmd.Printf("  Timeout: %s\n", s.Bridge.Timeout)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", s.Server.Addr)
	cmd.Printf("  Secret: %s\n", maskedOrUnset(s.Server.Secret))
	cmd.Printf("  Allowed Origin: %s\n", valueOrUnset(s.Server.AllowedOrigin))
	cmd.Printf("  Rate Limit: %.1f/s (burst %d)\n", s.Server.RateLimit, s.Server.RateBurst)
	cmd.Println()

	cmd.Println("[Scheduler]")
	cmd.Printf("  Enabled: %t\n", s.Scheduler.Enabled)
	cmd.Printf("  Catalog Refresh: %s\n", valueOrUnset(s.Scheduler.CatalogRefresh))
	cmd.Printf("  Index Sync: %s\n", valueOrUnset(s.Scheduler.IndexSync))
	cmd.Println()

	cmd.Printf("Config file: %s\n", settingsService.Path())
	return nil
}

func runSettingsList(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings service")
	}
	for _, key := range settingsService.Keys() {
		v, ok := settingsService.Get(key)
		switch {
		case !ok:
			cmd.Printf("  %-28s (default)\n", key)
		case isSecretKey(key):
			cmd.Printf("  %-28s %s\n", key, maskAPIKey(fmt.Sprint(v)))
		default:
			cmd.Printf("  %-28s %v\n", key, v)
		}
	}
	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings service")
	}
	v, ok := settingsService.Get(args[0])
	if !ok {
		return fmt.Errorf("%w: %s is not set in the config file", domain.ErrNotFound, args[0])
	}
	cmd.Println(fmt.Sprint(v))
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings service")
	}
	key := args[0]

	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		cmd.Printf("Value for %s: ", key)
		value = readPassword()
		cmd.Println()
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("Set %s.\n", key)
	return nil
}

func runSettingsPath(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings service")
	}
	cmd.Println(settingsService.Path())
	return nil
}

// Helper functions.

func isSecretKey(key string) bool {
	return strings.Contains(key, "secret") || strings.Contains(key, "access_key")
}

func valueOrUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

func maskedOrUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return maskAPIKey(v)
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
