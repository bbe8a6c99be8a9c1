package cmd

import (
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/warden-ctl/internal/app"
	"github.com/firefly-engineering/warden-ctl/internal/config"
	"github.com/firefly-engineering/warden-ctl/internal/errors"
	"github.com/firefly-engineering/warden-ctl/internal/logging"
)

var (
	verbose    bool
	jsonOutput bool
	configPath string
	socketPath string
)

// defaultConfigPath is read when --config is not given. Empty skips
// loading and keeps app.Default's config.
var defaultConfigPath = config.DefaultConfigPath

var rootCmd = &cobra.Command{
	Use:   "warden-ctl",
	Short: "Warden container client",
	Long: `warden-ctl drives containers on a warden daemon over its unix socket.

A container is created with read-only bind mounts, disk and memory limits
and, optionally, two mapped network ports (primary and console). Scripts
can then be run to completion or spawned in the background, and the
container destroyed by handle.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Client config file (.toml, .yaml) (default "+config.DefaultConfigPath+")")
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "", "Warden socket for handle commands (overrides config)")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

func setup(cmd *cobra.Command, args []string) error {
	logging.Setup(verbose, jsonOutput, cmd.ErrOrStderr())

	path := configPath
	if path == "" {
		path = defaultConfigPath
	}

	cfg := app.Default.Config
	if path != "" {
		loaded, err := config.LoadClientConfig(path)
		if err != nil {
			return errors.ConfigError("failed to load "+path, err)
		}
		cfg = loaded
	}

	if socketPath != "" {
		override := *cfg
		override.SocketPath = socketPath
		cfg = &override
	}

	if cfg != app.Default.Config {
		app.SetDefault(app.New(
			app.WithConfig(cfg),
			app.WithProviderFactory(app.Default.NewProvider),
		))
	}

	logging.Debug("client configured", "socket", cfg.SocketPath, "state_dir", cfg.StateDir)
	return nil
}

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
)
