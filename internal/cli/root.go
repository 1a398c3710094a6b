package cli

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/truthgate/internal/config"
	"github.com/ppiankov/truthgate/internal/logging"
)

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config YAML (default ~/.truthgate/config.yaml)")
}

var rootCmd = &cobra.Command{
	Use:   "truthgate",
	Short: "Workflow gate enforcement for AI coding agents",
	Long: "Checks every shell command and file write an agent attempts against the\n" +
		"project's .truth/truth.json. Work for a gate is blocked until its\n" +
		"prerequisite gates are approved and the required agents have run.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	cmd, err := rootCmd.ExecuteC()
	os.Exit(exitCode(cmd, err))
}

// exitCode maps a command error to a process status. The hook never exits
// non-zero: the host treats that as a block.
func exitCode(cmd *cobra.Command, err error) int {
	if err == nil || cmd == hookCmd {
		return 0
	}
	return 1
}

// loadConfig reads the config named by --config.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// newLogger builds the diagnostic logger, falling back to a no-op logger
// when the configured sink cannot be opened.
func newLogger(cfg *config.Config) (*zap.Logger, func()) {
	logger, closeFn, err := logging.New(cfg.Log)
	if err != nil {
		return zap.NewNop(), func() {}
	}
	return logger, func() {
		_ = logger.Sync()
		_ = closeFn()
	}
}
