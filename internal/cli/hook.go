package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/truthgate/internal/config"
	"github.com/ppiankov/truthgate/internal/hook"
)

func init() {
	rootCmd.AddCommand(hookCmd)
}

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "PreToolUse hook entry point",
	Long: "Reads one PreToolUse request on stdin. When the action is blocked, writes\n" +
		"a deny decision to stdout. Always exits 0; any internal failure allows\n" +
		"the action.",
	Args:               cobra.ArbitraryArgs,
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	Run:                runHook,
}

// newHandler builds the hook handler; replaced in tests.
var newHandler = hook.New

func runHook(cmd *cobra.Command, args []string) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "truthgate: hook panicked, allowing: %v\n", r)
		}
	}()

	cfg, cfgErr := loadConfig()
	if cfgErr != nil {
		cfg = config.Default()
	}

	logger, closeLog := newLogger(cfg)
	defer closeLog()

	if cfgErr != nil {
		logger.Warn("invalid config, allowing", zap.Error(cfgErr))
		return
	}

	h := newHandler(cfg, logger)
	defer h.Close()

	h.Handle(context.Background(), cmd.InOrStdin(), cmd.OutOrStdout())
}
