// Command formflow-devserver runs a local endpoint that receives form
// submissions, for working with live mode without the production backend.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-formflow/internal/devserver"
)

var (
	addr        string
	failMode    string
	failMessage string
	delay       time.Duration
	allowOrigin string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "formflow-devserver",
	Short: "Receive form submissions locally",
	Long: `Serves POST /api/contact, /api/newsletter and /api/appointment.

Valid submissions are kept in memory and listed by GET /api/submissions.
--fail scripts the answer to valid submissions:
  server      500 with a JSON message
  validation  422 with an error on every submitted field
  html        502 with an HTML body`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := devserver.ParseFailureMode(failMode)
		if err != nil {
			return err
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err := zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		cfg := devserver.DefaultConfig()
		cfg.Addr = addr
		cfg.Fail = mode
		if failMessage != "" {
			cfg.FailureMessage = failMessage
		}
		cfg.Delay = delay
		cfg.AllowOrigin = allowOrigin

		return devserver.New(cfg, devserver.WithLogger(logger)).ListenAndServe(cmd.Context())
	},
}

func init() {
	defaults := devserver.DefaultConfig()
	rootCmd.Flags().StringVar(&addr, "addr", defaults.Addr, "listen address")
	rootCmd.Flags().StringVar(&failMode, "fail", "", "failure mode: server, validation or html")
	rootCmd.Flags().StringVar(&failMessage, "message", "", "message used by the failure modes")
	rootCmd.Flags().DurationVar(&delay, "delay", 0, "delay before answering")
	rootCmd.Flags().StringVar(&allowOrigin, "allow-origin", defaults.AllowOrigin, "Access-Control-Allow-Origin value, empty to disable")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
