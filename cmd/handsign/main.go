package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ayusman/handsign/internal/app"
	"github.com/ayusman/handsign/internal/config"
	"github.com/ayusman/handsign/internal/logging"
)

// Version is the application version.
const Version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := newRootCmd(&cfg).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd binds flags over cfg, whose current values become the flag
// defaults, so flags win over the environment.
func newRootCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "handsign",
		Short:         "Serve a webcam feed and classify fingerspelled letters",
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(cfg.LogLevel, cfg.LogFormat)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), *cfg)
		},
	}
	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	f := cmd.Flags()
	f.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	f.IntVar(&cfg.CameraID, "camera", cfg.CameraID, "camera device index")
	f.StringVar(&cfg.ModelPath, "model", cfg.ModelPath, "ONNX classifier model")
	f.StringVar(&cfg.InputName, "model-input", cfg.InputName, "model input tensor name")
	f.StringVar(&cfg.OutputName, "model-output", cfg.OutputName, "model label output tensor name")
	f.StringVar(&cfg.ORTLibPath, "ort-lib", cfg.ORTLibPath, "path to the onnxruntime shared library")
	f.StringVar(&cfg.ScriptPath, "script", cfg.ScriptPath, "path to mediapipe_service.py")
	f.StringVar(&cfg.PythonPath, "python", cfg.PythonPath, "python interpreter for the hand detector")
	f.Float64Var(&cfg.MinConfidence, "min-confidence", cfg.MinConfidence, "minimum hand detection confidence")
	f.IntVar(&cfg.MaxHands, "max-hands", cfg.MaxHands, "maximum hands to detect")
	f.StringVar(&cfg.DBPath, "db", cfg.DBPath, "detection history database (empty disables history)")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	f.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: console or json")

	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	defer a.Close()

	log.Info().
		Str("addr", cfg.Addr).
		Str("version", Version).
		Msg("handsign started")

	return a.Run(ctx)
}
