package serve

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"whisper-web/cmd/whisper-web/cmd/cmdutil"
	"whisper-web/internal/app"
)

var preload bool

func init() {
	Cmd.Flags().BoolVar(&preload, "preload", false,
		"load the model at startup instead of on the first transcription")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the upload page and HTTP API",
	Long: `Run the upload page and HTTP API.

Uploads are staged until the user confirms them. The model is loaded once,
on the first confirmed upload unless --preload is set, and shared by every
request. A failed load is reported to every request until restart.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cmdutil.LoadConfig(cmd)
		if err != nil {
			return err
		}

		application, cleanup, err := app.InitializeApplication(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if preload {
			go func() {
				if err := application.Models.Warm(context.WithoutCancel(ctx)); err != nil {
					application.Logger.Error("Model preload failed", zap.Error(err))
				}
			}()
		}

		return application.Run(ctx)
	},
}
