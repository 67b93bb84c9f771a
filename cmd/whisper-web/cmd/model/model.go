package model

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"whisper-web/cmd/whisper-web/cmd/cmdutil"
	"whisper-web/internal/app/api/whisper_cpp"
	"whisper-web/internal/app/common"
	"whisper-web/internal/downloader"
)

var (
	force    bool
	progress bool
)

func init() {
	fetchCmd.Flags().BoolVarP(&force, "force", "f", false, "download even if the local file matches the remote size")
	fetchCmd.Flags().BoolVar(&progress, "progress", false, "show a progress bar even when not attached to a terminal")

	Cmd.AddCommand(fetchCmd)
	Cmd.AddCommand(pathCmd)
}

// Cmd represents the model command
var Cmd = &cobra.Command{
	Use:   "model",
	Short: "Manage the whisper.cpp model file",
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download ggml-<variant>.bin for the configured variant",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cmdutil.LoadConfig(cmd)
		if err != nil {
			return err
		}
		logger := common.MustNewLogger(cfg.Log.Development)
		defer logger.Sync()

		backend := whisper_cpp.NewBackend(cfg.Model, logger)
		url, dest := backend.ModelURL(), backend.ModelPath()

		pm := downloader.NewProgressManager(downloader.ProgressConfig{
			Enabled: downloader.ShouldShowProgress(progress),
			Writer:  os.Stderr,
		})
		defer pm.Shutdown()
		dl := downloader.New(nil, logger, pm)

		if !force {
			upToDate, err := dl.IsUpToDate(cmd.Context(), url, dest)
			if err != nil {
				logger.Warn("Could not compare with remote model", zap.Error(err))
			}
			if upToDate {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is up to date\n", dest)
				return nil
			}
		}

		n, err := dl.Download(cmd.Context(), url, dest)
		if err != nil {
			return err
		}
		pm.Wait()
		fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %s (%d MB)\n", dest, n>>20)
		return nil
	},
}

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print where the model file is expected",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cmdutil.LoadConfig(cmd)
		if err != nil {
			return err
		}
		backend := whisper_cpp.NewBackend(cfg.Model, zap.NewNop())
		fmt.Fprintln(cmd.OutOrStdout(), backend.ModelPath())
		return nil
	},
}
