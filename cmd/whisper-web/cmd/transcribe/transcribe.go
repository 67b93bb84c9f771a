package transcribe

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"whisper-web/cmd/whisper-web/cmd/cmdutil"
	"whisper-web/internal/app"
	"whisper-web/internal/app/job"
	"whisper-web/internal/app/staging"
)

var outPath string

func init() {
	Cmd.Flags().StringVarP(&outPath, "out", "o", "",
		"write the transcript to this file instead of stdout ("+job.ExportFilename+" when given a directory)")
}

// Cmd represents the transcribe command
var Cmd = &cobra.Command{
	Use:   "transcribe <audio file>",
	Short: "Transcribe one audio file",
	Long: `Transcribe one audio file with the configured backend.

The file goes through the same staging, model and cleanup steps as an upload
confirmed in the web page. Accepted extensions: mp3, wav, m4a, flac, ogg, aac.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		upload, err := staging.NewUploadedAudio(args[0], data)
		if err != nil {
			return err
		}

		cfg, err := cmdutil.LoadConfig(cmd)
		if err != nil {
			return err
		}
		pipeline, cleanup, err := app.InitializePipeline(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		result := pipeline.Orchestrator.RunJob(cmd.Context(), upload)
		export, ok := result.Export()
		if !ok {
			return fmt.Errorf("%s", result.Err.UserMessage())
		}

		if outPath == "" {
			_, err = cmd.OutOrStdout().Write(append(export.Data, '\n'))
			return err
		}
		return writeExport(outPath, export)
	},
}

func writeExport(path string, export job.Export) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, export.Filename)
	}
	if err := os.WriteFile(path, export.Data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Transcript written to %s\n", path)
	return nil
}
