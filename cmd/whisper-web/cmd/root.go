package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"whisper-web/cmd/whisper-web/cmd/model"
	"whisper-web/cmd/whisper-web/cmd/serve"
	"whisper-web/cmd/whisper-web/cmd/transcribe"
	"whisper-web/cmd/whisper-web/cmd/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "whisper-web",
	Short: "Upload audio and download its transcription",
	Long: `Upload audio and download its transcription.

- serve runs the web page and HTTP API
- transcribe runs one file through the same pipeline from the shell
- model fetch downloads the whisper.cpp weights ahead of time`,
	SilenceUsage:     true,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(transcribe.Cmd)
	rootCmd.AddCommand(model.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default $WHISPER_WEB_CONFIG)")
	rootCmd.PersistentFlags().BoolP("verbose", "V", false, "development logging")
}
