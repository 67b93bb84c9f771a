package main

import (
	"fmt"
	"os"

	"whisper-web/cmd/whisper-web/cmd"
	"whisper-web/internal/config"
)

func main() {
	// A broken .env only warns; config validation reports what is missing
	if _, err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	cmd.Execute()
}
