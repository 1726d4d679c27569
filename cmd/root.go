package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"

	syncCmd "github.com/sidkik/foldersync/cmd/sync"
	"github.com/sidkik/foldersync/cmd/util"
	"github.com/sidkik/foldersync/cmd/version"
)

// Execute runs the main CLI process.
func Execute() {
	if os.Getenv(util.VerboseLogKey) == "true" {
		log.SetLevel(log.DebugLevel)
	}

	rootCmd := syncCmd.New()
	rootCmd.SilenceUsage = true

	// HandleFatalError prints the error, so we silence errors here to avoid
	// double printing.
	rootCmd.SilenceErrors = true
	rootCmd.AddCommand(version.New())

	if err := rootCmd.Execute(); err != nil {
		util.HandleFatalError(err)
	}
}
