package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Flags
	debug bool

	// Root command
	rootCmd = &cobra.Command{
		Use:   "inspection-service",
		Short: "Fleet vehicle inspection service",
		Long: `Fleet vehicle inspection service for pre-use checklists and fatigue declarations.

Functions:
- Receive pre-use checklist submissions from fleet controllers
- Auto-reject submissions with defects on critical safety items
- Receive driver fatigue and drowsiness declarations
- Serve pending and attended review queues to administrators
- Publish review decisions to the fleet ERP`,
	}
)

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

// initLogging initializes the global logger
func initLogging() {
	if debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}
