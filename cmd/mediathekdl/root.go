package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"mediathekdl/internal/config"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "mediathekdl",
		Short:         "Subscribe to broadcast media and download new matches",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.AddCommand(newUpdateCommand())
	root.AddCommand(newSubscribeCommand())
	root.AddCommand(newDownloadCommand())
	root.AddCommand(newDBPathCommand())

	return root
}

func newDBPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:    "db-path",
		Short:  "Print the resolved catalog database path",
		Hidden: true,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), config.Get().DatabasePath)
		},
	}
}

func newLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})
}
