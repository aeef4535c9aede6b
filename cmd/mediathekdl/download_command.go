package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"mediathekdl/internal/config"
	"mediathekdl/internal/downloader"
	"mediathekdl/internal/storage"
	"mediathekdl/internal/subscription"
)

var (
	summaryOKStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#3FC942"))
	summaryErrStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E75151"))
)

func newDownloadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "download",
		Short: "Run all subscriptions and download new matches",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			ctx := cmd.Context()
			logger := newLogger()

			db, err := storage.Open(cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer db.Close()

			entries := storage.NewEntryStorage(db)
			if err := entries.Init(ctx); err != nil {
				return err
			}

			runner := subscription.NewRunner(
				entries,
				downloader.New(nil, cfg.DownloadConcurrency, cfg.DownloadTimeout, logger),
				cfg.BaseDirectory,
				logger,
			)

			result, err := runner.Run(ctx, cfg.SubscriptionsDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, summaryOKStyle.Render(
				fmt.Sprintf("%d downloads finished", len(result.Succeeded)),
			))

			// Failed downloads are reported, not fatal: the run itself
			// succeeded and the process exits zero.
			if len(result.Failed) > 0 {
				fmt.Fprintln(out, summaryErrStyle.Render(
					fmt.Sprintf("%d errors:", len(result.Failed)),
				))
				for _, failure := range result.Failed {
					fmt.Fprintf(out, "  %s: %v\n", failure.Task.URL, failure.Err)
				}
			}

			return nil
		},
	}
}
