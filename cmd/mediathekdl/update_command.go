package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediathekdl/internal/config"
	"mediathekdl/internal/feed"
	"mediathekdl/internal/storage"
)

func newUpdateCommand() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Fetch the current list and rebuild the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			if serverURL == "" {
				serverURL = cfg.ServerURL
			}

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

			listURL := fmt.Sprintf("%s/%s", strings.TrimRight(serverURL, "/"), cfg.ListFileName)

			logger.Info("fetching list", "url", listURL)
			compressed, err := feed.Fetch(ctx, listURL)
			if err != nil {
				return err
			}

			logger.Info("decompressing", "bytes", len(compressed))
			raw, err := feed.Decompress(bytes.NewReader(compressed))
			if err != nil {
				return err
			}

			logger.Info("parsing list", "bytes", len(raw))
			decoded, err := feed.Decode(raw)
			if err != nil {
				return err
			}

			logger.Info("rebuilding catalog", "entries", len(decoded))
			if err := entries.Refresh(ctx, decoded); err != nil {
				return err
			}

			count, err := entries.Count(ctx)
			if err != nil {
				return err
			}

			logger.Info("catalog updated", "entries", count)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server-url", "", "Override the list server URL")

	return cmd
}
