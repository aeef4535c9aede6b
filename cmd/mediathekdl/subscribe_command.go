package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediathekdl/internal/config"
	"mediathekdl/internal/subscription"
)

func newSubscribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe",
		Short: "Create a new subscription interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := subscription.RunWizard(config.Get().SubscriptionsDir)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Subscription written to %s\n", path)
			return nil
		},
	}
}
