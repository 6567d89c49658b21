package main

import (
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-font-manager/internal/logger"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the archive cache",
	}

	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Empty the archive cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.cache.Purge(); err != nil {
				return err
			}
			logger.Successf("Cache purged.")
			return nil
		},
	}

	cmd.AddCommand(purgeCmd)
	return cmd
}
