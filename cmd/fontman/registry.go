package main

import (
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-font-manager/internal/logger"
)

func newRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Manage the font registry",
	}

	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Force a refresh of the font registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.registry.Update(true); err != nil {
				return err
			}
			logger.Successf("Registry updated.")
			return nil
		},
	}

	cmd.AddCommand(updateCmd)
	return cmd
}
