package main

import (
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-font-manager/internal/logger"
	"github.com/deploymenttheory/go-font-manager/internal/uninstaller"
)

func newUninstallCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "uninstall <owner/repo | font name> ...",
		Short: "Uninstall installed fonts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if len(a.manifest) == 0 {
				logger.Warningf("No installed fonts data found.")
				return nil
			}

			_, err = uninstaller.Uninstall(a.manifest, args, uninstaller.Options{
				FontDir:      a.cfg.FontDir,
				ManifestPath: a.cfg.ManifestPath(),
				Force:        force,
			})
			return err
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "force deletion even if hashes don't match")
	return cmd
}
