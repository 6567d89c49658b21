package main

import (
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-font-manager/internal/logger"
	"github.com/deploymenttheory/go-font-manager/internal/updater"
)

func newUpdateCmd() *cobra.Command {
	var changelog bool

	cmd := &cobra.Command{
		Use:   "update [owner/repo | font name] ...",
		Short: "Update installed fonts to their latest versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.registry.Update(false); err != nil {
				logger.Debugf("Registry update skipped: %v", err)
			}

			u := &updater.Updater{
				Client:        a.client,
				Installer:     a.installer,
				Manifest:      a.manifest,
				ManifestPath:  a.cfg.ManifestPath(),
				FontDir:       a.cfg.FontDir,
				ShowChangelog: changelog,
			}
			updated, err := u.Update(args)
			if err != nil {
				return err
			}
			if updated > 0 {
				logger.Successf("Updated %d repo(s).", updated)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&changelog, "changelog", false, "show the release changelog for each update")
	return cmd
}
