package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-font-manager/internal/fontanalyzer"
	"github.com/deploymenttheory/go-font-manager/internal/installer"
	"github.com/deploymenttheory/go-font-manager/internal/logger"
	"github.com/deploymenttheory/go-font-manager/internal/manifest"
)

func newExportCmd() *cobra.Command {
	var (
		output string
		stdout bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the installed font library to a shareable file",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if len(a.manifest) == 0 {
				logger.Warningf("No installed fonts data found.")
				return nil
			}

			exported := manifest.Export(a.manifest)
			if stdout {
				data, err := manifest.MarshalExport(exported)
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}
			if err := manifest.WriteExport(output, exported); err != nil {
				return err
			}
			logger.Successf("Exported to %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "fontman-fonts.json", "output file path")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "write to stdout instead of a file")
	return cmd
}

func newImportCmd() *cobra.Command {
	var (
		input string
		force bool
		local bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a font library from an exported file",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			exported, err := manifest.ReadExport(input)
			if err != nil {
				return err
			}

			failures := 0
			for _, plan := range manifest.PlanImports(exported) {
				req := installer.Request{
					Owner:      plan.Owner,
					RepoName:   plan.RepoName,
					RepoKey:    plan.RepoKey,
					Release:    plan.Version,
					Priorities: plan.Priorities,
					Styles:     fontanalyzer.FullStyleSet,
					Local:      local,
					Force:      force,
				}
				if err := a.installer.Install(req); err != nil {
					logger.Errorf("%v", err)
					failures++
				}
			}
			if failures > 0 {
				return fmt.Errorf("%d import(s) failed", failures)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "fontman-fonts.json", "path to the exported font library file")
	cmd.Flags().BoolVar(&force, "force", false, "force reinstall")
	cmd.Flags().BoolVarP(&local, "local", "l", false, "install fonts to the current directory instead of the font directory")
	return cmd
}
