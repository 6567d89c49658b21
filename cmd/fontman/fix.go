package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-font-manager/internal/fontanalyzer"
	"github.com/deploymenttheory/go-font-manager/internal/logger"
	"github.com/deploymenttheory/go-font-manager/internal/manifest"
	"github.com/deploymenttheory/go-font-manager/internal/repair"
)

func newFixCmd() *cobra.Command {
	var (
		backup   bool
		granular bool
	)

	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Detect and repair problems in the installed-fonts manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if len(a.manifest) == 0 {
				logger.Warningf("No installed fonts data found.")
				return nil
			}

			if backup {
				backupPath := a.cfg.ManifestPath() + ".backup"
				if err := copyManifest(a.cfg.ManifestPath(), backupPath); err != nil {
					return fmt.Errorf("failed to create backup: %w", err)
				}
				logger.Successf("Backup created: %s", backupPath)
			}

			fixups := repair.Plan(a.manifest, repair.Options{
				DestDir:   a.cfg.FontDir,
				Inspector: fontanalyzer.SFNTInspector{},
				Reinstall: a.installer.Reinstall,
			})
			if len(fixups) == 0 {
				logger.Successf("No issues found.")
				return nil
			}

			fixed := 0
			if granular {
				for _, f := range fixups {
					logger.Warningf("%s", f.Description)
					if confirm("Fix this?") {
						fixed += f.Apply()
						logger.Successf("%s", pastTense(f.Description))
					}
				}
			} else {
				logger.Warningf("Found %d issue(s):", len(fixups))
				for _, f := range fixups {
					fmt.Printf("  %s\n", f.Description)
				}
				if !confirm("Proceed with fixes?") {
					logger.Infof("Aborted.")
					return nil
				}
				for _, f := range fixups {
					fixed += f.Apply()
					logger.Successf("%s", pastTense(f.Description))
				}
			}

			if err := manifest.Save(a.cfg.ManifestPath(), a.manifest); err != nil {
				return err
			}
			logger.Successf("Fixed %d issue(s).", fixed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&backup, "backup", false, "back up the manifest before fixing")
	cmd.Flags().BoolVar(&granular, "granular", false, "confirm each fix individually")
	return cmd
}

// pastTense rewrites a fixup description into its completion message.
func pastTense(description string) string {
	r := strings.NewReplacer(
		"Remove", "Removed",
		"Update", "Updated",
		"Reinstall", "Reinstalled",
	)
	return r.Replace(description)
}

// confirm asks a yes/no question, defaulting to yes.
func confirm(question string) bool {
	fmt.Printf("%s [Y/n]: ", question)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "" || answer == "y" || answer == "yes"
}

func copyManifest(src, dest string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}
