package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-font-manager/internal/config"
	"github.com/deploymenttheory/go-font-manager/internal/fontanalyzer"
	"github.com/deploymenttheory/go-font-manager/internal/installer"
	"github.com/deploymenttheory/go-font-manager/internal/logger"
	"github.com/deploymenttheory/go-font-manager/internal/manifest"
)

// weightNames maps the common weight names to their numeric classes.
var weightNames = map[string]int{
	"thin":       100,
	"extralight": 200,
	"light":      300,
	"regular":    400,
	"medium":     500,
	"semibold":   600,
	"bold":       700,
	"extrabold":  800,
	"black":      900,
}

func newInstallCmd() *cobra.Command {
	var (
		release string
		format  string
		local   bool
		force   bool
		weights string
		style   string
		source  string
	)

	cmd := &cobra.Command{
		Use:   "install <owner/repo | font name> ...",
		Short: "Install fonts from a GitHub release or Google Fonts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			priorities := a.cfg.Priorities
			if format != "" {
				priorities, err = config.ParsePriorities(format)
				if err != nil {
					return err
				}
			}
			parsedWeights, err := parseWeights(weights)
			if err != nil {
				return err
			}
			styles, err := parseStyle(style)
			if err != nil {
				return err
			}
			if source != "" && source != "f" && source != "r" {
				return fmt.Errorf("invalid --source value %q: must be f or r", source)
			}

			if err := a.registry.Update(false); err != nil {
				logger.Debugf("Registry update skipped: %v", err)
			}

			failures := 0
			for _, repoArg := range args {
				req := installer.Request{
					Release:    release,
					Priorities: priorities,
					Weights:    parsedWeights,
					Styles:     styles,
					Source:     source,
					Local:      local,
					Force:      force,
				}

				if strings.Contains(repoArg, "/") {
					parts := strings.Split(repoArg, "/")
					if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
						logger.Errorf("Invalid repo format: %s. Use owner/repo", repoArg)
						failures++
						continue
					}
					req.Owner, req.RepoName = parts[0], parts[1]
					req.RepoKey = manifest.NormalizeKey(repoArg)
				} else {
					res, err := a.resolver().Resolve(repoArg)
					if err != nil {
						logger.Errorf("%v", err)
						failures++
						continue
					}
					req.Owner = res.Owner
					req.RepoName = res.RepoName
					req.RepoKey = manifest.NormalizeKey(repoArg)
					req.GoogleFonts = true
					req.PreExtractDir = res.PreExtractDir
					req.Version = res.Version
				}

				if err := a.installer.Install(req); err != nil {
					logger.Errorf("%v", err)
					failures++
				}
			}
			if failures > 0 {
				return fmt.Errorf("%d install(s) failed", failures)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&release, "release", "r", "latest", "release tag to install")
	cmd.Flags().StringVarP(&format, "format", "f", "", "comma-separated list of font formats to prefer in order")
	cmd.Flags().BoolVarP(&local, "local", "l", false, "install fonts to the current directory instead of the font directory")
	cmd.Flags().BoolVar(&force, "force", false, "force reinstall even if already installed")
	cmd.Flags().StringVarP(&weights, "weight", "w", "", "comma-separated font weights to install (e.g. 400,700 or Regular,Bold)")
	cmd.Flags().StringVar(&style, "style", "both", "font style to install: roman, italic, or both")
	cmd.Flags().StringVarP(&source, "source", "s", "", "install source: f for the fonts/ directory, r for repo root files")
	return cmd
}

// parseWeights accepts numeric weight classes and the common weight
// names, comma separated.
func parseWeights(value string) ([]int, error) {
	if value == "" {
		return nil, nil
	}
	var parsed []int
	for _, w := range strings.Split(value, ",") {
		w = strings.TrimSpace(w)
		if n, err := strconv.Atoi(w); err == nil {
			parsed = append(parsed, n)
			continue
		}
		n, ok := weightNames[strings.ToLower(w)]
		if !ok {
			return nil, fmt.Errorf("unknown weight: %s", w)
		}
		parsed = append(parsed, n)
	}
	return parsed, nil
}

// parseStyle maps the --style flag onto a style whitelist.
func parseStyle(value string) ([]string, error) {
	switch value {
	case "both":
		return fontanalyzer.FullStyleSet, nil
	case fontanalyzer.StyleRoman:
		return []string{fontanalyzer.StyleRoman}, nil
	case fontanalyzer.StyleItalic:
		return []string{fontanalyzer.StyleItalic}, nil
	}
	return nil, fmt.Errorf("invalid --style value %q: must be roman, italic, or both", value)
}

// promptLink asks the user to pick one of several GitHub links found on
// a catalogue page.
func promptLink(links []string) (string, error) {
	fmt.Println("Multiple GitHub links found:")
	for i, link := range links {
		fmt.Printf("  %d: %s\n", i+1, link)
	}
	fmt.Print("Choose which one to use (number): ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	choice, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || choice < 1 || choice > len(links) {
		return "", fmt.Errorf("invalid choice")
	}
	return links[choice-1], nil
}
