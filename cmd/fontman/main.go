package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-font-manager/internal/cache"
	"github.com/deploymenttheory/go-font-manager/internal/config"
	"github.com/deploymenttheory/go-font-manager/internal/downloader"
	"github.com/deploymenttheory/go-font-manager/internal/fontanalyzer"
	"github.com/deploymenttheory/go-font-manager/internal/googlefonts"
	"github.com/deploymenttheory/go-font-manager/internal/installer"
	"github.com/deploymenttheory/go-font-manager/internal/logger"
	"github.com/deploymenttheory/go-font-manager/internal/manifest"
	"github.com/deploymenttheory/go-font-manager/internal/registry"
)

const version = "0.3.0"

// app bundles the collaborators every command needs. Built once per
// invocation; nothing reads configuration ambiently.
type app struct {
	cfg       config.Config
	manifest  manifest.Manifest
	client    *downloader.Client
	cache     *cache.Cache
	registry  *registry.Registry
	installer *installer.Installer
}

func newApp() (*app, error) {
	baseDir, err := config.DefaultBaseDir()
	if err != nil {
		return nil, err
	}
	cfg := config.Load(baseDir)

	m := manifest.Load(cfg.ManifestPath())
	client := downloader.NewClient(cfg.GitHubToken, version)
	archiveCache, err := cache.Open(cfg.CacheDir, cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		manifest: m,
		client:   client,
		cache:    archiveCache,
		registry: registry.New(cfg.RegistryDir(), cfg.RegistryCheckInterval),
		installer: &installer.Installer{
			Client:       client,
			Cache:        archiveCache,
			Inspector:    fontanalyzer.SFNTInspector{},
			Manifest:     m,
			ManifestPath: cfg.ManifestPath(),
			FontDir:      cfg.FontDir,
		},
	}, nil
}

func (a *app) resolver() *googlefonts.Resolver {
	return &googlefonts.Resolver{
		Client:   a.client,
		Registry: a.registry,
		Direct:   a.cfg.GoogleFontsDirect,
		Choose:   promptLink,
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "fontman",
		Short: "Install and manage fonts from GitHub and Google Fonts",
		Long: `A font package manager that installs fonts from GitHub releases or the
Google Fonts catalogue, tracks them in a local manifest, and keeps them
updated, verified, and portable across machines.`,
		PersistentPreRun: setupLogging,
	}

	// Logging flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose debugging output")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().String("log-file", "", "log to file instead of stdout")

	rootCmd.AddCommand(
		newInstallCmd(),
		newUninstallCmd(),
		newUpdateCmd(),
		newExportCmd(),
		newImportCmd(),
		newFixCmd(),
		newConfigCmd(),
		newCacheCmd(),
		newRegistryCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		logger.Errorf("Error executing command: %v", err)
		os.Exit(1)
	}
}

// setupLogging configures the logger based on command line flags
func setupLogging(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		logger.SetLevel(logger.LevelDebug)
		logger.Infof("Debug logging enabled")
	} else {
		logger.SetLevel(logger.LevelInfo)
	}

	noColor, _ := cmd.Flags().GetBool("no-color")
	if noColor {
		logger.DisableColors()
	}

	logFile, _ := cmd.Flags().GetString("log-file")
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			logger.Errorf("Failed to open log file: %v", err)
		} else {
			logger.DisableColors()
			logger.Initialize(file, file, file, file)
			logger.Infof("Logging to file: %s", logFile)
		}
	}
}
