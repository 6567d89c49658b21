// Package installer runs the install pipeline: fetch, extract, categorize,
// select, move, record.
package installer

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/deploymenttheory/go-font-manager/internal/cache"
	"github.com/deploymenttheory/go-font-manager/internal/downloader"
	"github.com/deploymenttheory/go-font-manager/internal/fontanalyzer"
	"github.com/deploymenttheory/go-font-manager/internal/googlefonts"
	"github.com/deploymenttheory/go-font-manager/internal/logger"
	"github.com/deploymenttheory/go-font-manager/internal/manifest"
	"github.com/deploymenttheory/go-font-manager/internal/platform"
	"github.com/deploymenttheory/go-font-manager/internal/types"
)

// Installer wires the collaborators of the install pipeline. The manifest
// is loaded by the caller and shared across a batch of installs.
type Installer struct {
	Client       *downloader.Client
	Cache        *cache.Cache
	Inspector    fontanalyzer.Inspector
	Manifest     manifest.Manifest
	ManifestPath string
	FontDir      string
}

// Request describes one repo install.
type Request struct {
	Owner    string
	RepoName string
	// RepoKey is the manifest key: owner/name lowercased, or a bare font
	// name alias for Google Fonts installs.
	RepoKey string

	Release    string // tag or "latest"
	Priorities []string
	Weights    []int
	Styles     []string
	Source     string // "" for releases, "f" for the fonts/ dir, "r" for root files
	Local      bool
	Force      bool

	// GoogleFonts marks installs whose cache keys carry no owner.
	GoogleFonts bool

	// PreExtractDir bypasses fetching: the fonts are already on disk,
	// downloaded by the Google Fonts resolver. Version must be set.
	PreExtractDir string
	Version       string
}

// Install runs the pipeline for one repo. Per-file problems warn and
// continue; a failure to fetch or to persist the manifest is returned.
func (ins *Installer) Install(req Request) error {
	repoArg := req.Owner + "/" + req.RepoName
	logger.Infof("Installing from %s...", repoArg)

	if err := ins.guardWebFormats(req); err != nil {
		return err
	}

	extractDir, version, finalOwner, finalRepo, err := ins.acquire(req)
	if err != nil {
		return fmt.Errorf("error installing from %s: %w", repoArg, err)
	}
	defer os.RemoveAll(extractDir)

	fontFiles, err := collectFontFiles(extractDir)
	if err != nil {
		return fmt.Errorf("error installing from %s: %w", repoArg, err)
	}

	buckets := fontanalyzer.Categorize(fontFiles, ins.Inspector)
	selected, label := fontanalyzer.Select(buckets, req.Priorities, req.Weights, req.Styles, ins.Inspector)
	if len(selected) == 0 {
		logger.Warningf("No font files matching your preferences found for %s.", repoArg)
		return nil
	}

	destDir := ins.FontDir
	if req.Local {
		destDir, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to resolve working directory: %w", err)
		}
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", destDir, err)
	}

	if !req.Local {
		skip, err := ins.gateVersion(req, version, destDir)
		if err != nil {
			return err
		}
		if skip {
			return nil
		}
	}

	moved := ins.validateAndMove(selected, destDir)
	if len(moved) == 0 {
		logger.Warningf("No valid font files found in the archive for %s.", repoArg)
		return nil
	}

	if !req.Local {
		recorded := ins.Manifest.RecordInstall(destDir, req.RepoKey, finalOwner, finalRepo, version, label, moved)
		if err := manifest.Save(ins.ManifestPath, ins.Manifest); err != nil {
			return err
		}
		platform.RegisterFonts(destDir, moved)
		logger.Successf("Installed %d font(s) from %s to %s", recorded, repoArg, destDir)
		return nil
	}

	logger.Successf("Installed %d font(s) from %s to %s", len(moved), repoArg, destDir)
	return nil
}

// Reinstall re-runs the pipeline fresh: version "latest", forced, default
// priorities. Used by repair, update, and import.
func (ins *Installer) Reinstall(repoKey, owner, repoName string) error {
	return ins.Install(Request{
		Owner:      owner,
		RepoName:   repoName,
		RepoKey:    repoKey,
		Release:    "latest",
		Priorities: types.DefaultPriorities,
		Styles:     fontanalyzer.FullStyleSet,
		Force:      true,
	})
}

func (ins *Installer) guardWebFormats(req Request) error {
	if req.Local || req.Force {
		return nil
	}
	for _, p := range req.Priorities {
		if types.IsWebFormat(p) {
			return fmt.Errorf("installing WOFF/WOFF2 fonts globally is not recommended; use --force to proceed")
		}
	}
	return nil
}

// acquire produces a directory of candidate font files plus the install
// version and the release's final owner/name (which may differ after a
// repo rename).
func (ins *Installer) acquire(req Request) (extractDir, version, owner, repo string, err error) {
	owner, repo = req.Owner, req.RepoName

	switch {
	case req.PreExtractDir != "":
		return req.PreExtractDir, req.Version, owner, repo, nil

	case req.Source == "r":
		extractDir, err = os.MkdirTemp("", "fontman-root-")
		if err != nil {
			return "", "", "", "", fmt.Errorf("failed to create temp directory: %w", err)
		}
		if _, err = ins.Client.DownloadRootFonts(owner, repo, extractDir); err != nil {
			os.RemoveAll(extractDir)
			return "", "", "", "", err
		}
		return extractDir, "latest", owner, repo, nil

	case req.Source == "f":
		extractDir, version, err = ins.fetchFontsDir(owner, repo)
		if err != nil {
			return "", "", "", "", err
		}
		return extractDir, version, owner, repo, nil
	}

	// An explicitly pinned tag can be served without touching the network.
	if req.Release != "latest" {
		cacheOwner := owner
		if req.GoogleFonts {
			cacheOwner = ""
		}
		for _, ext := range types.ArchiveExtensions {
			key := cache.Key(cacheOwner, repo, req.Release, ext)
			if path, ok := ins.Cache.Get(key); ok {
				logger.Infof("Using cached archive: %s", key)
				extractDir, err = downloader.ExtractArchive(path, ext)
				if err != nil {
					return "", "", "", "", err
				}
				return extractDir, req.Release, owner, repo, nil
			}
		}
	}

	release, err := ins.Client.FetchRelease(owner, repo, req.Release)
	if err != nil {
		// A repo without releases may still publish a fonts/ directory.
		if req.Release == "latest" && owner != googlefonts.Owner {
			logger.Debugf("No release for %s/%s, trying the fonts directory", owner, repo)
			extractDir, version, dirErr := ins.fetchFontsDir(owner, repo)
			if dirErr != nil {
				return "", "", "", "", fmt.Errorf("no releases or fonts directory found for %s/%s: %w", owner, repo, err)
			}
			return extractDir, version, owner, repo, nil
		}
		return "", "", "", "", err
	}

	asset, err := downloader.SelectArchiveAsset(release.Assets)
	if err != nil {
		return "", "", "", "", fmt.Errorf("%s/%s: %w", owner, repo, err)
	}
	_, ext := downloader.BaseAndExt(asset.Name)

	extractDir, err = ins.fetchArchive(release, asset, ext, req.GoogleFonts)
	if err != nil {
		return "", "", "", "", err
	}
	return extractDir, release.Version, release.Owner, release.RepoName, nil
}

// fetchArchive extracts a release asset, served from the cache when the
// same owner/repo/version was downloaded before.
func (ins *Installer) fetchArchive(release *downloader.Release, asset types.Asset, ext string, googleFonts bool) (string, error) {
	cacheOwner := release.Owner
	if googleFonts {
		cacheOwner = ""
	}
	key := cache.Key(cacheOwner, release.RepoName, release.Version, ext)

	if path, ok := ins.Cache.Get(key); ok {
		logger.Infof("Using cached archive: %s", key)
		return downloader.ExtractArchive(path, ext)
	}

	tmp, err := os.CreateTemp("", "fontman-archive-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmp.Close()
	defer os.Remove(tmp.Name())

	if err := ins.Client.DownloadAsset(asset, tmp.Name()); err != nil {
		return "", err
	}
	if err := ins.Cache.Put(key, tmp.Name()); err != nil {
		logger.Warningf("Failed to cache %s: %v", key, err)
	}
	return downloader.ExtractArchive(tmp.Name(), ext)
}

// fetchFontsDir downloads a repo's fonts/ tree, versioned by its last
// commit date.
func (ins *Installer) fetchFontsDir(owner, repo string) (string, string, error) {
	version, err := ins.Client.PathVersion(owner, repo, "fonts")
	if err != nil {
		return "", "", err
	}
	extractDir, err := os.MkdirTemp("", "fontman-fontsdir-")
	if err != nil {
		return "", "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	if _, err := ins.Client.DownloadTree(owner, repo, "fonts", extractDir); err != nil {
		os.RemoveAll(extractDir)
		return "", "", err
	}
	return extractDir, version, nil
}

// gateVersion applies the idempotent-reinstall guard and clears a
// superseded install. Returns true when the install should be skipped.
func (ins *Installer) gateVersion(req Request, version, destDir string) (bool, error) {
	if _, ok := ins.Manifest[manifest.NormalizeKey(req.RepoKey)]; !ok {
		return false, nil
	}
	if current, uniform := ins.Manifest.UniformVersion(req.RepoKey); uniform && current == version {
		if !req.Force {
			logger.Warningf("%s version %s is already installed. Use --force to reinstall.", req.RepoKey, version)
			return true, nil
		}
		logger.Warningf("Forcing reinstall of %s version %s...", req.RepoKey, version)
	}
	ins.Manifest.RemoveRepoFiles(destDir, req.RepoKey)
	if err := manifest.Save(ins.ManifestPath, ins.Manifest); err != nil {
		return false, err
	}
	return false, nil
}

// validateAndMove parse-checks each selected file and moves the valid
// ones into destDir. macOS resource forks ("._" prefix) are dropped
// silently; other unparsable files warn.
func (ins *Installer) validateAndMove(selected []string, destDir string) []string {
	var moved []string
	for _, src := range selected {
		name := filepath.Base(src)
		if strings.HasPrefix(name, "._") {
			continue
		}
		if _, err := ins.Inspector.IsVariable(src); err != nil {
			logger.Warningf("Skipping invalid font file %s: %v", name, err)
			continue
		}
		dest := filepath.Join(destDir, name)
		logger.Debugf("Moving %s to %s", src, dest)
		if err := moveFile(src, dest); err != nil {
			logger.Warningf("Could not move %s: %v", name, err)
			continue
		}
		moved = append(moved, name)
	}
	return moved
}

// collectFontFiles walks a tree and returns every font file in it.
func collectFontFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		for _, known := range types.FontExtensions {
			if ext == known {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan extracted files: %w", err)
	}
	return files, nil
}

// moveFile renames when possible and falls back to copy+remove for
// cross-device moves out of the temp dir.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
