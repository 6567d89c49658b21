// Package googlefonts resolves a font name from the Google Fonts
// catalogue to an installable source: an upstream GitHub repo when one
// can be found, otherwise the google/fonts license subdirectory itself.
package googlefonts

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/gocolly/colly/v2"

	"github.com/deploymenttheory/go-font-manager/internal/downloader"
	"github.com/deploymenttheory/go-font-manager/internal/logger"
	"github.com/deploymenttheory/go-font-manager/internal/registry"
)

// Owner is the alias recorded for subdirectory installs, which have no
// real upstream owner.
const Owner = "thegooglefontsrepo"

const defaultScrapeBase = "https://raw.githubusercontent.com/google/fonts/main"

// licenseDirs are the google/fonts top-level directories, in probe order.
var licenseDirs = []string{"ofl", "ufl", "apache"}

// Resolution is the outcome of resolving a font name.
type Resolution struct {
	Owner    string
	RepoName string

	// PreExtractDir holds already-downloaded fonts for subdirectory
	// installs; Version is their commit-date version. Both are empty when
	// the resolution points at a real repo.
	PreExtractDir string
	Version       string
}

// Resolver finds the source for a Google Fonts font name.
type Resolver struct {
	Client   *downloader.Client
	Registry *registry.Registry

	// Direct skips repo discovery and always installs the subdirectory.
	Direct bool

	// Choose is consulted when a scraped page offers several GitHub
	// links. Nil picks the first.
	Choose func(links []string) (string, error)

	// ScrapeBase overrides the google/fonts raw content base URL. Used by
	// tests.
	ScrapeBase string
}

// Resolve maps a font name to an install source. Resolution order:
// registry entry, scraped catalogue pages, subdirectory download. A
// resolved repo is only used when it has releases or a fonts/ directory
// with font files.
func (r *Resolver) Resolve(fontName string) (*Resolution, error) {
	if owner, repo, found := r.Registry.Lookup(fontName); found {
		if r.usable(owner, repo) {
			return &Resolution{Owner: owner, RepoName: repo}, nil
		}
		logger.Warningf("Repo %s/%s from registry has no releases or fonts/ directory, falling back to subdirectory...", owner, repo)
		return r.downloadSubdirectory(fontName)
	}

	if r.Direct {
		return r.downloadSubdirectory(fontName)
	}

	if res, ok := r.resolveFromCatalogue(fontName); ok {
		return res, nil
	}
	return r.downloadSubdirectory(fontName)
}

// usable reports whether a repo can feed the install pipeline.
func (r *Resolver) usable(owner, repo string) bool {
	if r.Client.HasReleases(owner, repo) {
		return true
	}
	if r.Client.HasFontFiles(owner, repo, "fonts") {
		logger.Warningf("Repo %s/%s has no releases but has a fonts/ directory, using fonts/ download.", owner, repo)
		return true
	}
	return false
}

// resolveFromCatalogue scrapes the font's catalogue pages for GitHub
// links.
func (r *Resolver) resolveFromCatalogue(fontName string) (*Resolution, bool) {
	base := r.ScrapeBase
	if base == "" {
		base = defaultScrapeBase
	}
	lower := strings.ToLower(fontName)
	pages := []string{
		fmt.Sprintf("%s/ofl/%s/article/ARTICLE.en_us.html", base, lower),
		fmt.Sprintf("%s/ofl/%s/DESCRIPTION.en_us.html", base, lower),
		fmt.Sprintf("%s/apache/%s/DESCRIPTION.en_us.html", base, lower),
		fmt.Sprintf("%s/ufl/%s/DESCRIPTION.en_us.html", base, lower),
	}

	for _, page := range pages {
		links, err := scrapeGitHubLinks(page)
		if err != nil {
			logger.Debugf("Could not fetch %s: %v", page, err)
			continue
		}
		if len(links) == 0 {
			continue
		}

		link := links[0]
		if len(links) > 1 && r.Choose != nil {
			chosen, err := r.Choose(links)
			if err != nil {
				logger.Warningf("Link selection failed: %v", err)
				continue
			}
			link = chosen
		}

		owner, repo, err := splitGitHubLink(link)
		if err != nil {
			logger.Warningf("Ignoring unusable link %s: %v", link, err)
			continue
		}
		if r.usable(owner, repo) {
			return &Resolution{Owner: owner, RepoName: repo}, true
		}
		logger.Warningf("Repo %s/%s has no releases or fonts/ directory, falling back to subdirectory...", owner, repo)
		return nil, false
	}
	return nil, false
}

// scrapeGitHubLinks collects github.com anchor targets from one page.
func scrapeGitHubLinks(page string) ([]string, error) {
	var links []string
	seen := make(map[string]bool)

	c := colly.NewCollector()
	// The raw content host serves HTML pages as text/plain, which would
	// suppress HTML callbacks.
	c.OnResponse(func(resp *colly.Response) {
		resp.Headers.Set("Content-Type", "text/html; charset=utf-8")
	})
	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		href := e.Attr("href")
		if strings.Contains(href, "github.com") && !seen[href] {
			seen[href] = true
			links = append(links, href)
		}
	})

	if err := c.Visit(page); err != nil {
		return nil, err
	}
	c.Wait()
	return links, nil
}

// splitGitHubLink extracts owner and repo from a github.com URL.
func splitGitHubLink(link string) (string, string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", "", err
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("no owner/repo in %s", link)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

// downloadSubdirectory fetches the font's files straight out of the
// google/fonts tree, probing each license directory.
func (r *Resolver) downloadSubdirectory(fontName string) (*Resolution, error) {
	logger.Infof("Attempting to download subdirectory for %s...", fontName)
	lower := strings.ToLower(fontName)

	for _, dir := range licenseDirs {
		subPath := dir + "/" + lower
		if !r.Client.HasFontFiles("google", "fonts", subPath) {
			continue
		}

		tempDir, err := os.MkdirTemp("", "fontman-gf-")
		if err != nil {
			return nil, fmt.Errorf("failed to create temp directory: %w", err)
		}
		files, err := r.Client.DownloadTree("google", "fonts", subPath, tempDir)
		if err != nil {
			os.RemoveAll(tempDir)
			logger.Warningf("Failed to download %s: %v", subPath, err)
			continue
		}
		version, err := r.Client.PathVersion("google", "fonts", subPath)
		if err != nil {
			os.RemoveAll(tempDir)
			return nil, err
		}
		logger.Successf("Downloaded %d font files for %s from %s.", len(files), fontName, dir)

		return &Resolution{
			Owner:         Owner,
			RepoName:      subPath,
			PreExtractDir: tempDir,
			Version:       version,
		}, nil
	}
	return nil, fmt.Errorf("font %q not found in Google Fonts", fontName)
}
