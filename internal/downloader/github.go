// Package downloader talks to the GitHub API: release lookup, asset
// download, and contents-API fallbacks for repos that publish fonts as
// plain files instead of release archives.
package downloader

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/deploymenttheory/go-font-manager/internal/logger"
	"github.com/deploymenttheory/go-font-manager/internal/types"
)

const defaultBaseURL = "https://api.github.com"

// Client is a minimal GitHub API client. An empty token means
// unauthenticated requests.
type Client struct {
	httpClient *http.Client
	token      string
	userAgent  string
	baseURL    string
}

// NewClient creates a Client. Version goes into the User-Agent header.
func NewClient(token, version string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		token:     token,
		userAgent: "fontman/" + version,
		baseURL:   defaultBaseURL,
	}
}

// SetBaseURL points the client at a different API host. Used by tests.
func (c *Client) SetBaseURL(base string) {
	c.baseURL = strings.TrimSuffix(base, "/")
}

// Release is the subset of a GitHub release the installer needs.
type Release struct {
	Version  string
	Owner    string
	RepoName string
	Body     string
	Assets   []types.Asset
}

type releasePayload struct {
	TagName string        `json:"tag_name"`
	Body    string        `json:"body"`
	URL     string        `json:"url"`
	Assets  []types.Asset `json:"assets"`
}

// ContentItem is one entry from the repository contents API.
type ContentItem struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Type        string `json:"type"`
	Size        int64  `json:"size"`
	DownloadURL string `json:"download_url"`
}

func (c *Client) newRequest(method, rawURL, accept string) (*http.Request, error) {
	req, err := http.NewRequest(method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// getJSON fetches a URL and decodes the response body into out.
func (c *Client) getJSON(rawURL string, out interface{}) error {
	req, err := c.newRequest(http.MethodGet, rawURL, "application/vnd.github+json")
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", rawURL, err)
	}
	return nil
}

var errNotFound = fmt.Errorf("not found")

// IsNotFound reports whether an error from this package means a 404.
func IsNotFound(err error) bool {
	return err == errNotFound
}

// FetchRelease fetches the release for a version, where "latest" selects
// the repo's latest release. Tags are retried with and without a leading
// "v" so that "4.0" finds a "v4.0" tag and vice versa. The returned owner
// and repo name come from the release URL, which follows repo renames.
func (c *Client) FetchRelease(owner, repo, version string) (*Release, error) {
	var payload releasePayload
	var err error
	if version == "latest" {
		err = c.getJSON(fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, owner, repo), &payload)
	} else {
		err = c.getJSON(fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s", c.baseURL, owner, repo, url.PathEscape(version)), &payload)
		if IsNotFound(err) {
			alt := "v" + version
			if strings.HasPrefix(version, "v") {
				alt = strings.TrimPrefix(version, "v")
			}
			err = c.getJSON(fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s", c.baseURL, owner, repo, url.PathEscape(alt)), &payload)
		}
	}
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("no release %s found for %s/%s", version, owner, repo)
		}
		return nil, err
	}

	release := &Release{
		Version:  payload.TagName,
		Owner:    owner,
		RepoName: repo,
		Body:     payload.Body,
		Assets:   payload.Assets,
	}
	if finalOwner, finalRepo, ok := ownerRepoFromReleaseURL(payload.URL); ok {
		release.Owner = finalOwner
		release.RepoName = finalRepo
	}
	return release, nil
}

// ownerRepoFromReleaseURL pulls owner and repo out of an API release URL
// of the form .../repos/{owner}/{repo}/releases/{id}.
func ownerRepoFromReleaseURL(rawURL string) (string, string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 3 || parts[0] != "repos" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// LatestVersion returns the tag of the repo's latest release.
func (c *Client) LatestVersion(owner, repo string) (string, error) {
	release, err := c.FetchRelease(owner, repo, "latest")
	if err != nil {
		return "", err
	}
	return release.Version, nil
}

// HasReleases reports whether the repo has at least one release.
func (c *Client) HasReleases(owner, repo string) bool {
	_, err := c.FetchRelease(owner, repo, "latest")
	return err == nil
}

// ListContents lists a directory of the repo via the contents API.
func (c *Client) ListContents(owner, repo, dirPath string) ([]ContentItem, error) {
	var items []ContentItem
	rawURL := fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, owner, repo, dirPath)
	if err := c.getJSON(rawURL, &items); err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("no %s directory in %s/%s", dirPath, owner, repo)
		}
		return nil, err
	}
	return items, nil
}

// HasFontFiles reports whether the directory tree at dirPath contains at
// least one font file.
func (c *Client) HasFontFiles(owner, repo, dirPath string) bool {
	items, err := c.ListContents(owner, repo, dirPath)
	if err != nil {
		return false
	}
	for _, item := range items {
		switch item.Type {
		case "file":
			if isFontFilename(item.Name) {
				return true
			}
		case "dir":
			if c.HasFontFiles(owner, repo, item.Path) {
				return true
			}
		}
	}
	return false
}

func isFontFilename(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, known := range types.FontExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

type commitPayload struct {
	Commit struct {
		Committer struct {
			Date time.Time `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
}

// PathVersion derives a version string for a contents-API install: the
// date of the last commit touching dirPath, formatted YYYY-MM-DD.
func (c *Client) PathVersion(owner, repo, dirPath string) (string, error) {
	rawURL := fmt.Sprintf("%s/repos/%s/%s/commits?path=%s&per_page=1", c.baseURL, owner, repo, url.QueryEscape(dirPath))
	var commits []commitPayload
	if err := c.getJSON(rawURL, &commits); err != nil {
		return "", err
	}
	if len(commits) == 0 {
		return "", fmt.Errorf("no commits found for %s in %s/%s", dirPath, owner, repo)
	}
	return commits[0].Commit.Committer.Date.Format("2006-01-02"), nil
}

// DownloadTree downloads every font file under dirPath into destDir,
// preserving paths relative to dirPath. Non-font files are skipped.
func (c *Client) DownloadTree(owner, repo, dirPath, destDir string) ([]string, error) {
	items, err := c.ListContents(owner, repo, dirPath)
	if err != nil {
		return nil, err
	}

	var downloaded []string
	for _, item := range items {
		switch item.Type {
		case "dir":
			nested, err := c.DownloadTree(owner, repo, item.Path, filepath.Join(destDir, item.Name))
			if err != nil {
				return nil, err
			}
			for _, name := range nested {
				downloaded = append(downloaded, path.Join(item.Name, name))
			}
		case "file":
			if !isFontFilename(item.Name) {
				continue
			}
			dest := filepath.Join(destDir, item.Name)
			if err := c.downloadBlob(owner, repo, item, dest); err != nil {
				return nil, fmt.Errorf("failed to download %s: %w", item.Path, err)
			}
			downloaded = append(downloaded, item.Name)
		}
	}
	return downloaded, nil
}

// DownloadRootFonts downloads font files sitting in the repo root.
func (c *Client) DownloadRootFonts(owner, repo, destDir string) ([]string, error) {
	items, err := c.ListContents(owner, repo, "")
	if err != nil {
		return nil, err
	}

	var downloaded []string
	for _, item := range items {
		if item.Type != "file" || !isFontFilename(item.Name) {
			continue
		}
		dest := filepath.Join(destDir, item.Name)
		if err := c.downloadBlob(owner, repo, item, dest); err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", item.Path, err)
		}
		downloaded = append(downloaded, item.Name)
	}
	if len(downloaded) == 0 {
		return nil, fmt.Errorf("no font files in the root of %s/%s", owner, repo)
	}
	return downloaded, nil
}

// downloadBlob fetches one file. The download_url is preferred; when it is
// absent the contents API is asked for the raw bytes, and as a last resort
// the base64 JSON payload is decoded.
func (c *Client) downloadBlob(owner, repo string, item ContentItem, destPath string) error {
	if item.DownloadURL != "" {
		return c.downloadToFile(item.DownloadURL, destPath, "")
	}

	rawURL := fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, owner, repo, item.Path)
	if err := c.downloadToFile(rawURL, destPath, "application/vnd.github.raw+json"); err == nil {
		return nil
	}

	var payload struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}
	if err := c.getJSON(rawURL, &payload); err != nil {
		return err
	}
	if payload.Encoding != "base64" {
		return fmt.Errorf("unexpected content encoding %q for %s", payload.Encoding, item.Path)
	}
	data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(payload.Content, "\n", ""))
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", item.Path, err)
	}
	return os.WriteFile(destPath, data, 0o644)
}

// DownloadAsset streams a release asset to destPath.
func (c *Client) DownloadAsset(asset types.Asset, destPath string) error {
	logger.Debugf("Downloading %s", asset.BrowserDownloadURL)
	return c.downloadToFile(asset.BrowserDownloadURL, destPath, "")
}

func (c *Client) downloadToFile(rawURL, destPath, accept string) error {
	req, err := c.newRequest(http.MethodGet, rawURL, accept)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download of %s failed: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d downloading %s", resp.StatusCode, rawURL)
	}

	if err := os.MkdirAll(path.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", destPath, err)
	}
	file, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	_, copyErr := io.Copy(file, resp.Body)
	closeErr := file.Close()
	if copyErr != nil {
		os.Remove(destPath)
		return fmt.Errorf("failed to save %s: %w", destPath, copyErr)
	}
	if closeErr != nil {
		os.Remove(destPath)
		return fmt.Errorf("failed to close %s: %w", destPath, closeErr)
	}
	return nil
}
