package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/deploymenttheory/go-font-manager/internal/logger"
	"github.com/deploymenttheory/go-font-manager/internal/types"
)

// Defaults applied when the config file is absent or a value is invalid.
const (
	DefaultCacheSize             = 20 * 1024 * 1024 // 20MiB
	DefaultRegistryCheckInterval = 24 * time.Hour
)

const (
	configFileName    = "config"
	keyFileName       = "key"
	manifestFileName  = "installed.json"
	registryDirName   = "registry"
	cacheSubdirectory = "go-font-manager"
)

// Config holds the application configuration. A Config value is constructed
// once in cmd and passed to the drivers; nothing reads it ambiently.
type Config struct {
	// Base directory for config, key and manifest files (~/.fontman).
	BaseDir string

	Priorities            []string
	FontDir               string
	CacheSize             int64
	CacheDir              string
	GitHubToken           string
	GoogleFontsDirect     bool
	RegistryCheckInterval time.Duration
}

// ConfigPath returns the path of the key=value config file.
func (c Config) ConfigPath() string {
	return filepath.Join(c.BaseDir, configFileName)
}

// ManifestPath returns the path of the installed-fonts manifest.
func (c Config) ManifestPath() string {
	return filepath.Join(c.BaseDir, manifestFileName)
}

// RegistryDir returns the directory holding the font registry data.
func (c Config) RegistryDir() string {
	return filepath.Join(c.BaseDir, registryDirName)
}

// DefaultBaseDir returns ~/.fontman.
func DefaultBaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".fontman"), nil
}

// DefaultFontDir returns the per-user font directory for the current OS.
func DefaultFontDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Fonts")
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "Microsoft", "Windows", "Fonts")
		}
		return filepath.Join(home, "AppData", "Local", "Microsoft", "Windows", "Fonts")
	default:
		return filepath.Join(home, ".local", "share", "fonts")
	}
}

func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), cacheSubdirectory)
	}
	return filepath.Join(base, cacheSubdirectory)
}

// Load reads the config file under baseDir, falling back to defaults for
// missing or invalid values. Invalid values warn; a missing file is normal.
func Load(baseDir string) Config {
	cfg := Config{
		BaseDir:               baseDir,
		Priorities:            append([]string(nil), types.DefaultPriorities...),
		FontDir:               DefaultFontDir(),
		CacheSize:             DefaultCacheSize,
		CacheDir:              defaultCacheDir(),
		RegistryCheckInterval: DefaultRegistryCheckInterval,
	}

	raw, err := readConfigFile(cfg.ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warningf("Could not load config file: %v", err)
		}
		return cfg
	}

	for key, value := range raw {
		switch key {
		case "format":
			if value == "auto" {
				continue
			}
			priorities, err := ParsePriorities(value)
			if err != nil {
				logger.Warningf("Invalid format in config, using default: %v", err)
				continue
			}
			cfg.Priorities = priorities
		case "path":
			if value != "" {
				cfg.FontDir = value
			}
		case "cache-size":
			size, err := strconv.ParseInt(value, 10, 64)
			if err != nil || size < 0 {
				logger.Warningf("Invalid cache-size %q, using default", value)
				continue
			}
			cfg.CacheSize = size
		case "github_token":
			token, err := openToken(baseDir, value)
			if err != nil {
				logger.Warningf("Could not decrypt GitHub token: %v", err)
				continue
			}
			cfg.GitHubToken = token
		case "google_fonts_direct":
			direct, err := strconv.ParseBool(value)
			if err != nil {
				logger.Warningf("Invalid google_fonts_direct %q, using default", value)
				continue
			}
			cfg.GoogleFontsDirect = direct
		case "registry_check_interval":
			seconds, err := strconv.Atoi(value)
			if err != nil || seconds < 0 {
				logger.Warningf("Invalid registry_check_interval %q, using default", value)
				continue
			}
			cfg.RegistryCheckInterval = time.Duration(seconds) * time.Second
		}
	}

	return cfg
}

// Set validates and persists a single configuration key. The GitHub token is
// encrypted before it touches the file.
func Set(baseDir, key, value string) error {
	switch key {
	case "format":
		if _, err := ParsePriorities(value); err != nil {
			return err
		}
	case "path":
		if value == "" {
			return fmt.Errorf("path must not be empty")
		}
	case "cache-size":
		if size, err := strconv.ParseInt(value, 10, 64); err != nil || size < 0 {
			return fmt.Errorf("invalid cache size %q: must be a non-negative integer", value)
		}
	case "github_token":
		sealed, err := sealToken(baseDir, value)
		if err != nil {
			return fmt.Errorf("failed to encrypt token: %w", err)
		}
		value = sealed
	case "google_fonts_direct":
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("invalid google_fonts_direct %q: must be true or false", value)
		}
	case "registry_check_interval":
		if seconds, err := strconv.Atoi(value); err != nil || seconds < 0 {
			return fmt.Errorf("invalid registry_check_interval %q: must be a non-negative number of seconds", value)
		}
	default:
		return fmt.Errorf("unknown config key %q", key)
	}

	path := filepath.Join(baseDir, configFileName)
	raw, err := readConfigFile(path)
	if err != nil && !os.IsNotExist(err) {
		logger.Warningf("Could not load existing config, starting fresh: %v", err)
	}
	if raw == nil {
		raw = make(map[string]string)
	}
	raw[key] = value

	return writeConfigFile(path, raw)
}

// Get returns the stored raw value for a key. The GitHub token is masked.
func Get(baseDir, key string) (string, error) {
	raw, err := readConfigFile(filepath.Join(baseDir, configFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("config key %q is not set", key)
		}
		return "", err
	}
	value, ok := raw[key]
	if !ok {
		return "", fmt.Errorf("config key %q is not set", key)
	}
	if key == "github_token" {
		return "***", nil
	}
	return value, nil
}

// ParsePriorities splits a comma-separated format list and validates every
// token against the recognized format labels.
func ParsePriorities(value string) ([]string, error) {
	parts := strings.Split(value, ",")
	priorities := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if !types.IsValidFormat(p) {
			return nil, fmt.Errorf("invalid format %q (options: %s)", p, strings.Join(types.ValidFormats, ", "))
		}
		priorities = append(priorities, p)
	}
	if len(priorities) == 0 {
		return nil, fmt.Errorf("empty format list")
	}
	return priorities, nil
}

func readConfigFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	raw := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		raw[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return raw, nil
}

func writeConfigFile(path string, raw map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, raw[k])
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
