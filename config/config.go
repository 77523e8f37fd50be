package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/masmgr/logfollow-go/internal/bugfix"
	"github.com/masmgr/logfollow-go/internal/git"
)

// Config is the root configuration structure.
type Config struct {
	Follow  FollowConfig `json:"follow" yaml:"follow"`
	Bugfix  BugfixConfig `json:"bugfix" yaml:"bugfix"`
	Burst   BurstConfig  `json:"burst" yaml:"burst"`
	Filters FilterConfig `json:"filters" yaml:"filters"`
	Output  OutputConfig `json:"output" yaml:"output"`
}

// FollowConfig holds rename-following options.
type FollowConfig struct {
	Backend      string `json:"backend" yaml:"backend"`           // "go-git" or "git"
	Branch       string `json:"branch" yaml:"branch"`             // Default: HEAD
	Match        string `json:"match" yaml:"match"`               // "exact" or "contains"
	RenameScore  int    `json:"renameScore" yaml:"renameScore"`   // Default: 60
	DetectCopies bool   `json:"detectCopies" yaml:"detectCopies"` // Default: true
	MaxBlobSize  string `json:"maxBlobSize" yaml:"maxBlobSize"`   // Default: "1 MiB"

	// FindCopiesHarder lets unmodified files be copy sources. Off by default:
	// unrelated files with identical content would be linked.
	FindCopiesHarder bool `json:"findCopiesHarder" yaml:"findCopiesHarder"`

	ResolveTimeoutSeconds int `json:"resolveTimeoutSeconds" yaml:"resolveTimeoutSeconds"` // 0 disables
	MaxRounds             int `json:"maxRounds" yaml:"maxRounds"`                         // 0 means unbounded
}

// MaxBlobBytes parses MaxBlobSize ("512KiB", "1 MB", "2000000").
func (f FollowConfig) MaxBlobBytes() (int64, error) {
	if strings.TrimSpace(f.MaxBlobSize) == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(f.MaxBlobSize)
	if err != nil {
		return 0, fmt.Errorf("invalid maxBlobSize %q: %w", f.MaxBlobSize, err)
	}
	return int64(n), nil
}

// ResolveTimeout returns the per-resolve time limit, zero when disabled.
func (f FollowConfig) ResolveTimeout() time.Duration {
	if f.ResolveTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(f.ResolveTimeoutSeconds) * time.Second
}

// BugfixConfig holds bugfix detection configuration.
type BugfixConfig struct {
	Patterns []string `json:"patterns" yaml:"patterns"` // Regex patterns for bugfix commit detection
}

// BurstConfig holds burst calculation options for path segments.
type BurstConfig struct {
	WindowDays int `json:"windowDays" yaml:"windowDays"`
}

// FilterConfig holds path filtering options for predecessor paths.
type FilterConfig struct {
	Include []string `json:"include" yaml:"include"`
	Exclude []string `json:"exclude" yaml:"exclude"`
}

// OutputConfig holds report options.
type OutputConfig struct {
	Format string `json:"format" yaml:"format"` // console, json, csv, markdown, ci
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Follow: FollowConfig{
			Backend:      "go-git",
			Branch:       "HEAD",
			Match:        "exact",
			RenameScore:  60,
			DetectCopies: true,
			MaxBlobSize:  "1 MiB",
		},
		Bugfix: BugfixConfig{
			Patterns: slices.Clone(bugfix.DefaultPatterns),
		},
		Burst: BurstConfig{
			WindowDays: 7,
		},
		Filters: FilterConfig{
			Include: []string{},
			Exclude: []string{},
		},
		Output: OutputConfig{
			Format: "console",
		},
	}
}

// Validate checks values that cannot be corrected silently.
func (c *Config) Validate() error {
	if c.Follow.RenameScore < 1 || c.Follow.RenameScore > 100 {
		return fmt.Errorf("follow.renameScore must be between 1 and 100, got %d", c.Follow.RenameScore)
	}
	if _, err := git.ParseBackend(c.Follow.Backend); err != nil {
		return fmt.Errorf("follow.backend: %w", err)
	}
	if c.Follow.MaxRounds < 0 {
		return fmt.Errorf("follow.maxRounds must not be negative, got %d", c.Follow.MaxRounds)
	}
	if _, err := c.Follow.MaxBlobBytes(); err != nil {
		return err
	}
	return nil
}

var defaultFileNames = []string{".logfollow.json", ".logfollow.yaml", ".logfollow.yml"}

// LoadConfig loads configuration from a file, merging with defaults.
// Files ending in .yaml or .yml are decoded as YAML, anything else as JSON.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = findDefaultConfig()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

func findDefaultConfig() string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, home)
	} else if envHome := os.Getenv("HOME"); envHome != "" {
		dirs = append(dirs, envHome)
	}
	for _, dir := range dirs {
		for _, name := range defaultFileNames {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// SaveConfig saves configuration to a file in the format implied by its
// extension.
func SaveConfig(cfg *Config, path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
