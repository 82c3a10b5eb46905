package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// SourceConfig describes one timeline data source. Exactly one of Path
// (local file) or URL (fetched with HTTP caching) should be set.
type SourceConfig struct {
	// Name is an internal identifier used for logging and as the
	// fallback group for ICS sources.
	Name string `yaml:"name" json:"name"`
	// Path is a local data file.
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
	// URL is a remote data file or feed endpoint.
	URL string `yaml:"url,omitempty" json:"url,omitempty"`
	// Format selects the parser: "grouped", "missionlog" or "ics".
	Format string `yaml:"format" json:"format"`
}

// RuleConfig is one (prefix, category) classification rule; rules are
// evaluated in file order, first match wins.
type RuleConfig struct {
	Prefix   string `yaml:"prefix" json:"prefix"`
	Category string `yaml:"category" json:"category"`
}

// RenameConfig rewrites the leading prefix of a label once.
type RenameConfig struct {
	Prefix      string `yaml:"prefix" json:"prefix"`
	Replacement string `yaml:"replacement" json:"replacement"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the preview server.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the preview server.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used when parsing and displaying
	// dates (e.g. "UTC", "America/New_York").
	Timezone string `yaml:"timezone" json:"timezone"`

	// Title is the chart heading.
	Title string `yaml:"title" json:"title"`

	// Footer is a small annotation drawn above the chart (author/year).
	Footer string `yaml:"footer,omitempty" json:"footer,omitempty"`

	// ReferenceDate resolves open-ended ("ongoing") entries. Format
	// "2006-01-02". Empty means the date the config was loaded, so a
	// fixed value makes report generation reproducible.
	ReferenceDate string `yaml:"reference_date,omitempty" json:"reference_date,omitempty"`

	// RefreshCron is the cron schedule for re-rendering in serve mode.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// GroupOrder is the top-to-bottom display order of groups. Groups
	// present in the data but absent here sort after all listed ones.
	GroupOrder []string `yaml:"group_order" json:"group_order"`

	// GroupColors maps group name to a CSS color for its bars.
	GroupColors map[string]string `yaml:"group_colors" json:"group_colors"`

	// DefaultColor is used for groups without an entry in GroupColors.
	DefaultColor string `yaml:"default_color" json:"default_color"`

	// ClassifyRules derive a group from an entry's label when the
	// source provides none.
	ClassifyRules []RuleConfig `yaml:"classify_rules,omitempty" json:"classify_rules,omitempty"`

	// RenameRules rewrite well-known label prefixes for display.
	RenameRules []RenameConfig `yaml:"rename_rules,omitempty" json:"rename_rules,omitempty"`

	// Sources lists the timeline data inputs, rendered into one chart.
	Sources []SourceConfig `yaml:"sources" json:"sources"`

	// MinDuration culls entries shorter than this (e.g. "1h"); only the
	// mission-log parser applies it.
	MinDuration string `yaml:"min_duration,omitempty" json:"min_duration,omitempty"`

	// Width / Height are the capture viewport dimensions in pixels.
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`

	// MaxLabelLen truncates bar labels per line; longer lines get an
	// ellipsis.
	MaxLabelLen int `yaml:"max_label_len" json:"max_label_len"`

	// OutputDir receives the rendered artifacts (chart.html, chart.svg,
	// chart.png, data.txt).
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// CacheDir holds the HTTP fetch cache for remote sources.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// BasicAuth, if non-nil, protects all endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:       "127.0.0.1:8080",
		Timezone:     "UTC",
		Title:        "Timeline",
		RefreshCron:  "@hourly",
		GroupOrder:   []string{},
		GroupColors:  map[string]string{},
		DefaultColor: "#000000",
		Sources:      []SourceConfig{},
		MinDuration:  "1h",
		Width:        1920,
		Height:       1080,
		MaxLabelLen:  20,
		OutputDir:    "./out",
		CacheDir:     "./cache",
	}
}

// Normalize fills in missing/zero values with defaults so partially
// filled configs still behave.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.Title == "" {
		c.Title = def.Title
	}
	if c.RefreshCron == "" {
		c.RefreshCron = def.RefreshCron
	}
	if c.GroupOrder == nil {
		c.GroupOrder = []string{}
	}
	if c.GroupColors == nil {
		c.GroupColors = map[string]string{}
	}
	if c.DefaultColor == "" {
		c.DefaultColor = def.DefaultColor
	}
	if c.Sources == nil {
		c.Sources = []SourceConfig{}
	}
	if c.Width <= 0 {
		c.Width = def.Width
	}
	if c.Height <= 0 {
		c.Height = def.Height
	}
	if c.MaxLabelLen <= 0 {
		c.MaxLabelLen = def.MaxLabelLen
	}
	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
}

// Location resolves the configured timezone, falling back to UTC on an
// unknown name.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Reference returns the instant open-ended entries resolve to: the
// configured ReferenceDate at midnight in the display timezone, or now
// when unset or unparseable.
func (c *Config) Reference(now time.Time) time.Time {
	if c.ReferenceDate == "" {
		return now
	}
	t, err := time.ParseInLocation("2006-01-02", c.ReferenceDate, c.Location())
	if err != nil {
		return now
	}
	return t
}

// CullDuration parses MinDuration; zero means no culling.
func (c *Config) CullDuration() time.Duration {
	if c.MinDuration == "" {
		return 0
	}
	d, err := time.ParseDuration(c.MinDuration)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// Load loads configuration from the given YAML path. A missing file is
// first-run: a default config is written there (0600, parent dir
// created) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".ganttgen-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
