package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"careerline/internal/timeline"
)

// SourceConfig describes where the timeline text comes from. URL wins over
// Path; with neither set the embedded copy is used.
type SourceConfig struct {
	// URL is an http(s) endpoint serving the timeline markdown.
	URL string `yaml:"url" json:"url"`
	// Path is a local markdown file.
	Path string `yaml:"path" json:"path"`
	// CacheDir holds the last good body and its ETag/Last-Modified.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`
	// TimeoutSeconds bounds a single fetch.
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// WindowConfig is the fixed axis range, Jan 1 of StartYear to Jan 1 of EndYear.
type WindowConfig struct {
	StartYear int `yaml:"start_year" json:"start_year"`
	EndYear   int `yaml:"end_year" json:"end_year"`
}

// LayoutConfig mirrors timeline.Options in config-file units.
type LayoutConfig struct {
	OverlaySection   string   `yaml:"overlay_section" json:"overlay_section"`
	MergeSections    []string `yaml:"merge_sections" json:"merge_sections"`
	MergeGapDays     int      `yaml:"merge_gap_days" json:"merge_gap_days"`
	ShortItemMonths  int      `yaml:"short_item_months" json:"short_item_months"`
	MinWidthPercent  float64  `yaml:"min_width_percent" json:"min_width_percent"`
	RowHeight        int      `yaml:"row_height" json:"row_height"`
	ItemHeight       int      `yaml:"item_height" json:"item_height"`
	MergedRowHeight  int      `yaml:"merged_row_height" json:"merged_row_height"`
	MergedItemHeight int      `yaml:"merged_item_height" json:"merged_item_height"`
}

// CaptureConfig controls the headless PNG snapshot.
type CaptureConfig struct {
	Width          int `yaml:"width" json:"width"`
	Height         int `yaml:"height" json:"height"`
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the web page and API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone month boundaries are computed in. Empty means local.
	Timezone string `yaml:"timezone" json:"timezone"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// RefreshCron is the cron schedule for re-fetching the source while serving.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	Source  SourceConfig  `yaml:"source" json:"source"`
	Window  WindowConfig  `yaml:"window" json:"window"`
	Layout  LayoutConfig  `yaml:"layout" json:"layout"`
	Capture CaptureConfig `yaml:"capture" json:"capture"`

	// BasicAuth, if set, protects every endpoint except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	c := &Config{}
	c.Normalize()
	return c
}

// Normalize fills in missing/zero values so that partial config files work.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}

	if c.Source.CacheDir == "" {
		c.Source.CacheDir = "./cache/source"
	}
	if c.Source.TimeoutSeconds <= 0 {
		c.Source.TimeoutSeconds = 15
	}

	if c.Window.StartYear == 0 {
		c.Window.StartYear = 2014
	}
	if c.Window.EndYear == 0 {
		c.Window.EndYear = 2026
	}

	l := &c.Layout
	if l.OverlaySection == "" {
		l.OverlaySection = "content"
	}
	if l.MergeSections == nil {
		l.MergeSections = []string{"career"}
	}
	if l.MergeGapDays <= 0 {
		l.MergeGapDays = 30
	}
	if l.ShortItemMonths <= 0 {
		l.ShortItemMonths = 18
	}
	if l.MinWidthPercent <= 0 {
		l.MinWidthPercent = 0.5
	}
	if l.RowHeight <= 0 {
		l.RowHeight = 50
	}
	if l.ItemHeight <= 0 {
		l.ItemHeight = 40
	}
	if l.MergedRowHeight <= 0 {
		l.MergedRowHeight = 100
	}
	if l.MergedItemHeight <= 0 {
		l.MergedItemHeight = 80
	}

	if c.Capture.Width <= 0 {
		c.Capture.Width = 1600
	}
	if c.Capture.Height <= 0 {
		c.Capture.Height = 900
	}
	if c.Capture.TimeoutSeconds <= 0 {
		c.Capture.TimeoutSeconds = 30
	}
}

// Validate reports settings Normalize cannot repair.
func (c *Config) Validate() error {
	if c.Window.EndYear <= c.Window.StartYear {
		return fmt.Errorf("config: window end_year %d must be after start_year %d", c.Window.EndYear, c.Window.StartYear)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone; empty means time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LayoutOptions converts the config into timeline.Options.
func (c *Config) LayoutOptions(loc *time.Location) timeline.Options {
	const day = 24 * time.Hour
	const avgMonth = time.Duration(30.44 * float64(day))

	return timeline.Options{
		Window:           timeline.YearWindow(c.Window.StartYear, c.Window.EndYear, loc),
		OverlaySection:   c.Layout.OverlaySection,
		MergeSections:    c.Layout.MergeSections,
		MergeGap:         time.Duration(c.Layout.MergeGapDays) * day,
		ShortItem:        time.Duration(c.Layout.ShortItemMonths) * avgMonth,
		MinWidth:         c.Layout.MinWidthPercent,
		RowHeight:        c.Layout.RowHeight,
		ItemHeight:       c.Layout.ItemHeight,
		MergedRowHeight:  c.Layout.MergedRowHeight,
		MergedItemHeight: c.Layout.MergedItemHeight,
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms (parent directory created as needed) and returned.
//   - Otherwise the YAML is read, unmarshalled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600 perms.
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

	tmp, err := os.CreateTemp(dir, ".careerline-config-*.tmp")
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
