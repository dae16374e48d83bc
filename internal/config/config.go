package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Series is one tracked manga title: its AniList id for progress lookup and
// a provider-specific locator for chapter scraping.
type Series struct {
	Name      string `yaml:"name"`
	AnilistID int    `yaml:"anilist_id"`
	Provider  string `yaml:"provider"`
	SiteID    string `yaml:"site_id"`
}

type Config struct {
	User      string `yaml:"user"`
	UserAgent string `yaml:"user_agent"`
	Cookie    string `yaml:"cookie"`
	Debug     bool   `yaml:"debug"`

	// APISpacingMs is the minimum gap between AniList calls;
	// APIMaxRetries caps the 429 retry loop, 0 meaning retry forever.
	APISpacingMs  int `yaml:"api_spacing_ms"`
	APIMaxRetries int `yaml:"api_max_retries"`

	Series []Series `yaml:"series"`
}

type Options struct {
	IgnoreConfig  bool
	Debug         bool
	User          string
	UserAgent     string
	Cookie        string
	APISpacingMs  int
	APIMaxRetries int
}

func DefaultConfig() *Config {
	return &Config{
		User:          "",
		UserAgent:     "",
		Cookie:        "",
		Debug:         false,
		APISpacingMs:  700,
		APIMaxRetries: 0,
		Series:        []Series{},
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	return &c, nil
}

// LoadMerged loads the active profile and applies CLI flag overrides on top.
// The result is not yet validated; callers that start a run must call
// Validate first.
func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := ActivePath()
	if err == ErrNoConfig || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `mangaup config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Debug {
		c.Debug = true
	}
	if o.User != "" {
		c.User = o.User
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.APISpacingMs != 0 {
		c.APISpacingMs = o.APISpacingMs
	}
	if o.APIMaxRetries != 0 {
		c.APIMaxRetries = o.APIMaxRetries
	}
}

func normalizeDefaults(c *Config) {
	if c.APISpacingMs <= 0 {
		c.APISpacingMs = 700
	}
	if c.APIMaxRetries < 0 {
		c.APIMaxRetries = 0
	}
}

func (c *Config) Print() {
	fmt.Printf(" -user: %s\n", c.User)
	fmt.Printf(" -api_spacing_ms: %d\n", c.APISpacingMs)
	if c.APIMaxRetries > 0 {
		fmt.Printf(" -api_max_retries: %d\n", c.APIMaxRetries)
	}
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
	if c.UserAgent != "" {
		fmt.Printf(" -user_agent: %s\n", c.UserAgent)
	}
	if c.Cookie != "" {
		fmt.Printf(" -cookie: (set)\n")
	}
	fmt.Printf(" -series: %d tracked\n", len(c.Series))
	for _, s := range c.Series {
		fmt.Printf("    %s  [%s] anilist=%d site=%s\n", s.Name, s.Provider, s.AnilistID, s.SiteID)
	}
}
