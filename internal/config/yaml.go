package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from the YAML file at path. If path is empty it
// looks for "config.yaml" in the working directory and falls back to the
// built-in defaults when no file exists. Environment overrides are applied
// after the file, then the result is validated.
func Load(path string) (*Config, error) {
	cfg := New()

	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields every code path depends on.
func (c *Config) Validate() error {
	if c.Smoothing.LaserWavenumber <= 0 {
		return fmt.Errorf("smoothing.lwn must be positive, got %g", c.Smoothing.LaserWavenumber)
	}
	if c.Smoothing.Cutoff < 0 {
		return fmt.Errorf("smoothing.cutoff must not be negative, got %g", c.Smoothing.Cutoff)
	}
	if c.Smoothing.WindowLength < 2 {
		return fmt.Errorf("smoothing.npt must be at least 2, got %d", c.Smoothing.WindowLength)
	}
	if c.Preview.RefreshRate <= 0 {
		return fmt.Errorf("preview.refresh_rate must be positive, got %s", c.Preview.RefreshRate)
	}
	if c.SelectedSite != "" {
		site, ok := c.Sites[c.SelectedSite]
		if !ok {
			return fmt.Errorf("selected_site %q has no entry under sites", c.SelectedSite)
		}
		if site.IP == "" {
			return fmt.Errorf("site %q: ip must be set", c.SelectedSite)
		}
	}
	return nil
}

// Site returns the selected site's settings.
func (c *Config) Site() (Site, error) {
	if c.SelectedSite == "" {
		return Site{}, fmt.Errorf("no selected_site configured")
	}
	site, ok := c.Sites[c.SelectedSite]
	if !ok {
		return Site{}, fmt.Errorf("selected_site %q has no entry under sites", c.SelectedSite)
	}
	return site, nil
}

// FTSPREV_{...} environment variables override file settings, mirroring how
// the deployments run the tool from systemd units.
func (c *Config) applyEnvOverrides() {
	if v, ok := os.LookupEnv("FTSPREV_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv("FTSPREV_SITE"); ok {
		c.SelectedSite = v
	}
	if v, ok := os.LookupEnv("FTSPREV_WS_ADDRESS"); ok {
		c.Transport.WebSocketAddress = v
		c.Transport.WebSocketEnabled = true
	}
}
