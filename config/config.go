// Package config loads the settings of the rate graph binaries from YAML and the environment.
package config

import (
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
	"strings"
	"time"
)

// Config settings shared by the server and the converter
type Config struct {
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Rates struct {
		// File conversion file to load rates from; when empty rates come from coinbase
		File string `yaml:"file"`
		// RefreshInterval how often the server rebuilds its graph, 0 disables reloading
		RefreshInterval time.Duration `yaml:"refresh_interval"`
		Coinbase        struct {
			URL          string        `yaml:"url"`
			Bases        []string      `yaml:"bases"`
			Timeout      time.Duration `yaml:"timeout"`
			CacheRefresh time.Duration `yaml:"cache_refresh"`
		} `yaml:"coinbase"`
	} `yaml:"rates"`
}

func defaultConfig() Config {
	var c Config
	c.Log.Level = "info"
	c.Server.Addr = ":8080"
	c.Rates.RefreshInterval = 5 * time.Minute
	c.Rates.Coinbase.URL = "https://api.coinbase.com/v2"
	c.Rates.Coinbase.Bases = []string{"USD", "EUR"}
	c.Rates.Coinbase.Timeout = 5 * time.Second
	c.Rates.Coinbase.CacheRefresh = 1 * time.Minute
	return c
}

// Load reads path over the defaults, when path is not empty, then applies
// RATEGRAPH_* environment overrides. An empty path falls back to RATEGRAPH_CONFIG.
func Load(path string) (Config, error) {
	c := defaultConfig()
	if path == "" {
		path = os.Getenv("RATEGRAPH_CONFIG")
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return Config{}, fmt.Errorf("parsing config [%v]: %w", path, err)
		}
	}
	if v := os.Getenv("RATEGRAPH_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("RATEGRAPH_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("RATEGRAPH_RATES_FILE"); v != "" {
		c.Rates.File = v
	}
	if v := os.Getenv("RATEGRAPH_COINBASE_URL"); v != "" {
		c.Rates.Coinbase.URL = v
	}
	if v := os.Getenv("RATEGRAPH_COINBASE_BASES"); v != "" {
		c.Rates.Coinbase.Bases = strings.Split(v, ",")
	}
	if c.Rates.File == "" && len(c.Rates.Coinbase.Bases) == 0 {
		return Config{}, fmt.Errorf("config: either rates.file or rates.coinbase.bases is required")
	}
	return c, nil
}
