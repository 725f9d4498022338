package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds the settings shared by the fetcher, cache and output writer.
type Config struct {
	CacheDir         string
	DBPath           string
	UseCache         bool
	PageTTL          time.Duration
	ItemTTL          time.Duration
	RequestTimeout   time.Duration
	UserAgent        string
	MaxConcurrent    int
	MaxPages         int
	OutputPrefix     string
	OutputExt        string
	CondenseStepSize int
}

// Default returns the configuration used when no flags override it.
func Default() Config {
	cacheDir := filepath.Join(userCacheDir(), "hnflat")
	return Config{
		CacheDir:         cacheDir,
		DBPath:           filepath.Join(cacheDir, "cache.db"),
		PageTTL:          0,
		ItemTTL:          10 * time.Minute,
		RequestTimeout:   30 * time.Second,
		UserAgent:        "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
		MaxConcurrent:    10,
		MaxPages:         10,
		OutputPrefix:     "hn",
		OutputExt:        "md",
		CondenseStepSize: 1,
	}
}

// WithCacheDir points the cache at dir and turns it on.
func (c Config) WithCacheDir(dir string) Config {
	c.CacheDir = dir
	c.DBPath = filepath.Join(dir, "cache.db")
	c.UseCache = true
	return c
}

func userCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache")
}
