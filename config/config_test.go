package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := load(viper.New(), t.TempDir())
	if err != nil {
		t.Fatalf("Expected no error without config file, got: %v", err)
	}

	if cfg.Database.Driver != "none" {
		t.Errorf("Expected database driver 'none', got '%s'", cfg.Database.Driver)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Crawler.MaxDepth != 3 {
		t.Errorf("Expected max depth 3, got %d", cfg.Crawler.MaxDepth)
	}
	if cfg.Crawler.OutputDir != "output" {
		t.Errorf("Expected output dir 'output', got '%s'", cfg.Crawler.OutputDir)
	}
	if cfg.Crawler.Converter != "scan" {
		t.Errorf("Expected converter 'scan', got '%s'", cfg.Crawler.Converter)
	}
	if cfg.GetCrawlDelay() != 100*time.Millisecond {
		t.Errorf("Expected delay 100ms, got %v", cfg.GetCrawlDelay())
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
database:
  driver: sqlite
  url: ./site2md.db
crawler:
  root: https://example.com/
  maxdepth: 5
  delay: 250ms
  converter: full
  renderhosts:
    - app.example.com
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := load(viper.New(), dir)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Database.Driver != "sqlite" || cfg.Database.URL != "./site2md.db" {
		t.Errorf("Unexpected database section: %+v", cfg.Database)
	}
	if cfg.Crawler.Root != "https://example.com/" {
		t.Errorf("Expected root 'https://example.com/', got '%s'", cfg.Crawler.Root)
	}
	if cfg.Crawler.MaxDepth != 5 {
		t.Errorf("Expected max depth 5, got %d", cfg.Crawler.MaxDepth)
	}
	if cfg.GetCrawlDelay() != 250*time.Millisecond {
		t.Errorf("Expected delay 250ms, got %v", cfg.GetCrawlDelay())
	}
	if len(cfg.Crawler.RenderHosts) != 1 || cfg.Crawler.RenderHosts[0] != "app.example.com" {
		t.Errorf("Unexpected render hosts: %v", cfg.Crawler.RenderHosts)
	}
	// Untouched keys keep their defaults.
	if cfg.Crawler.UserAgent != "site2md/1.0" {
		t.Errorf("Expected default user agent, got '%s'", cfg.Crawler.UserAgent)
	}
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv("SITE2MD_CRAWLER_ROOT", "https://env.example.com")

	cfg, err := load(viper.New(), t.TempDir())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.Crawler.Root != "https://env.example.com" {
		t.Errorf("Expected root from environment, got '%s'", cfg.Crawler.Root)
	}
}

func TestDurationFallbacks(t *testing.T) {
	cfg := &Config{}
	cfg.Crawler.Delay = "not-a-duration"
	cfg.Crawler.CrawlInterval = "soon"

	if cfg.GetCrawlDelay() != 100*time.Millisecond {
		t.Errorf("Expected fallback delay 100ms, got %v", cfg.GetCrawlDelay())
	}
	if cfg.GetCrawlDuration() != 24*time.Hour {
		t.Errorf("Expected fallback interval 24h, got %v", cfg.GetCrawlDuration())
	}
}
