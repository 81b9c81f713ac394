package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/romangod6/site2md/config"
	"github.com/romangod6/site2md/internal/crawler"
)

func TestRunOnce_ReturnsError(t *testing.T) {
	err := runOnce(crawler.NewCrawler(nil, nil), "   ")
	if !errors.Is(err, crawler.ErrEmptyRoot) {
		t.Errorf("Expected ErrEmptyRoot to be returned, got %v", err)
	}
}

func TestOpenStore(t *testing.T) {
	cfg := &config.Config{}
	for _, driver := range []string{"", "none", " NONE "} {
		cfg.Database.Driver = driver
		store, err := openStore(cfg)
		if err != nil || store != nil {
			t.Errorf("Expected no store for driver %q, got %v, %v", driver, store, err)
		}
	}

	cfg.Database.Driver = "sqlite"
	cfg.Database.URL = filepath.Join(t.TempDir(), "site2md.db")
	store, err := openStore(cfg)
	if err != nil {
		t.Fatalf("Expected sqlite store, got: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if _, err := os.Stat(cfg.Database.URL); err != nil {
		t.Errorf("Expected database file to exist: %v", err)
	}
}

func TestNewCrawler_RejectsUnknownConverter(t *testing.T) {
	cfg := &config.Config{}
	cfg.Crawler.Converter = "pandoc"

	if _, err := newCrawler(cfg, nil); err == nil {
		t.Error("Expected error for an unsupported converter")
	}
}
