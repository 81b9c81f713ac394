package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Driver string
		URL    string
	}
	Server struct {
		Enabled bool
		Port    int
	}
	Crawler struct {
		Root          string
		UserAgent     string
		MaxDepth      int
		Delay         string
		OutputDir     string
		Converter     string
		RenderHosts   []string
		RespectRobots bool
		CrawlInterval string
		LogDir        string
	}
}

func LoadConfig() (*Config, error) {
	return load(viper.New(), ".", "./config")
}

func load(v *viper.Viper, paths ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("site2md")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Default values
	v.SetDefault("database.driver", "none")
	v.SetDefault("server.port", 8080)
	v.SetDefault("crawler.root", "")
	v.SetDefault("crawler.useragent", "site2md/1.0")
	v.SetDefault("crawler.maxdepth", 3)
	v.SetDefault("crawler.delay", "100ms")
	v.SetDefault("crawler.outputdir", "output")
	v.SetDefault("crawler.converter", "scan")
	v.SetDefault("crawler.renderhosts", []string{})
	v.SetDefault("crawler.respectrobots", false)
	v.SetDefault("crawler.crawlinterval", "24h")
	v.SetDefault("crawler.logdir", "logs")

	if err := v.ReadInConfig(); err != nil {
		// Defaults and environment are enough to run without a file.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) GetCrawlDuration() time.Duration {
	duration, err := time.ParseDuration(c.Crawler.CrawlInterval)
	if err != nil {
		return 24 * time.Hour
	}
	return duration
}

// GetCrawlDelay returns the politeness delay used by the native crawl fallback.
func (c *Config) GetCrawlDelay() time.Duration {
	delay, err := time.ParseDuration(c.Crawler.Delay)
	if err != nil || delay < 0 {
		return 100 * time.Millisecond
	}
	return delay
}
