package utils

import (
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type CrawlerLogger struct {
	file       *os.File
	logger     *log.Logger
	multiWrite io.Writer
}

// SiteName turns a site root into a file-system friendly name.
func SiteName(root string) string {
	name := root
	if u, err := url.Parse(root); err == nil && u.Host != "" {
		name = u.Host
	}
	replacer := strings.NewReplacer(" ", "_", ":", "_", "/", "_", "\\", "_")
	name = replacer.Replace(strings.ToLower(strings.TrimSpace(name)))
	if name == "" {
		return "site"
	}
	return name
}

// NewCrawlerLogger opens logsDir/<site>/crawl_<site>_<timestamp>.log and
// mirrors every line to stdout.
func NewCrawlerLogger(logsDir, root string) (*CrawlerLogger, error) {
	site := SiteName(root)

	if logsDir == "" {
		logsDir = "logs"
	}

	// Create site directory inside logs
	siteDir := filepath.Join(logsDir, site)
	if err := os.MkdirAll(siteDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create site log directory: %w", err)
	}

	// Create log file with timestamp
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(siteDir, fmt.Sprintf("crawl_%s_%s.log", site, timestamp))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	// Create multi-writer for both file and stdout
	multiWrite := io.MultiWriter(os.Stdout, file)
	logger := log.New(multiWrite, "", log.Ldate|log.Ltime|log.Lmicroseconds)

	return &CrawlerLogger{
		file:       file,
		logger:     logger,
		multiWrite: multiWrite,
	}, nil
}

// Path returns the log file location.
func (cl *CrawlerLogger) Path() string {
	return cl.file.Name()
}

func (cl *CrawlerLogger) LogInfo(format string, v ...interface{}) {
	cl.log("INFO", format, v...)
}

func (cl *CrawlerLogger) LogWarn(format string, v ...interface{}) {
	cl.log("WARN", format, v...)
}

func (cl *CrawlerLogger) LogError(format string, v ...interface{}) {
	cl.log("ERROR", format, v...)
}

func (cl *CrawlerLogger) LogDebug(format string, v ...interface{}) {
	cl.log("DEBUG", format, v...)
}

func (cl *CrawlerLogger) log(level string, format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	cl.logger.Printf("[%s] %s", level, message)
}

func (cl *CrawlerLogger) Close() error {
	return cl.file.Close()
}
