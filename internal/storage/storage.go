package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/romangod6/site2md/internal/models"
)

type Store interface {
	Initialize() error
	Close() error

	// Run operations
	CreateRun(ctx context.Context, run *models.Run) error
	UpdateRun(ctx context.Context, run *models.Run) error
	GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error)
	ListRuns(ctx context.Context, limit, offset int) ([]*models.Run, error)

	// Document operations
	SaveDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error)
	ListDocuments(ctx context.Context, limit, offset int) ([]*models.Document, error)
	SearchDocuments(ctx context.Context, query string, limit, offset int) ([]*models.Document, error)
	GetDocumentsByRun(ctx context.Context, runID uuid.UUID, limit, offset int) ([]*models.Document, error)
}

// Open connects to the store for driver and creates its tables.
func Open(driver, url string) (Store, error) {
	var (
		store Store
		err   error
	)

	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		store, err = NewSQLiteStore(url)
	case "postgres", "postgresql":
		store, err = NewPostgresStore(url)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	if err := store.Initialize(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize %s store: %w", driver, err)
	}
	return store, nil
}
