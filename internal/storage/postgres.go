package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/romangod6/site2md/internal/models"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
            id UUID PRIMARY KEY,
            root VARCHAR(2048) NOT NULL,
            status VARCHAR(32) NOT NULL,
            source VARCHAR(32),
            discovered INTEGER NOT NULL DEFAULT 0,
            converted INTEGER NOT NULL DEFAULT 0,
            failed INTEGER NOT NULL DEFAULT 0,
            errors TEXT[],
            started_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
            finished_at TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS documents (
            id UUID PRIMARY KEY,
            run_id UUID REFERENCES runs(id),
            url VARCHAR(2048) UNIQUE NOT NULL,
            filename VARCHAR(1024) NOT NULL,
            title TEXT,
            description TEXT,
            markdown TEXT,
            created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE INDEX IF NOT EXISTS idx_documents_run_id ON documents(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_url ON documents(url)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_markdown_fts ON documents USING GIN (to_tsvector('english', markdown))`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, run *models.Run) error {
	query := `
        INSERT INTO runs (id, root, status, source, discovered, converted, failed, errors, started_at, finished_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `

	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.Root,
		string(run.Status),
		run.Source,
		run.Discovered,
		run.Converted,
		run.Failed,
		pq.Array(run.Errors),
		run.StartedAt,
		run.FinishedAt,
	)

	return err
}

func (s *PostgresStore) UpdateRun(ctx context.Context, run *models.Run) error {
	query := `
        UPDATE runs
        SET status = $1, source = $2, discovered = $3, converted = $4, failed = $5, errors = $6, finished_at = $7
        WHERE id = $8
    `

	_, err := s.db.ExecContext(ctx, query,
		string(run.Status),
		run.Source,
		run.Discovered,
		run.Converted,
		run.Failed,
		pq.Array(run.Errors),
		run.FinishedAt,
		run.ID,
	)

	return err
}

func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	query := `
        SELECT id, root, status, source, discovered, converted, failed, errors, started_at, finished_at
        FROM runs
        WHERE id = $1
    `

	runs, err := s.queryRuns(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return runs[0], nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit, offset int) ([]*models.Run, error) {
	query := `
        SELECT id, root, status, source, discovered, converted, failed, errors, started_at, finished_at
        FROM runs
        ORDER BY started_at DESC
        LIMIT $1 OFFSET $2
    `

	return s.queryRuns(ctx, query, limit, offset)
}

func (s *PostgresStore) queryRuns(ctx context.Context, query string, args ...interface{}) ([]*models.Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run := &models.Run{}
		var status string
		var source sql.NullString
		var errs []string

		err := rows.Scan(
			&run.ID,
			&run.Root,
			&status,
			&source,
			&run.Discovered,
			&run.Converted,
			&run.Failed,
			pq.Array(&errs),
			&run.StartedAt,
			&run.FinishedAt,
		)

		if err != nil {
			return nil, err
		}

		run.Status = models.RunStatus(status)
		run.Source = source.String
		run.Errors = errs
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (s *PostgresStore) SaveDocument(ctx context.Context, doc *models.Document) error {
	query := `
        INSERT INTO documents (id, run_id, url, filename, title, description, markdown, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (url) DO UPDATE SET
            run_id = EXCLUDED.run_id,
            filename = EXCLUDED.filename,
            title = EXCLUDED.title,
            description = EXCLUDED.description,
            markdown = EXCLUDED.markdown,
            updated_at = CURRENT_TIMESTAMP
    `

	_, err := s.db.ExecContext(ctx, query,
		doc.ID,
		doc.RunID,
		doc.URL,
		doc.Filename,
		doc.Title,
		doc.Description,
		doc.Markdown,
		doc.CreatedAt,
		doc.UpdatedAt,
	)

	return err
}

func (s *PostgresStore) GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	query := `
        SELECT id, run_id, url, filename, title, description, markdown, created_at, updated_at
        FROM documents
        WHERE id = $1
    `

	docs, err := s.queryDocuments(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context, limit, offset int) ([]*models.Document, error) {
	query := `
        SELECT id, run_id, url, filename, title, description, markdown, created_at, updated_at
        FROM documents
        ORDER BY created_at DESC
        LIMIT $1 OFFSET $2
    `

	return s.queryDocuments(ctx, query, limit, offset)
}

func (s *PostgresStore) SearchDocuments(ctx context.Context, searchTerm string, limit, offset int) ([]*models.Document, error) {
	query := `
        SELECT id, run_id, url, filename, title, description, markdown, created_at, updated_at
        FROM documents
        WHERE to_tsvector('english', markdown) @@ plainto_tsquery('english', $1)
           OR title ILIKE '%' || $1 || '%'
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `

	return s.queryDocuments(ctx, query, searchTerm, limit, offset)
}

func (s *PostgresStore) GetDocumentsByRun(ctx context.Context, runID uuid.UUID, limit, offset int) ([]*models.Document, error) {
	query := `
        SELECT id, run_id, url, filename, title, description, markdown, created_at, updated_at
        FROM documents
        WHERE run_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `

	return s.queryDocuments(ctx, query, runID, limit, offset)
}

func (s *PostgresStore) queryDocuments(ctx context.Context, query string, args ...interface{}) ([]*models.Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc := &models.Document{}
		var runID uuid.NullUUID
		var title, description, markdown sql.NullString

		err := rows.Scan(
			&doc.ID,
			&runID,
			&doc.URL,
			&doc.Filename,
			&title,
			&description,
			&markdown,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		)

		if err != nil {
			return nil, err
		}

		doc.RunID = runID.UUID
		doc.Title = title.String
		doc.Description = description.String
		doc.Markdown = markdown.String
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
