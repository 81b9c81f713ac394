package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/romangod6/site2md/internal/models"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
            id TEXT PRIMARY KEY,
            root TEXT NOT NULL,
            status TEXT NOT NULL,
            source TEXT,
            discovered INTEGER NOT NULL DEFAULT 0,
            converted INTEGER NOT NULL DEFAULT 0,
            failed INTEGER NOT NULL DEFAULT 0,
            errors TEXT,
            started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            finished_at DATETIME
        )`,
		`CREATE TABLE IF NOT EXISTS documents (
            id TEXT PRIMARY KEY,
            run_id TEXT,
            url TEXT UNIQUE NOT NULL,
            filename TEXT NOT NULL,
            title TEXT,
            description TEXT,
            markdown TEXT,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(run_id) REFERENCES runs(id)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_documents_run_id ON documents(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_url ON documents(url)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return nil
}

func (s *SQLiteStore) CreateRun(ctx context.Context, run *models.Run) error {
	query := `
        INSERT INTO runs (id, root, status, source, discovered, converted, failed, errors, started_at, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	errorsJSON, err := json.Marshal(run.Errors)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query,
		run.ID.String(),
		run.Root,
		string(run.Status),
		run.Source,
		run.Discovered,
		run.Converted,
		run.Failed,
		string(errorsJSON),
		run.StartedAt,
		run.FinishedAt,
	)

	return err
}

func (s *SQLiteStore) UpdateRun(ctx context.Context, run *models.Run) error {
	query := `
        UPDATE runs
        SET status = ?, source = ?, discovered = ?, converted = ?, failed = ?, errors = ?, finished_at = ?
        WHERE id = ?
    `

	errorsJSON, err := json.Marshal(run.Errors)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query,
		string(run.Status),
		run.Source,
		run.Discovered,
		run.Converted,
		run.Failed,
		string(errorsJSON),
		run.FinishedAt,
		run.ID.String(),
	)

	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	query := `
        SELECT id, root, status, source, discovered, converted, failed, errors, started_at, finished_at
        FROM runs
        WHERE id = ?
    `

	runs, err := s.queryRuns(ctx, query, id.String())
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return runs[0], nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit, offset int) ([]*models.Run, error) {
	query := `
        SELECT id, root, status, source, discovered, converted, failed, errors, started_at, finished_at
        FROM runs
        ORDER BY started_at DESC
        LIMIT ? OFFSET ?
    `

	return s.queryRuns(ctx, query, limit, offset)
}

func (s *SQLiteStore) queryRuns(ctx context.Context, query string, args ...interface{}) ([]*models.Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		var run models.Run
		var idStr, status string
		var source, errorsJSON sql.NullString
		var finishedAt sql.NullTime

		err := rows.Scan(
			&idStr,
			&run.Root,
			&status,
			&source,
			&run.Discovered,
			&run.Converted,
			&run.Failed,
			&errorsJSON,
			&run.StartedAt,
			&finishedAt,
		)

		if err != nil {
			return nil, err
		}

		run.ID, _ = uuid.Parse(idStr)
		run.Status = models.RunStatus(status)
		run.Source = source.String
		if errorsJSON.Valid {
			json.Unmarshal([]byte(errorsJSON.String), &run.Errors)
		}
		if finishedAt.Valid {
			t := finishedAt.Time
			run.FinishedAt = &t
		}

		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

func (s *SQLiteStore) SaveDocument(ctx context.Context, doc *models.Document) error {
	query := `
        INSERT INTO documents (id, run_id, url, filename, title, description, markdown, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(url) DO UPDATE SET
            run_id = excluded.run_id,
            filename = excluded.filename,
            title = excluded.title,
            description = excluded.description,
            markdown = excluded.markdown,
            updated_at = CURRENT_TIMESTAMP
    `

	_, err := s.db.ExecContext(ctx, query,
		doc.ID.String(),
		doc.RunID.String(),
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

func (s *SQLiteStore) GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	query := `
        SELECT id, run_id, url, filename, title, description, markdown, created_at, updated_at
        FROM documents
        WHERE id = ?
    `

	docs, err := s.queryDocuments(ctx, query, id.String())
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

func (s *SQLiteStore) ListDocuments(ctx context.Context, limit, offset int) ([]*models.Document, error) {
	query := `
        SELECT id, run_id, url, filename, title, description, markdown, created_at, updated_at
        FROM documents
        ORDER BY created_at DESC
        LIMIT ? OFFSET ?
    `

	return s.queryDocuments(ctx, query, limit, offset)
}

func (s *SQLiteStore) SearchDocuments(ctx context.Context, searchTerm string, limit, offset int) ([]*models.Document, error) {
	query := `
        SELECT id, run_id, url, filename, title, description, markdown, created_at, updated_at
        FROM documents
        WHERE title LIKE ? OR markdown LIKE ?
        ORDER BY created_at DESC
        LIMIT ? OFFSET ?
    `

	searchPattern := "%" + searchTerm + "%"
	return s.queryDocuments(ctx, query, searchPattern, searchPattern, limit, offset)
}

func (s *SQLiteStore) GetDocumentsByRun(ctx context.Context, runID uuid.UUID, limit, offset int) ([]*models.Document, error) {
	query := `
        SELECT id, run_id, url, filename, title, description, markdown, created_at, updated_at
        FROM documents
        WHERE run_id = ?
        ORDER BY created_at DESC
        LIMIT ? OFFSET ?
    `

	return s.queryDocuments(ctx, query, runID.String(), limit, offset)
}

func (s *SQLiteStore) queryDocuments(ctx context.Context, query string, args ...interface{}) ([]*models.Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		var doc models.Document
		var idStr string
		var runIDStr, title, description, markdown sql.NullString

		err := rows.Scan(
			&idStr,
			&runIDStr,
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

		doc.ID, _ = uuid.Parse(idStr)
		doc.RunID, _ = uuid.Parse(runIDStr.String)
		doc.Title = title.String
		doc.Description = description.String
		doc.Markdown = markdown.String

		docs = append(docs, &doc)
	}

	return docs, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
