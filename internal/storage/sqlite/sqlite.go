// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	moderncsqlite "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/YashMarke130105/pen-perfect-playground/internal/models"
	"github.com/YashMarke130105/pen-perfect-playground/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas in the DSN apply to every pooled connection, not just the first one.
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateProject persists a new project to the database.
func (s *SQLiteStore) CreateProject(ctx context.Context, project *models.Project) error {
	if project.OwnerID == "" {
		return fmt.Errorf("owner id required")
	}
	project.ID = uuid.New().String()
	project.CreatedAt = s.now().UnixMilli()
	project.UpdatedAt = project.CreatedAt
	if project.Title == "" {
		project.Title = models.DefaultTitle
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, owner_id, title, html_code, css_code, js_code, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		project.ID,
		project.OwnerID,
		project.Title,
		project.Source.Markup,
		project.Source.Style,
		project.Source.Script,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}

	return nil
}

// GetProject retrieves a project by ID.
func (s *SQLiteStore) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	project := &models.Project{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, html_code, css_code, js_code, created_at, updated_at
		FROM projects
		WHERE id = ?`,
		projectID,
	).Scan(
		&project.ID,
		&project.OwnerID,
		&project.Title,
		&project.Source.Markup,
		&project.Source.Style,
		&project.Source.Script,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", projectID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// UpdateProject saves title and sources of a project owned by callerID.
// updated_at moves to the current time, or one millisecond past the stored value
// when the clock has not advanced, so it strictly increases on every save.
func (s *SQLiteStore) UpdateProject(ctx context.Context, callerID string, project *models.Project) error {
	if project.Title == "" {
		project.Title = models.DefaultTitle
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE projects
		SET title = ?, html_code = ?, css_code = ?, js_code = ?, updated_at = MAX(?, updated_at + 1)
		WHERE id = ? AND owner_id = ?`,
		project.Title,
		project.Source.Markup,
		project.Source.Style,
		project.Source.Script,
		s.now().UnixMilli(),
		project.ID,
		callerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if err := s.checkOwnedWrite(ctx, result, project.ID); err != nil {
		return err
	}

	stored, err := s.GetProject(ctx, project.ID)
	if err != nil {
		return err
	}
	*project = *stored
	return nil
}

// DeleteProject removes a project owned by callerID.
func (s *SQLiteStore) DeleteProject(ctx context.Context, callerID, projectID string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM projects WHERE id = ? AND owner_id = ?",
		projectID, callerID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return s.checkOwnedWrite(ctx, result, projectID)
}

// checkOwnedWrite tells a missing project apart from a foreign one
// when an owner-scoped write touched no rows.
func (s *SQLiteStore) checkOwnedWrite(ctx context.Context, result sql.Result, projectID string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var ownerID string
	err = s.db.QueryRowContext(ctx, "SELECT owner_id FROM projects WHERE id = ?", projectID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("project %s: %w", projectID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to look up project owner: %w", err)
	}
	return fmt.Errorf("project %s: %w", projectID, storage.ErrPermissionDenied)
}

// ListProjects returns gallery rows joined with their authors' usernames.
func (s *SQLiteStore) ListProjects(ctx context.Context, filter models.ProjectFilter) ([]models.ProjectSummary, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.OwnerID != "" {
		where = append(where, "p.owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		where = append(where, `p.title LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(q)+"%")
	}

	query := `
		SELECT p.id, p.owner_id, p.title, p.html_code, p.css_code, p.js_code,
		       p.created_at, p.updated_at, COALESCE(u.username, '')
		FROM projects p
		LEFT JOIN users u ON u.id = p.owner_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + orderClause(filter.OrderBy)
	if filter.Limit > 0 || filter.Offset > 0 {
		// SQLite needs a LIMIT before OFFSET; -1 means no limit.
		limit := -1
		if filter.Limit > 0 {
			limit = filter.Limit
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, max(filter.Offset, 0))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.ProjectSummary, 0, 16)
	for rows.Next() {
		var p models.ProjectSummary
		if err := rows.Scan(
			&p.ID,
			&p.OwnerID,
			&p.Title,
			&p.Source.Markup,
			&p.Source.Style,
			&p.Source.Script,
			&p.CreatedAt,
			&p.UpdatedAt,
			&p.AuthorUsername,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		summaries = append(summaries, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}

	return summaries, nil
}

func orderClause(order models.ProjectOrder) string {
	switch order {
	case models.OrderCreatedDesc:
		return "p.created_at DESC, p.id"
	case models.OrderTitleAsc:
		return "p.title COLLATE NOCASE ASC, p.id"
	default:
		return "p.updated_at DESC, p.id"
	}
}

// escapeLike escapes LIKE wildcards so a search matches them literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *moderncsqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
