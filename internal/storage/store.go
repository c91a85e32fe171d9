// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/YashMarke130105/pen-perfect-playground/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrPermissionDenied is returned when the caller does not own the record it tries to change.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrEmailExists is returned when an account with the same email already exists.
	ErrEmailExists = errors.New("email already registered")
)

// ProjectStore is the record store for projects.
// Reads are public; writes are restricted to the owning account.
type ProjectStore interface {
	// CreateProject persists a new project.
	// The project's ID, CreatedAt and UpdatedAt fields are populated by the store.
	CreateProject(ctx context.Context, project *models.Project) error

	// GetProject retrieves a project by its ID.
	// Returns ErrNotFound if the project does not exist.
	GetProject(ctx context.Context, projectID string) (*models.Project, error)

	// UpdateProject saves the title and sources of an existing project on behalf of callerID.
	// Returns ErrNotFound if the project does not exist and ErrPermissionDenied if
	// callerID is not its owner. On success project holds the stored record.
	UpdateProject(ctx context.Context, callerID string, project *models.Project) error

	// DeleteProject removes a project on behalf of callerID, with the same ownership rule as UpdateProject.
	DeleteProject(ctx context.Context, callerID, projectID string) error

	// ListProjects returns gallery rows matching filter.
	ListProjects(ctx context.Context, filter models.ProjectFilter) ([]models.ProjectSummary, error)
}

// UserStore is the record store for accounts.
type UserStore interface {
	// CreateUser persists a new account. Returns ErrEmailExists on a duplicate email.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns ErrNotFound if no account uses email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns ErrNotFound if the account does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// UpdateUsername changes the username of the account userID.
	UpdateUsername(ctx context.Context, userID, username string) (*models.User, error)
}

// Store defines the interface for all storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	ProjectStore
	UserStore

	// Close releases any resources held by the store.
	Close() error
}
