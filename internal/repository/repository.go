// Package repository declares the persistence contracts the services depend on.
//
// Implementations live in sub-packages (repository/sqlite). Services accept
// these interfaces so tests can substitute in-memory fakes.
//
// ERROR CONTRACT:
//   - a missing row is reported as an *apperror.AppError wrapping apperror.ErrNotFound
//   - a duplicate email on CreateUser wraps apperror.ErrConflict
//   - anything else is an opaque, wrapped store error
package repository

import (
	"context"

	"github.com/sakif/cahier-api/internal/model"
)

// UserRepository persists accounts. Email lookups are case-sensitive.
type UserRepository interface {
	// CreateUser assigns user.ID and inserts the row.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// UpdateUser overwrites every mutable column of the row with user.ID.
	UpdateUser(ctx context.Context, user *model.User) error
}

// CDCRepository persists documents. Every write refreshes LastModified.
type CDCRepository interface {
	// CreateCDC assigns cdc.ID and cdc.LastModified and inserts the row.
	CreateCDC(ctx context.Context, cdc *model.CDC) error
	GetCDC(ctx context.Context, id string) (*model.CDC, error)
	// ListCDCs returns every document, most recently modified first.
	ListCDCs(ctx context.Context) ([]model.CDC, error)
	// SearchCDCsByTitle is a case-insensitive substring match on Title.
	SearchCDCsByTitle(ctx context.Context, fragment string) ([]model.CDC, error)
	UpdateCDC(ctx context.Context, cdc *model.CDC) error
	DeleteCDC(ctx context.Context, id string) error
	CDCExists(ctx context.Context, id string) (bool, error)
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
