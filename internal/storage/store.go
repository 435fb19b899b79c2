// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/DrewDeMo/finance/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateBill is returned when inserting a bill that would violate the
// (user_id, name, due_date) uniqueness guard. The recurrence expander relies
// on this to stay idempotent across overlapping load cycles.
var ErrDuplicateBill = errors.New("bill already exists for user, name and due date")

// Store defines the interface for bill and user storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateBill persists a new bill and populates its ID.
	// Returns ErrDuplicateBill if (user_id, name, due_date) already exists.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves a bill by ID, scoped to the owning user.
	// Returns ErrNotFound if it does not exist or belongs to another user.
	GetBill(ctx context.Context, userID, billID string) (*models.Bill, error)

	// ListBillsByRange retrieves all bills for the user whose due date falls
	// within [from, to] inclusive, ordered by due date ascending.
	ListBillsByRange(ctx context.Context, userID string, from, to time.Time) ([]*models.Bill, error)

	// ListBills retrieves every bill for the user, ordered by due date.
	ListBills(ctx context.Context, userID string) ([]*models.Bill, error)

	// UpdateBill updates an existing bill keyed by its ID.
	// Returns ErrNotFound if the bill does not exist for the user.
	UpdateBill(ctx context.Context, bill *models.Bill) error

	// DeleteBill removes a bill. Returns ErrNotFound if absent.
	DeleteBill(ctx context.Context, userID, billID string) error

	// ListUserIDs returns the IDs of every user with at least one bill.
	// Used by the periodic sweep to run reconciliation per user.
	ListUserIDs(ctx context.Context) ([]string, error)

	// CreateUser inserts a new user account.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email. Returns nil, nil if absent.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID. Returns nil, nil if absent.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Close releases any resources held by the store.
	Close() error
}
