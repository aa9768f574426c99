package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indicates the store does not exist
	ErrNotFound = errors.New("store: not found")
)

// Status represents the lifecycle status of a seller store
type Status string

const (
	// StatusActive stores are scheduled for synchronization
	StatusActive Status = "active"
	// StatusInactive stores are ignored by the scheduler
	StatusInactive Status = "inactive"
)

// IsValid returns true if the status is valid
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// Store is a registered seller store. Stores are created by the
// store-management surface and read-only to the sync pipeline.
type Store struct {
	ID   uuid.UUID
	Name string
	// ClientID and ClientSecret are the marketplace credentials,
	// encrypted at rest. Decrypt before handing them to the token provider.
	ClientID     string
	ClientSecret string
	Status       Status
}

// IsActive returns true if the store should be synchronized
func (s *Store) IsActive() bool {
	return s.Status == StatusActive
}

// Repository defines the persistence interface for stores
type Repository interface {
	// FindActive returns all stores with active status
	FindActive(ctx context.Context) ([]Store, error)

	// FindByID returns a single store, ErrNotFound when missing
	FindByID(ctx context.Context, id uuid.UUID) (*Store, error)
}
