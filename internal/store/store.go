package store

import (
	"context"
	"errors"
)

// ErrUnavailable marks failures of the storage engine itself (connection loss, timeouts).
// Callers treat it as transient and retryable.
var ErrUnavailable = errors.New("store unavailable")

// Stores groups the per-entity stores. Inside UnitOfWork.Do every store shares one unit.
type Stores struct {
	Principals    PrincipalStore
	Organizations OrganizationStore
	Inspections   InspectionStore
}

// UnitOfWork runs fn atomically: either every write made through the Stores passed
// to fn is applied, or none is.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(Stores) error) error
}

// Pinger reports whether the storage engine is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store is a storage engine: non-transactional views, atomic units and a health probe.
type Store interface {
	UnitOfWork
	Pinger

	// Stores returns views that run each call on its own.
	Stores() Stores

	// Close releases engine resources.
	Close()
}
