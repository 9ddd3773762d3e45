package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"
	"github.com/wolfeidau/inspect/internal/models"
	"github.com/wolfeidau/inspect/internal/store"
)

// DB is an in-memory storage engine. One lock guards every table so a unit of work
// sees and writes a consistent view across entities.
// This implementation is for testing and local development only - data is lost on restart.
type DB struct {
	mu sync.RWMutex

	tables tables
}

// tables holds immutable records. Writers always replace a record, never mutate it,
// so a shallow copy of the maps is a complete snapshot.
type tables struct {
	principals    map[uuid.UUID]*models.Principal    // principal_id -> Principal
	organizations map[uuid.UUID]*models.Organization // org_id -> Organization
	inspections   map[uuid.UUID]*models.Inspection   // inspection_id -> Inspection
}

func (t tables) snapshot() tables {
	return tables{
		principals:    maps.Clone(t.principals),
		organizations: maps.Clone(t.organizations),
		inspections:   maps.Clone(t.inspections),
	}
}

var _ store.Store = (*DB)(nil)

// New creates an empty in-memory engine.
func New() *DB {
	return &DB{
		tables: tables{
			principals:    make(map[uuid.UUID]*models.Principal),
			organizations: make(map[uuid.UUID]*models.Organization),
			inspections:   make(map[uuid.UUID]*models.Inspection),
		},
	}
}

// Stores returns views that take the engine lock per call.
func (db *DB) Stores() store.Stores {
	return db.views(false)
}

func (db *DB) views(held bool) store.Stores {
	return store.Stores{
		Principals:    &PrincipalStore{db: db, held: held},
		Organizations: &OrganizationStore{db: db, held: held},
		Inspections:   &InspectionStore{db: db, held: held},
	}
}

// Do runs fn holding the engine lock. If fn fails every write it made is rolled back.
// The stores passed to fn must not be used after fn returns.
func (db *DB) Do(ctx context.Context, fn func(store.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	saved := db.tables.snapshot()
	if err := fn(db.views(true)); err != nil {
		db.tables = saved
		return err
	}

	return nil
}

// Ping always succeeds.
func (db *DB) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op.
func (db *DB) Close() {}

// rlock takes the read lock unless the caller already holds the write lock.
func (db *DB) rlock(held bool) func() {
	if held {
		return func() {}
	}
	db.mu.RLock()
	return db.mu.RUnlock
}

// lock takes the write lock unless the caller already holds it.
func (db *DB) lock(held bool) func() {
	if held {
		return func() {}
	}
	db.mu.Lock()
	return db.mu.Unlock
}
