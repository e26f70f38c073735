/*
store.go - Persistence interface for tenancy aggregates

PURPOSE:
  Defines the boundary between the engine and the database. The tenancy
  is stored as a whole aggregate: payments, notices, deductions and the
  funds pool load and save with their tenancy. This matches the
  single-writer-per-tenancy model - a command loads the aggregate under
  the tenancy lock, mutates it in memory, and saves it back atomically.

IMPLEMENTATIONS:
  - store/memory.go: In-memory, for tests and development
  - store/sqlite/sqlite.go: Production SQLite

SEE ALSO:
  - lifecycle.go: The only caller of Save
*/
package lodger

import "context"

// Store persists tenancy aggregates.
type Store interface {
	// Save upserts the whole aggregate atomically.
	Save(ctx context.Context, t *Tenancy) error

	// Get loads an aggregate. Returns NotFoundError if absent.
	Get(ctx context.Context, id TenancyID) (*Tenancy, error)

	// ListByLandlord returns the landlord's tenancies, any status.
	ListByLandlord(ctx context.Context, landlordID LandlordID) ([]*Tenancy, error)

	// List returns every tenancy. Used by the deadline sweep.
	List(ctx context.Context) ([]*Tenancy, error)
}
