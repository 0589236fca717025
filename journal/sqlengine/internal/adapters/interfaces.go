package adapters

import "context"

// DBAdapter is the journal's view of a connection pool. Query may be routed to a
// replica when the context asks for eventual consistency, so appends pin strong
// consistency on their context. Exec (schema and snapshot upserts) always hits the primary.
type DBAdapter interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Exec(ctx context.Context, query string) (DBResult, error)
}

// DBRows is what the journal scans events, snapshots and sequence numbers from.
// An append that returns no row lost the optimistic sequence guard, unless Err says otherwise.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult is the outcome of an Exec; the journal only checks its error.
type DBResult interface {
	RowsAffected() (int64, error)
}
