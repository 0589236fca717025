// Package journal defines the storage contract for the loan registry's event journal.
//
// A journal is an append-only, totally ordered log of StorableEvent values plus a small
// table of named Snapshot values. Events are appended with optimistic concurrency:
// the writer states the sequence number it last saw and the append fails with
// ErrConcurrencyConflict if anything was appended in between.
//
// StorableEvent and Snapshot are built on scalars and raw JSON, so the journal stays
// agnostic of the registry's domain events. Conversion lives in the shell package,
// the SQL implementation in journal/sqlengine.
package journal
