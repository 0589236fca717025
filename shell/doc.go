// Package shell connects the loan registry to an event journal.
//
// It maps domain events to storable events and back (JSON payloads plus uuid based
// message metadata), records events through JournalRecorder, and rehydrates a
// Registry from the latest snapshot and the events appended after it.
package shell
