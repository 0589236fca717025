package journal

import "context"

// ConsistencyLevel tells a journal with a read replica where to read from.
type ConsistencyLevel int

const (
	// StrongConsistency reads from the primary. It is the default.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows reads from a replica that may lag behind.
	EventualConsistency
)

type contextKey string

// ConsistencyLevelKey is the context key carrying the ConsistencyLevel.
const ConsistencyLevelKey contextKey = "journal.consistency_level"

// WithStrongConsistency marks ctx for reads from the primary, e.g. before rehydrating
// a registry that is about to accept writes.
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency marks ctx for reads that may be served by a replica,
// e.g. for read-only reporting.
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, EventualConsistency)
}

// GetConsistencyLevel extracts the ConsistencyLevel from ctx, StrongConsistency if unset.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

// String implements fmt.Stringer.
func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
