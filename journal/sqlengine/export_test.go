package sqlengine

import "github.com/AntonStoeckl/timed-access-loans/journal"

// BuildSelectQuery exposes the filter query builder to the external tests.
func (j *Journal) BuildSelectQuery(filter journal.Filter) (string, error) {
	return j.buildSelectQuery(filter)
}
