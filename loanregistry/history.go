package loanregistry

import "slices"

// MaxHistoryEntries caps the audit trail of one loan key. Older entries are evicted.
const MaxHistoryEntries = 10

// Action tags a history entry.
type Action string

const (
	ActionStartLoan    Action = "start-loan"
	ActionAccessDenied Action = "access-denied"
	ActionEndLoan      Action = "end-loan"
	ActionExtendLoan   Action = "extend-loan"
)

// HistoryEntry records one action taken on a loan key.
type HistoryEntry struct {
	Timestamp Height
	Action    Action
	Success   bool
}

// History is the audit trail of one loan key, newest entry first.
type History []HistoryEntry

// prepend returns a new History with entry in front, dropping the oldest entries
// beyond MaxHistoryEntries. The receiver is left untouched.
func (h History) prepend(entry HistoryEntry) History {
	n := min(len(h)+1, MaxHistoryEntries)
	out := make(History, n)
	out[0] = entry
	copy(out[1:], h)

	return out
}

// Latest returns the newest entry.
func (h History) Latest() (HistoryEntry, bool) {
	if len(h) == 0 {
		return HistoryEntry{}, false
	}

	return h[0], true
}

func (h History) clone() History {
	return slices.Clone(h)
}
