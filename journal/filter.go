package journal

import (
	"cmp"
	"fmt"
	"slices"
)

// Filter selects events by type and by top-level payload fields.
// Items are combined with OR. Within an item, event types are combined with OR
// and predicates with AND. An empty Filter matches every event.
type Filter struct {
	items []FilterItem
}

func (f Filter) Items() []FilterItem {
	return f.items
}

// FilterItem is one alternative of a Filter.
type FilterItem struct {
	eventTypes []string
	predicates []FilterPredicate
}

func (fi FilterItem) EventTypes() []string {
	return fi.eventTypes
}

func (fi FilterItem) Predicates() []FilterPredicate {
	return fi.predicates
}

// FilterPredicate matches a top-level payload field against a value.
// Values are compared by their JSON representation, so numbers must be passed as numbers.
type FilterPredicate struct {
	key string
	val any
}

// P creates a FilterPredicate.
func P(key string, val any) FilterPredicate {
	return FilterPredicate{key: key, val: val}
}

func (fp FilterPredicate) Key() string {
	return fp.key
}

func (fp FilterPredicate) Val() any {
	return fp.val
}

// FilterBuilder builds a Filter. It must eventually be finalized with Finalize or MatchingAnyEvent.
type FilterBuilder interface {
	// Matching starts a new FilterItem.
	Matching() FilterItemBuilder

	// MatchingAnyEvent directly creates an empty Filter.
	MatchingAnyEvent() Filter
}

// FilterItemBuilder completes the current FilterItem.
type FilterItemBuilder interface {
	// AnyEventTypeOf adds event types to the current FilterItem. Empty and duplicate types are dropped.
	AnyEventTypeOf(eventType string, eventTypes ...string) FilterItemBuilder

	// AllPredicatesOf adds predicates to the current FilterItem, all of which must match.
	// Predicates with an empty key or a nil value are dropped.
	AllPredicatesOf(predicate FilterPredicate, predicates ...FilterPredicate) FilterItemBuilder

	// OrMatching finalizes the current FilterItem and starts a new one.
	OrMatching() FilterItemBuilder

	// Finalize returns the Filter. Items without event types and predicates are dropped.
	Finalize() Filter
}

type filterBuilder struct {
	filter  Filter
	current FilterItem
}

// BuildEventFilter creates a FilterBuilder.
func BuildEventFilter() FilterBuilder {
	return filterBuilder{}
}

func (fb filterBuilder) Matching() FilterItemBuilder {
	fb.current = FilterItem{}

	return fb
}

func (fb filterBuilder) MatchingAnyEvent() Filter {
	return Filter{}
}

func (fb filterBuilder) AnyEventTypeOf(eventType string, eventTypes ...string) FilterItemBuilder {
	all := append(slices.Clone(fb.current.eventTypes), eventType)
	all = append(all, eventTypes...)
	all = slices.DeleteFunc(all, func(e string) bool { return e == "" })
	slices.Sort(all)

	fb.current.eventTypes = slices.Clip(slices.Compact(all))

	return fb
}

func (fb filterBuilder) AllPredicatesOf(predicate FilterPredicate, predicates ...FilterPredicate) FilterItemBuilder {
	all := append(slices.Clone(fb.current.predicates), predicate)
	all = append(all, predicates...)
	all = slices.DeleteFunc(all, func(p FilterPredicate) bool { return p.key == "" || p.val == nil })
	slices.SortFunc(all, comparePredicates)

	fb.current.predicates = slices.Clip(slices.CompactFunc(all, func(a, b FilterPredicate) bool {
		return comparePredicates(a, b) == 0
	}))

	return fb
}

func (fb filterBuilder) OrMatching() FilterItemBuilder {
	fb.filter = fb.withCurrent()
	fb.current = FilterItem{}

	return fb
}

func (fb filterBuilder) Finalize() Filter {
	return fb.withCurrent()
}

func (fb filterBuilder) withCurrent() Filter {
	if len(fb.current.eventTypes) == 0 && len(fb.current.predicates) == 0 {
		return fb.filter
	}

	return Filter{items: append(slices.Clone(fb.filter.items), fb.current)}
}

func comparePredicates(a, b FilterPredicate) int {
	return cmp.Or(
		cmp.Compare(a.key, b.key),
		cmp.Compare(fmt.Sprint(a.val), fmt.Sprint(b.val)),
	)
}
