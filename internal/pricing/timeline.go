package pricing

import (
	"sort"

	"github.com/angelmondragon/eggtrade-backend/pkg/types"
)

type dated[V any] struct {
	date  types.Date
	value V
}

// timeline is a per-key series of dated values kept in ascending date order,
// answering "latest value on or before a date" with a binary search.
type timeline[V any] struct {
	entries []dated[V]
}

func (t *timeline[V]) add(date types.Date, value V) {
	t.entries = append(t.entries, dated[V]{date: date, value: value})
}

func (t *timeline[V]) seal() {
	sort.Slice(t.entries, func(i, j int) bool {
		return t.entries[i].date.Before(t.entries[j].date)
	})
}

// latestOnOrBefore returns the entry with the greatest date not after asOf.
func (t *timeline[V]) latestOnOrBefore(asOf types.Date) (V, types.Date, bool) {
	// first index strictly after asOf; the candidate sits just before it
	idx := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].date.After(asOf)
	})
	if idx == 0 {
		var zero V
		return zero, types.Date{}, false
	}
	entry := t.entries[idx-1]
	return entry.value, entry.date, true
}
