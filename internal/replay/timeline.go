package replay

import "sort"

// timeline owns one symbol's ordered snapshot sequence plus the cursor
// marking "now". Cursor invariant: 0 <= cursor < len(ticks) whenever the
// sequence is non-empty. An empty timeline is a valid no-data state.
type timeline struct {
	ticks  []Ticker
	cursor int
}

func newTimeline(ticks []Ticker) *timeline {
	// Stable sort keeps the original relative order of equal timestamps,
	// so replaying the same seed twice walks the same sequence.
	sort.SliceStable(ticks, func(i, j int) bool {
		return ticks[i].Timestamp < ticks[j].Timestamp
	})
	return &timeline{ticks: ticks}
}

func (t *timeline) empty() bool {
	return len(t.ticks) == 0
}

// current returns the snapshot under the cursor, or false on an empty
// timeline.
func (t *timeline) current() (Ticker, bool) {
	if t.empty() {
		return Ticker{}, false
	}
	return t.ticks[t.cursor], true
}

// step moves the cursor forward, clamping at the last index. Over-
// advancing is not an error: a short timeline simply parks at its end
// while longer ones keep moving.
func (t *timeline) step(n int) {
	if t.empty() || n <= 0 {
		return
	}
	next := t.cursor + n
	if last := len(t.ticks) - 1; next > last {
		next = last
	}
	t.cursor = next
}

// seek positions the cursor at the rightmost snapshot whose timestamp is
// <= ts. When ts precedes the first snapshot the cursor stays where it
// was.
func (t *timeline) seek(ts int64) {
	if t.empty() {
		return
	}
	idx := sort.Search(len(t.ticks), func(i int) bool {
		return t.ticks[i].Timestamp > ts
	}) - 1
	if idx >= 0 {
		t.cursor = idx
	}
}
