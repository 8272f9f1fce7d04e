package logic

import (
	"fmt"
	"sort"
	"time"
)

// PatternTable maps each live state to the LEDs it lights.
// Off always maps to all LEDs dark.
type PatternTable struct {
	Name  string
	AllOn Pattern
	TwoOn Pattern
	OneOn Pattern
}

// AllOff is the output applied when the sequence completes.
var AllOff = Pattern{}

// Built-in tables. TableFirst keeps the first LED lit to the end,
// TableLast keeps the last one.
var (
	TableFirst = PatternTable{
		Name:  "first",
		AllOn: Pattern{true, true, true},
		TwoOn: Pattern{true, true, false},
		OneOn: Pattern{true, false, false},
	}
	TableLast = PatternTable{
		Name:  "last",
		AllOn: Pattern{true, true, true},
		TwoOn: Pattern{false, true, true},
		OneOn: Pattern{false, false, true},
	}
)

// DefaultTable is the mapping used when none is configured.
var DefaultTable = TableFirst

var tables = map[string]PatternTable{
	TableFirst.Name: TableFirst,
	TableLast.Name:  TableLast,
}

// LookupTable returns the built-in table with the given name.
func LookupTable(name string) (PatternTable, error) {
	t, ok := tables[name]
	if !ok {
		return PatternTable{}, fmt.Errorf("unknown pattern table %q (want one of %v)", name, TableNames())
	}
	return t, nil
}

// TableNames lists the built-in table names in sorted order.
func TableNames() []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Output returns the pattern shown while in state s.
func (t PatternTable) Output(s State) Pattern {
	switch s {
	case StateAllOn:
		return t.AllOn
	case StateTwoOn:
		return t.TwoOn
	case StateOneOn:
		return t.OneOn
	}
	return AllOff
}

// Start begins a sequence. It always enters AllOn regardless of history.
func (t PatternTable) Start() (State, Pattern) {
	return StateAllOn, t.AllOn
}

// Advance computes the transition taken when the alarm fires in state cur.
// done reports that the sequence reached Off and the alarm must not be re-armed.
// Off is not a live input; it maps to itself with done set.
func (t PatternTable) Advance(cur State) (next State, out Pattern, done bool) {
	switch cur {
	case StateAllOn:
		next = StateTwoOn
	case StateTwoOn:
		next = StateOneOn
	default:
		return StateOff, AllOff, true
	}
	return next, t.Output(next), false
}

// Heartbeat decides when a periodic status event is due.
type Heartbeat struct {
	startTime time.Time
	last      time.Time
}

// NewHeartbeat creates a Heartbeat whose first interval starts at startTime.
func NewHeartbeat(startTime time.Time) *Heartbeat {
	return &Heartbeat{startTime: startTime, last: startTime}
}

// Check returns heartbeat data if the interval has elapsed since the last
// heartbeat (or startup). Returns nil if the interval has not elapsed, or if
// interval is <= 0 (disabled).
func (h *Heartbeat) Check(now time.Time, interval time.Duration, counts Counts) *HeartbeatData {
	if interval <= 0 {
		return nil
	}
	if now.Sub(h.last) < interval {
		return nil
	}
	h.last = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(h.startTime),
		Counts:    counts,
	}
}
