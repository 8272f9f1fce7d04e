// Package logic contains the pure LED sequencing rules.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Fixed timing of the sequence. Neither value is configurable.
const (
	StepInterval = 3000 * time.Millisecond // delay between alarm firings
	PollInterval = 100 * time.Millisecond  // trigger gate cadence, also the debounce window
)

// State is the position of the sequence.
type State int32

const (
	StateOff State = iota
	StateAllOn
	StateTwoOn
	StateOneOn
)

func (s State) String() string {
	switch s {
	case StateOff:
		return "OFF"
	case StateAllOn:
		return "ALL_ON"
	case StateTwoOn:
		return "TWO_ON"
	case StateOneOn:
		return "ONE_ON"
	}
	return "UNKNOWN"
}

// NumLEDs is the number of LED outputs driven by the sequence.
const NumLEDs = 3

// Pattern is the output level of each LED, index 0 first.
type Pattern [NumLEDs]bool

// String renders the pattern as a bit string, e.g. "110".
func (p Pattern) String() string {
	b := make([]byte, NumLEDs)
	for i, on := range p {
		if on {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}

// Count returns how many LEDs are lit.
func (p Pattern) Count() int {
	n := 0
	for _, on := range p {
		if on {
			n++
		}
	}
	return n
}

// EventType identifies a sequencer event.
type EventType string

const (
	EventStart        EventType = "SEQUENCE_START"
	EventStep         EventType = "STEP"
	EventComplete     EventType = "SEQUENCE_COMPLETE"
	EventPressDropped EventType = "PRESS_DROPPED"
)

// Event is a sequencer transition to be logged and published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	State     State
	Pattern   Pattern
}

// Counts tracks sequencer activity since startup.
type Counts struct {
	Presses   int // edges seen while idle, coalesced ones included
	Dropped   int // edges discarded while a sequence was running
	Starts    int
	Steps     int
	Completed int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    Counts
}
