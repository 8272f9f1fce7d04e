// Package status provides a thread-safe status tracker for the led-sequencer daemon.
// It is read by the HTTP handlers and by MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/led-sequencer/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	Table       string
	Chip        string
	LEDPins     [logic.NumLEDs]int
	ButtonPin   int
	DebounceMs  int64
	HeartbeatMs int64
	Broker      string // empty = MQTT disabled
	HTTPAddr    string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	State         logic.State
	Pattern       logic.Pattern
	Running       bool
	Pending       bool
	Counts        logic.Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update records the sequencer state. Called from runLoop on every tick
// and after every sequencer event.
func (t *Tracker) Update(state logic.State, pattern logic.Pattern, running, pending bool, counts logic.Counts) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.Pattern = pattern
	t.snap.Running = running
	t.snap.Pending = pending
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
