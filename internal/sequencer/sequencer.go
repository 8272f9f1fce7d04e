// Package sequencer runs the LED count-down sequence. It ties the button
// edge handler, the polling trigger gate and the chained alarm to the
// transition rules in package logic.
//
// Three execution contexts touch a Sequencer: OnEdge (gpio event goroutine),
// Poll (main loop) and the alarm callback (timer goroutine). Shared state is
// held in atomics with one writer per field at any time:
//
//   - pressed: set by OnEdge, cleared by Poll.
//   - running: set by Poll, cleared by the alarm at completion.
//   - state:   written by Poll while no alarm is armed, then by the alarm.
//
// pressed and running live in one word so that "pressed while running"
// can never be observed.
package sequencer

import (
	"log"
	"sync/atomic"

	"github.com/sweeney/led-sequencer/internal/gpio"
	"github.com/sweeney/led-sequencer/internal/logic"
)

const (
	flagPressed uint32 = 1 << iota
	flagRunning
)

// eventBuffer bounds the notification queue. Senders never block; when the
// consumer falls behind, events are dropped.
const eventBuffer = 32

// Sequencer owns the sequence state and drives the LEDs.
type Sequencer struct {
	leds  gpio.LEDs
	table logic.PatternTable
	clock Clock

	flags atomic.Uint32
	state atomic.Int32

	events chan logic.Event

	presses   atomic.Int64
	dropped   atomic.Int64
	starts    atomic.Int64
	steps     atomic.Int64
	completed atomic.Int64
}

// New creates an idle Sequencer: state Off, no press pending, not running.
// LEDs are not written until the first sequence starts.
func New(leds gpio.LEDs, table logic.PatternTable, clock Clock) *Sequencer {
	return &Sequencer{
		leds:   leds,
		table:  table,
		clock:  clock,
		events: make(chan logic.Event, eventBuffer),
	}
}

// Events returns the channel on which transitions are reported.
func (s *Sequencer) Events() <-chan logic.Event {
	return s.events
}

// OnEdge handles a falling edge on the button. While a sequence is running
// the edge is dropped; otherwise it sets the pending flag, coalescing with any
// press not yet consumed by Poll. Safe to call from any goroutine; never blocks.
func (s *Sequencer) OnEdge() {
	for {
		f := s.flags.Load()
		if f&flagRunning != 0 {
			s.dropped.Add(1)
			s.emit(logic.EventPressDropped, logic.State(s.state.Load()))
			return
		}
		if s.flags.CompareAndSwap(f, f|flagPressed) {
			s.presses.Add(1)
			return
		}
	}
}

// Poll is the trigger gate, called by the main loop every logic.PollInterval.
// If a press is pending and no sequence is running, it consumes the press and
// starts a sequence. Returns whether a sequence was started.
func (s *Sequencer) Poll() bool {
	if !s.flags.CompareAndSwap(flagPressed, flagRunning) {
		return false
	}

	next, out := s.table.Start()
	s.write(out)
	s.state.Store(int32(next))
	s.starts.Add(1)
	s.emit(logic.EventStart, next)

	s.clock.AfterFunc(logic.StepInterval, s.fire)
	return true
}

// fire is the alarm callback. It advances one step and re-arms itself until
// the sequence completes.
func (s *Sequencer) fire() {
	cur := logic.State(s.state.Load())
	next, out, done := s.table.Advance(cur)

	s.write(out)
	s.state.Store(int32(next))

	if !done {
		s.steps.Add(1)
		s.emit(logic.EventStep, next)
		s.clock.AfterFunc(logic.StepInterval, s.fire)
		return
	}

	// LEDs and state are final before running clears, so a sequence started
	// by the next Poll is never overwritten by this one.
	s.completed.Add(1)
	s.flags.And(^flagRunning)
	s.emit(logic.EventComplete, next)
}

func (s *Sequencer) write(p logic.Pattern) {
	if err := s.leds.Write([gpio.NumLEDs]bool(p)); err != nil {
		log.Printf("led write error: %v", err)
	}
}

func (s *Sequencer) emit(typ logic.EventType, state logic.State) {
	ev := logic.Event{
		Timestamp: s.clock.Now(),
		Type:      typ,
		State:     state,
		Pattern:   s.table.Output(state),
	}
	select {
	case s.events <- ev:
	default:
	}
}

// State returns the current sequence state.
func (s *Sequencer) State() logic.State {
	return logic.State(s.state.Load())
}

// Pattern returns the pattern shown for the current state.
func (s *Sequencer) Pattern() logic.Pattern {
	return s.table.Output(s.State())
}

// Table returns the LED mapping in use.
func (s *Sequencer) Table() logic.PatternTable {
	return s.table
}

// Running reports whether a sequence is in flight.
func (s *Sequencer) Running() bool {
	return s.flags.Load()&flagRunning != 0
}

// Pending reports whether a press is waiting for the next Poll.
func (s *Sequencer) Pending() bool {
	return s.flags.Load()&flagPressed != 0
}

// Counts returns activity counters since startup.
func (s *Sequencer) Counts() logic.Counts {
	return logic.Counts{
		Presses:   int(s.presses.Load()),
		Dropped:   int(s.dropped.Load()),
		Starts:    int(s.starts.Load()),
		Steps:     int(s.steps.Load()),
		Completed: int(s.completed.Load()),
	}
}
