package gpio

import "sync"

// FakeLEDs is a test double that records every write.
// Safe for concurrent use, since writes arrive from alarm callbacks.
type FakeLEDs struct {
	mu sync.Mutex

	// writes contains every level vector written, in order.
	writes [][NumLEDs]bool

	// closed tracks if Close was called
	closed bool

	// WriteError, if set, will be returned by Write (the write is still recorded).
	WriteError error
}

// NewFakeLEDs creates a FakeLEDs with all LEDs off.
func NewFakeLEDs() *FakeLEDs {
	return &FakeLEDs{}
}

// Write records the levels.
func (f *FakeLEDs) Write(levels [NumLEDs]bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, levels)
	return f.WriteError
}

// Close turns the LEDs off and marks them closed.
func (f *FakeLEDs) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, [NumLEDs]bool{})
	f.closed = true
	return nil
}

// Levels returns the most recently written levels (all off if never written).
func (f *FakeLEDs) Levels() [NumLEDs]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.writes) == 0 {
		return [NumLEDs]bool{}
	}
	return f.writes[len(f.writes)-1]
}

// Writes returns a copy of every write so far.
func (f *FakeLEDs) Writes() [][NumLEDs]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][NumLEDs]bool, len(f.writes))
	copy(out, f.writes)
	return out
}

// Closed reports whether Close was called.
func (f *FakeLEDs) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Reset clears recorded writes.
func (f *FakeLEDs) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = nil
	f.closed = false
	f.WriteError = nil
}

// FakeButton is a test double that delivers scripted presses.
type FakeButton struct {
	onPress func()

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeButton creates a FakeButton that calls onPress for each press.
func NewFakeButton(onPress func()) *FakeButton {
	return &FakeButton{onPress: onPress}
}

// Press simulates one falling edge. Presses after Close are ignored.
func (b *FakeButton) Press() {
	if b.Closed {
		return
	}
	b.onPress()
}

// PressN simulates n falling edges in quick succession.
func (b *FakeButton) PressN(n int) {
	for i := 0; i < n; i++ {
		b.Press()
	}
}

// Close stops edge delivery.
func (b *FakeButton) Close() error {
	b.Closed = true
	return nil
}
