//go:build linux

package gpio

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

const consumer = "led-sequencer"

// RealLEDs drives LEDs on actual hardware using Linux GPIO character device.
type RealLEDs struct {
	chip  *gpiocdev.Chip
	lines *gpiocdev.Lines
}

// NewRealLEDs requests the given pins as outputs, initially off.
func NewRealLEDs(chipName string, pins [NumLEDs]int) (*RealLEDs, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	lines, err := chip.RequestLines(pins[:], gpiocdev.AsOutput(0, 0, 0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request LED pins %v: %w", pins, err)
	}

	return &RealLEDs{chip: chip, lines: lines}, nil
}

// Write sets all LED lines in a single request.
func (l *RealLEDs) Write(levels [NumLEDs]bool) error {
	values := make([]int, NumLEDs)
	for i, on := range levels {
		if on {
			values[i] = 1
		}
	}
	if err := l.lines.SetValues(values); err != nil {
		return fmt.Errorf("set LED values %v: %w", values, err)
	}
	return nil
}

// Close drives the LEDs off and releases GPIO resources.
func (l *RealLEDs) Close() error {
	var errs []error

	if l.lines != nil {
		if err := l.lines.SetValues(make([]int, NumLEDs)); err != nil {
			errs = append(errs, fmt.Errorf("turn off LEDs: %w", err))
		}
		if err := l.lines.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close LED lines: %w", err))
		}
	}
	if l.chip != nil {
		if err := l.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealButton watches a button line for presses using kernel edge detection.
type RealButton struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealButton requests pin as an input with pull-up, so the idle level is
// high and a press pulls it low. onPress runs on the gpiocdev event goroutine
// for every falling edge and must not block. A debounce > 0 enables the
// kernel debounce filter on the line.
func NewRealButton(chipName string, pin int, debounce time.Duration, onPress func()) (*RealButton, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			if evt.Type == gpiocdev.LineEventFallingEdge {
				onPress()
			}
		}),
	}
	if debounce > 0 {
		opts = append(opts, gpiocdev.WithDebounce(debounce))
	}

	line, err := chip.RequestLine(pin, opts...)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button pin %d: %w", pin, err)
	}

	return &RealButton{chip: chip, line: line}, nil
}

// Close stops edge delivery and releases GPIO resources.
func (b *RealButton) Close() error {
	var errs []error

	if b.line != nil {
		if err := b.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button line: %w", err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
