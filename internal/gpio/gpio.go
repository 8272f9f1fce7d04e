// Package gpio provides LED output and button input with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementations allow testing without hardware.
package gpio

// NumLEDs is the number of LED output lines.
const NumLEDs = 3

// LEDs drives the LED output lines.
type LEDs interface {
	// Write sets every LED at once, index 0 first. true = lit.
	Write(levels [NumLEDs]bool) error

	// Close turns the LEDs off and releases GPIO resources.
	Close() error
}

// Button delivers falling-edge (press) notifications to a handler
// supplied at construction.
type Button interface {
	// Close stops edge delivery and releases GPIO resources.
	Close() error
}

// Default pin definitions (BCM numbering)
const (
	DefaultChip      = "gpiochip0"
	DefaultPinLED0   = 11
	DefaultPinLED1   = 12
	DefaultPinLED2   = 13
	DefaultPinButton = 5
)

// DefaultLEDPins returns the default LED pins in output order.
func DefaultLEDPins() [NumLEDs]int {
	return [NumLEDs]int{DefaultPinLED0, DefaultPinLED1, DefaultPinLED2}
}
