package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/led-sequencer/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	State         string     `json:"state"`
	LEDs          string     `json:"leds"`
	Running       bool       `json:"running"`
	Pending       bool       `json:"pending"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"counts"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Enabled   bool   `json:"enabled"`
	Connected bool   `json:"connected"`
	Broker    string `json:"broker,omitempty"`
}

// CountsJSON is the JSON representation of sequencer counters.
type CountsJSON struct {
	Presses   int `json:"presses"`
	Dropped   int `json:"dropped"`
	Starts    int `json:"starts"`
	Steps     int `json:"steps"`
	Completed int `json:"completed"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Table       string `json:"table"`
	Chip        string `json:"chip"`
	LEDPins     []int  `json:"led_pins"`
	ButtonPin   int    `json:"button_pin"`
	StepMs      int64  `json:"step_ms"`
	PollMs      int64  `json:"poll_ms"`
	DebounceMs  int64  `json:"debounce_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	HTTPAddr    string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		State:         snap.State.String(),
		LEDs:          snap.Pattern.String(),
		Running:       snap.Running,
		Pending:       snap.Pending,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT: MQTTStatus{
			Enabled:   snap.Config.Broker != "",
			Connected: snap.MQTTConnected,
			Broker:    snap.Config.Broker,
		},
		Counts: CountsJSON{
			Presses:   snap.Counts.Presses,
			Dropped:   snap.Counts.Dropped,
			Starts:    snap.Counts.Starts,
			Steps:     snap.Counts.Steps,
			Completed: snap.Counts.Completed,
		},
		Config: ConfigJSON{
			Table:       snap.Config.Table,
			Chip:        snap.Config.Chip,
			LEDPins:     snap.Config.LEDPins[:],
			ButtonPin:   snap.Config.ButtonPin,
			StepMs:      logic.StepInterval.Milliseconds(),
			PollMs:      logic.PollInterval.Milliseconds(),
			DebounceMs:  snap.Config.DebounceMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
