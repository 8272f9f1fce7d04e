package internal

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sweeney/led-sequencer/internal/gpio"
	"github.com/sweeney/led-sequencer/internal/logic"
	"github.com/sweeney/led-sequencer/internal/metrics"
	"github.com/sweeney/led-sequencer/internal/mqtt"
	"github.com/sweeney/led-sequencer/internal/sequencer"
	"github.com/sweeney/led-sequencer/internal/status"
)

// pipeline wires the fakes together the way main does, with the main loop
// driven by hand: step() is one poll tick followed by PollInterval of time.
type pipeline struct {
	leds      *gpio.FakeLEDs
	clock     *sequencer.FakeClock
	seq       *sequencer.Sequencer
	button    *gpio.FakeButton
	publisher *mqtt.FakePublisher
	tracker   *status.Tracker
	metrics   *metrics.Metrics
}

func newPipeline(table logic.PatternTable) *pipeline {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	p := &pipeline{
		leds:      gpio.NewFakeLEDs(),
		clock:     sequencer.NewFakeClock(start),
		publisher: mqtt.NewFakePublisher(),
		tracker:   status.NewTracker(start, status.Config{Table: table.Name}),
		metrics:   metrics.New(),
	}
	p.seq = sequencer.New(p.leds, table, p.clock)
	p.button = gpio.NewFakeButton(p.seq.OnEdge)
	return p
}

func (p *pipeline) drain() {
	for {
		select {
		case ev := <-p.seq.Events():
			p.metrics.Observe(ev)
			p.publisher.Publish(ev)
		default:
			p.tracker.Update(p.seq.State(), p.seq.Pattern(), p.seq.Running(), p.seq.Pending(), p.seq.Counts())
			return
		}
	}
}

func (p *pipeline) step() {
	p.seq.Poll()
	p.drain()
	p.clock.Advance(logic.PollInterval)
	p.drain()
}

func (p *pipeline) run(d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += logic.PollInterval {
		p.step()
	}
}

// TestIntegrationFullFlow tests the complete flow from button to MQTT using fakes.
func TestIntegrationFullFlow(t *testing.T) {
	for _, table := range []logic.PatternTable{logic.TableFirst, logic.TableLast} {
		t.Run(table.Name, func(t *testing.T) {
			p := newPipeline(table)

			p.button.Press()
			p.step()

			snap := p.tracker.Snapshot()
			if snap.State != logic.StateAllOn || !snap.Running {
				t.Fatalf("after first poll: state=%s running=%v", snap.State, snap.Running)
			}

			p.run(10 * time.Second)

			var leds []string
			for _, w := range p.leds.Writes() {
				leds = append(leds, logic.Pattern(w).String())
			}
			want := []string{
				table.AllOn.String(),
				table.TwoOn.String(),
				table.OneOn.String(),
				"000",
			}
			if len(leds) != len(want) {
				t.Fatalf("LED writes: got %v, want %v", leds, want)
			}
			for i := range want {
				if leds[i] != want[i] {
					t.Errorf("write %d: got %s, want %s", i, leds[i], want[i])
				}
			}

			if len(p.publisher.Payloads) != 4 {
				t.Fatalf("expected 4 payloads, got %d", len(p.publisher.Payloads))
			}
			var last mqtt.Payload
			if err := json.Unmarshal(p.publisher.Payloads[3], &last); err != nil {
				t.Fatalf("invalid payload JSON: %v", err)
			}
			if last.Sequence.Event != "SEQUENCE_COMPLETE" || last.Sequence.State != "OFF" || last.Sequence.LEDs != "000" {
				t.Errorf("unexpected final payload: %+v", last.Sequence)
			}

			snap = p.tracker.Snapshot()
			if snap.State != logic.StateOff || snap.Running || snap.Pending {
				t.Errorf("final tracker: state=%s running=%v pending=%v", snap.State, snap.Running, snap.Pending)
			}
			if snap.Counts.Completed != 1 || snap.Counts.Steps != 2 {
				t.Errorf("final counts: %+v", snap.Counts)
			}
		})
	}
}

// TestIntegrationPressDuringSequence checks that a press while running is
// dropped end to end and a later press starts a fresh sequence.
func TestIntegrationPressDuringSequence(t *testing.T) {
	p := newPipeline(logic.TableFirst)

	p.button.Press()
	p.run(4 * time.Second) // now in TWO_ON
	p.button.Press()
	p.run(6 * time.Second) // complete
	p.button.Press()
	p.run(10 * time.Second)

	counts := p.seq.Counts()
	if counts.Starts != 2 {
		t.Errorf("expected 2 starts, got %d", counts.Starts)
	}
	if counts.Dropped != 1 {
		t.Errorf("expected 1 dropped press, got %d", counts.Dropped)
	}
	if counts.Completed != 2 {
		t.Errorf("expected 2 completions, got %d", counts.Completed)
	}

	var events []logic.EventType
	for _, ev := range p.publisher.Events {
		events = append(events, ev.Type)
	}
	if len(events) != 9 {
		t.Fatalf("expected 9 events, got %d: %v", len(events), events)
	}
	if events[2] != logic.EventPressDropped {
		t.Fatalf("expected PRESS_DROPPED after first step, got %v", events)
	}
	if p.publisher.Events[2].State != logic.StateTwoOn {
		t.Errorf("dropped press should report TWO_ON, got %s", p.publisher.Events[2].State)
	}
}

// TestIntegrationMetricsAndStatus checks that counters, gauges and the
// status JSON agree after a burst of presses.
func TestIntegrationMetricsAndStatus(t *testing.T) {
	p := newPipeline(logic.TableLast)

	p.button.PressN(5)
	p.run(10 * time.Second)

	// 4 pre-created event series plus the state and leds gauges.
	n, err := testutil.GatherAndCount(p.metrics.Registry())
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 6 {
		t.Errorf("expected 6 series, got %d", n)
	}

	expected := `
# HELP led_sequencer_leds_lit Number of LEDs currently lit.
# TYPE led_sequencer_leds_lit gauge
led_sequencer_leds_lit 0
# HELP led_sequencer_state Current sequence state (0=OFF 1=ALL_ON 2=TWO_ON 3=ONE_ON).
# TYPE led_sequencer_state gauge
led_sequencer_state 0
`
	if err := testutil.GatherAndCompare(p.metrics.Registry(), strings.NewReader(expected),
		"led_sequencer_leds_lit", "led_sequencer_state"); err != nil {
		t.Errorf("unexpected gauges: %v", err)
	}

	out := status.FormatJSON(p.tracker.Snapshot())
	var parsed status.StatusJSON
	if err := json.Unmarshal(out, &parsed); err != nil {
		t.Fatalf("invalid status JSON: %v", err)
	}
	c := parsed.Status.Counts
	if c.Presses != 5 || c.Starts != 1 || c.Completed != 1 || c.Dropped != 0 {
		t.Errorf("status counts: %+v", c)
	}
	if parsed.Status.Config.Table != "last" {
		t.Errorf("status table: got %q, want last", parsed.Status.Config.Table)
	}
}
