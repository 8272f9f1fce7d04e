// Command led-sequencer lights three LEDs in a count-down sequence when a button is pressed.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sweeney/led-sequencer/internal/config"
	"github.com/sweeney/led-sequencer/internal/gpio"
	"github.com/sweeney/led-sequencer/internal/logic"
	"github.com/sweeney/led-sequencer/internal/metrics"
	"github.com/sweeney/led-sequencer/internal/mqtt"
	"github.com/sweeney/led-sequencer/internal/sequencer"
	"github.com/sweeney/led-sequencer/internal/status"
	"github.com/sweeney/led-sequencer/internal/web"
)

func main() {
	cfg, printPatterns, err := parseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}

	if err := run(cfg, printPatterns); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// parseConfig builds the configuration from defaults, the optional --config
// file, and any flags set explicitly on the command line, in that order.
func parseConfig(fs *flag.FlagSet, args []string) (config.Config, bool, error) {
	def := config.Default()

	configPath := fs.String("config", "", "Path to TOML config file (optional)")
	chip := fs.String("chip", def.Chip, "GPIO chip name")
	pattern := fs.String("pattern", def.Pattern, fmt.Sprintf("LED pattern table %v", logic.TableNames()))
	pinLEDs := fs.String("pin-leds", joinInts(def.Pins.LEDs), "BCM pin numbers for the LEDs, comma separated")
	pinButton := fs.Int("pin-button", def.Pins.Button, "BCM pin number for the button")
	debounce := fs.Duration("debounce", time.Duration(def.Debounce), "Kernel edge debounce period (0 to disable)")
	broker := fs.String("broker", def.Broker, "MQTT broker address for telemetry (empty to disable)")
	httpAddr := fs.String("http", def.HTTP, "HTTP status address (empty to disable)")
	heartbeat := fs.Duration("heartbeat", time.Duration(def.Heartbeat), "Heartbeat interval (0 to disable)")
	printPatterns := fs.Bool("print-patterns", false, "Print the selected pattern table and exit")

	if err := fs.Parse(args); err != nil {
		return def, false, err
	}

	cfg := def
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return def, false, err
		}
		cfg = loaded
	}

	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "chip":
			cfg.Chip = *chip
		case "pattern":
			cfg.Pattern = *pattern
		case "pin-leds":
			pins, err := parseInts(*pinLEDs)
			if err != nil {
				flagErr = fmt.Errorf("--pin-leds: %w", err)
				return
			}
			cfg.Pins.LEDs = pins
		case "pin-button":
			cfg.Pins.Button = *pinButton
		case "debounce":
			cfg.Debounce = config.Duration(*debounce)
		case "broker":
			cfg.Broker = *broker
		case "http":
			cfg.HTTP = *httpAddr
		case "heartbeat":
			cfg.Heartbeat = config.Duration(*heartbeat)
		}
	})
	if flagErr != nil {
		return cfg, false, flagErr
	}

	if err := cfg.Validate(); err != nil {
		return cfg, false, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, *printPatterns, nil
}

func run(cfg config.Config, printPatterns bool) error {
	table, err := cfg.Table()
	if err != nil {
		return err
	}

	if printPatterns {
		writePatterns(os.Stdout, table)
		return nil
	}

	// Initialize GPIO
	leds, err := gpio.NewRealLEDs(cfg.Chip, cfg.LEDPins())
	if err != nil {
		return fmt.Errorf("init leds: %w", err)
	}
	defer func() {
		if err := leds.Close(); err != nil {
			log.Printf("close leds: %v", err)
		}
	}()

	seq := sequencer.New(leds, table, sequencer.SystemClock{})

	button, err := gpio.NewRealButton(cfg.Chip, cfg.Pins.Button, time.Duration(cfg.Debounce), seq.OnEdge)
	if err != nil {
		return fmt.Errorf("init button: %w", err)
	}
	defer button.Close()

	// Telemetry is optional; the sequence never depends on it.
	var publisher interface {
		mqtt.Publisher
		mqtt.ConnectionStatus
	} = mqtt.NopPublisher{}
	if cfg.Broker != "" {
		publisher = mqtt.NewRealPublisher(cfg.Broker)
	}
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), statusConfig(cfg, table))
	m := metrics.New()

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	}

	// Start HTTP status server
	if cfg.HTTP != "" {
		srv := web.New(cfg.HTTP, tracker, m.Handler())
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP)
	}

	log.Printf("started: chip=%s leds=%v button=%d pattern=%s debounce=%v",
		cfg.Chip, cfg.Pins.LEDs, cfg.Pins.Button, table.Name, time.Duration(cfg.Debounce))

	ticker := time.NewTicker(logic.PollInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(seq, publisher, publisher, tracker, m, time.Duration(cfg.Heartbeat), time.Now, ticker.C, sigCh)
}

// runLoop is the main loop: it polls the trigger gate on every tick and
// forwards sequencer events to the log, MQTT, metrics and status tracker.
func runLoop(seq *sequencer.Sequencer, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, m *metrics.Metrics, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	hb := logic.NewHeartbeat(now())

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)

			// Flush whatever the handlers queued before the signal.
			for drained := false; !drained; {
				select {
				case ev := <-seq.Events():
					handleEvent(ev, publisher, m)
				default:
					drained = true
				}
			}

			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}

			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				updateTracker(tracker, seq, mqttStatus)
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			}
			return nil

		case ev := <-seq.Events():
			handleEvent(ev, publisher, m)
			if tracker != nil {
				updateTracker(tracker, seq, mqttStatus)
			}

		case <-tick:
			t := now()
			seq.Poll()

			if tracker != nil {
				updateTracker(tracker, seq, mqttStatus)
			}

			if hbData := hb.Check(t, heartbeat, seq.Counts()); hbData != nil {
				log.Printf("heartbeat: uptime=%v starts=%d completed=%d dropped=%d",
					hbData.Uptime, hbData.Counts.Starts, hbData.Counts.Completed, hbData.Counts.Dropped)
				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

func handleEvent(ev logic.Event, publisher mqtt.Publisher, m *metrics.Metrics) {
	log.Printf("event: %s (state=%s leds=%s)", ev.Type, ev.State, ev.Pattern)
	if m != nil {
		m.Observe(ev)
	}
	if err := publisher.Publish(ev); err != nil {
		log.Printf("publish error: %v", err)
		// Don't crash on publish failure
	}
}

func updateTracker(tracker *status.Tracker, seq *sequencer.Sequencer, mqttStatus mqtt.ConnectionStatus) {
	tracker.Update(seq.State(), seq.Pattern(), seq.Running(), seq.Pending(), seq.Counts())
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}
}

func statusConfig(cfg config.Config, table logic.PatternTable) status.Config {
	return status.Config{
		Table:       table.Name,
		Chip:        cfg.Chip,
		LEDPins:     cfg.LEDPins(),
		ButtonPin:   cfg.Pins.Button,
		DebounceMs:  time.Duration(cfg.Debounce).Milliseconds(),
		HeartbeatMs: time.Duration(cfg.Heartbeat).Milliseconds(),
		Broker:      cfg.Broker,
		HTTPAddr:    cfg.HTTP,
	}
}

func writePatterns(w io.Writer, table logic.PatternTable) {
	fmt.Fprintf(w, "pattern table %q\n", table.Name)
	for _, s := range []logic.State{logic.StateAllOn, logic.StateTwoOn, logic.StateOneOn, logic.StateOff} {
		fmt.Fprintf(w, "  %-7s %s\n", s, table.Output(s))
	}
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid pin %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}
