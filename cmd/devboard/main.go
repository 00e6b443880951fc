// Command devboard debounces the board's buttons, drives its LEDs and
// publishes presses and LED changes to MQTT.
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
	"syscall"
	"time"

	"github.com/sweeney/devboard/internal/board"
	"github.com/sweeney/devboard/internal/button"
	"github.com/sweeney/devboard/internal/errcode"
	"github.com/sweeney/devboard/internal/events"
	"github.com/sweeney/devboard/internal/gpio"
	"github.com/sweeney/devboard/internal/led"
	"github.com/sweeney/devboard/internal/logic"
	"github.com/sweeney/devboard/internal/mqtt"
	"github.com/sweeney/devboard/internal/status"
	"github.com/sweeney/devboard/internal/web"
)

type config struct {
	boardPath  string
	chip       string
	debounce   time.Duration
	poll       time.Duration
	broker     string
	heartbeat  time.Duration
	httpAddr   string
	demo       bool
	printState bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.boardPath, "board", "", "Board pin map (TOML); built-in Raspberry Pi wiring if empty")
	flag.StringVar(&cfg.chip, "chip", "", "GPIO chip name, overrides the pin map")
	flag.DurationVar(&cfg.debounce, "debounce", button.DefaultDebounce, "Button debounce window")
	flag.DurationVar(&cfg.poll, "poll", 10*time.Millisecond, "Press polling interval")
	flag.StringVar(&cfg.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	flag.DurationVar(&cfg.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&cfg.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.BoolVar(&cfg.demo, "demo", false, "Alternate LED0 on and off")
	flag.BoolVar(&cfg.printState, "print-state", false, "Print button levels and exit")

	flag.Parse()

	if err := run(cfg); err != nil {
		log.Fatalf("fatal [%s]: %v", errcode.Of(err), err)
	}
}

func run(cfg config) error {
	bc := board.Default()
	if cfg.boardPath != "" {
		var err error
		if bc, err = board.Load(cfg.boardPath); err != nil {
			return fmt.Errorf("load board: %w", err)
		}
	}
	if cfg.chip != "" {
		bc.Chip = cfg.chip
	}

	// Initialize GPIO
	chip, err := gpio.NewRealChip(bc.Chip)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer chip.Close()

	hw, err := board.Open(bc, chip)
	if err != nil {
		return fmt.Errorf("open board: %w", err)
	}
	defer hw.Close()

	// Print state mode
	if cfg.printState {
		return printState(os.Stdout, hw.Buttons)
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		Chip:        bc.Chip,
		PollMs:      cfg.poll.Milliseconds(),
		DebounceMs:  cfg.debounce.Milliseconds(),
		HeartbeatMs: cfg.heartbeat.Milliseconds(),
		Broker:      cfg.broker,
		HTTPPort:    cfg.httpAddr,
		Demo:        cfg.demo,
	})
	bus := events.New()

	buttons, err := button.Init(hw.Buttons,
		button.WithDebounce(cfg.debounce),
		button.WithPressHandler(func(id button.ID, at time.Time) {
			bus.Publish(events.ButtonPressed{Button: id, At: at})
		}),
	)
	if err != nil {
		return fmt.Errorf("init buttons: %w", err)
	}
	defer buttons.Close()

	leds, err := led.Init(hw.LEDs,
		led.WithChangeHandler(func(st led.State) {
			bus.Publish(events.LEDChanged{State: st, At: time.Now()})
		}),
	)
	if err != nil {
		return fmt.Errorf("init leds: %w", err)
	}
	defer leds.Close()

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(mqtt.Options{
		Broker: cfg.broker,
		OnConnectionChange: func(up bool) {
			bus.Publish(events.BrokerStatus{Connected: up, At: time.Now()})
		},
		OnCommand: func(a logic.Action) {
			log.Printf("mqtt: command %s", a)
			if err := logic.Apply(leds, a); err != nil {
				log.Printf("mqtt: command %s failed [%s]: %v", a, errcode.Of(err), err)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	unsubscribe := subscribe(bus, publisher, tracker)
	defer unsubscribe()

	// Publish startup event with full status snapshot
	tracker.SetMQTTConnected(publisher.IsConnected())
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if cfg.httpAddr != "" {
		srv := web.New(cfg.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.httpAddr)
	}

	var demo *logic.Demo
	if cfg.demo {
		demo = logic.NewDemo()
	}

	log.Printf("started: chip=%s poll=%v debounce=%v broker=%s heartbeat=%v demo=%v",
		bc.Chip, cfg.poll, buttons.Window(), cfg.broker, cfg.heartbeat, cfg.demo)

	ticker := time.NewTicker(cfg.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(buttons, leds, logic.NewMapper(), demo, publisher, publisher, tracker, cfg.heartbeat, time.Now, ticker.C, sigCh)
}

// subscribe routes bus events to MQTT and the status tracker.
func subscribe(bus *events.Bus, publisher mqtt.Publisher, tracker *status.Tracker) func() {
	unsubs := []func(){
		bus.Subscribe(func(e events.ButtonPressed) {
			log.Printf("button: %s pressed", e.Button)
			tracker.RecordPress(e.Button, e.At)
			if err := publisher.PublishPress(e); err != nil {
				log.Printf("publish error: %v", err)
			}
		}),
		bus.Subscribe(func(e events.LEDChanged) {
			tracker.SetLED(e.State)
			if err := publisher.PublishLED(e); err != nil {
				log.Printf("publish error: %v", err)
			}
		}),
		bus.Subscribe(func(e events.BrokerStatus) {
			tracker.SetMQTTConnected(e.Connected)
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// pressSource is the part of *button.Controller the loop polls.
type pressSource interface {
	CheckAndClearPressed(id button.ID) bool
}

// ledDriver is the part of *led.Driver the loop drives and reports.
type ledDriver interface {
	logic.Driver
	States() [led.Count]led.State
	Running() bool
}

func runLoop(presses pressSource, leds ledDriver, mapper *logic.Mapper, demo *logic.Demo, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	lastHeartbeat := now()

	apply := func(a logic.Action) {
		if err := logic.Apply(leds, a); err != nil {
			log.Printf("led: %s failed: %v", a, err)
		}
	}

	if demo != nil {
		apply(demo.Start())
		if tracker != nil {
			tracker.SetDemo(demo.State())
		}
	}

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
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
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				tracker.SetLEDs(leds.States(), leds.Running())
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()

			for id := button.ID(0); id < button.Count; id++ {
				if !presses.CheckAndClearPressed(id) {
					continue
				}
				for _, a := range mapper.Press(id) {
					apply(a)
				}
			}

			if demo != nil {
				if a, changed := demo.Step(); changed {
					log.Printf("demo: %s", demo.State())
					apply(a)
					if tracker != nil {
						tracker.SetDemo(demo.State())
					}
				}
			}

			// Update status tracker for HTTP consumers
			if tracker != nil {
				tracker.SetLEDs(leds.States(), leds.Running())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}

			// Check for heartbeat
			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				hbEvent := mqtt.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					snap := tracker.Snapshot()
					log.Printf("heartbeat: uptime=%v presses=%d blink_running=%v",
						snap.Uptime().Truncate(time.Second), snap.TotalPresses(), snap.BlinkRunning)
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

// printState writes the instantaneous level of every button.
func printState(w io.Writer, inputs [button.Count]gpio.Input) error {
	for i, in := range inputs {
		high, err := in.Get()
		if err != nil {
			return fmt.Errorf("read %s: %w", button.ID(i), err)
		}
		if i > 0 {
			fmt.Fprint(w, ", ")
		}
		fmt.Fprintf(w, "%s: %s", button.ID(i), levelString(high))
	}
	fmt.Fprintln(w)
	return nil
}

func levelString(high bool) string {
	if high {
		return "PRESSED"
	}
	return "RELEASED"
}
