package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/devboard/internal/events"
	"github.com/sweeney/devboard/internal/logic"
)

// Options configures a RealPublisher.
type Options struct {
	Broker   string
	ClientID string

	// BufferSize is how many messages are kept while disconnected.
	BufferSize int

	// OnConnectionChange is called on every connect and connection loss.
	OnConnectionChange func(connected bool)

	// OnCommand, if set, subscribes to the LED command topics and receives
	// every valid command. It runs on the paho router goroutine.
	OnCommand func(logic.Action)
}

// client is the part of paho.Client the publisher uses.
type client interface {
	IsConnectionOpen() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
	Disconnect(quiesce uint)
}

// RealPublisher publishes to an actual MQTT broker. Messages published
// while the connection is down are buffered and replayed on reconnect.
type RealPublisher struct {
	client client
	opts   Options

	mu       sync.Mutex
	outbox   *outbox
	connects int
}

func newPublisher(opts Options) *RealPublisher {
	if opts.ClientID == "" {
		opts.ClientID = "devboard"
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	return &RealPublisher{
		opts:   opts,
		outbox: newOutbox(opts.BufferSize),
	}
}

// NewRealPublisher creates a publisher for the given broker. The broker
// does not have to be up: paho keeps retrying in the background and
// messages are buffered until it connects.
func NewRealPublisher(opts Options) (*RealPublisher, error) {
	p := newPublisher(opts)

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "OFFLINE",
		Reason:    "MQTT_DISCONNECT",
	})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	co := paho.NewClientOptions().
		AddBroker(p.opts.Broker).
		SetClientID(p.opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(will), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	c := paho.NewClient(co)
	p.client = c

	token := c.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.Printf("mqtt: broker %s not reachable yet, retrying in background", p.opts.Broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return p, nil
}

func (p *RealPublisher) onConnect(_ paho.Client) {
	p.mu.Lock()
	p.connects++
	reconnect := p.connects > 1
	pending, dropped := p.outbox.drain()
	p.mu.Unlock()

	log.Printf("mqtt: connected to %s", p.opts.Broker)

	if p.opts.OnCommand != nil {
		token := p.client.Subscribe(TopicCommands, 1, p.handleCommand)
		if !token.WaitTimeout(5 * time.Second) {
			log.Printf("mqtt: subscribe %s timeout", TopicCommands)
		} else if err := token.Error(); err != nil {
			log.Printf("mqtt: subscribe %s: %v", TopicCommands, err)
		}
	}

	if len(pending) > 0 {
		log.Printf("mqtt: replaying %d buffered messages (%d dropped)", len(pending), dropped)
	}
	for _, m := range pending {
		if err := p.send(m); err != nil {
			log.Printf("mqtt: replay failed: %v", err)
		}
	}

	if reconnect {
		payload, _ := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "RECONNECTED"})
		if err := p.send(pendingMsg{topic: TopicSystem, payload: payload, qos: 1}); err != nil {
			log.Printf("mqtt: publish reconnect: %v", err)
		}
	}

	if p.opts.OnConnectionChange != nil {
		p.opts.OnConnectionChange(true)
	}
}

func (p *RealPublisher) onConnectionLost(_ paho.Client, err error) {
	log.Printf("mqtt: connection lost: %v", err)
	if p.opts.OnConnectionChange != nil {
		p.opts.OnConnectionChange(false)
	}
}

func (p *RealPublisher) handleCommand(_ paho.Client, m paho.Message) {
	a, err := ParseCommand(m.Topic(), m.Payload())
	if err != nil {
		log.Printf("mqtt: dropping command on %s: %v", m.Topic(), err)
		return
	}
	p.opts.OnCommand(a)
}

// publish sends m now, or buffers it if the connection is down.
func (p *RealPublisher) publish(m pendingMsg) error {
	p.mu.Lock()
	if !p.client.IsConnectionOpen() {
		p.outbox.push(m)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()
	return p.send(m)
}

func (p *RealPublisher) send(m pendingMsg) error {
	token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish %s timeout", m.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", m.topic, err)
	}
	return nil
}

// PublishPress sends a button press (QoS 0, not retained).
func (p *RealPublisher) PublishPress(e events.ButtonPressed) error {
	payload, err := FormatPressPayload(e)
	if err != nil {
		return fmt.Errorf("format press payload: %w", err)
	}
	return p.publish(pendingMsg{topic: TopicButtons, payload: payload})
}

// PublishLED sends an LED change (QoS 0, not retained).
func (p *RealPublisher) PublishLED(e events.LEDChanged) error {
	payload, err := FormatLEDPayload(e)
	if err != nil {
		return fmt.Errorf("format led payload: %w", err)
	}
	return p.publish(pendingMsg{topic: TopicLEDs, payload: payload})
}

// PublishSystem sends a system lifecycle event (QoS 1).
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.publish(pendingMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Buffered returns how many messages are waiting for a connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outbox.len()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
