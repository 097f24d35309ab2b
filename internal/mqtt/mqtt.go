package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/daemonp/powerwidget2mqtt/internal/config"
	"github.com/daemonp/powerwidget2mqtt/internal/log"
	"github.com/daemonp/powerwidget2mqtt/internal/types"
	"github.com/daemonp/powerwidget2mqtt/internal/util"
)

const (
	offlinePayload = "offline"
	onlinePayload  = "online"

	defaultTokenTimeout = 5 * time.Second
)

// Submitter accepts inbound events for the panel. TrySubmit must not block:
// it runs on the client's message dispatch goroutine, which also completes
// publish acknowledgements.
type Submitter interface {
	TrySubmit(event types.Event) error
}

// MQTT bridges the panel to a broker: inbound topics become panel events and
// every rendered snapshot is published as retained state.
type MQTT struct {
	config *config.MQTTConfig
	panel  Submitter
	log    *log.Logger
	topics *Topics

	tokenTimeout time.Duration

	mu      sync.Mutex
	client  mqtt.Client
	last    types.PanelState
	hasLast bool
}

func NewMQTT(cfg *config.MQTTConfig, p Submitter, logger *log.Logger) *MQTT {
	return &MQTT{
		config: cfg,
		panel:  p,
		log:    logger,
		topics: NewTopics(cfg.Prefix),

		tokenTimeout: defaultTokenTimeout,
	}
}

func (m *MQTT) getClient() mqtt.Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client
}

func (m *MQTT) Connect() error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", m.config.Host, m.config.Port))
	opts.SetClientID(m.config.ClientID)
	opts.SetUsername(m.config.Username)
	opts.SetPassword(m.config.Password)
	opts.SetCleanSession(m.config.Clean)
	opts.SetKeepAlive(time.Duration(m.config.Keepalive) * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(m.onConnect)
	opts.SetConnectionLostHandler(m.onDisconnect)

	opts.SetWill(m.topics.Status(), offlinePayload, byte(m.config.QOS), true)

	client := mqtt.NewClient(opts)
	m.mu.Lock()
	m.client = client
	m.mu.Unlock()

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	m.log.Info("Connected to MQTT broker: %s:%d", m.config.Host, m.config.Port)
	return nil
}

func (m *MQTT) onConnect(client mqtt.Client) {
	m.log.Info("MQTT connection established")
	m.Publish(m.topics.Status(), onlinePayload, true)
	m.subscribeTopics()

	// Brokers may have lost retained state while we were away.
	if last, ok := m.lastState(); ok {
		m.publishState(last)
	}
}

func (m *MQTT) lastState() (types.PanelState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.hasLast
}

func (m *MQTT) onDisconnect(client mqtt.Client, err error) {
	m.log.Error("MQTT connection lost: %v", err)
}

func (m *MQTT) subscribeTopics() {
	topics := []string{
		m.topics.Action(),
		m.topics.Ambient(),
	}

	client := m.getClient()
	for _, topic := range topics {
		token := client.Subscribe(topic, byte(m.config.QOS), m.handleMessage)
		if !token.WaitTimeout(m.tokenTimeout) {
			m.log.Error("Timed out subscribing to topic %s", topic)
		} else if token.Error() != nil {
			m.log.Error("Failed to subscribe to topic %s: %v", topic, token.Error())
		} else {
			m.log.Debug("Subscribed to topic: %s", topic)
		}
	}
}

func (m *MQTT) handleMessage(client mqtt.Client, msg mqtt.Message) {
	topic := msg.Topic()
	payload := util.Normalize(string(msg.Payload()))

	m.log.Debug("Received message on topic %s: %s", topic, payload)

	var event types.Event
	switch topic {
	case m.topics.Action():
		event = types.Event{Marker: types.MarkerUserAction, Payload: payload}
	case m.topics.Ambient():
		event = types.Ambient(payload)
	default:
		m.log.Warning("Received message on unknown topic: %s", topic)
		return
	}

	if err := m.panel.TrySubmit(event); err != nil {
		m.log.Warning("Dropping message on %s: %v", topic, err)
	}
}

// Render publishes a snapshot. Snapshots rendered while disconnected are
// published on the next connect.
func (m *MQTT) Render(state types.PanelState) {
	m.mu.Lock()
	m.last = state
	m.hasLast = true
	client := m.client
	m.mu.Unlock()

	if client == nil || !client.IsConnected() {
		m.log.Debug("MQTT not connected, deferring panel state")
		return
	}
	m.publishState(state)
}

func (m *MQTT) publishState(state types.PanelState) {
	m.Publish(m.topics.State(), state, m.config.Retain)
	for _, slot := range state.Slots() {
		m.Publish(m.topics.Slot(slot.ID), slot.State.String(), m.config.Retain)
	}
}

func (m *MQTT) GetPrefix() string {
	return m.config.Prefix
}

func (m *MQTT) Topics() *Topics {
	return m.topics
}

// Publish sends strings and byte slices as-is and everything else as JSON.
func (m *MQTT) Publish(topic string, message interface{}, retain bool) {
	var payload []byte
	switch v := message.(type) {
	case string:
		payload = []byte(v)
	case []byte:
		payload = v
	default:
		data, err := json.Marshal(message)
		if err != nil {
			m.log.Error("Failed to marshal message for topic %s: %v", topic, err)
			return
		}
		payload = data
	}

	client := m.getClient()
	if client == nil {
		m.log.Error("Cannot publish to %s: not connected", topic)
		return
	}

	token := client.Publish(topic, byte(m.config.QOS), retain, payload)
	switch {
	case !token.WaitTimeout(m.tokenTimeout):
		m.log.Error("Timed out publishing message to topic %s", topic)
	case token.Error() != nil:
		m.log.Error("Failed to publish message to topic %s: %v", topic, token.Error())
	default:
		m.log.Trace("Published message to topic: %s", topic)
	}
}

func (m *MQTT) Close() {
	client := m.getClient()
	if client != nil && client.IsConnected() {
		m.Publish(m.topics.Status(), offlinePayload, true)
		client.Disconnect(250)
	}
}
