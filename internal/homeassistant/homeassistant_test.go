package homeassistant

import (
	"strings"
	"testing"

	"github.com/daemonp/powerwidget2mqtt/internal/config"
	"github.com/daemonp/powerwidget2mqtt/internal/log"
	"github.com/daemonp/powerwidget2mqtt/internal/mqtt"
	"github.com/daemonp/powerwidget2mqtt/internal/types"
)

type fakePublisher struct {
	topics   *mqtt.Topics
	messages map[string]map[string]interface{}
}

func (f *fakePublisher) GetPrefix() string    { return "pw" }
func (f *fakePublisher) Topics() *mqtt.Topics { return f.topics }
func (f *fakePublisher) Publish(topic string, payload interface{}, retain bool) {
	if !retain {
		panic("discovery must be retained")
	}
	f.messages[topic] = payload.(map[string]interface{})
}

func TestDiscoveryPublishesButtonAndSensorPerSubsystem(t *testing.T) {
	pub := &fakePublisher{topics: mqtt.NewTopics("pw"), messages: map[string]map[string]interface{}{}}
	ha := New(&config.HomeAssistantConfig{Discovery: true, Prefix: "homeassistant"}, pub, log.Nop())

	ha.Start()

	if len(pub.messages) != 2*types.NumButtons {
		t.Fatalf("expected %d discovery documents, got %d", 2*types.NumButtons, len(pub.messages))
	}

	button, ok := pub.messages["homeassistant/button/pw/background-sync/config"]
	if !ok {
		t.Fatalf("missing sync button config, have %v", keys(pub.messages))
	}
	if button["payload_press"] != "2" || button["command_topic"] != "pw/action" {
		t.Errorf("unexpected button config %v", button)
	}

	sensor, ok := pub.messages["homeassistant/sensor/pw/short-range-radio/config"]
	if !ok {
		t.Fatalf("missing radio sensor config")
	}
	if sensor["state_topic"] != "pw/short-range-radio" || sensor["device_class"] != "enum" {
		t.Errorf("unexpected sensor config %v", sensor)
	}

	binary := pub.messages["homeassistant/sensor/pw/location/config"]
	if _, ok := binary["device_class"]; ok {
		t.Errorf("binary sensor should not be an enum: %v", binary)
	}
}

func keys(m map[string]map[string]interface{}) string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return strings.Join(out, ", ")
}
