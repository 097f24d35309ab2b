package homeassistant

import (
	"fmt"

	"github.com/daemonp/powerwidget2mqtt/internal/config"
	"github.com/daemonp/powerwidget2mqtt/internal/log"
	"github.com/daemonp/powerwidget2mqtt/internal/mqtt"
	"github.com/daemonp/powerwidget2mqtt/internal/types"
	"github.com/daemonp/powerwidget2mqtt/internal/util"
)

// HomeAssistant publishes MQTT discovery documents so every panel control
// appears as a button and its state as a sensor.
type HomeAssistant struct {
	config *config.HomeAssistantConfig
	mqtt   mqtt.MQTTClient
	log    *log.Logger
}

func New(cfg *config.HomeAssistantConfig, mqttClient mqtt.MQTTClient, logger *log.Logger) *HomeAssistant {
	return &HomeAssistant{
		config: cfg,
		mqtt:   mqttClient,
		log:    logger,
	}
}

func (ha *HomeAssistant) Start() {
	ha.log.Info("Starting Home Assistant integration")
	ha.publishDiscoveryConfig()
}

func (ha *HomeAssistant) publishDiscoveryConfig() {
	for _, id := range types.Buttons {
		ha.publishButtonConfig(id)
		ha.publishSensorConfig(id)
	}
}

func (ha *HomeAssistant) device() map[string]interface{} {
	return map[string]interface{}{
		"name":         "Power Control Panel",
		"identifiers":  []string{ha.mqtt.GetPrefix()},
		"manufacturer": "powerwidget2mqtt",
		"model":        "Power Widget",
	}
}

func (ha *HomeAssistant) publishButtonConfig(id types.ButtonID) {
	slug := util.Slugify(id.Label())
	config := map[string]interface{}{
		"name":               fmt.Sprintf("Toggle %s", id.Label()),
		"unique_id":          fmt.Sprintf("%s_button_%s", ha.mqtt.GetPrefix(), slug),
		"command_topic":      ha.mqtt.Topics().Action(),
		"payload_press":      fmt.Sprintf("%d", int(id)),
		"availability_topic": ha.mqtt.Topics().Status(),
		"device":             ha.device(),
	}

	ha.publishConfig("button", slug, config)
}

func (ha *HomeAssistant) publishSensorConfig(id types.ButtonID) {
	slug := util.Slugify(id.Label())
	config := map[string]interface{}{
		"name":               id.Label(),
		"unique_id":          fmt.Sprintf("%s_state_%s", ha.mqtt.GetPrefix(), slug),
		"state_topic":        ha.mqtt.Topics().Slot(id),
		"availability_topic": ha.mqtt.Topics().Status(),
		"device":             ha.device(),
	}
	if id.Kind() == types.KindTri {
		config["device_class"] = "enum"
		config["options"] = []string{
			types.Disabled.String(),
			types.Enabled.String(),
			types.Intermediate.String(),
		}
	}

	ha.publishConfig("sensor", slug, config)
}

func (ha *HomeAssistant) publishConfig(component, objectID string, config map[string]interface{}) {
	topic := fmt.Sprintf("%s/%s/%s/%s/config", ha.config.Prefix, component, ha.mqtt.GetPrefix(), objectID)
	ha.log.Debug("Publishing discovery for %s %s", component, objectID)
	ha.mqtt.Publish(topic, config, true)
}
