package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	MQTT          MQTTConfig          `yaml:"mqtt"`
	HomeAssistant HomeAssistantConfig `yaml:"homeassistant"`
	Panel         PanelConfig         `yaml:"panel"`
	Simulator     SimulatorConfig     `yaml:"simulator"`
	Stream        StreamConfig        `yaml:"stream"`
	Log           string              `yaml:"log"`
}

type MQTTConfig struct {
	ClientID  string `yaml:"client_id"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Keepalive int    `yaml:"keepalive"`
	Password  string `yaml:"password"`
	QOS       int    `yaml:"qos"`
	Retain    bool   `yaml:"retain"`
	Username  string `yaml:"username"`
	Prefix    string `yaml:"prefix"`
	Clean     bool   `yaml:"clean"`
}

type HomeAssistantConfig struct {
	Discovery bool   `yaml:"discovery"`
	Prefix    string `yaml:"prefix"`
}

type PanelConfig struct {
	LocationProvider string           `yaml:"location_provider"`
	Brightness       BrightnessConfig `yaml:"brightness"`
}

type BrightnessConfig struct {
	Minimum   int `yaml:"minimum"`
	Default   int `yaml:"default"`
	Maximum   int `yaml:"maximum"`
	Threshold int `yaml:"threshold"`
}

type SimulatorConfig struct {
	StorePath      string `yaml:"store_path"`
	TransitionMS   *int   `yaml:"transition_ms"`
	WifiAvailable  *bool  `yaml:"wifi_available"`
	RadioAvailable *bool  `yaml:"radio_available"`
	TickleFails    bool   `yaml:"tickle_fails"`
}

type StreamConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
	Path    string `yaml:"path"`
}

func LoadConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML and applies defaults.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func applyDefaults(config *Config) {
	if config.MQTT.ClientID == "" {
		config.MQTT.ClientID = "powerwidget2mqtt"
	}
	if config.MQTT.Host == "" {
		config.MQTT.Host = "localhost"
	}
	if config.MQTT.Port == 0 {
		config.MQTT.Port = 1883
	}
	if config.MQTT.Keepalive == 0 {
		config.MQTT.Keepalive = 60
	}
	if config.MQTT.Prefix == "" {
		config.MQTT.Prefix = "powerwidget2mqtt"
	}
	if config.HomeAssistant.Prefix == "" {
		config.HomeAssistant.Prefix = "homeassistant"
	}
	if config.Log == "" {
		config.Log = "info"
	}
	if config.Panel.LocationProvider == "" {
		config.Panel.LocationProvider = "gps"
	}

	b := &config.Panel.Brightness
	if b.Minimum == 0 {
		b.Minimum = 30
	}
	if b.Default == 0 {
		b.Default = 102
	}
	if b.Maximum == 0 {
		b.Maximum = 255
	}
	if b.Threshold == 0 {
		b.Threshold = 100
	}

	if config.Simulator.TransitionMS == nil {
		config.Simulator.TransitionMS = intPtr(500)
	}
	if config.Simulator.WifiAvailable == nil {
		config.Simulator.WifiAvailable = boolPtr(true)
	}
	if config.Simulator.RadioAvailable == nil {
		config.Simulator.RadioAvailable = boolPtr(true)
	}

	if config.Stream.Listen == "" {
		config.Stream.Listen = ":8088"
	}
	if config.Stream.Path == "" {
		config.Stream.Path = "/ws"
	}
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	b := c.Panel.Brightness
	if !(b.Minimum < b.Default && b.Default < b.Maximum) {
		return fmt.Errorf("brightness levels must increase: minimum %d, default %d, maximum %d", b.Minimum, b.Default, b.Maximum)
	}
	if b.Minimum < 0 || b.Maximum > 255 {
		return fmt.Errorf("brightness levels must be within 0-255")
	}
	if c.MQTT.QOS < 0 || c.MQTT.QOS > 2 {
		return fmt.Errorf("mqtt qos must be 0, 1 or 2, got %d", c.MQTT.QOS)
	}
	if c.Simulator.TransitionMS != nil && *c.Simulator.TransitionMS < 0 {
		return fmt.Errorf("simulator transition_ms must not be negative")
	}
	return nil
}

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(i int) *int {
	return &i
}
