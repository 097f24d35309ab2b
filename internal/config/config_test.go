package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.MQTT.Host != "localhost" || cfg.MQTT.Port != 1883 || cfg.MQTT.Prefix != "powerwidget2mqtt" {
		t.Errorf("unexpected mqtt defaults: %+v", cfg.MQTT)
	}
	if cfg.HomeAssistant.Prefix != "homeassistant" {
		t.Errorf("unexpected homeassistant prefix %q", cfg.HomeAssistant.Prefix)
	}
	if cfg.Log != "info" {
		t.Errorf("unexpected log level %q", cfg.Log)
	}
	b := cfg.Panel.Brightness
	if b.Minimum != 30 || b.Default != 102 || b.Maximum != 255 || b.Threshold != 100 {
		t.Errorf("unexpected brightness defaults: %+v", b)
	}
	if cfg.Panel.LocationProvider != "gps" {
		t.Errorf("unexpected location provider %q", cfg.Panel.LocationProvider)
	}
	if !*cfg.Simulator.WifiAvailable || !*cfg.Simulator.RadioAvailable || *cfg.Simulator.TransitionMS != 500 {
		t.Errorf("unexpected simulator defaults: %+v", cfg.Simulator)
	}
	if cfg.Stream.Listen != ":8088" || cfg.Stream.Path != "/ws" {
		t.Errorf("unexpected stream defaults: %+v", cfg.Stream)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := `
log: debug
mqtt:
  host: broker.local
  prefix: widget
  qos: 1
panel:
  location_provider: network
simulator:
  radio_available: false
  transition_ms: 250
stream:
  enabled: true
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Log != "debug" || cfg.MQTT.Host != "broker.local" || cfg.MQTT.Prefix != "widget" || cfg.MQTT.QOS != 1 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Panel.LocationProvider != "network" {
		t.Errorf("unexpected provider %q", cfg.Panel.LocationProvider)
	}
	if *cfg.Simulator.RadioAvailable || !*cfg.Simulator.WifiAvailable || *cfg.Simulator.TransitionMS != 250 {
		t.Errorf("unexpected simulator config: %+v", cfg.Simulator)
	}
	if !cfg.Stream.Enabled {
		t.Error("expected stream enabled")
	}
}

func TestZeroTransitionKept(t *testing.T) {
	cfg, err := Parse([]byte("simulator:\n  transition_ms: 0\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if *cfg.Simulator.TransitionMS != 0 {
		t.Errorf("expected explicit zero transition, got %d", *cfg.Simulator.TransitionMS)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("expected error for missing file")
	}

	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "mqtt: [unclosed"},
		{"non increasing brightness", "panel:\n  brightness:\n    minimum: 150\n    default: 102\n"},
		{"brightness above range", "panel:\n  brightness:\n    maximum: 400\n"},
		{"bad qos", "mqtt:\n  qos: 3\n"},
		{"negative transition", "simulator:\n  transition_ms: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Errorf("expected error")
			}
		})
	}
}
