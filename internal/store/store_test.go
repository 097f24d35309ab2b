package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/daemonp/powerwidget2mqtt/internal/device"
)

var _ device.SettingsStore = (*Store)(nil)

func TestOpenMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if _, err := s.Int(device.KeyScreenBrightness); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	on, err := s.LocationProviderEnabled("gps")
	if err != nil || on {
		t.Errorf("expected unknown provider to be disabled, got %v, %v", on, err)
	}
}

func TestPersistAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.PutInt(device.KeyScreenBrightness, 102); err != nil {
		t.Fatalf("PutInt failed: %v", err)
	}
	if err := s.SetLocationProviderEnabled("gps", true); err != nil {
		t.Fatalf("SetLocationProviderEnabled failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	v, err := reopened.Int(device.KeyScreenBrightness)
	if err != nil || v != 102 {
		t.Errorf("expected 102, got %d, %v", v, err)
	}
	on, _ := reopened.LocationProviderEnabled("gps")
	if !on {
		t.Errorf("expected gps enabled after reopen")
	}
}

func TestSetDefaultIntKeepsExisting(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := s.SetDefaultInt("k", 1); err != nil {
		t.Fatalf("SetDefaultInt failed: %v", err)
	}
	if err := s.SetDefaultInt("k", 2); err != nil {
		t.Fatalf("SetDefaultInt failed: %v", err)
	}
	if v, _ := s.Int("k"); v != 1 {
		t.Errorf("expected existing value 1 to be kept, got %d", v)
	}
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(path); err == nil {
		t.Fatal("expected error for corrupt settings file")
	}
}
