package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSubsystemFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "debug")

	l.Subsystem("radio", "state is %s", "enabled")
	l.SubsystemError("sync", errors.New("boom"), "toggle failed")

	out := buf.String()
	for _, want := range []string{`"subsystem":"radio"`, `"message":"state is enabled"`, `"subsystem":"sync"`, `"error":"boom"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %s, got %s", want, out)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn")

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected debug/info to be filtered, got %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("expected warn to be logged, got %s", out)
	}
}

func TestInvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "loud")

	l.Debug("hidden")
	l.Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("expected info level, got %s", out)
	}
}

func TestTraceLevel(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "debug").Trace("hidden")
	New(&buf, "trace").Trace("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("expected trace only at trace level, got %s", out)
	}
}
