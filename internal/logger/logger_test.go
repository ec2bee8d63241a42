package logger

import (
	"strings"
	"testing"
)

func TestVerboseGating(t *testing.T) {
	verbose := false
	log := NewWithCallback("collector", func() bool { return verbose })

	var buf strings.Builder
	log.SetWriter(&buf)

	log.Debug("hidden debug")
	log.Info("hidden info")
	log.Warn("shown warning")
	log.Error("shown error")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("verbose-gated output leaked: %q", out)
	}
	if !strings.Contains(out, "WARN [collector] shown warning") {
		t.Errorf("missing warning: %q", out)
	}
	if !strings.Contains(out, "ERROR [collector] shown error") {
		t.Errorf("missing error: %q", out)
	}

	verbose = true
	buf.Reset()
	log.Info("fetched %d events", 42)
	if !strings.Contains(buf.String(), "INFO [collector] fetched 42 events") {
		t.Errorf("verbose info missing: %q", buf.String())
	}
}

func TestNilCallbackNeverVerbose(t *testing.T) {
	log := NewWithCallback("", nil)

	var buf strings.Builder
	log.SetWriter(&buf)

	log.Debug("nope")
	if buf.Len() != 0 {
		t.Errorf("output = %q", buf.String())
	}

	log.Warn("still works")
	if !strings.Contains(buf.String(), "[main] still works") {
		t.Errorf("default component missing: %q", buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	log := NewWithCallback("root", nil)

	var buf strings.Builder
	log.SetWriter(&buf)

	child := log.WithComponent("emitter")
	child.Warn("hello")
	if !strings.Contains(buf.String(), "[emitter] hello") {
		t.Errorf("output = %q", buf.String())
	}
}
