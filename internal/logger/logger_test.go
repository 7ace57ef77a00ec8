package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/peterkuimelis/gitcg/internal/config"
)

func TestSetupProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := SetupWriter(&config.Config{Environment: "production", LogLevel: slog.LevelInfo}, &buf)
	WithMatch(l, "m-1").Info("match finished", "winner", 0)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["match_id"] != "m-1" || rec["msg"] != "match finished" {
		t.Errorf("record = %v", rec)
	}
}

func TestSetupHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := SetupWriter(&config.Config{LogLevel: slog.LevelWarn}, &buf)
	l.Info("hidden")
	WithError(l, errors.New("boom")).Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "error=boom") {
		t.Errorf("text output = %q, want error=boom", out)
	}
}
