package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/san-kum/riccati/internal/config"
)

func TestDisabledByDefault(t *testing.T) {
	for _, level := range []string{"", "disabled", "nonsense"} {
		var buf bytes.Buffer
		log := NewWriter(&buf, config.Logging{Level: level})
		log.Error().Msg("boom")
		if buf.Len() != 0 {
			t.Errorf("level %q: expected no output, got %q", level, buf.String())
		}
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, config.Logging{Level: "debug", Format: "json"})
	log.Debug().Int("iter", 3).Msg("newton step")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("not json: %q", buf.String())
	}
	if rec["app"] != app || rec["message"] != "newton step" || rec["iter"] != float64(3) {
		t.Errorf("unexpected record %v", rec)
	}
}

func TestConsoleFormatFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, config.Logging{Level: "WARN"})
	if log.GetLevel() != zerolog.WarnLevel {
		t.Fatalf("level = %v, want warn", log.GetLevel())
	}
	log.Info().Msg("hidden")
	log.Warn().Msg("precision not reached")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record passed a warn filter")
	}
	if !strings.Contains(out, "precision not reached") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestConsoleToFileHasNoColor(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "log")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if isTerminal(f) || isTerminal(&bytes.Buffer{}) {
		t.Fatal("regular file or buffer reported as terminal")
	}

	log := NewWriter(f, config.Logging{Level: "info"})
	log.Info().Msg("lqr gain synthesized")

	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "\x1b[") {
		t.Errorf("escape codes written to a file: %q", data)
	}
}
