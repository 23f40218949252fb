package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLevels(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		" error ": zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"chatty":  zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := newLogger(&bytes.Buffer{}, in).GetLevel(); got != want {
			t.Errorf("level %q: got %v, want %v", in, got, want)
		}
	}
}

func TestNewWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "info")
	log.Debug().Msg("hidden")
	log.Info().Int("rows", 42).Msg("loaded")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug line should be filtered at info level")
	}
	if !strings.Contains(out, `"rows":42`) || !strings.Contains(out, `"message":"loaded"`) {
		t.Errorf("unexpected output: %s", out)
	}
	if !strings.Contains(out, `"time":`) {
		t.Errorf("expected a timestamp field: %s", out)
	}
}
