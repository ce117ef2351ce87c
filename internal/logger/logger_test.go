package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)
	log.Info().Str("bcn", "BCN-1").Msg("overview loaded")

	out := buf.String()
	if !strings.Contains(out, `"bcn":"BCN-1"`) {
		t.Errorf("missing field in output: %s", out)
	}
	if !strings.Contains(out, "overview loaded") {
		t.Errorf("missing message in output: %s", out)
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)

	ctx := WithContext(context.Background(), log)
	ctxLog := FromContext(ctx)
	ctxLog.Info().Msg("via context")
	if !strings.Contains(buf.String(), "via context") {
		t.Errorf("context logger did not write: %s", buf.String())
	}
}

func TestFromContextMissingFallsBack(t *testing.T) {
	// Must not panic; the fallback logger is usable.
	fallback := FromContext(context.Background())
	fallback.Debug().Msg("noop")
}
