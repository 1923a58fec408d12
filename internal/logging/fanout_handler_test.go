package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewFanoutHandlerCollapses(t *testing.T) {
	if _, ok := newFanoutHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newFanoutHandler(nil, inner, nil); h != inner {
		t.Fatal("expected single non-nil handler to be returned unwrapped")
	}
}

func TestFanoutHandlerRespectsPerHandlerLevel(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	infoHandler := slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	debugHandler := slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})

	h := newFanoutHandler(infoHandler, debugHandler)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected fanout to be enabled for debug")
	}

	logger := slog.New(h)
	logger.Debug("debug only message")
	if infoBuf.Len() != 0 {
		t.Fatal("info handler should not receive debug messages")
	}
	if debugBuf.Len() == 0 {
		t.Fatal("debug handler should receive debug messages")
	}

	logger.Info("both", slog.String("attr", "value"))
	if !strings.Contains(infoBuf.String(), `"attr"`) || !strings.Contains(debugBuf.String(), `"attr"`) {
		t.Fatalf("expected attr in both outputs: %q / %q", infoBuf.String(), debugBuf.String())
	}
}

func TestFanoutHandlerWithAttrsAndGroup(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h := newFanoutHandler(slog.NewJSONHandler(&buf1, nil), slog.NewJSONHandler(&buf2, nil))

	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String("key", "value")}).WithGroup("mygroup"))
	logger.Info("test", slog.String("field", "value"))

	for i, buf := range []*bytes.Buffer{&buf1, &buf2} {
		if !strings.Contains(buf.String(), `"key"`) || !strings.Contains(buf.String(), `"mygroup"`) {
			t.Fatalf("buffer %d missing attrs or group: %q", i, buf.String())
		}
	}
}

func TestPrettyHandlerHeaderAndFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false, false)).With(
		slog.String(FieldComponent, "steamcmd"),
		slog.String(FieldRunID, "run-1"),
	)

	logger.Info("download finished", slog.String(FieldItemID, "111"), slog.Int(FieldAttempt, 2), slog.String("path", "/tmp/out dir"))

	out := buf.String()
	for _, want := range []string{"INFO [steamcmd] Item #111 (attempt 2) – download finished", `    - path: "/tmp/out dir"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output %q", want, out)
		}
	}
	if strings.Contains(out, "run-1") {
		t.Fatalf("run id should be hidden from info lines: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no colour codes for non-terminal writer: %q", out)
	}
}

func TestPrettyHandlerColoursLevelForTerminals(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newPrettyHandler(&buf, new(slog.LevelVar), false, true))
	logger.Error("boom")
	if !strings.Contains(buf.String(), ansiRed+"ERROR"+ansiReset) {
		t.Fatalf("expected coloured ERROR label, got %q", buf.String())
	}
}

func TestRunIDHandlerStampsRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newRunIDHandler(slog.NewJSONHandler(&buf, nil), "abc"))
	logger.Info("hello")
	if !strings.Contains(buf.String(), `"run_id":"abc"`) {
		t.Fatalf("expected run_id in output, got %q", buf.String())
	}
}

func TestRunIDHandlerDoesNotDuplicateContextRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newRunIDHandler(slog.NewJSONHandler(&buf, nil), "abc"))
	logger.With(slog.String(FieldRunID, "abc")).Info("hello")
	if got := strings.Count(buf.String(), `"run_id"`); got != 1 {
		t.Fatalf("expected exactly one run_id, got %d in %q", got, buf.String())
	}
}
