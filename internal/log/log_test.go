package log

import (
	"log/slog"
	"sync"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLReturnsLogger(t *testing.T) {
	if L() == nil {
		t.Fatal("L() returned nil")
	}
	if With("component", "test") == nil {
		t.Fatal("With returned nil")
	}
}

func TestLConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	loggers := make([]*slog.Logger, 8)
	for i := range loggers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loggers[i] = L()
		}()
	}
	wg.Wait()
	for i, l := range loggers {
		if l == nil || l != loggers[0] {
			t.Fatalf("goroutine %d got logger %p, want %p", i, l, loggers[0])
		}
	}
}
