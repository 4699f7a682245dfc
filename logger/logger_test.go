package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{name: "short", in: "hello", limit: 10, want: "hello"},
		{name: "trimmed", in: "  hello  ", limit: 5, want: "hello"},
		{name: "truncated", in: "hello world", limit: 5, want: "hello..."},
		{name: "runes", in: "Zürich Zürich", limit: 6, want: "Zürich..."},
		{name: "zero limit", in: "hello", limit: 0, want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.in, tt.limit); got != tt.want {
				t.Fatalf("TruncateForLog(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, json := range []bool{true, false} {
		l, err := New(json, true)
		if err != nil {
			t.Fatalf("New(%v, true) error: %v", json, err)
		}
		if !l.Core().Enabled(zapcore.DebugLevel) {
			t.Fatalf("expected debug level to be enabled")
		}
	}
}
