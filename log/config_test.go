package log

import (
	"testing"
	"time"
)

func TestConfig_WithLevel_SetsLevel(t *testing.T) {
	tests := []struct {
		name     string
		level    Level
		expected Level
	}{
		{"trace", LevelTrace, LevelTrace},
		{"debug", LevelDebug, LevelDebug},
		{"info", LevelInfo, LevelInfo},
		{"warn", LevelWarn, LevelWarn},
		{"error", LevelError, LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WithLevel(tt.level)(config{})

			if result.level != tt.expected {
				t.Errorf("expected level %v, got %v", tt.expected, result.level)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"json", FormatJSON},
		{" JSON ", FormatJSON},
		{"text", FormatText},
		{"yaml", DefaultFormat},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFormat(tt.input); got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevelAndFormatStrings(t *testing.T) {
	var levels []string
	for l := range Levels() {
		levels = append(levels, l)
	}

	want := []string{"trace", "debug", "info", "warn", "error"}
	if len(levels) != len(want) {
		t.Fatalf("expected %d levels, got %v", len(want), levels)
	}

	for i := range want {
		if levels[i] != want[i] {
			t.Errorf("level %d = %q, want %q", i, levels[i], want[i])
		}
	}

	if FormatJSON.String() != "json" || FormatText.String() != "text" {
		t.Errorf("unexpected format strings %q %q", FormatJSON, FormatText)
	}
}

func TestMakeFormatTimeFunc(t *testing.T) {
	ts := time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		name   string
		layout string
		want   string
	}{
		{"named kitchen", "Kitchen", "3:04PM"},
		{"named rfc3339", "RFC3339", "2024-03-09T15:04:05Z"},
		{"custom", "2006/01/02", "2024/03/09"},
		{"none", "none", ""},
		{"empty", "  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := makeFormatTimeFunc(tt.layout)(ts); got != tt.want {
				t.Errorf("format(%q) = %q, want %q", tt.layout, got, tt.want)
			}
		})
	}
}
