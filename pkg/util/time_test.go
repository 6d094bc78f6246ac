package util

import (
	"testing"
	"time"
)

func TestParseSince(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantTime time.Time
		wantOk   bool
		exact    bool
	}{
		{
			name:   "empty string",
			input:  "",
			wantOk: false,
		},
		{
			name:   "whitespace only",
			input:  "   ",
			wantOk: false,
		},
		{
			name:   "now",
			input:  "now",
			wantOk: true,
		},
		{
			name:   "today",
			input:  "today",
			wantOk: true,
		},
		{
			name:   "yesterday",
			input:  "yesterday",
			wantOk: true,
		},
		{
			name:     "all is zero time",
			input:    "all",
			wantTime: time.Time{},
			wantOk:   true,
			exact:    true,
		},
		{
			name:     "unix timestamp",
			input:    "1609459200",
			wantTime: time.Unix(1609459200, 0),
			wantOk:   true,
			exact:    true,
		},
		{
			name:     "rfc3339",
			input:    "2024-06-01T10:30:00Z",
			wantTime: time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC),
			wantOk:   true,
			exact:    true,
		},
		{
			name:     "dashed date",
			input:    "2024-06-01",
			wantTime: time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local),
			wantOk:   true,
			exact:    true,
		},
		{
			name:     "compact date",
			input:    "20240601",
			wantTime: time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local),
			wantOk:   true,
			exact:    true,
		},
		{
			name:   "relative hours",
			input:  "5h-ago",
			wantOk: true,
		},
		{
			name:   "relative days",
			input:  "3d-ago",
			wantOk: true,
		},
		{
			name:   "relative weeks",
			input:  "1w-ago",
			wantOk: true,
		},
		{
			name:   "bad relative unit",
			input:  "3x-ago",
			wantOk: false,
		},
		{
			name:   "garbage",
			input:  "not-a-time",
			wantOk: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSince(tt.input)
			if ok != tt.wantOk {
				t.Fatalf("ParseSince(%q) ok = %v, want %v", tt.input, ok, tt.wantOk)
			}
			if tt.exact && !got.Equal(tt.wantTime) {
				t.Errorf("ParseSince(%q) = %v, want %v", tt.input, got, tt.wantTime)
			}
		})
	}
}

func TestParseSinceRelativeIsInThePast(t *testing.T) {
	got, ok := ParseSince("1d-ago")
	if !ok {
		t.Fatal("ParseSince(1d-ago) failed")
	}
	if !got.Before(time.Now()) {
		t.Errorf("ParseSince(1d-ago) = %v, expected a past time", got)
	}
}
