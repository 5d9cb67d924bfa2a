package helpers

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-03-10")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	want := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, value := range []string{"", "10/03/2025", "2025-3-10", "2025-13-01", "not a date"} {
		if _, err := ParseDate(value); err == nil {
			t.Errorf("ParseDate(%q) accepted", value)
		}
	}
}

func TestFormatDate_RoundTrip(t *testing.T) {
	parsed, err := ParseDate("2025-12-31")
	if err != nil {
		t.Fatal(err)
	}
	if got := FormatDate(parsed); got != "2025-12-31" {
		t.Errorf("got %q", got)
	}
}

func TestMidnight(t *testing.T) {
	in := time.Date(2025, 3, 15, 13, 45, 59, 123, time.UTC)
	want := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	if got := Midnight(in); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMidnight_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	in := time.Date(2025, 3, 16, 1, 30, 0, 0, loc) // 2025-03-15 22:30 UTC
	want := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	if got := Midnight(in); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseDuration(t *testing.T) {
	def := 15 * time.Minute
	tests := []struct {
		value string
		want  time.Duration
	}{
		{value: "1h", want: time.Hour},
		{value: "90s", want: 90 * time.Second},
		{value: "", want: def},
		{value: "garbage", want: def},
	}
	for _, tt := range tests {
		if got := ParseDuration(tt.value, def); got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
