package trenord

import (
	"testing"
	"time"
)

func TestParseClockTime(t *testing.T) {
	day := time.Date(2023, 3, 25, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		s    string
		want time.Time
	}{
		{"daytime", "10:15:30", time.Date(2023, 3, 25, 10, 15, 30, 0, time.UTC)},
		{"late evening", "23:59:00", time.Date(2023, 3, 25, 23, 59, 0, 0, time.UTC)},
		{"small hours roll over", "00:42:00", time.Date(2023, 3, 26, 0, 42, 0, 0, time.UTC)},
		{"just below the split", "03:59:59", time.Date(2023, 3, 26, 3, 59, 59, 0, time.UTC)},
		{"exactly the split", "04:00:00", time.Date(2023, 3, 25, 4, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClockTime(tt.s, day, 4)
			if err != nil {
				t.Fatalf("ParseClockTime(%q): %v", tt.s, err)
			}
			if got == nil || !got.Equal(tt.want) {
				t.Errorf("ParseClockTime(%q) = %v, want %v", tt.s, got, tt.want)
			}
		})
	}
}

func TestParseClockTimeEmpty(t *testing.T) {
	got, err := ParseClockTime("", time.Now(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("ParseClockTime(\"\") = %v, want nil", got)
	}
}

func TestParseClockTimeInvalid(t *testing.T) {
	if _, err := ParseClockTime("25:99", time.Now(), 4); err == nil {
		t.Error("expected an error for garbage input")
	}
}
