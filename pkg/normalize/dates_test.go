package normalize

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveDate(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  time.Time
		ok    bool
	}{
		{"zero padded ddmmyyyy", "04092025", date(2025, 9, 4), true},
		{"short ddmmyyyy", "4092025", date(2025, 9, 4), true},
		{"yyyymmdd", "20250904", date(2025, 9, 4), true},
		{"float serialized", "04092025.0", date(2025, 9, 4), true},
		{"serial string", "45567", excelEpoch.AddDate(0, 0, 45567), true},
		{"serial float", float64(45567), excelEpoch.AddDate(0, 0, 45567), true},
		{"serial int", 45567, excelEpoch.AddDate(0, 0, 45567), true},
		{"slash day first", "04/09/2025", date(2025, 9, 4), true},
		{"dash day first", "04-09-2025", date(2025, 9, 4), true},
		{"dot separated", "04.09.2025", date(2025, 9, 4), true},
		{"single digit day first", "4.9.2025", date(2025, 9, 4), true},
		{"day first beats month first", "12-11-2025", date(2025, 11, 12), true},
		{"impossible day", "32/01/2025", time.Time{}, false},
		{"iso", "2025-09-04", date(2025, 9, 4), true},
		{"arabic digits", "٠٤٠٩٢٠٢٥", date(2025, 9, 4), true},
		{"already a time", time.Date(2025, 9, 4, 13, 45, 0, 0, time.UTC), date(2025, 9, 4), true},
		{"not a date", "not-a-date", time.Time{}, false},
		{"empty", "", time.Time{}, false},
		{"nan", "nan", time.Time{}, false},
		{"none", "None", time.Time{}, false},
		{"nil", nil, time.Time{}, false},
		{"eight digit garbage", "99999999", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := ResolveDate(tt.input)
		if ok != tt.ok {
			t.Errorf("%s: ResolveDate(%v) ok = %v, want %v", tt.name, tt.input, ok, tt.ok)
			continue
		}
		if ok && !got.Equal(tt.want) {
			t.Errorf("%s: ResolveDate(%v) = %v, want %v", tt.name, tt.input, got, tt.want)
		}
	}
}

func TestResolveDateSerialEpoch(t *testing.T) {
	// Leading zeros still count as a plausible serial, not a padded date.
	got, ok := ResolveDate("0100")
	if !ok {
		t.Fatal("serial 0100 did not resolve")
	}
	want := excelEpoch.AddDate(0, 0, 100)
	if !got.Equal(want) {
		t.Errorf("serial 100 = %v, want %v", got, want)
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(date(2025, 9, 4), true); got != "2025-09-04" {
		t.Errorf("FormatDate = %q, want 2025-09-04", got)
	}
	if got := FormatDate(time.Time{}, false); got != "" {
		t.Errorf("FormatDate unresolved = %q, want empty", got)
	}
}
