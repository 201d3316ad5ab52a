// ABOUTME: Tests for the HH:MM to 12-hour segment codec
// ABOUTME: Covers midnight and noon boundaries, round trips and display formatting

package timeofday

import (
	"errors"
	"fmt"
	"testing"

	"github.com/harper/gachi/internal/locale"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		in   string
		want Segments
	}{
		{"", Segments{}},
		{"00:00", Segments{AM, 12, "00"}},
		{"00:05", Segments{AM, 12, "05"}},
		{"09:10", Segments{AM, 9, "10"}},
		{"11:59", Segments{AM, 11, "59"}},
		{"12:00", Segments{PM, 12, "00"}},
		{"14:30", Segments{PM, 2, "30"}},
		{"14:30:00", Segments{PM, 2, "30"}},
		{"23:45", Segments{PM, 11, "45"}},
		{"24:00", Segments{}},
		{"garbage", Segments{}},
	}

	for _, tc := range tests {
		if got := Decode(tc.in); got != tc.want {
			t.Errorf("Decode(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		period Period
		hour   int
		minute string
		want   string
		ok     bool
	}{
		{AM, 12, "00", "00:00", true},
		{AM, 9, "10", "09:10", true},
		{PM, 12, "30", "12:30", true},
		{PM, 2, "30", "14:30", true},
		{PM, 11, "50", "23:50", true},
		{PeriodUnset, 2, "30", "", false},
		{AM, 0, "30", "", false},
		{AM, 2, "", "", false},
		{AM, 13, "00", "", false},
		{AM, 1, "7", "", false},
		{AM, 9, "+5", "", false},
		{PM, 3, "-0", "", false},
		{AM, 9, "60", "", false},
	}

	for _, tc := range tests {
		got, ok := Encode(tc.period, tc.hour, tc.minute)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Encode(%v, %d, %q) = (%q, %v), want (%q, %v)",
				tc.period, tc.hour, tc.minute, got, ok, tc.want, tc.ok)
		}
	}
}

func TestRoundTripEveryMinute(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			in := fmt.Sprintf("%02d:%02d", h, m)
			got, ok := Decode(in).Encode()
			if !ok || got != in {
				t.Fatalf("round trip %q -> (%q, %v)", in, got, ok)
			}
		}
	}
}

func TestFormatDisplay(t *testing.T) {
	tests := []struct {
		in   string
		loc  locale.Locale
		want string
	}{
		{"10:30", locale.Korean, "오전 10:30"},
		{"00:05", locale.Korean, "오전 12:05"},
		{"12:00", locale.Korean, "오후 12:00"},
		{"14:30", locale.Korean, "오후 2:30"},
		{"14:30", locale.English, "PM 2:30"},
		{"", locale.Korean, ""},
	}

	for _, tc := range tests {
		if got := FormatDisplay(tc.in, tc.loc); got != tc.want {
			t.Errorf("FormatDisplay(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize("9:05")
	if err != nil || got != "09:05" {
		t.Errorf("Normalize(9:05) = %q, %v", got, err)
	}
	if got, err := Normalize(""); err != nil || got != "" {
		t.Errorf("Normalize(\"\") = %q, %v", got, err)
	}
	for _, in := range []string{"25:00", "+9:05", "-0:30", "09:+5", "9:5"} {
		if _, err := Normalize(in); !errors.Is(err, ErrInvalidTime) {
			t.Errorf("Normalize(%q) error = %v, want ErrInvalidTime", in, err)
		}
	}
}

func TestParsePeriod(t *testing.T) {
	for in, want := range map[string]Period{"am": AM, "PM": PM, "오전": AM, "오후": PM} {
		got, ok := ParsePeriod(in)
		if !ok || got != want {
			t.Errorf("ParsePeriod(%q) = %v, %v", in, got, ok)
		}
	}
	if _, ok := ParsePeriod("noon"); ok {
		t.Error("ParsePeriod(noon) should fail")
	}
}
