package scraper

import (
	"errors"
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		hasClock bool
	}{
		{"14.03.2023, 10:15:30", "2023-03-14 10:15:30", true},
		{"Публикувано на 14.03.2023, 10:15:30 ч.", "2023-03-14 10:15:30", true},
		{"2023-03-14 10:15:30", "2023-03-14 10:15:30", true},
		{"14.03.2023", "2023-03-14", false},
		{"4.3.2023", "2023-03-04", false},
		{"14 март 2023", "2023-03-14", false},
		{"1 Декември 2022 г.", "2022-12-01", false},
		{"14\u00a0септември\u00a02021", "2021-09-14", false},
		{"2023-03-14", "2023-03-14", false},
		{"Обновено 3 пъти 2023, публикувано 14 март 2023", "2023-03-14", false},
	}

	for _, tt := range tests {
		result, err := Normalize(tt.input)
		if err != nil {
			t.Errorf("Normalize(%q) error = %v", tt.input, err)
			continue
		}
		if result.String() != tt.expected {
			t.Errorf("Normalize(%q) = %v, want %v", tt.input, result, tt.expected)
		}
		if result.HasClock != tt.hasClock {
			t.Errorf("Normalize(%q).HasClock = %v, want %v", tt.input, result.HasClock, tt.hasClock)
		}
	}
}

func TestNormalizeComponents(t *testing.T) {
	result, err := Normalize("14.03.2023, 10:15:30")
	if err != nil {
		t.Fatalf("Normalize error = %v", err)
	}
	want := time.Date(2023, 3, 14, 10, 15, 30, 0, time.UTC)
	if !result.Time.Equal(want) {
		t.Errorf("Normalize = %v, want %v", result.Time, want)
	}

	// только дата: полночь
	dateOnly, err := Normalize("14.03.2023")
	if err != nil {
		t.Fatalf("Normalize error = %v", err)
	}
	if !dateOnly.Time.Equal(time.Date(2023, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date-only = %v, want midnight", dateOnly.Time)
	}
	if !dateOnly.Before(result) {
		t.Errorf("midnight should sort before 10:15:30 on the same day")
	}
}

func TestTimestampEqual(t *testing.T) {
	dateOnly, err := Normalize("14.03.2023")
	if err != nil {
		t.Fatalf("Normalize error = %v", err)
	}
	midnight, err := Normalize("2023-03-14 00:00:00")
	if err != nil {
		t.Fatalf("Normalize error = %v", err)
	}
	if !dateOnly.Equal(midnight) || !midnight.Equal(dateOnly) {
		t.Errorf("%v should equal %v", dateOnly, midnight)
	}

	later, err := Normalize("2023-03-14 00:00:01")
	if err != nil {
		t.Fatalf("Normalize error = %v", err)
	}
	if dateOnly.Equal(later) {
		t.Errorf("%v should not equal %v", dateOnly, later)
	}
}

func TestNormalizeFailures(t *testing.T) {
	inputs := []string{
		"not a date",
		"",
		"14 мартенски 2023",
		"31.02.2023",
		"14 march 2023",
	}

	for _, input := range inputs {
		_, err := Normalize(input)
		if err == nil {
			t.Errorf("Normalize(%q) expected error", input)
			continue
		}
		if !errors.Is(err, ErrDateParse) {
			t.Errorf("Normalize(%q) error = %v, want DateParseError", input, err)
		}
	}
}
