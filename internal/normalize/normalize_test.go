package normalize

import (
	"strings"
	"testing"
	"unicode/utf8"

	"municipal-updates/internal/config"
)

func TestTruncate(t *testing.T) {
	input := "Спиране на водата в кв. Изток поради авария на главен водопровод"
	result := Truncate(input, 50)

	if n := utf8.RuneCountInString(result); n > 50 {
		t.Errorf("Truncate result too long: %d > 50", n)
	}
	if !strings.HasPrefix(input, result) {
		t.Errorf("Truncate should keep a prefix, got %q", result)
	}
	if !utf8.ValidString(result) {
		t.Errorf("Truncate cut a multi-byte rune")
	}

	if got := Truncate("  кратко  ", 50); got != "кратко" {
		t.Errorf("Truncate(short) = %q, want %q", got, "кратко")
	}
}

func TestCleanText(t *testing.T) {
	normalizer := NewNormalizer(config.NormalizeConfig{
		TrimNBSP:       true,
		CollapseSpaces: true,
	})

	input := "  Текст\u00a0\u00a0\u00a0с\u00a0NBSP  \r\n\n\n\nЕще   текст\tс    пробелами  "
	result := normalizer.CleanText(input)

	if strings.Contains(result, "\u00a0") {
		t.Errorf("NBSP not replaced")
	}
	if strings.Contains(result, "  ") {
		t.Errorf("Multiple spaces not collapsed: %q", result)
	}
	if strings.Contains(result, "\n\n\n") {
		t.Errorf("Blank lines not collapsed: %q", result)
	}
	if want := "Текст с NBSP\n\nЕще текст с пробелами"; result != want {
		t.Errorf("CleanText = %q, want %q", result, want)
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		base     string
		ref      string
		expected string
	}{
		{"https://example.com/news/", "https://example.com/page#anchor", "https://example.com/page"},
		{"https://example.com/news/", "  /a/b?id=1  ", "https://example.com/a/b?id=1"},
		{"https://example.com/news/", "item-5", "https://example.com/news/item-5"},
		{"https://example.com/news/", "", ""},
	}

	for _, tt := range tests {
		result := NormalizeURL(tt.base, tt.ref)
		if result != tt.expected {
			t.Errorf("NormalizeURL(%q, %q) = %q, want %q", tt.base, tt.ref, result, tt.expected)
		}
	}
}
