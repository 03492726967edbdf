package textutil

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain title", "The Matrix", "the matrix"},
		{"parenthesized year", "The Matrix (1999)", "the matrix"},
		{"bare year kept", "Blade Runner 2049", "blade runner 2049"},
		{"punctuation", "Mission: Impossible - Fallout!", "mission impossible fallout"},
		{"diacritics", "Pelíšky", "pelisky"},
		{"collapses whitespace", "  a \t  b\n c ", "a b c"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStripDiacritics(t *testing.T) {
	t.Parallel()
	if got := StripDiacritics("Stáhnout Uložit Přihlásit"); got != "Stahnout Ulozit Prihlasit" {
		t.Errorf("StripDiacritics = %q", got)
	}
}

func TestSlug(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  string
	}{
		{"The Matrix", "the-matrix"},
		{"Amélie (2001)", "amelie"},
		{"", "subtitle"},
		{"???", "subtitle"},
	}
	for _, tt := range tests {
		if got := Slug(tt.input); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
