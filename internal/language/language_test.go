package language

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Bare codes pass through lowercased
		{"pt", "pt"},
		{"PT", "pt"},
		{"en", "en"},
		// Regional tags reduce to the primary subtag
		{"pt-BR", "pt"},
		{"pt-PT", "pt"},
		{"pt_br", "pt"},
		{"en-US", "en"},
		// Collapsed tags and spoken names
		{"ptbr", "pt"},
		{"ptpt", "pt"},
		{"portuguese", "pt"},
		{"português", "pt"},
		{"English", "en"},
		// ISO 639-2 codes canonicalize
		{"por", "pt"},
		{"eng", "en"},
		// Detection requests
		{"auto", ""},
		{"AUTO", ""},
		{"", ""},
		{"  ", ""},
		// Unknown hints keep their primary subtag
		{"xx", "xx"},
		{"xx-YY", "xx"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.expected {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestLabel(t *testing.T) {
	if got := Label(""); got != "auto" {
		t.Fatalf("Label(\"\") = %q", got)
	}
	if got := Label("pt"); got != "pt" {
		t.Fatalf("Label(\"pt\") = %q", got)
	}
}
