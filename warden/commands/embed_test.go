package commands

import "testing"

func TestParseEmbedColor(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{"with hash", "#FF0000", 0xFF0000, false},
		{"without hash", "00ff00", 0x00FF00, false},
		{"mixed case", "#AbCdEf", 0xABCDEF, false},
		{"black", "#000000", 0x000000, false},
		{"too short", "#FFF", 0, true},
		{"too long", "#FF000000", 0, true},
		{"not hex", "#GGGGGG", 0, true},
		{"empty", "", 0, true},
		{"hash only", "#", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseEmbedColor(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseEmbedColor(%q) expected an error, got %d", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseEmbedColor(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("parseEmbedColor(%q) = %#x, want %#x", tt.raw, got, tt.want)
			}
		})
	}
}

func TestIsHTTPURL(t *testing.T) {
	if !isHTTPURL("https://example.com/a.png") || !isHTTPURL("http://example.com/a.png") {
		t.Error("http(s) URLs must be accepted")
	}
	if isHTTPURL("ftp://example.com/a.png") || isHTTPURL("example.com/a.png") {
		t.Error("non-http URLs must be rejected")
	}
}
