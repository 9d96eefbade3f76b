package browser

import "testing"

func TestParseKind(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
	}{
		{"chromium", KindChromium},
		{"firefox", KindFirefox},
		{"webkit", KindWebkit},
		{"", KindChromium},
		{"chrome", KindChromium},
		{"Firefox", KindChromium},
		{"safari", KindChromium},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseKind(tt.input); got != tt.want {
				t.Errorf("ParseKind(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}
