package sanitize

import (
	"strings"
	"testing"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Hammer", "Hammer"},
		{"tags", "<b>Deepwinter</b>", "Deepwinter"},
		{"script", `Midsummer<script>alert(1)</script>`, "Midsummer"},
		{"entities", "Fish &amp; Chips", "Fish & Chips"},
		{"whitespace", "  Greengrass \n\t Festival ", "Greengrass Festival"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.in); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHTML(t *testing.T) {
	got := HTML(`<p class="center">The <em>long</em> night<img src=x onerror="alert(1)"></p><script>bad()</script>`)
	if strings.Contains(got, "script") || strings.Contains(got, "onerror") {
		t.Errorf("dangerous markup survived: %q", got)
	}
	if !strings.Contains(got, "<em>long</em>") || !strings.Contains(got, `class="center"`) {
		t.Errorf("safe markup was removed: %q", got)
	}
	if HTML("") != "" {
		t.Error("expected empty output for empty input")
	}
}
