package icon

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		ref  string
		want Kind
	}{
		{"", None},
		{"fa-youtube", SocialGlyph},
		{"fa-x-twitter", SocialGlyph},
		{"assets/nvidia.png", ImageAsset},
		{"https://example.com/logo.webp", ImageAsset},
		{"FA-youtube", ImageAsset},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			if got := Classify(tt.ref); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.ref, got, tt.want)
			}
		})
	}
}

func TestGlyphClass(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"fa-python", "fa-brands fa-python"},
		{"fa-code", "fas fa-code"},
		{"fa-terminal", "fas fa-terminal"},
		{"fa-solid-star", "fas fa-solid-star"},
	}
	for _, tt := range tests {
		if got := GlyphClass(tt.ref); got != tt.want {
			t.Errorf("GlyphClass(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}
