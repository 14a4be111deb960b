// Package icon classifies icon references from the timeline source.
//
// A reference is either a font glyph class ("fa-youtube") or a path/URL to an
// image asset ("assets/nvidia.png"). Nothing here touches the network; image
// references that fail to load are swapped for Placeholder by the page.
package icon

import "strings"

type Kind int

const (
	None Kind = iota
	SocialGlyph
	ImageAsset
)

func (k Kind) String() string {
	switch k {
	case SocialGlyph:
		return "glyph"
	case ImageAsset:
		return "image"
	default:
		return "none"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

const glyphPrefix = "fa-"

// Placeholder is the glyph class drawn in place of an image that cannot be loaded.
const Placeholder = "fas fa-circle"

// Classify reports what kind of icon ref names.
func Classify(ref string) Kind {
	switch {
	case ref == "":
		return None
	case strings.HasPrefix(ref, glyphPrefix):
		return SocialGlyph
	default:
		return ImageAsset
	}
}

// GlyphClass returns the full class attribute for a glyph reference: solid
// style for code/terminal/solid glyphs, brand style otherwise.
func GlyphClass(ref string) string {
	family := "fa-brands"
	for _, hint := range []string{"code", "terminal", "solid"} {
		if strings.Contains(ref, hint) {
			family = "fas"
			break
		}
	}
	return family + " " + ref
}
