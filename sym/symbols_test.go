package sym

import "testing"

func TestGlyphsAreDistinct(t *testing.T) {
	seen := make(map[string]string)
	for name, glyph := range All() {
		if other, ok := seen[glyph]; ok {
			t.Errorf("glyph %q shared by %s and %s", glyph, name, other)
		}
		seen[glyph] = name
	}
}
