package evergreen

import (
	"fmt"
	"math/rand/v2"

	"github.com/lucasb-eyer/go-colorful"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// ColorFromHex parses a "#rrggbb" or "#rgb" string into an opaque Color.
func ColorFromHex(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return fromColorful(c), nil
}

// BlendLab mixes a and b in CIE-Lab space, which keeps gradients between
// dark greens from muddying through grey. Alpha is mixed linearly.
func BlendLab(a, b Color, t float64) Color {
	c := fromColorful(a.colorful().BlendLab(b.colorful(), t).Clamped())
	c.A = lerp(a.A, b.A, t)
	return c
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}
}

func fromColorful(c colorful.Color) Color {
	return Color{R: c.R, G: c.G, B: c.B, A: 1}
}

// Hex returns the color formatted as "#rrggbb". Alpha is dropped.
func (c Color) Hex() string {
	return c.colorful().Clamped().Hex()
}

// Vec2 is a 2D vector used for cursor and screen positions.
type Vec2 struct {
	X, Y float64
}

// Range is a closed interval that layouts draw random values from.
type Range struct {
	Min, Max float64
}

// Random returns a random float64 in [Min, Max] drawn from rng.
func (r Range) Random(rng *rand.Rand) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// ImageRef is an opaque image reference: a file path, an http(s) URL or a
// data: URI. The empty ImageRef means "no image".
type ImageRef string

// appendRefs appends the non-empty refs of pool to dst.
func appendRefs(dst, pool []ImageRef) []ImageRef {
	for _, ref := range pool {
		if ref != "" {
			dst = append(dst, ref)
		}
	}
	return dst
}

// Fallback image references.
const (
	// DefaultPortraitRef is bound to photo cards when the portrait pool is empty
	// or a portrait fails to load.
	DefaultPortraitRef ImageRef = "https://picsum.photos/id/1025/200/200"
	// DefaultPrizeRef is drawn as the prize when the prize pool is empty.
	DefaultPrizeRef ImageRef = "https://picsum.photos/id/1012/512/512"
	// TransparentRef is a 1x1 fully transparent GIF bound to every card back
	// that is not currently showing a prize.
	TransparentRef ImageRef = "data:image/gif;base64,R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7"
)

// Blend factor endpoints.
const (
	BlendDispersed = 0.0
	BlendFormed    = 1.0
)

// newRand returns a PCG-backed generator. A zero seed picks a random one.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
