package pattern

import (
	"math"

	"github.com/matt-g-everett/ledmix/mix"
)

// A GradientTrail is a pattern that cycles a gradient along an led strip.
type GradientTrail struct {
	gradient    GradientTable
	current     float64
	trailLength int
	pixelsPerMs float64
}

// NewGradientTrail creates an instance of a GradientTrail object.
func NewGradientTrail(gradient GradientTable, trailLength int, pixelsPerMs float64) *GradientTrail {
	g := new(GradientTrail)
	g.gradient = gradient
	g.trailLength = trailLength
	g.pixelsPerMs = pixelsPerMs
	g.current = 0

	return g
}

// Run renders the cycling gradient into the frame.
func (g *GradientTrail) Run(deltaMs float64, f *mix.Frame) error {
	pixels := f.Pixels()
	saturation := 1.0
	luminance := 0.05
	numPixels := len(pixels)
	for i := 0; i < numPixels; i++ {
		t := math.Mod((float64(i+numPixels) - g.current), float64(g.trailLength)) / float64(g.trailLength)
		pixels[i] = g.gradient.GetColor(t, saturation, luminance)
	}

	g.current += g.pixelsPerMs * deltaMs
	g.current = math.Mod(g.current, float64(g.trailLength))

	return nil
}
