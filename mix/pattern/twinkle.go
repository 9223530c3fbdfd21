package pattern

import (
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matt-g-everett/ledmix/mix"
)

// A Twinkle is a pattern that twinkles random particles.
type Twinkle struct {
	numParticles int
	foreColour   colorful.Color
	backColour   colorful.Color

	initialised bool
	particles   map[int]bool
}

// NewTwinkle creates an instance of a Twinkle object.
func NewTwinkle(numParticles int, foreColour colorful.Color, backColour colorful.Color) *Twinkle {
	t := new(Twinkle)
	t.numParticles = numParticles
	t.foreColour = foreColour
	t.backColour = backColour

	t.initialised = false
	t.particles = make(map[int]bool)

	return t
}

// Run renders the twinkling particles into the frame.
func (t *Twinkle) Run(deltaMs float64, f *mix.Frame) error {
	pixels := f.Pixels()
	numPixels := len(pixels)
	if !t.initialised {
		for i := 0; i < t.numParticles; i++ {
			t.particles[rand.Intn(numPixels)] = true
		}
		t.initialised = true
	}

	for i := 0; i < numPixels; i++ {
		if t.particles[i] {
			pixels[i] = t.foreColour
		} else {
			pixels[i] = t.backColour
		}
	}

	return nil
}
