package pattern

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matt-g-everett/ledmix/mix"
)

func TestRegistryInstantiatesEveryPattern(t *testing.T) {
	names := Names()
	require.NotEmpty(t, names)

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			p, err := New(name)
			require.NoError(t, err)

			f := mix.NewFrame(64)
			for i := 0; i < 5; i++ {
				require.NoError(t, p.Run(16.0, f))
			}
		})
	}
}

func TestRegistryRejectsUnknownPattern(t *testing.T) {
	_, err := New("does-not-exist")
	assert.Error(t, err)
}

func TestTwinkleLightsParticles(t *testing.T) {
	back, _ := colorful.Hex("#000000")
	fore, _ := colorful.Hex("#808080")
	p := NewTwinkle(16, fore, back)

	f := mix.NewFrame(64)
	require.NoError(t, p.Run(16.0, f))

	lit := 0
	for _, px := range f.Pixels() {
		if px != back {
			lit++
		}
	}
	assert.Greater(t, lit, 0)
	assert.LessOrEqual(t, lit, 16)
}

func TestGradientTrailAdvancesWithTime(t *testing.T) {
	p := NewGradientTrail(ChristmasGradient, 32, 0.5)

	f1 := mix.NewFrame(32)
	require.NoError(t, p.Run(16.0, f1))
	first := append([]colorful.Color(nil), f1.Pixels()...)

	f2 := mix.NewFrame(32)
	require.NoError(t, p.Run(16.0, f2))

	assert.NotEqual(t, first, f2.Pixels(), "the trail must move between frames")
}

func TestGradientTableInterpolates(t *testing.T) {
	g := GradientTable{
		{0.0, 0.0},
		{180.0, 1.0},
	}

	mid := g.GetColor(0.5, 1.0, 0.5)
	h, _, _ := mid.Hcl()
	assert.InDelta(t, 90.0, h, 1.0)
}

func TestStreakRunsWithoutFaulting(t *testing.T) {
	back, _ := colorful.Hex("#100505")
	p := NewStreak(1, back)

	f := mix.NewFrame(128)
	for i := 0; i < 200; i++ {
		require.NoError(t, p.Run(16.0, f))
	}
}

func TestMultiTwinkleScintillates(t *testing.T) {
	colours := []colorful.Color{{R: 0.2, G: 0.05, B: 0.05}}
	p := NewMultiTwinkle(1, colours, nil)

	f := mix.NewFrame(32)
	for i := 0; i < 50; i++ {
		require.NoError(t, p.Run(16.0, f))
	}
}
