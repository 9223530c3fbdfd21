package pattern

import (
	"container/list"
	"math"
	"math/rand"

	"github.com/fogleman/ease"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matt-g-everett/ledmix/mix"
)

type streakParticle struct {
	colour    colorful.Color
	start     float64
	current   float64
	increment float64
	length    float64
	gainRate  float64
}

func newStreakParticle() *streakParticle {
	p := new(streakParticle)
	p.colour = colorful.Color{R: 0.45, G: -0.54, B: 0.02}
	p.start = 0
	p.current = 0
	p.increment = 0.2
	p.length = 10
	p.gainRate = 0.05
	return p
}

func (p *streakParticle) incrementPosition(numPixels float64) bool {
	p.current += p.increment
	if p.current > numPixels {
		return false
	} else if p.current < 0-p.length {
		return false
	}

	return true
}

func (p *streakParticle) calcEaseDistance() float64 {
	return math.Abs(p.current-p.start) * p.gainRate
}

func (p *streakParticle) isLive(easeDistance float64) bool {
	return easeDistance <= 2
}

func (p *streakParticle) overallGain(easeDistance float64) float64 {
	if easeDistance > 2 {
		return 0
	} else if easeDistance > 1 {
		easeDistance = 1 - (easeDistance - 1)
	}

	return ease.InOutQuad(easeDistance)
}

func (p *streakParticle) addStreak(pixels []colorful.Color) bool {
	easeDistance := p.calcEaseDistance()
	live := p.isLive(easeDistance)
	bias := p.overallGain(easeDistance)
	if live {
		start := int(math.Ceil(p.current))
		end := int(math.Floor(p.current + p.length))
		if start < 0 {
			start = 0
		}
		if end > len(pixels)-1 {
			end = len(pixels) - 1
		}
		for i := start; i <= end; i++ {
			pixels[i] = pixels[i].BlendHcl(p.colour, bias)
		}
	}

	return live
}

// A Streak is a pattern that creates streaks that fade in then out.
type Streak struct {
	backColour   colorful.Color
	streakChance int32
	particles    *list.List
}

// NewStreak creates an instance of a Streak object.
func NewStreak(streakChance int32, backColour colorful.Color) *Streak {
	s := new(Streak)
	s.streakChance = streakChance
	s.backColour = backColour
	s.particles = list.New()

	return s
}

// Run renders the streaks into the frame.
func (s *Streak) Run(deltaMs float64, f *mix.Frame) error {
	pixels := f.Pixels()
	numPixels := len(pixels)
	for i := 0; i < numPixels; i++ {
		pixels[i] = s.backColour
	}

	toDelete := make([]*list.Element, 0, s.particles.Len())
	for e := s.particles.Front(); e != nil; e = e.Next() {
		particle, _ := e.Value.(*streakParticle)
		more := particle.incrementPosition(float64(numPixels))
		if more {
			more = particle.addStreak(pixels)
		}

		if !more {
			toDelete = append(toDelete, e)
		}
	}

	if rand.Int31n(s.streakChance) == 0 {
		// Create a randomised new particle
		p := newStreakParticle()
		s.particles.PushBack(p)
	}

	for _, e := range toDelete {
		s.particles.Remove(e)
	}

	return nil
}
