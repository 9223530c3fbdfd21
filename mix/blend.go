package mix

import (
	"fmt"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// A Blend implements a compositing function that merges a source frame into
// a destination frame at a given alpha. Blends are stateful; the selector
// that owns them drives their active lifecycle and eventual disposal.
type Blend interface {
	Name() string
	Blend(dst *Frame, src *Frame, alpha float64)
	OnActive()
	OnInactive()
	Dispose()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	} else if v > 1 {
		return 1
	}
	return v
}

// blendFunc merges a single source pixel over a destination pixel.
type blendFunc func(dst colorful.Color, src colorful.Color, alpha float64) colorful.Color

// funcBlend is the standard Blend implementation, a named pixel operation.
type funcBlend struct {
	name string
	fn   blendFunc
}

func (b *funcBlend) Name() string { return b.name }

func (b *funcBlend) Blend(dst *Frame, src *Frame, alpha float64) {
	d := dst.Pixels()
	s := src.Pixels()
	for i := range d {
		d[i] = b.fn(d[i], s[i], alpha)
	}
}

func (b *funcBlend) OnActive()   {}
func (b *funcBlend) OnInactive() {}
func (b *funcBlend) Dispose()    {}

// NewDissolveBlend creates a blend that crossfades dst towards src.
func NewDissolveBlend() Blend {
	return &funcBlend{name: "Dissolve", fn: func(dst, src colorful.Color, alpha float64) colorful.Color {
		return dst.BlendRgb(src, alpha)
	}}
}

// NewAddBlend creates a blend that adds the source, scaled by alpha.
func NewAddBlend() Blend {
	return &funcBlend{name: "Add", fn: func(dst, src colorful.Color, alpha float64) colorful.Color {
		return colorful.Color{
			R: clamp01(dst.R + src.R*alpha),
			G: clamp01(dst.G + src.G*alpha),
			B: clamp01(dst.B + src.B*alpha),
		}
	}}
}

// NewMultiplyBlend creates a blend that darkens dst by the source.
func NewMultiplyBlend() Blend {
	return &funcBlend{name: "Multiply", fn: func(dst, src colorful.Color, alpha float64) colorful.Color {
		m := colorful.Color{R: dst.R * src.R, G: dst.G * src.G, B: dst.B * src.B}
		return dst.BlendRgb(m, alpha)
	}}
}

// NewScreenBlend creates a blend that lightens dst by the inverted product.
func NewScreenBlend() Blend {
	return &funcBlend{name: "Screen", fn: func(dst, src colorful.Color, alpha float64) colorful.Color {
		s := colorful.Color{
			R: 1 - (1-dst.R)*(1-src.R),
			G: 1 - (1-dst.G)*(1-src.G),
			B: 1 - (1-dst.B)*(1-src.B),
		}
		return dst.BlendRgb(s, alpha)
	}}
}

// BlendSelector owns the list of blend instances available to a channel and
// tracks which one is active. Exactly one blend is active at all times once
// the selector is constructed. Selection changes arrive from control
// surfaces while the frame loop resolves the active blend, so the selector
// state is guarded by its own lock.
type BlendSelector struct {
	mu     sync.Mutex
	blends []Blend
	active int
}

// NewBlendSelector creates a selector over the given instances, activating
// the first. The list must be non-empty.
func NewBlendSelector(blends []Blend) *BlendSelector {
	if len(blends) == 0 {
		panic("mix: BlendSelector requires at least one blend")
	}
	s := new(BlendSelector)
	s.blends = blends
	s.active = 0
	s.blends[0].OnActive()
	return s
}

// Active returns the currently active blend.
func (s *BlendSelector) Active() Blend {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blends[s.active]
}

// Names returns the names of the available blends, in selector order.
func (s *BlendSelector) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.blends))
	for i, b := range s.blends {
		names[i] = b.Name()
	}
	return names
}

// selectLocked must be called with s.mu held.
func (s *BlendSelector) selectLocked(index int) error {
	if index < 0 || index >= len(s.blends) {
		return fmt.Errorf("mix: blend index %d out of range [0,%d)", index, len(s.blends))
	}
	if index == s.active {
		return nil
	}
	s.blends[s.active].OnInactive()
	s.active = index
	s.blends[s.active].OnActive()
	return nil
}

// SelectIndex switches the active blend. The old blend is deactivated
// strictly before the new one is activated.
func (s *BlendSelector) SelectIndex(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectLocked(index)
}

// Select switches the active blend by name.
func (s *BlendSelector) Select(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.blends {
		if b.Name() == name {
			return s.selectLocked(i)
		}
	}
	return fmt.Errorf("mix: no blend named %q", name)
}

// Refresh replaces the available blend list with freshly instantiated
// options. Every previously held instance is disposed, and the selection is
// re-resolved against the new list, re-running OnActive on it.
func (s *BlendSelector) Refresh(blends []Blend) {
	if len(blends) == 0 {
		panic("mix: BlendSelector refresh requires at least one blend")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.blends[s.active]
	old.OnInactive()
	for _, b := range s.blends {
		b.Dispose()
	}
	s.blends = blends
	if s.active >= len(blends) {
		s.active = 0
	}
	s.blends[s.active].OnActive()
}

// Dispose deactivates the active blend and disposes every instance held.
func (s *BlendSelector) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blends[s.active].OnInactive()
	for _, b := range s.blends {
		b.Dispose()
	}
	s.blends = nil
}
