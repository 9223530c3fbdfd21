package pattern

import (
	"fmt"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matt-g-everett/ledmix/mix"
)

// Factory instantiates a pattern with stock settings.
type Factory func() mix.Pattern

var factories = map[string]Factory{
	"twinkle": func() mix.Pattern {
		backColour, _ := colorful.Hex("#000005")
		foreColour, _ := colorful.Hex("#808080")
		return NewTwinkle(400, foreColour, backColour)
	},
	"multitwinkle": func() mix.Pattern {
		colours := []colorful.Color{
			{R: 0.45, G: -0.54, B: 0.02},
			{R: 0.23, G: 0.04, B: -0.87},
			colorful.Hcl(280.0, 1.0, 0.06),
		}
		return NewMultiTwinkle(40, colours, nil)
	},
	"gradienttrail": func() mix.Pattern {
		return NewGradientTrail(ChristmasGradient, 180, 0.06)
	},
	"streak": func() mix.Pattern {
		backColour, _ := colorful.Hex("#100505")
		return NewStreak(30, backColour)
	},
}

// New instantiates a pattern by its registered name.
func New(name string) (mix.Pattern, error) {
	factory, found := factories[name]
	if !found {
		return nil, fmt.Errorf("pattern: unknown pattern %q", name)
	}
	return factory(), nil
}

// Names lists the registered pattern names.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
