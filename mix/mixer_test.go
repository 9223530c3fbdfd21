package mix

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// solidPattern fills the channel's buffer with one colour.
type solidPattern struct {
	colour colorful.Color
}

func (p *solidPattern) Run(deltaMs float64, f *Frame) error {
	f.Fill(p.colour)
	return nil
}

func TestCueActivationClearsSiblingCues(t *testing.T) {
	m := newTestMixer(t)
	a := m.AddChannel("a")
	b := m.AddChannel("b")
	c := m.AddChannel("c")

	a.SetCueActive(true)
	require.True(t, a.CueActive())

	b.SetCueActive(true)
	assert.False(t, a.CueActive(), "activating b's cue must clear a's")
	assert.True(t, b.CueActive())
	assert.False(t, c.CueActive())

	// Without the focus flag the mixer never grabs selection.
	assert.Nil(t, m.Selected())
	assert.Nil(t, m.Focused())
}

func TestBusCuesAndChannelCuesAreMutuallyExclusive(t *testing.T) {
	m := newTestMixer(t)
	c := m.AddChannel("cued")

	m.SetCueA(true)
	require.True(t, m.CueA())

	// A channel cue clears the bus cues...
	c.SetCueActive(true)
	assert.False(t, m.CueA())
	assert.False(t, m.CueB())

	// ...and a bus cue clears channel cues.
	m.SetCueB(true)
	assert.True(t, m.CueB())
	assert.False(t, c.CueActive())
}

func TestCueActivationFocusesChannelWhenConfigured(t *testing.T) {
	m := NewMixer(16, true)
	t.Cleanup(m.Dispose)
	a := m.AddChannel("a")
	b := m.AddChannel("b")

	b.SetCueActive(true)

	assert.Same(t, b, m.Selected())
	assert.Same(t, b, m.Focused())
	_ = a
}

func TestGroupSettlesBeforeMembersReadIt(t *testing.T) {
	m := newTestMixer(t)
	g := m.AddGroup("group")
	m1 := m.AddChannel("m1")
	m2 := m.AddChannel("m2")
	require.NoError(t, g.AddMember(m1))
	require.NoError(t, g.AddMember(m2))

	m.Advance(16.0)
	require.True(t, m1.Animating())
	require.True(t, m2.Animating())

	// Disabling the group gates the members on the very next frame; the
	// group phase settles before any member resolves.
	g.SetEnabled(false)
	m.Advance(16.0)
	assert.False(t, g.Animating())
	assert.False(t, m1.Animating())
	assert.False(t, m2.Animating())
}

func TestGroupMembershipRules(t *testing.T) {
	m := newTestMixer(t)
	g1 := m.AddGroup("g1")
	g2 := m.AddGroup("g2")
	c := m.AddChannel("c")

	require.NoError(t, g1.AddMember(c))
	assert.Error(t, g2.AddMember(c), "a channel may only belong to one group")
	assert.Error(t, g1.AddMember(&g2.Channel), "groups may not nest")

	require.NoError(t, g1.RemoveMember(c))
	assert.Error(t, g1.RemoveMember(c))
	assert.Nil(t, c.Group())
}

func TestRemoveChannelDetachesGroupMembers(t *testing.T) {
	m := newTestMixer(t)
	g := m.AddGroup("group")
	c := m.AddChannel("member")
	require.NoError(t, g.AddMember(c))

	require.NoError(t, m.RemoveChannel(&g.Channel))
	assert.Nil(t, c.Group())
	assert.Equal(t, 0, c.Index())

	assert.Error(t, m.RemoveChannel(&g.Channel), "removing twice must fail")
}

func TestCompositeRoutesBypassChannel(t *testing.T) {
	m := newTestMixer(t)
	c := m.AddChannel("solid")
	red := colorful.Color{R: 1, G: 0, B: 0}
	c.SetPattern(&solidPattern{colour: red})

	out := m.Advance(16.0)

	px := out.Pixels()[0]
	assert.InDelta(t, 1.0, px.R, 0.001)
	assert.InDelta(t, 0.0, px.G, 0.001)
}

func TestCompositeHonoursCrossfader(t *testing.T) {
	m := newTestMixer(t)
	a := m.AddChannel("busA")
	b := m.AddChannel("busB")
	a.SetPattern(&solidPattern{colour: colorful.Color{R: 1}})
	b.SetPattern(&solidPattern{colour: colorful.Color{G: 1}})
	a.SetCrossfadeGroup(CrossfadeA)
	b.SetCrossfadeGroup(CrossfadeB)

	m.SetCrossfader(0.0)
	out := m.Advance(16.0)
	assert.InDelta(t, 1.0, out.Pixels()[0].R, 0.001)
	assert.InDelta(t, 0.0, out.Pixels()[0].G, 0.001)

	m.SetCrossfader(1.0)
	out = m.Advance(16.0)
	assert.InDelta(t, 0.0, out.Pixels()[0].R, 0.001)
	assert.InDelta(t, 1.0, out.Pixels()[0].G, 0.001)
}

func TestCompositeSkipsZeroFader(t *testing.T) {
	m := newTestMixer(t)
	c := m.AddChannel("silent")
	c.SetPattern(&solidPattern{colour: colorful.Color{R: 1}})
	c.SetFader(0.0)

	out := m.Advance(16.0)
	px := out.Pixels()[0]
	assert.InDelta(t, 0.0, px.R, 0.001)
	assert.InDelta(t, 0.0, px.G, 0.001)
	assert.InDelta(t, 0.0, px.B, 0.001)
}

func TestCuePreviewOverridesTheMix(t *testing.T) {
	m := newTestMixer(t)
	main := m.AddChannel("main")
	preview := m.AddChannel("preview")
	main.SetPattern(&solidPattern{colour: colorful.Color{R: 1}})
	preview.SetPattern(&solidPattern{colour: colorful.Color{B: 1}})

	preview.SetEnabled(false)
	preview.SetCueActive(true)

	out := m.Advance(16.0)
	assert.InDelta(t, 1.0, out.Pixels()[0].B, 0.001, "cue preview must show the cued channel")
	assert.InDelta(t, 0.0, out.Pixels()[0].R, 0.001)
}

func TestCuedGroupPreviewIncludesMembers(t *testing.T) {
	m := newTestMixer(t)
	g := m.AddGroup("group")
	member := m.AddChannel("member")
	require.NoError(t, g.AddMember(member))

	member.SetPattern(&solidPattern{colour: colorful.Color{R: 1}})
	require.NoError(t, member.SetBlendMode("Add"))

	g.SetCueActive(true)

	out := m.Advance(16.0)
	assert.InDelta(t, 1.0, out.Pixels()[0].R, 0.001, "previewing a group must fold in its members")
}

func TestGroupCompositesItsMembers(t *testing.T) {
	m := newTestMixer(t)
	g := m.AddGroup("group")
	member := m.AddChannel("member")
	require.NoError(t, g.AddMember(member))

	member.SetPattern(&solidPattern{colour: colorful.Color{R: 1}})
	require.NoError(t, member.SetBlendMode("Add"))

	out := m.Advance(16.0)
	assert.InDelta(t, 1.0, out.Pixels()[0].R, 0.001, "member output must reach the mix through its group")
}

func TestCrashedPatternStallsOnlyItsChannel(t *testing.T) {
	m := newTestMixer(t)
	good := m.AddChannel("good")
	bad := m.AddChannel("bad")
	good.SetPattern(&solidPattern{colour: colorful.Color{R: 1}})
	bad.SetPattern(patternFunc(func(deltaMs float64, f *Frame) error {
		panic("frame bomb")
	}))

	var surfaced string
	m.SetErrorHandler(func(message string) { surfaced = message })

	out := m.Advance(16.0)

	assert.True(t, bad.Device().Crashed())
	assert.Contains(t, surfaced, "bad")
	assert.InDelta(t, 1.0, out.Pixels()[0].R, 0.001, "healthy channels must keep mixing")

	// Later frames skip the crashed pattern without incident.
	out = m.Advance(16.0)
	assert.InDelta(t, 1.0, out.Pixels()[0].R, 0.001)
}
