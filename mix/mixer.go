package mix

import (
	"fmt"
	"log"
	"sync"

	"github.com/fogleman/ease"
)

// BlendRegistry instantiates the ordered list of blends available to each
// channel fader.
type BlendRegistry func() []Blend

func defaultChannelBlends() []Blend {
	return []Blend{
		NewDissolveBlend(),
		NewAddBlend(),
		NewMultiplyBlend(),
		NewScreenBlend(),
	}
}

// Mixer owns the ordered channel list and drives the per-frame fan-out:
// every channel's worker is handed the frame delta, groups strictly before
// their members, and the compositor only reads buffers after all workers
// have been joined.
type Mixer struct {
	numPixels         int
	focusChannelOnCue bool

	mu       sync.Mutex
	channels []*Channel
	selected *Channel
	focused  *Channel
	cueA     bool
	cueB     bool

	crossfader float64

	registry BlendRegistry
	onError  func(message string)

	// compositor scratch space, only touched between join and publish
	output   *Frame
	busA     *Frame
	busB     *Frame
	scratch  *Frame
	busBlend Blend
}

// NewMixer creates a mixer for a model of the given pixel count.
func NewMixer(numPixels int, focusChannelOnCue bool) *Mixer {
	m := new(Mixer)
	if numPixels <= 0 {
		numPixels = 500
	}
	m.numPixels = numPixels
	m.focusChannelOnCue = focusChannelOnCue
	m.registry = defaultChannelBlends
	m.output = NewFrame(numPixels)
	m.busA = NewFrame(numPixels)
	m.busB = NewFrame(numPixels)
	m.scratch = NewFrame(numPixels)
	m.busBlend = NewAddBlend()
	return m
}

func (m *Mixer) instantiateChannelBlends() []Blend {
	return m.registry()
}

// SetBlendRegistry installs a new blend registry and re-resolves every
// channel's blend options against it.
func (m *Mixer) SetBlendRegistry(registry BlendRegistry) {
	m.mu.Lock()
	m.registry = registry
	channels := append([]*Channel(nil), m.channels...)
	m.mu.Unlock()

	for _, c := range channels {
		c.blendMode.Refresh(registry())
	}
}

// AddChannel appends a new leaf channel to the mixer.
func (m *Mixer) AddChannel(label string) *Channel {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := newChannel(m, len(m.channels), label)
	m.channels = append(m.channels, c)
	return c
}

// AddGroup appends a new group to the mixer.
func (m *Mixer) AddGroup(label string) *Group {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := new(Group)
	initChannel(&g.Channel, m, len(m.channels), label)
	g.asGroup = g
	m.channels = append(m.channels, &g.Channel)
	return g
}

// RemoveChannel removes a channel from the mixer, reindexes the channels
// after it and disposes it. Removing a group detaches its members first.
func (m *Mixer) RemoveChannel(c *Channel) error {
	m.mu.Lock()
	at := -1
	for i, ch := range m.channels {
		if ch == c {
			at = i
			break
		}
	}
	if at < 0 {
		m.mu.Unlock()
		return fmt.Errorf("mix: channel [%s] is not in this mixer", c.label)
	}
	m.channels = append(m.channels[:at], m.channels[at+1:]...)
	reindex := append([]*Channel(nil), m.channels[at:]...)
	if m.selected == c {
		m.selected = nil
	}
	if m.focused == c {
		m.focused = nil
	}
	m.mu.Unlock()

	if g := c.asGroup; g != nil {
		for _, member := range append([]*Channel(nil), g.members...) {
			g.RemoveMember(member)
		}
	}
	for i, ch := range reindex {
		ch.setIndex(at + i)
	}
	c.Dispose()
	return nil
}

// Channels returns a snapshot of the mixer's channel list, in index order.
func (m *Mixer) Channels() []*Channel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Channel(nil), m.channels...)
}

// ChannelAt returns the channel at the given index.
func (m *Mixer) ChannelAt(index int) (*Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.channels) {
		return nil, fmt.Errorf("mix: no channel at index %d", index)
	}
	return m.channels[index], nil
}

// cueActivated enforces the cue discipline when a channel's cue turns on:
// any other cue selection, channel or crossfade bus, is cleared, and the
// channel may grab selection focus.
func (m *Mixer) cueActivated(c *Channel) {
	m.mu.Lock()
	m.cueA = false
	m.cueB = false
	others := append([]*Channel(nil), m.channels...)
	focus := m.focusChannelOnCue
	if focus {
		m.selected = c
		m.focused = c
	}
	m.mu.Unlock()

	for _, other := range others {
		if other != c {
			other.SetCueActive(false)
		}
	}
}

// SetCueA toggles the crossfade bus A cue. Turning it on clears bus B's
// cue and every channel cue.
func (m *Mixer) SetCueA(on bool) {
	m.setBusCue(&m.cueA, &m.cueB, on)
}

// SetCueB toggles the crossfade bus B cue. Turning it on clears bus A's
// cue and every channel cue.
func (m *Mixer) SetCueB(on bool) {
	m.setBusCue(&m.cueB, &m.cueA, on)
}

func (m *Mixer) setBusCue(cue *bool, otherCue *bool, on bool) {
	m.mu.Lock()
	*cue = on
	if on {
		*otherCue = false
	}
	channels := append([]*Channel(nil), m.channels...)
	m.mu.Unlock()

	if on {
		for _, c := range channels {
			c.SetCueActive(false)
		}
	}
}

// CueA reports whether the crossfade bus A cue is on.
func (m *Mixer) CueA() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cueA
}

// CueB reports whether the crossfade bus B cue is on.
func (m *Mixer) CueB() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cueB
}

// Selected returns the channel last selected by cue focus.
func (m *Mixer) Selected() *Channel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected
}

// Focused returns the channel holding UI focus.
func (m *Mixer) Focused() *Channel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focused
}

// SetCrossfader positions the A/B crossfader, 0 fully on bus A and 1 fully
// on bus B.
func (m *Mixer) SetCrossfader(position float64) {
	m.mu.Lock()
	m.crossfader = clamp01(position)
	m.mu.Unlock()
}

// Crossfader returns the crossfader position.
func (m *Mixer) Crossfader() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.crossfader
}

func (m *Mixer) patternCrashed(label string, record *CrashRecord) {
	message := fmt.Sprintf("Pattern on channel [%s] crashed due to an unexpected error: %v", label, record.Err)
	m.mu.Lock()
	notify := m.onError
	m.mu.Unlock()
	if notify != nil {
		notify(message)
	} else {
		log.Println(message)
	}
}

// SetErrorHandler registers the sink for user-visible error messages, e.g.
// pattern crash diagnostics.
func (m *Mixer) SetErrorHandler(handler func(message string)) {
	m.mu.Lock()
	m.onError = handler
	m.mu.Unlock()
}

// Advance runs one frame: it fans the delta out to every channel worker,
// groups first so every member reads settled group state for this same
// frame, joins them all, then composites the channel buffers into the
// output frame.
func (m *Mixer) Advance(deltaMs float64) *Frame {
	m.mu.Lock()
	channels := append([]*Channel(nil), m.channels...)
	m.mu.Unlock()

	var groups, leaves []*Channel
	for _, c := range channels {
		if c.IsGroup() {
			groups = append(groups, c)
		} else {
			leaves = append(leaves, c)
		}
	}

	for _, c := range groups {
		c.worker.dispatch(deltaMs)
	}
	for _, c := range groups {
		c.worker.await()
	}
	for _, c := range leaves {
		c.worker.dispatch(deltaMs)
	}
	for _, c := range leaves {
		c.worker.await()
	}

	return m.composite(channels)
}

// composite folds the settled channel buffers into the output frame. It
// runs on the driving goroutine, strictly after the frame join.
func (m *Mixer) composite(channels []*Channel) *Frame {
	m.output.Fill(colorBlack)
	m.busA.Fill(colorBlack)
	m.busB.Fill(colorBlack)

	var cued *Channel
	for _, c := range channels {
		if c.CueActive() && cued == nil {
			cued = c
		}
		if c.group != nil {
			// Members contribute through their group's pass below.
			continue
		}
		if !c.Animating() {
			continue
		}
		source := c.buffer
		if g := c.asGroup; g != nil {
			source = m.compositeGroup(g)
		}
		m.routeChannel(c, source)
	}

	position := m.Crossfader()
	faded := m.busA.InterpolateFrame(m.busB, ease.InOutQuad(position))
	m.busBlend.Blend(m.output, faded, 1.0)

	if cued != nil {
		// Cue preview overrides the mix entirely. A cued group previews
		// with its member contributions folded in.
		source := cued.buffer
		if g := cued.asGroup; g != nil {
			source = m.compositeGroup(g)
		}
		m.output.CopyFrom(source)
	}

	return m.output
}

// compositeGroup folds a group's animating members over the group's own
// buffer, in member order, into mixer-owned scratch space.
func (m *Mixer) compositeGroup(g *Group) *Frame {
	m.scratch.CopyFrom(g.buffer)
	for _, member := range g.members {
		if !member.Animating() {
			continue
		}
		member.blendMode.Active().Blend(m.scratch, member.buffer, member.Fader())
	}
	return m.scratch
}

func (m *Mixer) routeChannel(c *Channel, source *Frame) {
	alpha := c.Fader()
	if alpha <= 0 {
		return
	}
	switch c.CrossfadeGroup() {
	case CrossfadeA:
		c.blendMode.Active().Blend(m.busA, source, alpha)
	case CrossfadeB:
		c.blendMode.Active().Blend(m.busB, source, alpha)
	default:
		c.blendMode.Active().Blend(m.output, source, alpha)
	}
}

// Dispose tears down every channel in the mixer.
func (m *Mixer) Dispose() {
	m.mu.Lock()
	channels := m.channels
	m.channels = nil
	m.mu.Unlock()
	for _, c := range channels {
		c.Dispose()
	}
}
