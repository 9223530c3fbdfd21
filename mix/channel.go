package mix

import (
	"fmt"
	"sync"
)

// CrossfadeGroup routes a channel's output into crossfader bus A, bus B, or
// straight into the mix.
type CrossfadeGroup int

const (
	CrossfadeBypass CrossfadeGroup = iota
	CrossfadeA
	CrossfadeB
)

func (g CrossfadeGroup) String() string {
	switch g {
	case CrossfadeA:
		return "A"
	case CrossfadeB:
		return "B"
	default:
		return "Bypass"
	}
}

// ParseCrossfadeGroup maps a configuration string onto a crossfade group.
func ParseCrossfadeGroup(s string) (CrossfadeGroup, error) {
	switch s {
	case "A", "a":
		return CrossfadeA, nil
	case "B", "b":
		return CrossfadeB, nil
	case "", "bypass", "Bypass":
		return CrossfadeBypass, nil
	}
	return CrossfadeBypass, fmt.Errorf("mix: unknown crossfade group %q", s)
}

// A Listener observes channel lifecycle events. Listener registration is
// strict; adding a listener twice or removing one that was never added is a
// defect in the caller and reported as an error.
type Listener interface {
	// IndexChanged fires synchronously when the channel's position in the
	// mixer's channel list is reassigned.
	IndexChanged(c *Channel)
	// ParameterChanged fires when a user-facing parameter changes, with the
	// parameter's path name.
	ParameterChanged(c *Channel, param string)
}

// Modulator advances per-frame state ahead of the channel's pattern.
type Modulator func(deltaMs float64)

// Channel is a single animatable unit in the mixer: it owns its frame
// buffer, its blend selection and its worker goroutine. A Group is a Channel
// that additionally gates member channels.
type Channel struct {
	mixer *Mixer
	label string

	mu             sync.Mutex
	index          int
	enabled        bool
	cueActive      bool
	fader          float64
	crossfadeGroup CrossfadeGroup
	listeners      map[Listener]struct{}
	disposed       bool

	blendMode *BlendSelector

	// buffer is written only by this channel's own frame-advance and read
	// by the compositor after the frame join.
	buffer *Frame

	device     *DeviceHost
	modulators []Modulator

	// group is the owning group, nil for top-level channels.
	group *Group

	// asGroup points back at the Group wrapper when this channel is one.
	asGroup *Group

	// animating caches the resolved animating state for this frame. It is
	// written only inside loop on the channel's own worker, under mu so
	// diagnostics can sample it; the dispatch handshake orders the write
	// before any same-frame cross-channel read.
	animating bool

	worker *worker
}

func newChannel(m *Mixer, index int, label string) *Channel {
	c := new(Channel)
	initChannel(c, m, index, label)
	return c
}

// initChannel establishes all required channel state before the channel is
// visible anywhere: buffer, blend selection and worker.
func initChannel(c *Channel, m *Mixer, index int, label string) {
	c.mixer = m
	c.index = index
	c.label = label
	c.enabled = true
	c.fader = 1.0
	c.crossfadeGroup = CrossfadeBypass
	c.listeners = make(map[Listener]struct{})
	c.buffer = NewFrame(m.numPixels)
	c.blendMode = NewBlendSelector(m.instantiateChannelBlends())
	c.worker = newWorker(c)
}

// Label returns the channel's display name.
func (c *Channel) Label() string {
	return c.label
}

// Index returns the channel's position in the mixer's channel list.
func (c *Channel) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Path returns the channel's external address, e.g. "channel/3".
func (c *Channel) Path() string {
	return fmt.Sprintf("channel/%d", c.Index()+1)
}

// setIndex reassigns the channel's index, notifying listeners synchronously
// before it returns.
func (c *Channel) setIndex(index int) {
	c.mu.Lock()
	if c.index == index {
		c.mu.Unlock()
		return
	}
	c.index = index
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	for _, l := range listeners {
		l.IndexChanged(c)
	}
}

// snapshotListeners must be called with c.mu held.
func (c *Channel) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(c.listeners))
	for l := range c.listeners {
		out = append(out, l)
	}
	return out
}

// AddListener registers a listener. Adding the same listener twice is an
// error.
func (c *Channel) AddListener(l Listener) error {
	if l == nil {
		return fmt.Errorf("mix: may not add nil listener to channel [%s]", c.label)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, present := c.listeners[l]; present {
		return fmt.Errorf("mix: duplicate listener on channel [%s]", c.label)
	}
	c.listeners[l] = struct{}{}
	return nil
}

// RemoveListener unregisters a listener. Removing a listener that was never
// added is an error.
func (c *Channel) RemoveListener(l Listener) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, present := c.listeners[l]; !present {
		return fmt.Errorf("mix: listener not registered on channel [%s]", c.label)
	}
	delete(c.listeners, l)
	return nil
}

func (c *Channel) notifyParameter(param string) {
	c.mu.Lock()
	listeners := c.snapshotListeners()
	c.mu.Unlock()
	for _, l := range listeners {
		l.ParameterChanged(c, param)
	}
}

// Enabled reports whether the channel is on.
func (c *Channel) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// SetEnabled turns the channel on or off.
func (c *Channel) SetEnabled(enabled bool) {
	c.mu.Lock()
	if c.enabled == enabled {
		c.mu.Unlock()
		return
	}
	c.enabled = enabled
	c.mu.Unlock()
	c.notifyParameter("enabled")
}

// CueActive reports whether the channel is cued for preview.
func (c *Channel) CueActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cueActive
}

// SetCueActive toggles the channel's cue state. Activating a cue clears any
// other cue selections held by the mixer and may focus this channel.
func (c *Channel) SetCueActive(cueActive bool) {
	c.mu.Lock()
	if c.cueActive == cueActive {
		c.mu.Unlock()
		return
	}
	c.cueActive = cueActive
	c.mu.Unlock()
	c.notifyParameter("cue")
	if cueActive && c.mixer != nil {
		c.mixer.cueActivated(c)
	}
}

// Fader returns the channel's output level in [0,1].
func (c *Channel) Fader() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fader
}

// SetFader sets the channel's output level, clamped to [0,1].
func (c *Channel) SetFader(fader float64) {
	fader = clamp01(fader)
	c.mu.Lock()
	if c.fader == fader {
		c.mu.Unlock()
		return
	}
	c.fader = fader
	c.mu.Unlock()
	c.notifyParameter("fader")
}

// CrossfadeGroup returns the channel's crossfader routing.
func (c *Channel) CrossfadeGroup() CrossfadeGroup {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.crossfadeGroup
}

// SetCrossfadeGroup routes the channel's output into bus A, B or bypass.
func (c *Channel) SetCrossfadeGroup(g CrossfadeGroup) {
	c.mu.Lock()
	if c.crossfadeGroup == g {
		c.mu.Unlock()
		return
	}
	c.crossfadeGroup = g
	c.mu.Unlock()
	c.notifyParameter("crossfadeGroup")
}

// BlendMode returns the channel's blend selector.
func (c *Channel) BlendMode() *BlendSelector {
	return c.blendMode
}

// SetBlendMode selects the channel's active blend by name.
func (c *Channel) SetBlendMode(name string) error {
	if err := c.blendMode.Select(name); err != nil {
		return err
	}
	c.notifyParameter("blendMode")
	return nil
}

// SetPattern installs a pattern to run on this channel, hosted under fault
// isolation.
func (c *Channel) SetPattern(p Pattern) {
	host := NewDeviceHost(c.label, p)
	if c.mixer != nil {
		host.SetCrashHandler(c.mixer.patternCrashed)
	}
	c.device = host
}

// Device returns the channel's pattern host, or nil if no pattern is set.
func (c *Channel) Device() *DeviceHost {
	return c.device
}

// AddModulator appends a modulator run each animating frame, before the
// pattern.
func (c *Channel) AddModulator(m Modulator) {
	c.modulators = append(c.modulators, m)
}

// Group returns the group that owns this channel, or nil.
func (c *Channel) Group() *Group {
	return c.group
}

// IsGroup reports whether this channel is a group.
func (c *Channel) IsGroup() bool {
	return c.asGroup != nil
}

// Animating reports the animating state resolved by the most recent
// frame-advance. It is only settled once that frame's join has completed,
// but may be sampled at any time by diagnostics surfaces.
func (c *Channel) Animating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.animating
}

// Buffer returns the channel's frame buffer. The compositor may only read
// it after the channel's frame-advance has been joined.
func (c *Channel) Buffer() *Frame {
	return c.buffer
}

// isAnimating resolves whether this channel needs to compute this frame.
// The cascade runs in strict priority order: cue preview always animates,
// disabled channels never do, groups always evaluate once enabled, and a
// leaf defers to its group's cached state from the group dispatch phase.
func (c *Channel) isAnimating() bool {
	if c.CueActive() {
		return true
	}
	if !c.Enabled() {
		return false
	}
	if c.IsGroup() {
		return true
	}
	return c.group == nil || c.group.animating
}

// loop advances the channel by one frame. It runs on the channel's own
// worker.
func (c *Channel) loop(deltaMs float64) {
	animating := c.isAnimating()
	c.mu.Lock()
	c.animating = animating
	c.mu.Unlock()
	if !animating {
		return
	}
	for _, m := range c.modulators {
		m(deltaMs)
	}
	if c.device != nil {
		c.device.Advance(deltaMs, c.buffer)
	}
}

// Dispose tears the channel down: the worker is asked to terminate, the
// listener set is cleared and the buffer released. Dispose is idempotent.
// It must not be called from the channel's own worker.
func (c *Channel) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	c.listeners = make(map[Listener]struct{})
	c.mu.Unlock()

	c.worker.interrupt()
	c.blendMode.Dispose()
	c.buffer = nil
}

// ListenerCount reports the number of registered listeners.
func (c *Channel) ListenerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners)
}

// WorkerState reports the lifecycle state of the channel's worker.
func (c *Channel) WorkerState() WorkerState {
	return c.worker.State()
}
