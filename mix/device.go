package mix

import (
	"fmt"
	"log"
	"runtime/debug"
	"sync"
)

// A Pattern is a pluggable animation unit hosted inside a channel. Run
// advances the pattern by deltaMs and writes its output into the frame.
// Patterns report failure by returning an error or by panicking; either way
// the hosting channel contains the fault.
type Pattern interface {
	Run(deltaMs float64, f *Frame) error
}

// CrashRecord captures a pattern fault for later inspection.
type CrashRecord struct {
	Err   error
	Stack []byte
}

// Trace formats the captured fault and its stack for diagnostics. A record
// with nothing usable in it degrades to an empty string.
func (r *CrashRecord) Trace() string {
	if r == nil || r.Err == nil {
		return ""
	}
	if len(r.Stack) == 0 {
		return r.Err.Error()
	}
	return fmt.Sprintf("%v\n%s", r.Err, r.Stack)
}

// DeviceHost runs a Pattern with fault isolation. The first fault raised by
// the pattern marks the host crashed; from then on the pattern is never
// invoked again until an explicit ResetCrash. A healthy pattern pays only
// the crash check per frame.
type DeviceHost struct {
	label   string
	pattern Pattern

	mu    sync.Mutex
	crash *CrashRecord

	// onCrash surfaces the fault to the owning system; optional.
	onCrash func(label string, record *CrashRecord)
}

// NewDeviceHost creates a host running the given pattern.
func NewDeviceHost(label string, pattern Pattern) *DeviceHost {
	h := new(DeviceHost)
	h.label = label
	h.pattern = pattern
	return h
}

// Label returns the host's label, used in diagnostics.
func (h *DeviceHost) Label() string {
	return h.label
}

// Advance runs one frame of the hosted pattern. Faults are captured, logged
// and made sticky; they never propagate to the caller.
func (h *DeviceHost) Advance(deltaMs float64, f *Frame) {
	if h.Crashed() {
		return
	}

	defer func() {
		if cause := recover(); cause != nil {
			h.recordCrash(&CrashRecord{
				Err:   fmt.Errorf("pattern panic: %v", cause),
				Stack: debug.Stack(),
			})
		}
	}()

	if err := h.pattern.Run(deltaMs, f); err != nil {
		h.recordCrash(&CrashRecord{
			Err:   err,
			Stack: debug.Stack(),
		})
	}
}

func (h *DeviceHost) recordCrash(record *CrashRecord) {
	h.mu.Lock()
	h.crash = record
	notify := h.onCrash
	h.mu.Unlock()

	log.Printf("Pattern crashed [%s]: %v", h.label, record.Err)
	if notify != nil {
		notify(h.label, record)
	}
}

// Crashed reports whether the hosted pattern has faulted.
func (h *DeviceHost) Crashed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.crash != nil
}

// Crash returns the captured fault record, or nil while healthy.
func (h *DeviceHost) Crash() *CrashRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.crash
}

// ResetCrash clears the crash state so the pattern runs again. Recovery is
// deliberate; the engine never resets a crashed pattern on its own.
func (h *DeviceHost) ResetCrash() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.crash = nil
}

// SetCrashHandler registers a callback invoked when the pattern faults.
func (h *DeviceHost) SetCrashHandler(handler func(label string, record *CrashRecord)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onCrash = handler
}
