package mix

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedPattern runs normally until told to fail, counting invocations.
type scriptedPattern struct {
	runs     int
	failWith error
	panicMsg string
}

func (p *scriptedPattern) Run(deltaMs float64, f *Frame) error {
	p.runs++
	if p.panicMsg != "" {
		panic(p.panicMsg)
	}
	return p.failWith
}

func TestHealthyPatternRunsEveryFrame(t *testing.T) {
	p := new(scriptedPattern)
	h := NewDeviceHost("healthy", p)
	f := NewFrame(4)

	for i := 0; i < 3; i++ {
		h.Advance(16.0, f)
	}

	assert.Equal(t, 3, p.runs)
	assert.False(t, h.Crashed())
	assert.Nil(t, h.Crash())
	assert.Equal(t, "", h.Crash().Trace())
}

func TestErrorCrashIsSticky(t *testing.T) {
	p := new(scriptedPattern)
	h := NewDeviceHost("erroring", p)
	f := NewFrame(4)

	h.Advance(16.0, f)
	require.False(t, h.Crashed())

	p.failWith = errors.New("bang")
	h.Advance(16.0, f)
	require.True(t, h.Crashed())
	assert.Equal(t, 2, p.runs)

	// Crashed patterns are never invoked again.
	p.failWith = nil
	for i := 0; i < 5; i++ {
		h.Advance(16.0, f)
	}
	assert.Equal(t, 2, p.runs)
	assert.True(t, h.Crashed())
}

func TestPanicIsContainedAndCaptured(t *testing.T) {
	p := &scriptedPattern{panicMsg: "kaboom"}
	h := NewDeviceHost("panicking", p)
	f := NewFrame(4)

	require.NotPanics(t, func() {
		h.Advance(16.0, f)
	})

	require.True(t, h.Crashed())
	record := h.Crash()
	require.NotNil(t, record)
	assert.Contains(t, record.Err.Error(), "kaboom")
	assert.NotEmpty(t, record.Stack)

	// The trace stays retrievable without re-triggering the fault.
	trace := record.Trace()
	assert.Contains(t, trace, "kaboom")
	assert.Equal(t, trace, h.Crash().Trace())
	assert.Equal(t, 1, p.runs)
}

func TestCrashHandlerSurfacesDiagnostic(t *testing.T) {
	p := &scriptedPattern{failWith: errors.New("bad frame")}
	h := NewDeviceHost("surfaced", p)

	var gotLabel string
	var gotRecord *CrashRecord
	h.SetCrashHandler(func(label string, record *CrashRecord) {
		gotLabel = label
		gotRecord = record
	})

	h.Advance(16.0, NewFrame(4))

	assert.Equal(t, "surfaced", gotLabel)
	require.NotNil(t, gotRecord)
	assert.Equal(t, "bad frame", gotRecord.Err.Error())
}

func TestResetCrashIsDeliberate(t *testing.T) {
	p := &scriptedPattern{failWith: errors.New("once")}
	h := NewDeviceHost("resettable", p)
	f := NewFrame(4)

	h.Advance(16.0, f)
	require.True(t, h.Crashed())
	require.Equal(t, 1, p.runs)

	p.failWith = nil
	h.ResetCrash()
	require.False(t, h.Crashed())
	assert.Nil(t, h.Crash())

	h.Advance(16.0, f)
	assert.Equal(t, 2, p.runs)
	assert.False(t, h.Crashed())
}

func TestTraceDegradesGracefully(t *testing.T) {
	var record *CrashRecord
	assert.Equal(t, "", record.Trace())
	assert.Equal(t, "", (&CrashRecord{}).Trace())
	assert.Equal(t, "just this", (&CrashRecord{Err: errors.New("just this")}).Trace())
}
