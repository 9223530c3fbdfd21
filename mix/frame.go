package mix

import (
	"encoding/binary"

	"github.com/lucasb-eyer/go-colorful"
)

// colorBlack is the resting state of every pixel.
var colorBlack = colorful.Color{}

// Frame represents a frame of RGB pixels, one per point in the active model.
type Frame struct {
	pixels []colorful.Color
}

// NewFrame creates a new Frame instance sized to the given pixel count.
func NewFrame(numPixels int) *Frame {
	f := new(Frame)
	f.pixels = make([]colorful.Color, numPixels)
	return f
}

// Len returns the number of pixels in the frame.
func (f *Frame) Len() int {
	return len(f.pixels)
}

// Pixels exposes the raw pixel slice for animation code to write into.
func (f *Frame) Pixels() []colorful.Color {
	return f.pixels
}

// Fill sets every pixel to the given colour.
func (f *Frame) Fill(c colorful.Color) {
	for i := range f.pixels {
		f.pixels[i] = c
	}
}

// CopyFrom overwrites this frame's pixels with those of src.
func (f *Frame) CopyFrom(src *Frame) {
	copy(f.pixels, src.pixels)
}

// InterpolateFrame merges two frames.
func (f *Frame) InterpolateFrame(f2 *Frame, transitionPoint float64) *Frame {
	out := NewFrame(len(f.pixels))
	for i := 0; i < len(f.pixels); i++ {
		out.pixels[i] = f.pixels[i].BlendHcl(f2.pixels[i], transitionPoint)
	}

	return out
}

// MarshalBinary converts a Frame into binary data for an ledrx device.
func (f *Frame) MarshalBinary() (data []byte, err error) {
	numPixels := len(f.pixels)
	data = make([]byte, 2, (numPixels*3)+2)
	binary.LittleEndian.PutUint16(data, uint16(numPixels))
	for _, p := range f.pixels {
		r, g, b := p.Clamped().RGB255()
		data = append(data, r, g, b)
	}

	return data, nil
}
