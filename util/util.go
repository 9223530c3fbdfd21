package util

import (
	"math/rand"

	"github.com/fogleman/ease"
)

// Memoizer caches easing LUTs by length so particle effects can share them.
type Memoizer map[int][]float64

func RandomiseSaturation(min float64, max float64) float64 {
	return rand.Float64()*(max-min) + min
}

// GenerateLut builds a symmetric ease-in/ease-out gain table.
func GenerateLut(length int) []float64 {
	increment := 1.0 / float64(length/2)
	lut := make([]float64, length)
	for i, j := 0, length-1; i < length/2; i, j = i+1, j-1 {
		value := float64(i) * increment
		lut[i] = ease.InOutQuad(value)
		lut[j] = ease.InOutQuad(value)
	}
	return lut
}

// GenerateLutMemoized returns a cached LUT for the length, building it once.
func GenerateLutMemoized(length int, memoizer Memoizer) []float64 {
	if lut, found := memoizer[length]; found {
		return lut
	}
	lut := GenerateLut(length)
	memoizer[length] = lut
	return lut
}
