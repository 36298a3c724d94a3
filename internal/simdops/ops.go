// Package simdops provides SIMD-accelerated buffer layout operations for
// float32 samples.
//
// Backends receive planar blocks from the generator (one contiguous run per
// channel) but most audio APIs and file formats want interleaved frames.
package simdops

import (
	"github.com/tphakala/simd/f32"
)

// Ops provides SIMD-accelerated float32 operations.
type Ops struct {
	// Interleave2 interleaves two slices: dst[0]=a[0], dst[1]=b[0], dst[2]=a[1], ...
	Interleave2 func(dst, a, b []float32)
}

var ops32 = Ops{Interleave2: f32.Interleave2}

// Float32Ops returns the float32 SIMD operations.
func Float32Ops() *Ops {
	return &ops32
}

// Interleave converts a planar block of channels runs of frames samples each
// into interleaved frames in dst. dst must hold channels*frames samples.
// Stereo takes the SIMD path.
func Interleave(ops *Ops, dst, planar []float32, channels, frames int) {
	n := channels * frames
	if n == 0 {
		return
	}
	dst = dst[:n]
	planar = planar[:n]

	switch channels {
	case 1:
		copy(dst, planar)
	case 2:
		ops.Interleave2(dst, planar[:frames], planar[frames:])
	default:
		for c := range channels {
			run := planar[c*frames : (c+1)*frames]
			for i, v := range run {
				dst[i*channels+c] = v
			}
		}
	}
}
