// Package analysis measures rendered signals: peak and RMS level plus the
// dominant frequency from a Hann-windowed FFT.
package analysis

import (
	"math"

	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
)

const (
	// maxFFTSize bounds the analysis window.
	maxFFTSize = 1 << 16

	// minFFTSize is the smallest window with a usable spectrum.
	minFFTSize = 8

	// silenceFloor is the level below which no frequency is reported.
	silenceFloor = 1e-9

	dbPerDecade = 20.0
)

// Report summarizes one channel.
type Report struct {
	Samples    int
	Peak       float64 // largest absolute sample
	RMS        float64
	DominantHz float64 // 0 when silent or too short to analyze
}

// PeakDB returns the peak level in dBFS.
func (r Report) PeakDB() float64 {
	return toDB(r.Peak)
}

// RMSDB returns the RMS level in dBFS.
func (r Report) RMSDB() float64 {
	return toDB(r.RMS)
}

func toDB(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return dbPerDecade * math.Log10(v)
}

// Measure analyzes a single channel rendered at sampleRate.
func Measure(samples []float32, sampleRate float64) Report {
	r := Report{Samples: len(samples)}
	if len(samples) == 0 {
		return r
	}

	x := make([]float64, len(samples))
	for i, v := range samples {
		x[i] = float64(v)
	}

	r.Peak = math.Max(floats.Max(x), -floats.Min(x))
	r.RMS = math.Sqrt(f64.DotProduct(x, x) / float64(len(x)))

	if r.Peak > silenceFloor && sampleRate > 0 {
		r.DominantHz = dominant(x, sampleRate)
	}
	return r
}

// MeasurePlanar analyzes each run of a planar block.
func MeasurePlanar(planar []float32, channels int, sampleRate float64) []Report {
	if channels < 1 {
		return nil
	}
	frames := len(planar) / channels
	reports := make([]Report, channels)
	for c := range channels {
		reports[c] = Measure(planar[c*frames:(c+1)*frames], sampleRate)
	}
	return reports
}

// dominant returns the frequency of the strongest non-DC bin, refined by
// parabolic interpolation over its neighbours.
func dominant(x []float64, sampleRate float64) float64 {
	n := fftSize(len(x))
	if n < minFFTSize {
		return 0
	}

	frame := window.Hann(append([]float64(nil), x[:n]...))

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, frame)

	mags := make([]float64, len(coeffs))
	for i, c := range coeffs {
		mags[i] = math.Hypot(real(c), imag(c))
	}
	mags[0] = 0

	k := floats.MaxIdx(mags)
	if mags[k] == 0 {
		return 0
	}

	offset := 0.0
	if k > 0 && k < len(mags)-1 {
		a, b, c := mags[k-1], mags[k], mags[k+1]
		if den := a - 2*b + c; den != 0 {
			offset = 0.5 * (a - c) / den
		}
	}
	return (fft.Freq(k) + offset/float64(n)) * sampleRate
}

// fftSize returns the largest power of two not above n, capped at maxFFTSize.
func fftSize(n int) int {
	size := 1
	for size*2 <= n && size*2 <= maxFFTSize {
		size *= 2
	}
	return size
}
