package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	// Frames per read when loading a file back for analysis
	bufferSize = 65536

	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0
)

// wavInputInfo holds validated input file information.
type wavInputInfo struct {
	file     *os.File
	decoder  *wav.Decoder
	rate     int
	channels int
	bitDepth int
	format   *audio.Format
}

// openWAVInput opens and validates a WAV file.
func openWAVInput(path string) (*wavInputInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		_ = f.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	format := decoder.Format()
	return &wavInputInfo{
		file:     f,
		decoder:  decoder,
		rate:     format.SampleRate,
		channels: format.NumChannels,
		bitDepth: int(decoder.BitDepth),
		format:   format,
	}, nil
}

// Close closes the input file.
func (w *wavInputInfo) Close() error {
	return w.file.Close()
}

// readPlanar reads the whole file into one normalized run per channel.
func (w *wavInputInfo) readPlanar() ([][]float32, error) {
	buf := &audio.IntBuffer{
		Data:   make([]int, bufferSize*w.channels),
		Format: w.format,
	}
	invMaxVal := 1.0 / getMaxValue(w.bitDepth)
	planar := make([][]float32, w.channels)

	for {
		n, err := w.decoder.PCMBuffer(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read audio data: %w", err)
		}
		if n == 0 {
			break
		}
		deinterleaveAppend(buf.Data[:n], planar, invMaxVal)
	}
	return planar, nil
}

// getMaxValue returns the maximum sample value for the given bit depth.
func getMaxValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample16:
		return maxInt16
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}

// deinterleaveAppend splits interleaved int samples onto per-channel runs.
func deinterleaveAppend(data []int, planar [][]float32, invMaxVal float64) {
	channels := len(planar)
	frames := len(data) / channels
	for ch := range channels {
		run := planar[ch]
		for i := range frames {
			run = append(run, float32(float64(data[i*channels+ch])*invMaxVal))
		}
		planar[ch] = run
	}
}
