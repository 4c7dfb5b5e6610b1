package gridsynth

import (
	"encoding/binary"
	"errors"
	"math"
	"slices"
)

// OfflineBlockSize is the block length used by Render. Events are still
// placed sample-accurately inside each block.
const OfflineBlockSize = 512

// Render plays events through a fresh Synth without an audio device and
// returns interleaved stereo samples. Options that only affect live
// playback (backend, queue size) are ignored.
func Render(events []Event, sampleRate int, seconds float64, opts ...Option) ([]float32, error) {
	if !(seconds >= 0) {
		return nil, errors.New("seconds must be non-negative")
	}
	s, err := New(sampleRate, append(slices.Clone(opts), WithBackend(BackendNone))...)
	if err != nil {
		return nil, err
	}
	s.pending = slices.Clone(events)
	slices.SortStableFunc(s.pending, func(a, b Event) int {
		switch {
		case a.Frame < b.Frame:
			return -1
		case a.Frame > b.Frame:
			return 1
		}
		return 0
	})
	frames := int(float64(sampleRate) * seconds)
	out := make([]float32, frames*outputChannels)
	for start := 0; start < frames; start += OfflineBlockSize {
		end := min(start+OfflineBlockSize, frames)
		s.render(out[start*outputChannels : end*outputChannels])
	}
	return out, nil
}

// FrameAt converts a time in seconds to an output frame.
func FrameAt(seconds float64, sampleRate int) int64 {
	return int64(math.Round(seconds * float64(sampleRate)))
}

func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
