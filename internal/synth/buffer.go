package synth

// Buffer is a planar multi-channel sample buffer. All channels must have
// the same length.
type Buffer [][]float32

func NewBuffer(channels, frames int) Buffer {
	b := make(Buffer, channels)
	backing := make([]float32, channels*frames)
	for ch := range b {
		b[ch] = backing[ch*frames : (ch+1)*frames : (ch+1)*frames]
	}
	return b
}

func (b Buffer) Len() int {
	if len(b) == 0 {
		return 0
	}
	return len(b[0])
}

// Clear zeroes n frames starting at start on every channel.
func (b Buffer) Clear(start, n int) {
	for _, ch := range b {
		clear(ch[start : start+n])
	}
}
