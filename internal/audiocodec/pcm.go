package audiocodec

import "encoding/binary"

// passthrough carries PCM samples as raw little-endian int16 bytes with
// no compression, grounded on the teacher's PCMFormatUncompressed path
// in pcm_binary.go. It is registered under both "pcm" and "raw".
type passthrough struct {
	sampleRateHz, channels int
}

func newPassthrough(sampleRateHz, channels int, _ []Option) (Codec, error) {
	return &passthrough{sampleRateHz: sampleRateHz, channels: channels}, nil
}

func (p *passthrough) Name() string { return "pcm" }

func (p *passthrough) Encode(pcm []int16) ([]byte, error) {
	out := make([]byte, len(pcm)*2)
	for i, s := range pcm {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out, nil
}

func (p *passthrough) Decode(payload []byte) ([]int16, error) {
	n := len(payload) / 2
	pcm := make([]int16, n)
	for i := 0; i < n; i++ {
		pcm[i] = int16(binary.LittleEndian.Uint16(payload[i*2:]))
	}
	return pcm, nil
}

func (p *passthrough) Close() {}
