package audiocodec

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// zstdCodec wraps the passthrough int16-LE encoding with zstd
// compression, mirroring the teacher's PCMFormatZstd path in
// pcm_binary.go. The "level" option selects a klauspost/compress
// EncoderLevel by name; it defaults to the teacher's SpeedDefault.
type zstdCodec struct {
	sampleRateHz, channels int
	enc                    *zstd.Encoder
	dec                    *zstd.Decoder
}

func newZstdCodec(sampleRateHz, channels int, opts []Option) (Codec, error) {
	level := zstd.SpeedDefault
	if v, ok := optionValue(opts, "level"); ok {
		switch v {
		case "fastest":
			level = zstd.SpeedFastest
		case "better":
			level = zstd.SpeedBetterCompression
		case "best":
			level = zstd.SpeedBestCompression
		}
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, fmt.Errorf("audiocodec: zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("audiocodec: zstd decoder: %w", err)
	}
	return &zstdCodec{sampleRateHz: sampleRateHz, channels: channels, enc: enc, dec: dec}, nil
}

func (z *zstdCodec) Name() string { return "pcm-zstd" }

func (z *zstdCodec) Encode(pcm []int16) ([]byte, error) {
	raw := make([]byte, len(pcm)*2)
	for i, s := range pcm {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(s))
	}
	return z.enc.EncodeAll(raw, make([]byte, 0, len(raw))), nil
}

func (z *zstdCodec) Decode(payload []byte) ([]int16, error) {
	raw, err := z.dec.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("audiocodec: zstd decompress: %w", err)
	}
	n := len(raw) / 2
	pcm := make([]int16, n)
	for i := 0; i < n; i++ {
		pcm[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return pcm, nil
}

func (z *zstdCodec) Close() {
	z.enc.Close()
	z.dec.Close()
}
