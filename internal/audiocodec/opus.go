package audiocodec

import (
	"fmt"
	"strconv"

	opus "gopkg.in/hraban/opus.v2"
)

// maxOpusFrameBytes bounds a single encoded Opus frame, matching the
// teacher's opus_support.go allocation.
const maxOpusFrameBytes = 4000

// opusCodec wraps libopus via gopkg.in/hraban/opus.v2, grounded on the
// teacher's opus_support.go (encoder side) and clients/go/opus_decoder.go
// (decoder side). Recognized options: "bitrate", "complexity",
// "application" (one of "voip", "audio", "lowdelay").
type opusCodec struct {
	sampleRateHz, channels int
	enc                    *opus.Encoder
	dec                    *opus.Decoder
	frameSize              int
}

func newOpusCodec(sampleRateHz, channels int, opts []Option) (Codec, error) {
	app := opus.AppVoIP
	if v, ok := optionValue(opts, "application"); ok {
		switch v {
		case "audio":
			app = opus.AppAudio
		case "lowdelay":
			app = opus.AppRestrictedLowdelay
		}
	}

	enc, err := opus.NewEncoder(sampleRateHz, channels, app)
	if err != nil {
		return nil, fmt.Errorf("audiocodec: opus encoder: %w", err)
	}
	if v, ok := optionValue(opts, "bitrate"); ok {
		if bps, err := strconv.Atoi(v); err == nil {
			_ = enc.SetBitrate(bps)
		}
	}
	if v, ok := optionValue(opts, "complexity"); ok {
		if c, err := strconv.Atoi(v); err == nil {
			_ = enc.SetComplexity(c)
		}
	}

	dec, err := opus.NewDecoder(sampleRateHz, channels)
	if err != nil {
		return nil, fmt.Errorf("audiocodec: opus decoder: %w", err)
	}

	// 20ms frames, the teacher's and libopus's usual default.
	frameSize := sampleRateHz / 50 * channels

	return &opusCodec{
		sampleRateHz: sampleRateHz,
		channels:     channels,
		enc:          enc,
		dec:          dec,
		frameSize:    frameSize,
	}, nil
}

func (o *opusCodec) Name() string { return "opus" }

func (o *opusCodec) Encode(pcm []int16) ([]byte, error) {
	buf := make([]byte, maxOpusFrameBytes)
	n, err := o.enc.Encode(pcm, buf)
	if err != nil {
		return nil, fmt.Errorf("audiocodec: opus encode: %w", err)
	}
	return buf[:n], nil
}

func (o *opusCodec) Decode(payload []byte) ([]int16, error) {
	pcm := make([]int16, o.frameSize)
	n, err := o.dec.Decode(payload, pcm)
	if err != nil {
		return nil, fmt.Errorf("audiocodec: opus decode: %w", err)
	}
	return pcm[:n*o.channels], nil
}

func (o *opusCodec) Close() {}
