// Package audiocodec implements the named encoder/decoder plug-ins
// selected over the wire by RxAudioCodecSelect/TxAudioCodecSelect
// (component H): a codec is identified by a name carried in a fixed
// 32-byte field plus a list of keyed options, and turns PCM audio into
// whatever bytes travel inside an Audio message's payload.
package audiocodec

import "fmt"

// Codec turns PCM int16 samples into an encoded payload and back. A
// single Codec instance is bound to one sample rate and channel count
// for its lifetime; a codec change on the wire means constructing a new
// one via the registry rather than reconfiguring in place.
type Codec interface {
	Name() string
	Encode(pcm []int16) ([]byte, error)
	Decode(payload []byte) ([]int16, error)
	Close()
}

// Option is one {name, value} pair out of a codec-select message's
// option area, mirrored from wire.CodecOption so this package doesn't
// need to import internal/wire just for a two-field struct.
type Option struct {
	Name  string
	Value string
}

func optionValue(opts []Option, name string) (string, bool) {
	for _, o := range opts {
		if o.Name == name {
			return o.Value, true
		}
	}
	return "", false
}

// Factory builds a Codec for a given sample rate, channel count, and
// option list. Options are opaque strings; each codec parses the ones
// it recognizes and ignores the rest.
type Factory func(sampleRateHz, channels int, opts []Option) (Codec, error)

var registry = map[string]Factory{}

func register(name string, f Factory) { registry[name] = f }

func init() {
	register("pcm", newPassthrough)
	register("raw", newPassthrough) // config.go's default RemoteConfig.Codec
	register("pcm-zstd", newZstdCodec)
	register("opus", newOpusCodec)
}

// New builds the named codec, returning an error if the name is not
// registered. Hub- and remote-side session state carries the name
// verbatim from the wire so callers should pass it through unmodified.
func New(name string, sampleRateHz, channels int, opts []Option) (Codec, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("audiocodec: unknown codec %q", name)
	}
	return f(sampleRateHz, channels, opts)
}

// Names returns the registered codec names, for status/diagnostic
// surfaces that want to list what a build supports.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}
