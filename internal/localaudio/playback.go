// Package localaudio provides a concrete sound-card backend for the
// local Rx audio pipe (internal/localrx, component M): a PortAudio
// output stream that plays whatever PCM the pipe hands it, plus device
// enumeration for picking an output by name.
package localaudio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Device describes one enumerated PortAudio output device.
type Device struct {
	Index       int
	Name        string
	MaxChannels int
	SampleRate  float64
	IsDefault   bool
}

// ListOutputDevices returns every output-capable PortAudio device.
func ListOutputDevices() ([]Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("localaudio: initialize: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("localaudio: list devices: %w", err)
	}
	defaultOutput, _ := portaudio.DefaultOutputDevice()
	var defaultName string
	if defaultOutput != nil {
		defaultName = defaultOutput.Name
	}

	var out []Device
	for i, d := range devices {
		if d.MaxOutputChannels <= 0 {
			continue
		}
		out = append(out, Device{
			Index:       i,
			Name:        d.Name,
			MaxChannels: d.MaxOutputChannels,
			SampleRate:  d.DefaultSampleRate,
			IsDefault:   d.Name == defaultName,
		})
	}
	return out, nil
}

// Player is a single mono PortAudio output stream. Feed matches the
// func([]float32) shape internal/localrx.Pipe expects as its sink.
type Player struct {
	stream *portaudio.Stream
	buf    chan []float32
}

// NewPlayer opens the default output device at sampleRateHz, mono.
func NewPlayer(sampleRateHz float64) (*Player, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("localaudio: initialize: %w", err)
	}

	p := &Player{buf: make(chan []float32, 32)}
	stream, err := portaudio.OpenDefaultStream(0, 1, sampleRateHz, 0, p.callback)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("localaudio: open stream: %w", err)
	}
	p.stream = stream
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("localaudio: start stream: %w", err)
	}
	return p, nil
}

func (p *Player) callback(out []float32) {
	select {
	case block := <-p.buf:
		n := copy(out, block)
		for i := n; i < len(out); i++ {
			out[i] = 0
		}
	default:
		for i := range out {
			out[i] = 0
		}
	}
}

// Feed enqueues one block of PCM for playback, dropping it if the
// playback buffer is already full rather than blocking the caller.
func (p *Player) Feed(pcm []float32) {
	select {
	case p.buf <- pcm:
	default:
	}
}

// Close stops and releases the output stream.
func (p *Player) Close() error {
	err := p.stream.Close()
	portaudio.Terminate()
	return err
}
