// Command remotetrxd runs a Remote Rx/Tx proxy pair (components F and G)
// over one reconnecting session to a hub, driven by a local SDR front end
// through the DDR channelizer/demodulator and local audio pipe.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kb9vy/nettrxd/internal/audiocodec"
	"github.com/kb9vy/nettrxd/internal/config"
	"github.com/kb9vy/nettrxd/internal/ctlpty"
	"github.com/kb9vy/nettrxd/internal/ddr"
	"github.com/kb9vy/nettrxd/internal/localaudio"
	"github.com/kb9vy/nettrxd/internal/localrx"
	"github.com/kb9vy/nettrxd/internal/logging"
	"github.com/kb9vy/nettrxd/internal/remote"
	"github.com/kb9vy/nettrxd/internal/sdr"
	"github.com/kb9vy/nettrxd/internal/siglev"
	"github.com/kb9vy/nettrxd/internal/wire"
)

// maxQueueSamples bounds the DDR's input backlog at roughly 0.5s of
// wideband IQ at a 2.4 MHz tuner rate.
const maxQueueSamples = 1_200_000

// squelchOpenLevel/squelchCloseLevel are the hysteresis thresholds (in the
// siglev detector's 0..1 scale) used to drive the local valve and the
// squelch state reported up to the hub as this station's own Audio
// trigger.
const (
	squelchOpenLevel  = 0.35
	squelchCloseLevel = 0.25
)

func parseModulation(s string) (wire.Modulation, error) {
	switch strings.ToUpper(s) {
	case "FM":
		return wire.ModFM, nil
	case "NBFM":
		return wire.ModNBFM, nil
	case "WBFM":
		return wire.ModWBFM, nil
	case "AM":
		return wire.ModAM, nil
	case "NBAM":
		return wire.ModNBAM, nil
	case "USB":
		return wire.ModUSB, nil
	case "LSB":
		return wire.ModLSB, nil
	case "CW":
		return wire.ModCW, nil
	default:
		return 0, fmt.Errorf("unknown modulation %q", s)
	}
}

func bandwidthClassFor(mod wire.Modulation) ddr.BandwidthClass {
	switch mod {
	case wire.ModWBFM:
		return ddr.ClassWide
	case wire.ModFM:
		return ddr.Class20K
	case wire.ModNBFM, wire.ModAM:
		return ddr.Class10K
	case wire.ModNBAM, wire.ModUSB, wire.ModLSB:
		return ddr.Class3K
	case wire.ModCW:
		return ddr.Class500
	default:
		return ddr.Class10K
	}
}

func codecOptions(m map[string]string) []wire.CodecOption {
	opts := make([]wire.CodecOption, 0, len(m))
	for k, v := range m {
		opts = append(opts, wire.CodecOption{Name: k, Value: v})
	}
	return opts
}

func audioOptions(m map[string]string) []audiocodec.Option {
	opts := make([]audiocodec.Option, 0, len(m))
	for k, v := range m {
		opts = append(opts, audiocodec.Option{Name: k, Value: v})
	}
	return opts
}

func main() {
	configFile := flag.String("config", "remote.yaml", "Path to remote Rx/Tx configuration file")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	catPty := flag.String("cat-pty", "", "Symlink path for a shared CAT control PTY (disabled if empty)")
	flag.Parse()

	logging.SetLevel(*logLevel)
	log := logging.For("remotetrxd")

	cfg, err := config.LoadRemote(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "remotetrxd: load config: %v\n", err)
		os.Exit(1)
	}

	mod, err := parseModulation(cfg.Modulation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "remotetrxd: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Infof("shutting down")
		cancel()
	}()

	client := remote.New(cfg.Host, cfg.TCPPort, cfg.AuthKey, cfg.LogDisconnectsOnce, logging.For("remote-client"))
	rx := remote.NewRxProxy(client, logging.For("rxproxy"))
	tx := remote.NewTxProxy(client, logging.For("txproxy"))

	rx.MuteState = wire.MuteNone
	rx.FreqHz = uint32(cfg.Frequency)
	rx.Modulation = mod
	if decoder, err := audiocodec.New(cfg.Codec, outputRateHz(mod), 1, audioOptions(cfg.DecoderOptions)); err == nil {
		rx.SetCodec(decoder, cfg.Codec, codecOptions(cfg.DecoderOptions))
	} else {
		log.Warnf("no local playback decoder: %v", err)
	}
	player, err := localaudio.NewPlayer(float64(outputRateHz(mod)))
	if err != nil {
		log.Warnf("no local playback device: %v", err)
	} else {
		defer player.Close()
	}
	rx.OnAudioPCM = func(pcm []int16) {
		if player == nil {
			return
		}
		f32 := make([]float32, len(pcm))
		for i, s := range pcm {
			f32[i] = float32(s) / 32768.0
		}
		player.Feed(f32)
	}
	rx.OnSquelchOpen = func(open bool) { log.Infof("hub squelch: open=%v", open) }

	tx.FreqHz = uint32(cfg.Frequency)
	tx.Modulation = mod
	encoder, err := audiocodec.New(cfg.Codec, outputRateHz(mod), 1, audioOptions(cfg.EncoderOptions))
	if err != nil {
		fmt.Fprintf(os.Stderr, "remotetrxd: build encoder %q: %v\n", cfg.Codec, err)
		os.Exit(1)
	}
	tx.SetCodec(encoder, cfg.Codec, codecOptions(cfg.EncoderOptions))

	det := siglev.NewDDR(8)
	pipe := localrx.New(localrx.Options{Deemphasis: mod == wire.ModFM || mod == wire.ModWBFM, LimiterDBFS: -1.0}, func(pcm []float32) {
		samples := make([]int16, len(pcm))
		for i, s := range pcm {
			samples[i] = float32ToInt16(s)
		}
		tx.FeedAudio(samples)
	})

	squelchOpen := false
	preDemod := func(iq []complex128) {
		det.ProcessIQPower(iq)
		level := det.LastSiglev()
		switch {
		case !squelchOpen && level >= squelchOpenLevel:
			squelchOpen = true
			pipe.SetSquelchOpen(true)
		case squelchOpen && level < squelchCloseLevel:
			squelchOpen = false
			pipe.SetSquelchOpen(false)
			tx.Idle()
		}
	}
	pcmOut := func(pcm []float64) {
		f32 := make([]float32, len(pcm))
		for i, s := range pcm {
			f32[i] = float32(s)
		}
		pipe.Feed(f32)
	}

	params := ddr.Params{
		ChannelFqHz:     float64(cfg.Frequency),
		TunerCenterFqHz: float64(cfg.Frequency),
		Modulation:      mod,
		Class:           bandwidthClassFor(mod),
	}
	channel, err := ddr.New(cfg.SDR.SampleRateHz, params, maxQueueSamples, preDemod, pcmOut)
	if err != nil {
		fmt.Fprintf(os.Stderr, "remotetrxd: build ddr: %v\n", err)
		os.Exit(1)
	}
	go channel.Run()
	defer channel.Close()

	tuner, err := sdr.Open(&cfg.SDR, logging.For("sdr"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "remotetrxd: open sdr: %v\n", err)
		os.Exit(1)
	}
	tuner.Register(channel)
	go func() {
		if err := tuner.Run(ctx); err != nil {
			log.Errorf("tuner stopped: %v", err)
		}
	}()
	defer tuner.Close()

	if *catPty != "" {
		ptys := ctlpty.NewRegistry()
		cp, err := ptys.Acquire(*catPty)
		if err != nil {
			log.Warnf("cat pty: %v", err)
		} else {
			defer ptys.Release(*catPty)
			log.Infof("cat control pty at %s", cp.Name())
		}
	}

	if err := client.Run(ctx); err != nil {
		log.Errorf("client exited: %v", err)
		os.Exit(1)
	}
}

func outputRateHz(mod wire.Modulation) int {
	switch mod {
	case wire.ModWBFM:
		return 48000
	default:
		return 16000
	}
}

func float32ToInt16(s float32) int16 {
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	return int16(s * 32767)
}
