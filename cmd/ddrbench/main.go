// Command ddrbench exercises the DDR channelizer and demodulator chain
// against a synthetic tone source, reporting the measured signal level
// and output sample rate of a 20 kHz-class channel (spec.md §4.5 DSP
// pipeline, component J).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kb9vy/nettrxd/internal/ddr"
	"github.com/kb9vy/nettrxd/internal/logging"
	"github.com/kb9vy/nettrxd/internal/sdr"
	"github.com/kb9vy/nettrxd/internal/siglev"
	"github.com/kb9vy/nettrxd/internal/wire"
)

func main() {
	tunerRate := flag.Int("tuner-rate-hz", 2400000, "Simulated tuner sample rate")
	toneOffset := flag.Float64("tone-offset-hz", 5000, "Tone offset from tuner center")
	toneAmp := flag.Float64("tone-amp", 0.5, "Tone amplitude (0..1)")
	duration := flag.Duration("duration", 2*time.Second, "How long to run the benchmark")
	modName := flag.String("modulation", "FM", "Modulation to demodulate with (FM, NBFM, WBFM, AM, USB, LSB, CW)")
	flag.Parse()

	mod, err := parseModulation(*modName)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ddrbench:", err)
		os.Exit(1)
	}

	log := logging.For("ddrbench")
	src := sdr.NewSimSource(*tunerRate)
	src.AddTone(*toneOffset, *toneAmp)

	det := siglev.NewDDR(8)
	var pcmBlocks, pcmSamples int
	var lastIQ []complex128

	params := ddr.Params{
		ChannelFqHz:     *toneOffset,
		TunerCenterFqHz: 0,
		Modulation:      mod,
		Class:           ddr.Class20K,
	}
	preDemod := func(iq []complex128) {
		det.ProcessIQPower(iq)
		lastIQ = iq
	}
	pcmOut := func(pcm []float64) {
		pcmBlocks++
		pcmSamples += len(pcm)
	}

	channel, err := ddr.New(*tunerRate, params, 4*(*tunerRate), preDemod, pcmOut)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ddrbench: build ddr:", err)
		os.Exit(1)
	}
	go channel.Run()
	defer channel.Close()

	tuner := sdr.New(src, *tunerRate, logging.For("sdr"))
	tuner.Register(channel)

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()
	if err := tuner.Run(ctx); err != nil {
		log.Warnf("tuner stopped: %v", err)
	}

	log.Infof("produced %d PCM blocks (%d samples)", pcmBlocks, pcmSamples)
	fmt.Printf("siglev=%.3f output_rate_hz=%d pcm_blocks=%d pcm_samples=%d\n",
		det.LastSiglev(), ddr.OutputRateHz(params.Class, *tunerRate), pcmBlocks, pcmSamples)

	if len(lastIQ) > 0 {
		peakHz, peakDB := peakBin(ddr.PowerSpectrumDB(lastIQ), ddr.OutputRateHz(params.Class, *tunerRate))
		fmt.Printf("spectrum_peak_hz=%.1f spectrum_peak_db=%.1f\n", peakHz, peakDB)
	}
}

// peakBin finds the strongest bin in a PowerSpectrumDB output and maps it
// back to a baseband frequency, folding the upper half of the FFT onto
// negative frequencies the way a waterfall display would.
func peakBin(db []float64, sampleRateHz int) (hz, dbVal float64) {
	n := len(db)
	if n == 0 {
		return 0, 0
	}
	best := 0
	for i, v := range db {
		if v > db[best] {
			best = i
		}
	}
	binHz := float64(sampleRateHz) / float64(n)
	freq := float64(best) * binHz
	if best > n/2 {
		freq -= float64(sampleRateHz)
	}
	return freq, db[best]
}

func parseModulation(s string) (wire.Modulation, error) {
	switch s {
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
