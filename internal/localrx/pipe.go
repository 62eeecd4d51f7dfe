package localrx

// Pipe chains the local receiver's audio stages in LocalRxBase.cpp's
// construction order: deemphasis -> squelch valve ("valve") -> tone/
// DTMF tap -> limiter -> hard clipper -> sink. The squelch valve starts
// closed; callers open/close it from their squelch detector (siglev,
// CTCSS, or whatever the configured plug-in is).
type Pipe struct {
	Deemphasis *Deemphasis
	Valve      *Valve
	Tap        *Tap
	Limiter    *Limiter
	Clipper    *Clipper

	deemphasisEnabled bool
	sink              func([]float32)
}

// Options configures which optional stages a Pipe builds.
type Options struct {
	Deemphasis  bool
	LimiterDBFS float64 // 0 disables the limiter
}

// New builds a Pipe; sink receives whatever survives the chain.
func New(opts Options, sink func([]float32)) *Pipe {
	return &Pipe{
		Deemphasis:        NewDeemphasis(),
		Valve:             NewValve(),
		Tap:               NewTap(),
		Limiter:           NewLimiter(opts.LimiterDBFS),
		Clipper:           NewClipper(),
		deemphasisEnabled: opts.Deemphasis,
		sink:              sink,
	}
}

// Feed pushes one block of demodulated audio through the chain.
func (p *Pipe) Feed(in []float32) {
	stage := in
	if p.deemphasisEnabled {
		stage = p.Deemphasis.Process(stage)
	}
	stage = p.Valve.Process(stage)
	if len(stage) == 0 {
		return
	}
	stage = p.Tap.Process(stage)
	stage = p.Limiter.Process(stage)
	stage = p.Clipper.Process(stage)
	if p.sink != nil {
		p.sink(stage)
	}
}

// SetSquelchOpen drives the valve from a squelch detector's open/close
// decision.
func (p *Pipe) SetSquelchOpen(open bool) { p.Valve.SetOpen(open) }
