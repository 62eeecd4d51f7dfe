package localrx

// Valve is a squelch-gated audio pass-through: closed, it drops every
// sample; open, it passes them through unmodified. Grounded on
// AsyncAudioValve/LocalRxBase.cpp's sql_valve, which starts closed
// ("sql_valve->setOpen(false)") and is driven open/closed by the
// squelch detector.
type Valve struct {
	open bool
}

func NewValve() *Valve { return &Valve{} }

func (v *Valve) SetOpen(open bool) { v.open = open }
func (v *Valve) IsOpen() bool      { return v.open }

func (v *Valve) Process(in []float32) []float32 {
	if !v.open {
		return nil
	}
	return in
}
