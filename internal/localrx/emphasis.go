package localrx

// Deemphasis is a one-pole IIR de-emphasis filter, the discrete form of
// the classic RC de-emphasis network (1/(1+sRC)) used by real FM
// receivers, grounded on Emphasis.h's EmphasisBase/DeemphasisFilter:
// coefficients computed there for a 300Hz 3dB point at 16kHz via a
// bilinear transform.
type Deemphasis struct {
	x1, y1 float64
}

const (
	deemphB0 = 0.058555891443177958
	deemphB1 = 0.052700302299058421
	deemphA1 = -0.88874380625776361
)

func NewDeemphasis() *Deemphasis { return &Deemphasis{} }

func (d *Deemphasis) Process(in []float32) []float32 {
	out := make([]float32, len(in))
	for i, x := range in {
		y0 := deemphB0*float64(x) + deemphB1*d.x1 - deemphA1*d.y1
		d.x1 = float64(x)
		d.y1 = y0
		out[i] = float32(y0)
	}
	return out
}

func (d *Deemphasis) Reset() { d.x1, d.y1 = 0, 0 }
