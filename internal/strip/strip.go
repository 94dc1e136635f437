// Package strip renders patterns into the byte buffer of one physical LED
// strip. The buffer is laid out for the strip's chip and can be written to
// the SPI bus as is.
package strip

import (
	"image"
	"math"

	"github.com/coreman2200/funtimes-stripd/internal/color"
	"github.com/coreman2200/funtimes-stripd/internal/sprite"
)

type Strip struct {
	ledType LedType
	framing Framing
	n       int
	buf     []byte
}

func New(n int, t LedType) *Strip {
	if n < 0 {
		n = 0
	}
	f := t.framing()
	s := &Strip{
		ledType: t,
		framing: f,
		n:       n,
		buf:     make([]byte, f.BufferSize(n)),
	}
	f.Init(s.buf, n)
	return s
}

func (s *Strip) Len() int      { return s.n }
func (s *Strip) Type() LedType { return s.ledType }

// Bytes returns the wire buffer. It is reused across frames.
func (s *Strip) Bytes() []byte { return s.buf }

func (s *Strip) Pixel(i int) (color.RGB, bool) {
	if i < 0 || i >= s.n {
		return color.Black, false
	}
	return s.framing.ReadPixel(s.buf, i), true
}

// SetLED writes a single pixel; out of range indices are ignored.
func (s *Strip) SetLED(c color.RGB, i int) {
	if i < 0 || i >= s.n {
		return
	}
	s.framing.WritePixel(s.buf, i, c)
}

func (s *Strip) AllOff() {
	for i := 0; i < s.n; i++ {
		s.framing.WritePixel(s.buf, i, color.Black)
	}
}

// FillGradient runs start -> end along the strip.
func (s *Strip) FillGradient(start, end color.HSV) {
	s.fill(func(pos float32) color.HSV {
		return color.Interp(start, end, pos)
	})
}

// FillGradientDual mirrors a gradient around the middle: end at the middle,
// start at both ends.
func (s *Strip) FillGradientDual(start, end color.HSV) {
	s.fill(func(pos float32) color.HSV {
		return color.Interp(end, start, abs(bipolar(pos)))
	})
}

// FillGradientTriple pivots on c2 at the middle, with c1 at the first pixel
// and c3 at the last.
func (s *Strip) FillGradientTriple(c1, c2, c3 color.HSV) {
	s.fill(func(pos float32) color.HSV {
		if b := bipolar(pos); b < 0 {
			return color.Interp(c2, c1, -b)
		}
		return color.Interp(c2, c3, pos)
	})
}

// FillSine draws a triangle wave of period one strip length, shifted by
// phase. Advancing phase each frame scrolls the wave.
func (s *Strip) FillSine(c1, c2, c3 color.HSV, phase float32) {
	s.fill(func(pos float32) color.HSV {
		t := bipolar(Wrap(pos + phase))
		tri := abs(t)*2 - 1
		if tri < 0 {
			return color.Interp(c1, c2, -tri)
		}
		return color.Interp(c1, c3, tri)
	})
}

// FillSprites lays c3 highlights for every sprite over a c1/c2 dual gradient.
func (s *Strip) FillSprites(c1, c2, c3 color.HSV, sprites []*sprite.Sprite) {
	s.fill(func(pos float32) color.HSV {
		gradient := color.Interp(c2, c1, abs(bipolar(pos)))
		return color.Interp(gradient, c3, SpriteIntensity(pos, sprites))
	})
}

// SpriteIntensity sums the contribution of every sprite at pos, saturating
// at 1.
func SpriteIntensity(pos float32, sprites []*sprite.Sprite) float32 {
	var total float32
	for _, sp := range sprites {
		v := (1 - float32(abs(pos-sp.Pos())*sp.Falloff())) * 1.5
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		total += v
		if total > 1 {
			total = 1
		}
	}
	return total
}

// Image returns the current pixels as a one row image.
func (s *Strip) Image() *image.NRGBA {
	im := image.NewNRGBA(image.Rect(0, 0, s.n, 1))
	for x := 0; x < s.n; x++ {
		im.SetNRGBA(x, 0, s.framing.ReadPixel(s.buf, x).NRGBA())
	}
	return im
}

func (s *Strip) fill(f func(pos float32) color.HSV) {
	for i := 0; i < s.n; i++ {
		s.framing.WritePixel(s.buf, i, f(s.pos(i)).RGB())
	}
}

// pos maps pixel i onto [0,1]. A single pixel strip sits at 0.
func (s *Strip) pos(i int) float32 {
	if s.n <= 1 {
		return 0
	}
	return float32(i) / float32(s.n-1)
}

func bipolar(pos float32) float32 {
	return pos*2 - 1
}

// Wrap folds x into [0,1), wrapping negative values up from 1.
func Wrap(x float32) float32 {
	w := x - float32(math.Floor(float64(x)))
	if !(w < 1) {
		return 0
	}
	return w
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
