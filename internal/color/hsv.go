// Package color holds the HSV and RGB value types used by the strips,
// plus the interpolation helpers every pattern is built on.
package color

import (
	"encoding/binary"
	"encoding/json"
	"math"
)

// HSVSize is the length of the persisted little-endian HSV layout.
const HSVSize = 12

// HSV is a normalized hue/saturation/value color. Every channel is kept in
// [0,1]; the zero value is black.
type HSV struct {
	h, s, v float32
}

func NewHSV(h, s, v float32) HSV {
	return HSV{h: clamp01(h), s: clamp01(s), v: clamp01(v)}
}

func (c HSV) H() float32 { return c.h }
func (c HSV) S() float32 { return c.s }
func (c HSV) V() float32 { return c.v }

func (c *HSV) SetH(h float32) { c.h = clamp01(h) }
func (c *HSV) SetS(s float32) { c.s = clamp01(s) }
func (c *HSV) SetV(v float32) { c.v = clamp01(v) }

func (c *HSV) Set(o HSV) {
	c.h = clamp01(o.h)
	c.s = clamp01(o.s)
	c.v = clamp01(o.v)
}

// Scale returns a copy with V multiplied by brightness.
func (c HSV) Scale(brightness float32) HSV {
	out := c
	out.SetV(c.v * clamp01(brightness))
	return out
}

// RGB converts to 8-bit RGB. Channel values are truncated, not rounded, so
// frames match the byte values recorded by earlier firmware.
func (c HSV) RGB() RGB {
	h6 := c.h * 6
	whole := float32(math.Floor(float64(h6)))
	f := h6 - whole
	sector := int(whole) % 6

	// The float32 conversions stop the compiler from fusing multiply-adds
	// (arm64 does), which would shift truncated results by one.
	v := c.v
	hi := trunc8(v * 255)
	lo := trunc8(float32(v*(1-c.s)) * 255)
	falling := trunc8(float32(v*(1-float32(c.s*f))) * 255)
	rising := trunc8(float32(v*(1-float32(c.s*(1-f)))) * 255)

	switch sector {
	case 0:
		return RGB{R: hi, G: rising, B: lo}
	case 1:
		return RGB{R: falling, G: hi, B: lo}
	case 2:
		return RGB{R: lo, G: hi, B: rising}
	case 3:
		return RGB{R: lo, G: falling, B: hi}
	case 4:
		return RGB{R: rising, G: lo, B: hi}
	default:
		return RGB{R: hi, G: lo, B: falling}
	}
}

func (c HSV) LEBytes() [HSVSize]byte {
	var out [HSVSize]byte
	binary.LittleEndian.PutUint32(out[0:4], math.Float32bits(c.h))
	binary.LittleEndian.PutUint32(out[4:8], math.Float32bits(c.s))
	binary.LittleEndian.PutUint32(out[8:12], math.Float32bits(c.v))
	return out
}

// HSVFromLEBytes decodes the 12-byte layout written by LEBytes. The decoded
// channels are clamped, so garbage input still yields a valid color.
func HSVFromLEBytes(b [HSVSize]byte) HSV {
	return NewHSV(
		math.Float32frombits(binary.LittleEndian.Uint32(b[0:4])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[4:8])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[8:12])),
	)
}

type hsvJSON struct {
	H float32 `json:"h"`
	S float32 `json:"s"`
	V float32 `json:"v"`
}

func (c HSV) MarshalJSON() ([]byte, error) {
	return json.Marshal(hsvJSON{H: c.h, S: c.s, V: c.v})
}

func (c *HSV) UnmarshalJSON(b []byte) error {
	var j hsvJSON
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	*c = NewHSV(j.H, j.S, j.V)
	return nil
}

func clamp01(x float32) float32 {
	// NaN fails both comparisons below and would survive; pin it to 0.
	if x != x {
		return 0
	}
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func trunc8(x float32) uint8 {
	if x <= 0 {
		return 0
	}
	if x >= 255 {
		return 255
	}
	return uint8(x)
}
