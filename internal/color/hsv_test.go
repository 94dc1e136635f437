package color

import (
	"encoding/json"
	"math"
	"strconv"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var TestHSVIsExpectedRGB = []struct {
	H, S, V float32
	Expect  RGB
}{
	{0, 0, 1, RGB{255, 255, 255}},
	{0, 1, 1, RGB{255, 0, 0}},
	{1, 1, 1, RGB{255, 0, 0}},
	{0.5, 1, 1, RGB{0, 255, 255}},
	{0, 0, 0, RGB{0, 0, 0}},
	// 127.5 truncates to 127
	{0.5, 1, 0.5, RGB{0, 127, 127}},
	{0, 0, 0.5, RGB{127, 127, 127}},
	{0.25, 1, 1, RGB{127, 255, 0}},
	{0.75, 1, 1, RGB{127, 0, 255}},
}

func TestHSVToRGB(t *testing.T) {
	for k, v := range TestHSVIsExpectedRGB {
		t.Run("Given HSV"+strconv.Itoa(k), func(t *testing.T) {
			assert.Equal(t, v.Expect, NewHSV(v.H, v.S, v.V).RGB())
		})
	}
}

func TestNewHSVClamps(t *testing.T) {
	c := NewHSV(-1, 2, float32(math.NaN()))
	assert.Equal(t, float32(0), c.H())
	assert.Equal(t, float32(1), c.S())
	assert.Equal(t, float32(0), c.V())

	c.SetH(5)
	c.SetS(-3)
	c.SetV(0.25)
	assert.Equal(t, NewHSV(1, 0, 0.25), c)
}

func TestNewHSVChannelsAlwaysInRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := NewHSV(
			rapid.Float32().Draw(t, "h"),
			rapid.Float32().Draw(t, "s"),
			rapid.Float32().Draw(t, "v"),
		)
		for _, ch := range []float32{c.H(), c.S(), c.V()} {
			if !(ch >= 0 && ch <= 1) {
				t.Fatalf("channel %v out of range in %+v", ch, c)
			}
		}
	})
}

func TestLEBytesRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := NewHSV(
			rapid.Float32Range(0, 1).Draw(t, "h"),
			rapid.Float32Range(0, 1).Draw(t, "s"),
			rapid.Float32Range(0, 1).Draw(t, "v"),
		)
		if got := HSVFromLEBytes(c.LEBytes()); got != c {
			t.Fatalf("round trip %+v -> %+v", c, got)
		}
	})
}

func TestLEBytesLayout(t *testing.T) {
	b := NewHSV(1, 0.5, 0).LEBytes()
	// 1.0f = 0x3f800000, 0.5f = 0x3f000000, little endian
	assert.Equal(t, [HSVSize]byte{0, 0, 0x80, 0x3f, 0, 0, 0, 0x3f, 0, 0, 0, 0}, b)
}

func TestHSVFromLEBytesClampsGarbage(t *testing.T) {
	var b [HSVSize]byte
	for i := range b {
		b[i] = 0xff // NaN in every channel
	}
	assert.Equal(t, HSV{}, HSVFromLEBytes(b))
}

func TestRGBAgreesWithReference(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h := rapid.Float32Range(0, 0.999).Draw(t, "h")
		s := rapid.Float32Range(0, 1).Draw(t, "s")
		v := rapid.Float32Range(0, 1).Draw(t, "v")

		got := NewHSV(h, s, v).RGB()
		r, g, b := colorful.Hsv(float64(h)*360, float64(s), float64(v)).RGB255()
		for _, d := range []int{int(got.R) - int(r), int(got.G) - int(g), int(got.B) - int(b)} {
			if d < -2 || d > 2 {
				t.Fatalf("hsv(%v,%v,%v): got %+v want ~(%d,%d,%d)", h, s, v, got, r, g, b)
			}
		}
	})
}

func TestScaleLeavesOriginal(t *testing.T) {
	c := NewHSV(0.3, 0.4, 0.8)
	scaled := c.Scale(0.5)
	assert.Equal(t, float32(0.4), scaled.V())
	assert.Equal(t, float32(0.8), c.V())
	assert.Equal(t, c.H(), scaled.H())
	assert.Equal(t, float32(0), c.Scale(-2).V())
}

func TestHSVJSON(t *testing.T) {
	b, err := json.Marshal(NewHSV(0.5, 1, 0.25))
	require.NoError(t, err)
	assert.JSONEq(t, `{"h":0.5,"s":1,"v":0.25}`, string(b))

	var c HSV
	require.NoError(t, json.Unmarshal([]byte(`{"h":3,"s":-1,"v":0.5}`), &c))
	assert.Equal(t, NewHSV(1, 0, 0.5), c)
}
