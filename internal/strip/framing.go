package strip

import "github.com/coreman2200/funtimes-stripd/internal/color"

// Framing lays pixels out in a protocol buffer. Every fill algorithm goes
// through WritePixel, so adding a chip only means adding a Framing.
type Framing interface {
	BufferSize(n int) int
	// Init puts a freshly allocated buffer into its all-off state.
	Init(buf []byte, n int)
	WritePixel(buf []byte, i int, c color.RGB)
	ReadPixel(buf []byte, i int) color.RGB
}

const (
	apa102StartFrame = 4
	apa102FrameSize  = 4
	// 0b111 marker plus the 5-bit global brightness field at full scale.
	apa102Brightness byte = 0xFF
)

// APA102Framing: 4 zero bytes, then [0xFF,B,G,R] per pixel, then ceil(n/2)
// zero bytes to clock the data through.
type APA102Framing struct{}

func (APA102Framing) BufferSize(n int) int {
	return apa102StartFrame + n*apa102FrameSize + (n+1)/2
}

func (f APA102Framing) Init(buf []byte, n int) {
	for i := range buf {
		buf[i] = 0
	}
	for i := 0; i < n; i++ {
		f.WritePixel(buf, i, color.Black)
	}
}

func (APA102Framing) WritePixel(buf []byte, i int, c color.RGB) {
	o := apa102StartFrame + i*apa102FrameSize
	buf[o] = apa102Brightness
	buf[o+1] = c.B
	buf[o+2] = c.G
	buf[o+3] = c.R
}

func (APA102Framing) ReadPixel(buf []byte, i int) color.RGB {
	o := apa102StartFrame + i*apa102FrameSize
	return color.RGB{R: buf[o+3], G: buf[o+2], B: buf[o+1]}
}

// WS2801Framing: bare [R,G,B] per pixel.
type WS2801Framing struct{}

func (WS2801Framing) BufferSize(n int) int { return n * 3 }

func (WS2801Framing) Init(buf []byte, n int) {
	for i := range buf {
		buf[i] = 0
	}
}

func (WS2801Framing) WritePixel(buf []byte, i int, c color.RGB) {
	o := i * 3
	buf[o], buf[o+1], buf[o+2] = c.R, c.G, c.B
}

func (WS2801Framing) ReadPixel(buf []byte, i int) color.RGB {
	o := i * 3
	return color.RGB{R: buf[o], G: buf[o+1], B: buf[o+2]}
}
