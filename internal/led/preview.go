package led

import (
	"image"
	"sync"
	"time"

	"periph.io/x/extra/devices/screen"
)

// Imager is anything that can show its pixels as an image; *strip.Strip is one.
type Imager interface {
	Image() *image.NRGBA
}

type drawer interface {
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
	Halt() error
}

// Preview paints the strip on the terminal with ANSI colors instead of
// driving hardware. Frames are throttled so the console stays readable.
type Preview struct {
	mu       sync.Mutex
	src      Imager
	dev      drawer
	throttle time.Duration
	lastEmit time.Time
}

func NewPreview(src Imager, width int, throttle time.Duration) *Preview {
	return newPreview(src, screen.New(width), throttle)
}

func newPreview(src Imager, dev drawer, throttle time.Duration) *Preview {
	return &Preview{src: src, dev: dev, throttle: throttle}
}

func (p *Preview) Write([]byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	if p.lastEmit.Add(p.throttle).After(now) {
		return nil
	}
	p.lastEmit = now

	im := p.src.Image()
	return p.dev.Draw(im.Bounds(), im, image.Point{})
}

func (p *Preview) Close() error {
	return p.dev.Halt()
}
