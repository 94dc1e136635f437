// Package render owns the frame loop: once per tick it reads the target
// state, draws every channel's pattern into its strip and pushes the buffer
// to the channel's driver.
package render

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-stripd/internal/led"
	"github.com/coreman2200/funtimes-stripd/internal/sprite"
	"github.com/coreman2200/funtimes-stripd/internal/state"
	"github.com/coreman2200/funtimes-stripd/internal/strip"
)

const DefaultTick = 20 * time.Millisecond

// Channel binds a strip to the driver its frames go to. A nil Driver keeps
// the channel simulation only.
type Channel struct {
	Strip  *strip.Strip
	Driver led.Driver
}

type Options struct {
	Brightness  float32
	Tick        time.Duration
	ScrollSpeed float32
	Log         zerolog.Logger
	// OnFrame runs on the loop goroutine after every tick.
	OnFrame func(frame uint64)
}

// Loop holds everything the render goroutine mutates. Step and Run must only
// be called from one goroutine; Frames is safe from any.
type Loop struct {
	store    *state.Store
	channels []Channel
	field    *sprite.Field
	opts     Options
	log      zerolog.Logger

	phase   float32
	failing []bool
	// reserved is the reserved pattern last logged per channel, PatternOff
	// when none is pending.
	reserved []state.Pattern
	frames  atomic.Uint64
}

func NewLoop(store *state.Store, channels []Channel, field *sprite.Field, opts Options) *Loop {
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	return &Loop{
		store:    store,
		channels: channels,
		field:    field,
		opts:     opts,
		log:      opts.Log.With().Str("component", "render").Logger(),
		failing:  make([]bool, len(channels)),
		reserved: make([]state.Pattern, len(channels)),
	}
}

// Frames is the number of completed ticks.
func (l *Loop) Frames() uint64 { return l.frames.Load() }

// Phase is the current sine scroll offset in [0,1).
func (l *Loop) Phase() float32 { return l.phase }

// Run steps the loop every Tick until ctx is done.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.opts.Tick)
	defer ticker.Stop()

	l.log.Info().Dur("tick", l.opts.Tick).Int("channels", len(l.channels)).Msg("render loop started")
	for {
		l.Step()
		select {
		case <-ctx.Done():
			l.log.Info().Uint64("frames", l.Frames()).Msg("render loop stopped")
			return
		case <-ticker.C:
		}
	}
}

// Step renders one frame on every channel, then advances the sine phase
// and the sprite field.
func (l *Loop) Step() {
	snap := l.store.Snapshot()
	for i, ch := range l.channels {
		if i >= len(snap) {
			break
		}
		if ch.Strip == nil {
			continue
		}
		if !l.draw(i, ch.Strip, snap[i]) {
			continue
		}
		l.write(i, ch)
	}

	l.phase = strip.Wrap(l.phase + l.opts.ScrollSpeed)
	l.field.Run()

	n := l.frames.Add(1)
	if l.opts.OnFrame != nil {
		l.opts.OnFrame(n)
	}
}

// draw fills s for the channel's pattern and reports whether there is a
// frame to send.
func (l *Loop) draw(i int, s *strip.Strip, c state.Channel) bool {
	p := c.Mode()
	if p != state.PatternReserved4 && p != state.PatternReserved5 {
		l.reserved[i] = state.PatternOff
	}

	cols := c.Colors()
	for k := range cols {
		cols[k] = cols[k].Scale(l.opts.Brightness)
	}

	switch p {
	case state.PatternOff:
		s.AllOff()
	case state.PatternGradient:
		s.FillGradientTriple(cols[0], cols[1], cols[2])
	case state.PatternSine:
		s.FillSine(cols[0], cols[1], cols[2], l.phase)
	case state.PatternSprites:
		s.FillSprites(cols[0], cols[1], cols[2], l.field.Sprites())
	case state.PatternReserved4, state.PatternReserved5:
		if l.reserved[i] != p {
			l.log.Debug().Int("channel", i).Int("pattern", int(p)).Msg("reserved pattern")
			l.reserved[i] = p
		}
		return false
	default:
		return false
	}
	return true
}

// write sends the strip buffer. Failures are dropped and only the first of a
// run is logged.
func (l *Loop) write(i int, ch Channel) {
	if ch.Driver == nil {
		return
	}
	if err := ch.Driver.Write(ch.Strip.Bytes()); err != nil {
		if !l.failing[i] {
			l.log.Debug().Err(err).Int("channel", i).Msg("write failed")
		}
		l.failing[i] = true
		return
	}
	if l.failing[i] {
		l.log.Debug().Int("channel", i).Msg("write recovered")
		l.failing[i] = false
	}
}
