// Package sprite simulates the bouncing highlights drawn by the sprite
// pattern. A sprite walks along [0,1] and re-rolls its speed every time it
// hits an end, so the motion never settles into a loop.
package sprite

import (
	"math"
	"math/rand"
)

const (
	MinSpeed    float32 = 0.0001
	MinMaxSpeed float32 = 0.001
	MinFalloff  float32 = 1.0
)

// Rand is the randomness a sprite needs; *rand.Rand satisfies it.
type Rand interface {
	Float32() float32
}

type globalRand struct{}

func (globalRand) Float32() float32 { return rand.Float32() }

// DefaultRand draws from math/rand's shared source.
var DefaultRand Rand = globalRand{}

type Sprite struct {
	pos      float32
	falloff  float32
	speed    float32
	maxSpeed float32
	rng      Rand
}

// New builds a sprite, clamping every parameter into its legal range. A zero
// speed is bumped to MinSpeed; sprites are never at rest.
func New(pos, falloff, speed, maxSpeed float32, rng Rand) *Sprite {
	if rng == nil {
		rng = DefaultRand
	}
	if !(maxSpeed >= MinMaxSpeed) || isInf(maxSpeed) {
		maxSpeed = MinMaxSpeed
	}
	if !(falloff >= MinFalloff) || isInf(falloff) {
		falloff = MinFalloff
	}
	switch {
	case speed > 0:
		speed = clamp(speed, MinSpeed, maxSpeed)
	case speed < 0:
		speed = -clamp(-speed, MinSpeed, maxSpeed)
	default:
		speed = MinSpeed
	}
	return &Sprite{
		pos:      clamp(pos, 0, 1),
		falloff:  falloff,
		speed:    speed,
		maxSpeed: maxSpeed,
		rng:      rng,
	}
}

func (s *Sprite) Pos() float32      { return s.pos }
func (s *Sprite) Falloff() float32  { return s.falloff }
func (s *Sprite) Speed() float32    { return s.speed }
func (s *Sprite) MaxSpeed() float32 { return s.maxSpeed }

// Run advances the sprite by one tick.
func (s *Sprite) Run() {
	s.pos += s.speed
	switch {
	case s.speed > 0 && s.pos >= 1:
		s.pos = 1
		s.speed = -s.roll()
	case s.speed < 0 && s.pos <= 0:
		s.pos = 0
		s.speed = s.roll()
	}
}

// roll picks a fresh speed magnitude in [MinSpeed, maxSpeed].
func (s *Sprite) roll() float32 {
	v := s.rng.Float32() * s.maxSpeed
	if !(v >= MinSpeed) {
		return MinSpeed
	}
	if v > s.maxSpeed {
		return s.maxSpeed
	}
	return v
}

func clamp(x, lo, hi float32) float32 {
	if !(x >= lo) {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func isInf(x float32) bool {
	return math.IsInf(float64(x), 0)
}
