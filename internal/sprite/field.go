package sprite

// Field is the single sprite simulation shared by every channel rendering
// the sprite pattern.
type Field struct {
	sprites []*Sprite
}

// NewField scatters count sprites at random positions with random signed
// speeds up to maxSpeed.
func NewField(count int, falloff, maxSpeed float32, rng Rand) *Field {
	if rng == nil {
		rng = DefaultRand
	}
	f := &Field{sprites: make([]*Sprite, 0, count)}
	for i := 0; i < count; i++ {
		pos := rng.Float32()
		speed := (rng.Float32()*2 - 1) * maxSpeed
		f.sprites = append(f.sprites, New(pos, falloff, speed, maxSpeed, rng))
	}
	return f
}

func FieldOf(sprites ...*Sprite) *Field {
	return &Field{sprites: sprites}
}

func (f *Field) Sprites() []*Sprite {
	if f == nil {
		return nil
	}
	return f.sprites
}

func (f *Field) Len() int {
	return len(f.Sprites())
}

// Run steps every sprite once.
func (f *Field) Run() {
	for _, s := range f.Sprites() {
		s.Run()
	}
}
