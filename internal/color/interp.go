package color

// Interp blends a toward b. pos is clamped to [0,1]; 0 yields a, 1 yields b.
func Interp(a, b HSV, pos float32) HSV {
	p := clamp01(pos)
	return NewHSV(
		a.h-float32((a.h-b.h)*p),
		a.s-float32((a.s-b.s)*p),
		a.v-float32((a.v-b.v)*p),
	)
}

// Interp3 treats a as a pivot between two gradients: positive pos blends
// toward b, negative pos blends toward c. pos is clamped to [-1,1].
func Interp3(a, b, c HSV, pos float32) HSV {
	switch {
	case pos > 0:
		return Interp(a, b, pos)
	case pos < 0:
		return Interp(a, c, -pos)
	default:
		return a
	}
}
