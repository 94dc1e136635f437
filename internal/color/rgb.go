package color

import "image/color"

// RGB is an 8-bit per channel color as it is put on the wire.
type RGB struct {
	R, G, B uint8
}

var Black = RGB{}

func (c RGB) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

func (c RGB) IsBlack() bool {
	return c == Black
}
