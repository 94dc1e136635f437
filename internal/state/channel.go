// Package state keeps the target state of every channel: the three colors
// and pattern a strip should show. The control API writes it and the render
// loop reads it.
package state

import (
	"errors"
	"strconv"

	"github.com/coreman2200/funtimes-stripd/internal/color"
)

// Pattern selects what the render loop draws on a channel.
type Pattern uint8

const (
	PatternOff Pattern = iota
	PatternGradient
	PatternSine
	PatternSprites
	PatternReserved4
	PatternReserved5
)

// PatternNames is the default list served to clients, indexed by Pattern.
var PatternNames = []string{"off", "gradient", "sine", "sprites", "reserved 4", "reserved 5"}

func (p Pattern) String() string {
	if int(p) < len(PatternNames) {
		return PatternNames[p]
	}
	return "pattern " + strconv.Itoa(int(p))
}

// RecordSize is the length of a persisted channel record: three 12-byte
// colors followed by the pattern byte.
const RecordSize = 3*color.HSVSize + 1

var ErrRecordSize = errors.New("state: record must be 37 bytes")

// Channel is the target state of one strip. Nil fields are unset; in a
// partial update they leave the stored value alone.
type Channel struct {
	Color1  *color.HSV `json:"color1,omitempty"`
	Color2  *color.HSV `json:"color2,omitempty"`
	Color3  *color.HSV `json:"color3,omitempty"`
	Pattern *Pattern   `json:"pattern,omitempty"`
}

// Default is black on all three colors with the strip off.
func Default() Channel {
	return Channel{
		Color1:  HSVPtr(color.HSV{}),
		Color2:  HSVPtr(color.HSV{}),
		Color3:  HSVPtr(color.HSV{}),
		Pattern: PatternPtr(PatternOff),
	}
}

func PatternPtr(p Pattern) *Pattern { return &p }

func HSVPtr(c color.HSV) *color.HSV { return &c }

// Merge returns a copy of c with every set field of update applied. The
// result shares no pointers with either argument.
func (c Channel) Merge(update Channel) Channel {
	out := c.clone()
	if update.Color1 != nil {
		out.Color1 = HSVPtr(*update.Color1)
	}
	if update.Color2 != nil {
		out.Color2 = HSVPtr(*update.Color2)
	}
	if update.Color3 != nil {
		out.Color3 = HSVPtr(*update.Color3)
	}
	if update.Pattern != nil {
		out.Pattern = PatternPtr(*update.Pattern)
	}
	return out
}

// Colors returns the three colors, black where unset.
func (c Channel) Colors() [3]color.HSV {
	var out [3]color.HSV
	for i, p := range []*color.HSV{c.Color1, c.Color2, c.Color3} {
		if p != nil {
			out[i] = *p
		}
	}
	return out
}

// Mode returns the pattern, PatternOff when unset.
func (c Channel) Mode() Pattern {
	if c.Pattern == nil {
		return PatternOff
	}
	return *c.Pattern
}

func (c Channel) IsEmpty() bool {
	return c.Color1 == nil && c.Color2 == nil && c.Color3 == nil && c.Pattern == nil
}

func (c Channel) clone() Channel {
	var out Channel
	if c.Color1 != nil {
		out.Color1 = HSVPtr(*c.Color1)
	}
	if c.Color2 != nil {
		out.Color2 = HSVPtr(*c.Color2)
	}
	if c.Color3 != nil {
		out.Color3 = HSVPtr(*c.Color3)
	}
	if c.Pattern != nil {
		out.Pattern = PatternPtr(*c.Pattern)
	}
	return out
}

// MarshalBinary encodes the 37-byte little-endian record. Unset colors are
// written as zeros.
func (c Channel) MarshalBinary() ([]byte, error) {
	out := make([]byte, RecordSize)
	for i, col := range c.Colors() {
		b := col.LEBytes()
		copy(out[i*color.HSVSize:], b[:])
	}
	out[RecordSize-1] = byte(c.Mode())
	return out, nil
}

func (c *Channel) UnmarshalBinary(b []byte) error {
	if len(b) != RecordSize {
		return ErrRecordSize
	}
	var cols [3]color.HSV
	for i := range cols {
		var raw [color.HSVSize]byte
		copy(raw[:], b[i*color.HSVSize:(i+1)*color.HSVSize])
		cols[i] = color.HSVFromLEBytes(raw)
	}
	*c = Channel{
		Color1:  &cols[0],
		Color2:  &cols[1],
		Color3:  &cols[2],
		Pattern: PatternPtr(Pattern(b[RecordSize-1])),
	}
	return nil
}
