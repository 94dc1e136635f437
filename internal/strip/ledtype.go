package strip

import (
	"fmt"
	"strings"
)

// LedType selects the wire framing of a strip.
type LedType uint8

const (
	APA102 LedType = iota
	WS2801
)

func (t LedType) String() string {
	switch t {
	case APA102:
		return "apa102"
	case WS2801:
		return "ws2801"
	default:
		return fmt.Sprintf("LedType(%d)", uint8(t))
	}
}

// ParseLedType accepts a chip name or the numeric codes 0 (apa102) and 1 (ws2801).
func ParseLedType(s string) (LedType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "apa102", "0", "":
		return APA102, nil
	case "ws2801", "1":
		return WS2801, nil
	default:
		return APA102, fmt.Errorf("unknown led type %q", s)
	}
}

func (t LedType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *LedType) UnmarshalText(b []byte) error {
	v, err := ParseLedType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (t LedType) framing() Framing {
	if t == WS2801 {
		return WS2801Framing{}
	}
	return APA102Framing{}
}
