package animation

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind selects one of the fixed ring patterns.
type Kind uint8

const (
	Rotation Kind = iota
	Pulse
	Strobe
	Sparkle
)

var kindNames = [...]string{
	Rotation: "rotation",
	Pulse:    "pulse",
	Strobe:   "strobe",
	Sparkle:  "sparkle",
}

// Kinds lists every pattern in button order.
func Kinds() []Kind {
	return []Kind{Rotation, Pulse, Strobe, Sparkle}
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

func (k Kind) Valid() bool {
	return int(k) < len(kindNames)
}

// KindFromIndex maps a 0 based button index to a pattern, clamping out of
// range values to the nearest end.
func KindFromIndex(i int) Kind {
	if i < 0 {
		return Rotation
	}
	if i >= len(kindNames) {
		return Sparkle
	}
	return Kind(i)
}

// ParseKind accepts a pattern name ("spin" is an alias of rotation) or its
// index.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "spin" {
		return Rotation, nil
	}
	for i, n := range kindNames {
		if n == s {
			return Kind(i), nil
		}
	}
	if i, err := strconv.Atoi(s); err == nil && i >= 0 && i < len(kindNames) {
		return Kind(i), nil
	}
	return 0, fmt.Errorf("unknown animation %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid animation %d", k)
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
