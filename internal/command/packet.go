// Package command decodes Bluefruit Connect controller packets from the
// wireless link and applies them to the globe's settings.
package command

import (
	"errors"
	"fmt"

	"github.com/coreman2200/funtimes-snowglobe/model"
)

var (
	ErrIncomplete  = errors.New("packet incomplete")
	ErrUnknownType = errors.New("unknown packet type")
	ErrChecksum    = errors.New("packet checksum mismatch")
	ErrMalformed   = errors.New("malformed packet")
)

// Start opens every packet.
const Start = '!'

type Type byte

const (
	ColorPacket    Type = 'C'
	ButtonPacket   Type = 'B'
	Accelerometer  Type = 'A'
	Gyro           Type = 'G'
	Magnetometer   Type = 'M'
	Quaternion     Type = 'Q'
	LocationPacket Type = 'L'
)

// full packet sizes, start byte and checksum included
var sizes = map[Type]int{
	ColorPacket:    6,
	ButtonPacket:   5,
	Accelerometer:  15,
	Gyro:           15,
	Magnetometer:   15,
	Quaternion:     19,
	LocationPacket: 15,
}

func (t Type) String() string {
	switch t {
	case ColorPacket:
		return "color"
	case ButtonPacket:
		return "button"
	case Accelerometer:
		return "accelerometer"
	case Gyro:
		return "gyro"
	case Magnetometer:
		return "magnetometer"
	case Quaternion:
		return "quaternion"
	case LocationPacket:
		return "location"
	}
	return fmt.Sprintf("type(%q)", byte(t))
}

// Button is the control pad key id as sent by the app.
type Button byte

const (
	Button1 Button = '1'
	Button2 Button = '2'
	Button3 Button = '3'
	Button4 Button = '4'
	Up      Button = '5'
	Down    Button = '6'
	Left    Button = '7'
	Right   Button = '8'
)

func (b Button) Valid() bool {
	return b >= Button1 && b <= Right
}

// Index is 0..3 for the numbered buttons and -1 otherwise.
func (b Button) Index() int {
	if b >= Button1 && b <= Button4 {
		return int(b - Button1)
	}
	return -1
}

func (b Button) String() string {
	switch b {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	if i := b.Index(); i >= 0 {
		return fmt.Sprintf("button%d", i+1)
	}
	return fmt.Sprintf("button(%q)", byte(b))
}

type Packet struct {
	Type    Type
	Color   model.ColorVal
	Button  Button
	Pressed bool
	// Payload is the raw body of sensor packets, which are not interpreted.
	Payload []byte
}

func checksum(b []byte) byte {
	var sum byte
	for _, v := range b {
		sum += v
	}
	return ^sum
}

// Decode parses the packet at the start of buf. It returns the number of
// bytes to discard: the packet on success, the bad bytes on error, and 0 with
// ErrIncomplete when buf ends before the packet does.
func Decode(buf []byte) (Packet, int, error) {
	if len(buf) == 0 {
		return Packet{}, 0, ErrIncomplete
	}
	if buf[0] != Start {
		return Packet{}, 1, ErrMalformed
	}
	if len(buf) < 2 {
		return Packet{}, 0, ErrIncomplete
	}
	t := Type(buf[1])
	size, ok := sizes[t]
	if !ok {
		return Packet{}, 2, fmt.Errorf("%w %q", ErrUnknownType, buf[1])
	}
	if len(buf) < size {
		return Packet{}, 0, ErrIncomplete
	}
	if cs := checksum(buf[:size-1]); cs != buf[size-1] {
		return Packet{}, size, fmt.Errorf("%w: %#02x != %#02x", ErrChecksum, buf[size-1], cs)
	}

	p := Packet{Type: t}
	switch t {
	case ColorPacket:
		p.Color = model.NewRGB(buf[2], buf[3], buf[4])
	case ButtonPacket:
		p.Button = Button(buf[2])
		if !p.Button.Valid() {
			return Packet{}, size, fmt.Errorf("%w: button %q", ErrMalformed, buf[2])
		}
		switch buf[3] {
		case '1':
			p.Pressed = true
		case '0':
		default:
			return Packet{}, size, fmt.Errorf("%w: button state %q", ErrMalformed, buf[3])
		}
	default:
		p.Payload = append([]byte(nil), buf[2:size-1]...)
	}
	return p, size, nil
}

// Encode frames p the way the app sends it.
func Encode(p Packet) []byte {
	out := []byte{Start, byte(p.Type)}
	switch p.Type {
	case ColorPacket:
		out = append(out, p.Color.Serialize()...)
	case ButtonPacket:
		state := byte('0')
		if p.Pressed {
			state = '1'
		}
		out = append(out, byte(p.Button), state)
	default:
		out = append(out, p.Payload...)
	}
	return append(out, checksum(out))
}

func NewColor(c model.ColorVal) Packet {
	return Packet{Type: ColorPacket, Color: c}
}

func NewButton(b Button, pressed bool) Packet {
	return Packet{Type: ButtonPacket, Button: b, Pressed: pressed}
}
