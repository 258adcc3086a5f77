package command

import (
	"errors"
	"testing"

	"github.com/coreman2200/funtimes-snowglobe/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeKnownButton(t *testing.T) {
	p, n, err := Decode([]byte("!B516"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, ButtonPacket, p.Type)
	assert.Equal(t, Up, p.Button)
	assert.True(t, p.Pressed)
	assert.Equal(t, []byte("!B516"), Encode(p))
}

func TestColorRoundTrip(t *testing.T) {
	in := NewColor(model.NewRGB(0, 255, 0))
	b := Encode(in)
	require.Len(t, b, 6)
	assert.Equal(t, []byte{'!', 'C', 0, 255, 0, 0x9C}, b)

	out, n, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, uint32(0x00FF00), out.Color.Color())
}

func TestButtonsRoundTrip(t *testing.T) {
	for b := Button1; b <= Right; b++ {
		for _, pressed := range []bool{true, false} {
			p, _, err := Decode(Encode(NewButton(b, pressed)))
			require.NoError(t, err, b.String())
			assert.Equal(t, b, p.Button)
			assert.Equal(t, pressed, p.Pressed)
		}
	}
}

func TestSensorPacketsAreSized(t *testing.T) {
	in := Packet{Type: Accelerometer, Payload: make([]byte, 12)}
	b := Encode(in)
	require.Len(t, b, 15)
	out, n, err := Decode(append(b, '!'))
	require.NoError(t, err)
	assert.Equal(t, 15, n)
	assert.Equal(t, in.Payload, out.Payload)
}

func TestDecodeErrors(t *testing.T) {
	good := Encode(NewButton(Button2, true))
	badSum := append([]byte(nil), good...)
	badSum[4]++
	badID := Encode(Packet{Type: ButtonPacket})
	badID[2] = '9'
	badID[4] = checksum(badID[:4])
	badState := Encode(NewButton(Button1, true))
	badState[3] = 'x'
	badState[4] = checksum(badState[:4])

	cases := []struct {
		name string
		in   []byte
		want error
		n    int
	}{
		{"empty", nil, ErrIncomplete, 0},
		{"start only", []byte("!"), ErrIncomplete, 0},
		{"short", good[:4], ErrIncomplete, 0},
		{"garbage", []byte("x!B"), ErrMalformed, 1},
		{"unknown type", []byte("!Z1234"), ErrUnknownType, 2},
		{"checksum", badSum, ErrChecksum, 5},
		{"button id", badID, ErrMalformed, 5},
		{"button state", badState, ErrMalformed, 5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, n, err := Decode(c.in)
			assert.True(t, errors.Is(err, c.want), "got %v", err)
			assert.Equal(t, c.n, n)
		})
	}
}

func TestButtonNames(t *testing.T) {
	assert.Equal(t, "button3", Button3.String())
	assert.Equal(t, 2, Button3.Index())
	assert.Equal(t, -1, Left.Index())
	assert.Equal(t, "left", Left.String())
	assert.Equal(t, "color", ColorPacket.String())
}
