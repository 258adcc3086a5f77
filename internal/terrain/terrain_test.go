package terrain

import (
	"image/color"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

func TestNewIsEmpty(t *testing.T) {
	tr := New(8, 5, white)
	assert.Equal(t, 8, tr.Width())
	assert.Equal(t, 5, tr.MaxHeight())
	for x := 0; x < 8; x++ {
		assert.Equal(t, 5, tr.Height(x))
	}
	assert.False(t, tr.Full())
}

func TestDepositFlatGround(t *testing.T) {
	tr := New(10, 6, white)

	added := tr.Deposit(5, 2, 2)
	assert.Equal(t, 4, added)
	assert.Equal(t, []int{6, 6, 6, 5, 5, 5, 5, 6, 6, 6}, tr.Heights())

	for x := 3; x < 7; x++ {
		assert.Equal(t, Snow, tr.Bitmap().ColorIndexAt(x, 5))
	}
	assert.Equal(t, Clear, tr.Bitmap().ColorIndexAt(2, 5))
}

func TestDepositRefusesSteepColumns(t *testing.T) {
	tr := New(5, 10, white)
	copy(tr.depth, []int{10, 10, 8, 10, 10})

	// column 2 sits two rows above both neighbours, so it may not grow
	added := tr.Deposit(2, 1, 2)
	assert.Equal(t, 1, added)
	assert.Equal(t, []int{10, 9, 8, 10, 10}, tr.Heights())
}

func TestDepositEdgesCheckOneNeighbour(t *testing.T) {
	tr := New(4, 10, white)
	copy(tr.depth, []int{9, 10, 10, 9})

	// left edge: right neighbour 10 - 9 = 1 < 2
	assert.Equal(t, 1, tr.Deposit(0, 1, 2))
	assert.Equal(t, 8, tr.Height(0))

	// left edge again: 10 - 8 = 2 is too steep
	assert.Equal(t, 0, tr.Deposit(0, 1, 2))
	assert.Equal(t, 8, tr.Height(0))

	// right edge mirrors it
	assert.Equal(t, 1, tr.Deposit(4, 1, 2))
	assert.Equal(t, 8, tr.Height(3))
	assert.Equal(t, 0, tr.Deposit(4, 1, 2))
}

func TestDepositUsesHeightsBeforeTheCall(t *testing.T) {
	tr := New(2, 10, white)
	copy(tr.depth, []int{10, 8})

	// column 1 is too steep against the surface before the call; growing
	// column 0 first must not make it eligible in the same call
	assert.Equal(t, 1, tr.Deposit(1, 1, 2))
	assert.Equal(t, []int{9, 8}, tr.Heights())
}

func TestDepositOutOfRangeIsSkipped(t *testing.T) {
	tr := New(3, 4, white)
	assert.Equal(t, 0, tr.Deposit(-10, 4, 2))
	assert.Equal(t, 0, tr.Deposit(20, 4, 2))
	assert.Equal(t, 3, tr.Deposit(1, 10, 2))
}

func TestSingleColumn(t *testing.T) {
	tr := New(1, 2, white)
	assert.Equal(t, 1, tr.Deposit(0, 4, 2))
	assert.Equal(t, 1, tr.Deposit(0, 4, 2))
	assert.True(t, tr.Full())
	assert.Equal(t, 0, tr.Deposit(0, 4, 2), "height never drops below zero")
	assert.Equal(t, 0, tr.Height(0))
}

func TestDepositNeverBreaksSlopeOrFloor(t *testing.T) {
	const width, height, slope = 40, 12, 2
	rnd := rand.New(rand.NewPCG(1, 2))
	tr := New(width, height, white)

	for i := 0; i < 5000; i++ {
		before := append([]int(nil), tr.Heights()...)
		center := rnd.IntN(width+8) - 4
		tr.Deposit(center, 4, slope)

		for x, d := range tr.Heights() {
			require.GreaterOrEqual(t, d, 0)
			if d == before[x] {
				continue
			}
			require.Equal(t, before[x]-1, d, "one row per call")
			if x > 0 {
				require.Less(t, before[x-1]-before[x], slope)
			}
			if x < width-1 {
				require.Less(t, before[x+1]-before[x], slope)
			}
		}
		for x := 0; x < width-1; x++ {
			diff := tr.Height(x+1) - tr.Height(x)
			require.LessOrEqual(t, diff, slope)
			require.GreaterOrEqual(t, diff, -slope)
		}
	}
}

func TestFullOnlyWhenEveryColumnIsZero(t *testing.T) {
	tr := New(4, 3, white)
	copy(tr.depth, []int{0, 0, 0, 1})
	assert.False(t, tr.Full())
	tr.depth[3] = 0
	assert.True(t, tr.Full())

	tr.Reset()
	assert.False(t, tr.Full())
	for _, d := range tr.Heights() {
		assert.Equal(t, 3, d)
	}
	for _, p := range tr.Bitmap().Pix {
		assert.Equal(t, Clear, p)
	}
}
