package midea

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferecasa/ac-controller/internal/model"
)

func sampleCommands() []model.Command {
	return []model.Command{
		{Power: true, Temperature: 24, Mode: model.ModeCool, Fan: model.FanAuto},
		{Power: true, Temperature: 17, Mode: model.ModeHeat, Fan: model.FanHigh},
		{Power: true, Temperature: 30, Mode: model.ModeDry, Fan: model.FanLow},
		{Power: false, Temperature: 22, Mode: model.ModeAuto, Fan: model.FanMedium},
	}
}

func TestEncode_LengthIsConstantAndEven(t *testing.T) {
	for _, cmd := range sampleCommands() {
		train := Encode(Frame(cmd))
		assert.Len(t, train.Pairs, PairCount)
		durations := train.Durations()
		assert.Len(t, durations, 2*PairCount)
		assert.Equal(t, 0, len(durations)%2)
	}
}

func TestEncode_Structure(t *testing.T) {
	train := Encode(Frame(model.Command{
		Power: true, Temperature: 24, Mode: model.ModeCool, Fan: model.FanAuto,
	}))
	require.Len(t, train.Pairs, 100)

	assert.Equal(t, CarrierHz, train.CarrierHz)

	// Both repetitions open with the header pair.
	assert.Equal(t, Pair{HeaderMark, HeaderSpace}, train.Pairs[0])
	assert.Equal(t, Pair{HeaderMark, HeaderSpace}, train.Pairs[50])

	// First repetition's stop mark carries the inter-repetition gap; the
	// final stop mark carries nothing.
	assert.Equal(t, Pair{BitMark, HeaderSpace}, train.Pairs[49])
	assert.Equal(t, Pair{BitMark, 0}, train.Pairs[99])

	// Every mark in a data pair is the bit mark.
	for i, p := range train.Pairs {
		if i == 0 || i == 50 {
			continue
		}
		assert.Equal(t, BitMark, p.Mark(), "pair %d", i)
	}
}

// decodeRepetition reads the 6 data bytes back out of one repetition's 48
// bit pairs.
func decodeRepetition(t *testing.T, pairs []Pair) []byte {
	t.Helper()
	require.Len(t, pairs, 48)

	out := make([]byte, 6)
	for i, p := range pairs {
		var bit byte
		switch p.Space() {
		case OneSpace:
			bit = 1
		case ZeroSpace:
			bit = 0
		default:
			t.Fatalf("pair %d has unexpected space %v", i, p.Space())
		}
		out[i/8] = out[i/8]<<1 | bit
	}
	return out
}

func TestEncode_ComplementRedundancy(t *testing.T) {
	for _, cmd := range sampleCommands() {
		frame := Frame(cmd)
		train := Encode(frame)

		for _, offset := range []int{1, 51} {
			bytes := decodeRepetition(t, train.Pairs[offset:offset+48])

			// Original, complement, original, complement, original, complement.
			assert.Equal(t, frame[0], bytes[0])
			assert.Equal(t, frame[1], bytes[2])
			assert.Equal(t, frame[2], bytes[4])
			for i := 0; i < len(bytes)-1; i += 2 {
				assert.Equal(t, ^bytes[i], bytes[i+1], "byte %d complement", i)
			}
		}
	}
}

func TestEncode_TimingConstants(t *testing.T) {
	// The unit is 21 carrier cycles at 38 kHz, 553us. These values are the
	// hardware contract; a receiver that sees anything else ignores the
	// train.
	assert.Equal(t, 553*time.Microsecond, Unit)
	assert.Equal(t, 4424*time.Microsecond, HeaderMark)
	assert.Equal(t, 1659*time.Microsecond, OneSpace)
	assert.Equal(t, 553*time.Microsecond, ZeroSpace)
	assert.Equal(t, 38000, CarrierHz)
}

func TestEncode_Deterministic(t *testing.T) {
	cmd := model.Command{Power: true, Temperature: 21, Mode: model.ModeHeat, Fan: model.FanLow}
	a := Encode(Frame(cmd))
	b := Encode(Frame(cmd))
	assert.Equal(t, a, b)
}
