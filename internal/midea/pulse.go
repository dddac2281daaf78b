package midea

import "time"

// Protocol timing. The unit is 21 carrier cycles at 38 kHz.
const (
	CarrierHz = 38000

	Unit        = 553 * time.Microsecond
	HeaderMark  = 8 * Unit
	HeaderSpace = 8 * Unit
	BitMark     = Unit
	OneSpace    = 3 * Unit
	ZeroSpace   = Unit
)

const (
	frameBytes = 3

	// Each frame byte is sent MSB-first and immediately followed by its
	// bitwise complement, so the receiver can self-verify without a
	// checksum. Header pair + 48 bit pairs + stop pair, twice over.
	pairsPerRepetition = 1 + frameBytes*2*8 + 1

	// PairCount is the length of every encoded train. It never varies:
	// receivers count edges, so getting this wrong is not a degradation,
	// it is a dead remote.
	PairCount = 2 * pairsPerRepetition
)

// Pair is one mark followed by one space. The final pair of a train may
// carry a zero-length space; the sink emits nothing for it.
type Pair [2]time.Duration

func (p Pair) Mark() time.Duration  { return p[0] }
func (p Pair) Space() time.Duration { return p[1] }

// PulseTrain is a finite mark/space sequence plus the carrier it is
// modulated on.
type PulseTrain struct {
	Pairs     []Pair
	CarrierHz int
}

// Durations flattens the train into the alternating mark/space sequence the
// transmission sink consumes. It always starts with a mark and has even
// length.
func (t PulseTrain) Durations() []time.Duration {
	out := make([]time.Duration, 0, 2*len(t.Pairs))
	for _, p := range t.Pairs {
		out = append(out, p[0], p[1])
	}
	return out
}

// Encode expands a frame into its pulse train. The whole header + data +
// stop sequence goes out twice, with one header-space gap between the two
// repetitions and nothing after the second; on the wire that is the gap
// riding as the first repetition's stop-pair space, and a zero space
// padding the final stop mark.
func Encode(frame [3]byte) PulseTrain {
	pairs := make([]Pair, 0, PairCount)

	for repeat := 0; repeat < 2; repeat++ {
		pairs = append(pairs, Pair{HeaderMark, HeaderSpace})

		for _, b := range frame {
			pairs = appendByte(pairs, b)
			pairs = appendByte(pairs, ^b)
		}

		gap := time.Duration(0)
		if repeat == 0 {
			gap = HeaderSpace
		}
		pairs = append(pairs, Pair{BitMark, gap})
	}

	return PulseTrain{Pairs: pairs, CarrierHz: CarrierHz}
}

func appendByte(pairs []Pair, b byte) []Pair {
	for bit := 7; bit >= 0; bit-- {
		space := ZeroSpace
		if b&(1<<uint(bit)) != 0 {
			space = OneSpace
		}
		pairs = append(pairs, Pair{BitMark, space})
	}
	return pairs
}
