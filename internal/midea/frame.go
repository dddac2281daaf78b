// Package midea encodes commands for Midea split units into the raw
// mark/space trains their infrared receivers expect. The frame layout and
// the nibble tables were captured from a working remote; none of it is
// published by the vendor, so the values here are the contract.
package midea

import (
	"github.com/ferecasa/ac-controller/internal/model"
)

const (
	// MinTemp and MaxTemp bound the setpoint the protocol can express.
	MinTemp = 17
	MaxTemp = 30

	frameMagic = 0xB2

	stateOn  = 0b1111
	stateOff = 0b1011

	// Transmitted in place of the temperature nibble when powering off.
	tempNibbleOff = 0b1110
)

// tempNibbles maps temperature-17 to its wire nibble. The ordering is not
// monotonic and has no known derivation; it was read off a real remote and
// must not be "corrected". A plausible-looking substitute fails silently
// against hardware.
var tempNibbles = [MaxTemp - MinTemp + 1]byte{
	0b0000, // 17
	0b0001, // 18
	0b0011, // 19
	0b0010, // 20
	0b0110, // 21
	0b0111, // 22
	0b0101, // 23
	0b0100, // 24
	0b1100, // 25
	0b1101, // 26
	0b1001, // 27
	0b1000, // 28
	0b1010, // 29
	0b1011, // 30
}

var modeNibbles = map[model.Mode]byte{
	model.ModeCool: 0b0000,
	model.ModeHeat: 0b1100,
	model.ModeAuto: 0b1000,
	model.ModeFan:  0b0100,
	model.ModeDry:  0b0010,
}

var fanNibbles = map[model.FanSpeed]byte{
	model.FanAuto:   0b1011,
	model.FanLow:    0b1001,
	model.FanMedium: 0b0101,
	model.FanHigh:   0b0011,
}

// ClampTemp forces a requested setpoint into the protocol's range.
func ClampTemp(t int) int {
	if t < MinTemp {
		return MinTemp
	}
	if t > MaxTemp {
		return MaxTemp
	}
	return t
}

// Frame packs a normalized command into the protocol's 3-byte frame:
//
//	byte 0: magic
//	byte 1: fan nibble | state nibble
//	byte 2: temperature nibble | mode nibble
//
// The command's temperature must already be in [MinTemp, MaxTemp].
func Frame(cmd model.Command) [3]byte {
	state := byte(stateOff)
	temp := byte(tempNibbleOff)
	if cmd.Power {
		state = stateOn
		temp = tempNibbles[ClampTemp(cmd.Temperature)-MinTemp]
	}

	return [3]byte{
		frameMagic,
		fanNibbles[cmd.Fan]<<4 | state,
		temp<<4 | modeNibbles[cmd.Mode],
	}
}
