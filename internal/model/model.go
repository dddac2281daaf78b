package model

import "time"

type Mode string

const (
	ModeCool Mode = "cool"
	ModeHeat Mode = "heat"
	ModeAuto Mode = "auto"
	ModeFan  Mode = "fan"
	ModeDry  Mode = "dry"
)

type FanSpeed string

const (
	FanAuto   FanSpeed = "auto"
	FanLow    FanSpeed = "low"
	FanMedium FanSpeed = "medium"
	FanHigh   FanSpeed = "high"
)

// ParseMode maps a wire token onto a Mode. Unrecognized tokens return
// ok=false so the caller can keep whatever mode was already in effect.
func ParseMode(token string) (Mode, bool) {
	switch Mode(token) {
	case ModeCool, ModeHeat, ModeAuto, ModeFan, ModeDry:
		return Mode(token), true
	}
	return "", false
}

func ParseFanSpeed(token string) (FanSpeed, bool) {
	switch FanSpeed(token) {
	case FanAuto, FanLow, FanMedium, FanHigh:
		return FanSpeed(token), true
	}
	return "", false
}

// Request is a raw command as it arrives from the transport. Mode and Fan
// are unvalidated tokens; Temperature may be out of range.
type Request struct {
	Power       bool
	Temperature int
	Mode        string
	Fan         string
}

// Command is a normalized request: temperature in range, mode and fan
// resolved to known values. Built fresh for every accepted request.
type Command struct {
	Power       bool
	Temperature int
	Mode        Mode
	Fan         FanSpeed
}

// DeviceState is the last command the unit accepted plus the time it was
// physically transmitted. It is the only state the controller carries.
type DeviceState struct {
	Power           bool
	Temperature     int
	Mode            Mode
	Fan             FanSpeed
	LastTransmitted time.Time
}

func (s DeviceState) Command() Command {
	return Command{
		Power:       s.Power,
		Temperature: s.Temperature,
		Mode:        s.Mode,
		Fan:         s.Fan,
	}
}

func (s DeviceState) PowerString() string {
	if s.Power {
		return "on"
	}
	return "off"
}

type GPIOPin struct {
	Number     int
	ActiveHigh bool
}
