// Package led drives the RGB status LED. Colors come in as 8-bit channels
// for wire compatibility with the led/command payload, but each channel is
// quantized to on/off at the pin.
package led

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ferecasa/ac-controller/internal/model"
	"github.com/ferecasa/ac-controller/internal/pinctrl"
)

type Color struct {
	R, G, B uint8
}

var (
	Off    = Color{0, 0, 0}
	Red    = Color{255, 0, 0}
	Green  = Color{0, 255, 0}
	Blue   = Color{0, 0, 255}
	Yellow = Color{255, 255, 0}
)

const blinkInterval = 150 * time.Millisecond

var safeMode bool

// SetSafeMode disables pin writes package-wide. Color changes are still
// tracked so the display is correct once safe mode is lifted.
func SetSafeMode(enabled bool) {
	safeMode = enabled
}

// setPin and readLevel are stubbed by tests.
var (
	setPin    = pinctrl.SetPin
	readLevel = pinctrl.ReadLevel
)

// LED owns three GPIO channels. An active manual override (from
// led/command) freezes the temperature display until it is released.
type LED struct {
	mu       sync.Mutex
	red      model.GPIOPin
	green    model.GPIOPin
	blue     model.GPIOPin
	current  Color
	override bool
}

func New(red, green, blue model.GPIOPin) *LED {
	return &LED{red: red, green: green, blue: blue}
}

// Init forces all channels off so the LED starts dark regardless of what
// the pins held before the process came up, then reads the levels back to
// catch miswired or unconfigured pins early.
func (l *LED) Init() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.apply(Off); err != nil {
		return err
	}
	l.verifyDark()
	return nil
}

// verifyDark reads each channel back after the off write. A mismatch is a
// wiring or overlay problem worth flagging at startup, not a fatal error.
func (l *LED) verifyDark() {
	if safeMode {
		return
	}
	for _, pin := range []model.GPIOPin{l.red, l.green, l.blue} {
		level, err := readLevel(pin.Number)
		if err != nil {
			log.Warn().Err(err).Int("pin", pin.Number).Msg("Failed to read back LED pin level")
			continue
		}
		if level == pin.ActiveHigh {
			log.Warn().Int("pin", pin.Number).Msg("LED pin still lit after init, check wiring")
		}
	}
}

// Set lights the LED unless a manual override is active.
func (l *LED) Set(c Color) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.override {
		return nil
	}
	return l.apply(c)
}

// Override pins the LED to a fixed color. enabled=false releases the
// override and turns the LED off until the next temperature update.
func (l *LED) Override(c Color, enabled bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.override = enabled
	if !enabled {
		c = Off
	}
	return l.apply(c)
}

// ShowTemperature maps a room temperature onto the status color bands:
// below 20 blue, below 25 green, below 30 yellow, else red.
func (l *LED) ShowTemperature(t float64) {
	var c Color
	switch {
	case t < 20:
		c = Blue
	case t < 25:
		c = Green
	case t < 30:
		c = Yellow
	default:
		c = Red
	}
	if err := l.Set(c); err != nil {
		log.Warn().Err(err).Msg("Failed to set LED temperature color")
	}
}

// ShowSensorFailure turns the LED red.
func (l *LED) ShowSensorFailure() {
	if err := l.Set(Red); err != nil {
		log.Warn().Err(err).Msg("Failed to set LED failure color")
	}
}

// Feedback blinks green for an accepted command or red for a rejected or
// failed one, then restores the previous display. A manual override freezes
// the display, so the blink is skipped while one is active. Blocks for
// under a second; callers that care run it on their own goroutine.
func (l *LED) Feedback(ok bool) {
	c := Red
	if ok {
		c = Green
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.override {
		return
	}
	prev := l.current
	for i := 0; i < 2; i++ {
		l.blinkStep(c)
		time.Sleep(blinkInterval)
		l.blinkStep(Off)
		time.Sleep(blinkInterval)
	}
	l.blinkStep(prev)
}

func (l *LED) blinkStep(c Color) {
	if err := l.apply(c); err != nil {
		log.Warn().Err(err).Msg("Failed to drive LED blink")
	}
}

// apply writes all three channels. Callers hold l.mu.
func (l *LED) apply(c Color) error {
	if safeMode {
		l.current = c
		return nil
	}

	channels := []struct {
		pin model.GPIOPin
		on  bool
	}{
		{l.red, c.R >= 128},
		{l.green, c.G >= 128},
		{l.blue, c.B >= 128},
	}

	for _, ch := range channels {
		drive := "dl"
		if ch.on == ch.pin.ActiveHigh {
			drive = "dh"
		}
		if err := setPin(ch.pin.Number, "op", "pn", drive); err != nil {
			return err
		}
	}

	l.current = c
	return nil
}
