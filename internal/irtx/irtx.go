// Package irtx is the transmission sink: it pushes pulse trains out through
// a LIRC character device (/dev/lirc0 on a stock Raspberry Pi with the
// gpio-ir-tx overlay).
package irtx

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

// LIRC_SET_SEND_CARRIER from include/uapi/linux/lirc.h.
const lircSetSendCarrier = 0x40046913

var safeMode bool

// SetSafeMode disables hardware writes system-wide. Transmit still
// validates and logs, but nothing reaches the emitter.
func SetSafeMode(enabled bool) {
	safeMode = enabled
}

// Device writes raw trains to a lirc-dev node.
type Device struct {
	path string
}

func NewDevice(path string) *Device {
	return &Device{path: path}
}

// sendRaw performs the actual device I/O; tests stub it.
var sendRaw = func(path string, carrierHz int, buf []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := unix.IoctlSetPointerInt(int(f.Fd()), lircSetSendCarrier, carrierHz); err != nil {
		return fmt.Errorf("set carrier to %d Hz: %w", carrierHz, err)
	}

	// One write per train: lirc-dev treats each write as a complete
	// transmission and blocks until the last sample has been emitted.
	if _, err := f.Write(buf); err != nil {
		return err
	}
	return nil
}

// Transmit emits the train and blocks until it is fully sent. Durations
// must alternate mark/space starting with a mark and come in whole pairs;
// zero-length trailing spaces are padding and are stripped before the
// device write, since lirc-dev wants a sequence that starts and ends on a
// pulse.
func (d *Device) Transmit(durations []time.Duration, carrierHz int) error {
	if carrierHz <= 0 {
		return fmt.Errorf("carrier frequency must be positive, got %d", carrierHz)
	}
	if len(durations) == 0 || len(durations)%2 != 0 {
		return fmt.Errorf("pulse train must be a non-empty sequence of mark/space pairs, got %d durations", len(durations))
	}

	samples := make([]uint32, 0, len(durations))
	for i, dur := range durations {
		if dur < 0 {
			return fmt.Errorf("negative duration at index %d", i)
		}
		samples = append(samples, uint32(dur/time.Microsecond))
	}
	for len(samples) > 0 && samples[len(samples)-1] == 0 {
		samples = samples[:len(samples)-1]
	}
	if len(samples) == 0 {
		return fmt.Errorf("pulse train carries no marks")
	}
	// A trailing space is silence; drop it so the write ends on a mark.
	if len(samples)%2 == 0 {
		samples = samples[:len(samples)-1]
	}

	if safeMode {
		log.Info().
			Int("samples", len(samples)).
			Int("carrier_hz", carrierHz).
			Msg("SAFE MODE - skipping IR transmission")
		return nil
	}

	// lirc-dev consumes native-order u32 microseconds; the Pi is
	// little-endian.
	buf := make([]byte, 4*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[4*i:], s)
	}

	if err := sendRaw(d.path, carrierHz, buf); err != nil {
		return fmt.Errorf("write %s: %w", d.path, err)
	}

	log.Debug().
		Str("device", d.path).
		Int("samples", len(samples)).
		Msg("Pulse train transmitted")

	return nil
}
