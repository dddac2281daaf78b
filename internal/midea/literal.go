package midea

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ferecasa/ac-controller/internal/model"
)

// LiteralSource replays prerecorded pulse trains instead of computing them.
// Useful for units whose protocol was captured with a receiver rather than
// decoded; only the power state selects a recording, the other command
// fields are tracked but not expressible.
type LiteralSource struct {
	on  PulseTrain
	off PulseTrain
}

// captureFile is the on-disk shape of a recording: microsecond durations,
// alternating mark/space starting with a mark.
type captureFile struct {
	CarrierHz int      `json:"carrier_hz"`
	On        []uint32 `json:"on"`
	Off       []uint32 `json:"off"`
}

// LoadLiteralSource reads a capture file produced by an IR receiver dump.
func LoadLiteralSource(path string) (*LiteralSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read capture file: %w", err)
	}

	var cf captureFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse capture file %s: %w", path, err)
	}
	if cf.CarrierHz <= 0 {
		return nil, fmt.Errorf("capture file %s: carrier_hz must be positive", path)
	}

	on, err := pairsFromMicros(cf.On)
	if err != nil {
		return nil, fmt.Errorf("capture file %s, \"on\" train: %w", path, err)
	}
	off, err := pairsFromMicros(cf.Off)
	if err != nil {
		return nil, fmt.Errorf("capture file %s, \"off\" train: %w", path, err)
	}

	return &LiteralSource{
		on:  PulseTrain{Pairs: on, CarrierHz: cf.CarrierHz},
		off: PulseTrain{Pairs: off, CarrierHz: cf.CarrierHz},
	}, nil
}

func pairsFromMicros(micros []uint32) ([]Pair, error) {
	if len(micros) == 0 {
		return nil, fmt.Errorf("empty train")
	}
	// Captures typically end on the stop mark; pad the missing space so the
	// train stays in whole pairs.
	if len(micros)%2 != 0 {
		micros = append(micros[:len(micros):len(micros)], 0)
	}

	pairs := make([]Pair, 0, len(micros)/2)
	for i := 0; i < len(micros); i += 2 {
		pairs = append(pairs, Pair{
			time.Duration(micros[i]) * time.Microsecond,
			time.Duration(micros[i+1]) * time.Microsecond,
		})
	}
	return pairs, nil
}

func (s *LiteralSource) Train(cmd model.Command) (PulseTrain, error) {
	if cmd.Power {
		return s.on, nil
	}
	return s.off, nil
}
