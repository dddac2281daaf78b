// Package controller owns the accept-or-reject decision for AC commands:
// it normalizes requests, enforces the minimum spacing the unit's receiver
// needs between transmissions, and tracks the last state the unit accepted.
package controller

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ferecasa/ac-controller/internal/midea"
	"github.com/ferecasa/ac-controller/internal/model"
)

// MinCommandSpacing is how long the unit needs between two commands. Trains
// arriving closer together are dropped by real receivers, so the controller
// refuses to send them at all.
const MinCommandSpacing = 2000 * time.Millisecond

// ErrRateLimited is returned when a command arrives before the minimum
// spacing has elapsed. The command is dropped, not queued; the caller may
// resubmit later.
var ErrRateLimited = errors.New("minimum spacing between commands not elapsed")

// Transmitter physically emits a pulse train. Durations alternate mark and
// space starting with a mark; the call blocks until the train is out.
type Transmitter interface {
	Transmit(durations []time.Duration, carrierHz int) error
}

// now is swapped out by tests that exercise the rate limiter.
var now = time.Now

// Controller drives one AC unit through one transmitter. Safe for
// concurrent use: the guard-check-then-transmit sequence runs under a
// single lock, so exactly one command is in flight at a time.
type Controller struct {
	mu     sync.Mutex
	source midea.Source
	tx     Transmitter
	state  model.DeviceState
}

// New builds a controller around a frame source and a transmitter. The
// initial device state matches the factory state of the unit: off, 24°C,
// cool, fan auto.
func New(source midea.Source, tx Transmitter) *Controller {
	return &Controller{
		source: source,
		tx:     tx,
		state: model.DeviceState{
			Power:       false,
			Temperature: 24,
			Mode:        model.ModeCool,
			Fan:         model.FanAuto,
		},
	}
}

// State returns a copy of the last accepted state.
func (c *Controller) State() model.DeviceState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Send normalizes and transmits a request. On success it returns the new
// device state, with LastTransmitted stamped. On rejection or transmit
// failure the prior state is untouched; a failed emission must not advance
// the cooldown window.
func (c *Controller) Send(req model.Request) (model.DeviceState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := now()
	if !c.state.LastTransmitted.IsZero() && ts.Sub(c.state.LastTransmitted) < MinCommandSpacing {
		log.Debug().
			Time("last_transmitted", c.state.LastTransmitted).
			Msg("Command rejected by rate limiter")
		return c.state, ErrRateLimited
	}

	cmd := c.normalize(req)

	train, err := c.source.Train(cmd)
	if err != nil {
		return c.state, fmt.Errorf("encode command: %w", err)
	}

	if err := c.tx.Transmit(train.Durations(), train.CarrierHz); err != nil {
		return c.state, fmt.Errorf("transmit command: %w", err)
	}

	c.state = model.DeviceState{
		Power:           cmd.Power,
		Temperature:     cmd.Temperature,
		Mode:            cmd.Mode,
		Fan:             cmd.Fan,
		LastTransmitted: ts,
	}

	log.Info().
		Str("power", c.state.PowerString()).
		Int("temperature", c.state.Temperature).
		Str("mode", string(c.state.Mode)).
		Str("fan", string(c.state.Fan)).
		Msg("AC command transmitted")

	return c.state, nil
}

// normalize clamps the temperature and resolves mode/fan tokens. An
// unrecognized token keeps the field currently in effect; that is the
// protocol's degradation policy, not an error.
func (c *Controller) normalize(req model.Request) model.Command {
	cmd := model.Command{
		Power:       req.Power,
		Temperature: midea.ClampTemp(req.Temperature),
		Mode:        c.state.Mode,
		Fan:         c.state.Fan,
	}

	if mode, ok := model.ParseMode(req.Mode); ok {
		cmd.Mode = mode
	} else if req.Mode != "" {
		log.Warn().Str("mode", req.Mode).Msg("Unknown mode token, keeping current mode")
	}

	if fan, ok := model.ParseFanSpeed(req.Fan); ok {
		cmd.Fan = fan
	} else if req.Fan != "" {
		log.Warn().Str("fan", req.Fan).Msg("Unknown fan token, keeping current fan speed")
	}

	return cmd
}
