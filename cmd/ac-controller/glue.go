package main

import (
	"database/sql"
	"errors"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ferecasa/ac-controller/db"
	"github.com/ferecasa/ac-controller/internal/controller"
	"github.com/ferecasa/ac-controller/internal/datadog"
	"github.com/ferecasa/ac-controller/internal/led"
	"github.com/ferecasa/ac-controller/internal/model"
	"github.com/ferecasa/ac-controller/internal/sensor"
	"github.com/ferecasa/ac-controller/system/shutdown"
)

// handler wires broker commands into the controller, the LED and the local
// log. It is the mqtt.Handler the client invokes directly.
type handler struct {
	ctrl     *controller.Controller
	led      *led.LED
	db       *sql.DB
	sensors  *sensor.Service
	deviceID string
}

func (h *handler) ACCommand(req model.Request) (model.DeviceState, error) {
	st, err := h.ctrl.Send(req)
	if err != nil {
		if errors.Is(err, controller.ErrRateLimited) {
			datadog.Count("ac.reject", 1)
		} else {
			datadog.Count("ac.transmit_error", 1)
		}
		go h.led.Feedback(false)
		return st, err
	}

	datadog.Count("ac.transmit", 1)
	go h.led.Feedback(true)

	if h.db != nil {
		if err := db.InsertACEvent(h.db, h.deviceID, st, "mqtt"); err != nil {
			log.Warn().Err(err).Msg("Failed to log AC event")
		}
	}

	return st, nil
}

func (h *handler) LEDCommand(r, g, b uint8, enabled bool) {
	if err := h.led.Override(led.Color{R: r, G: g, B: b}, enabled); err != nil {
		log.Warn().Err(err).Msg("Failed to apply LED command")
	}
}

func (h *handler) ConfigUpdate(sampleInterval time.Duration, avgSamples int) {
	h.sensors.Configure(sampleInterval, avgSamples)
}

func (h *handler) Reboot() {
	shutdown.Shutdown()
}

// sensorSink fans a sampling outcome out to MQTT, metrics, the LED and the
// local log.
type sensorSink struct {
	client   publisher
	db       *sql.DB
	led      *led.LED
	deviceID string
}

type publisher interface {
	PublishSensorReading(temp, hum float64, ts time.Time)
	PublishSensorAverage(temp, hum float64, samples int, ts time.Time)
}

func (s *sensorSink) Reading(r sensor.Reading) {
	datadog.Gauge("room.temperature", r.Temperature)
	datadog.Gauge("room.humidity", r.Humidity)
	s.led.ShowTemperature(r.Temperature)
	s.client.PublishSensorReading(r.Temperature, r.Humidity, r.Timestamp)

	if s.db != nil {
		if err := db.InsertMeasurement(s.db, s.deviceID, r.Temperature, r.Humidity, r.Timestamp); err != nil {
			log.Warn().Err(err).Msg("Failed to log measurement")
		}
	}
}

func (s *sensorSink) Average(avg sensor.Reading, samples int) {
	s.client.PublishSensorAverage(avg.Temperature, avg.Humidity, samples, avg.Timestamp)

	if s.db != nil {
		if err := db.InsertAverage(s.db, s.deviceID, avg.Temperature, avg.Humidity, samples, avg.Timestamp); err != nil {
			log.Warn().Err(err).Msg("Failed to log average")
		}
	}
}

func (s *sensorSink) Failure(consecutive int) {
	s.led.ShowSensorFailure()
}

func freeMemBytes() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapIdle - m.HeapReleased
}
