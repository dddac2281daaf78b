// Package sensor samples the room's DHT22 through the kernel iio driver
// and maintains the rolling averages the backend consumes.
package sensor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// A sensor that fails this many reads in a row is probably disconnected.
const maxConsecutiveFailures = 5

type Reading struct {
	Temperature float64
	Humidity    float64
	Timestamp   time.Time
}

// Sink receives sampling outcomes. One implementation glues the service to
// MQTT, the local log, metrics and the status LED.
type Sink interface {
	Reading(r Reading)
	Average(avg Reading, samples int)
	Failure(consecutive int)
}

// readFile is stubbed by tests.
var readFile = os.ReadFile

// Service polls the sensor at a fixed interval, buffering samples until the
// buffer fills, then reports the average and starts over. Interval and
// buffer size are adjustable at runtime through config/update.
type Service struct {
	devicePath string
	sink       Sink

	mu           sync.Mutex
	interval     time.Duration
	temps        *Ring
	hums         *Ring
	failures     int
	reconfigured chan struct{}
}

func NewService(devicePath string, interval time.Duration, samples int, sink Sink) *Service {
	return &Service{
		devicePath:   devicePath,
		sink:         sink,
		interval:     interval,
		temps:        NewRing(samples),
		hums:         NewRing(samples),
		reconfigured: make(chan struct{}, 1),
	}
}

// Configure swaps the sampling interval and buffer size. Buffered samples
// are dropped so an average never mixes window sizes.
func (s *Service) Configure(interval time.Duration, samples int) {
	s.mu.Lock()
	if interval > 0 {
		s.interval = interval
	}
	if samples > 0 && samples != s.temps.Cap() {
		s.temps = NewRing(samples)
		s.hums = NewRing(samples)
	} else {
		s.temps.Clear()
		s.hums.Clear()
	}
	s.mu.Unlock()

	select {
	case s.reconfigured <- struct{}{}:
	default:
	}

	log.Info().
		Dur("interval", interval).
		Int("samples", samples).
		Msg("Sensor sampling reconfigured")
}

// Run samples until done is closed.
func (s *Service) Run(done <-chan struct{}) {
	log.Info().
		Str("device", s.devicePath).
		Dur("interval", s.currentInterval()).
		Msg("Starting sensor service")

	for {
		s.Sample()

		select {
		case <-done:
			return
		case <-s.reconfigured:
		case <-time.After(s.currentInterval()):
		}
	}
}

func (s *Service) currentInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Sample takes one reading and routes it to the sink.
func (s *Service) Sample() {
	r, err := s.read()
	if err != nil {
		s.mu.Lock()
		s.failures++
		failures := s.failures
		s.mu.Unlock()

		log.Warn().Err(err).Int("consecutive", failures).Msg("Sensor read failed")
		if failures == maxConsecutiveFailures {
			log.Error().Msg("Sensor is probably disconnected")
		}
		s.sink.Failure(failures)
		return
	}

	s.mu.Lock()
	s.failures = 0
	s.temps.Push(r.Temperature)
	s.hums.Push(r.Humidity)

	var avg Reading
	var samples int
	if s.temps.Full() {
		samples = s.temps.Len()
		avg = Reading{
			Temperature: s.temps.Average(),
			Humidity:    s.hums.Average(),
			Timestamp:   r.Timestamp,
		}
		s.temps.Clear()
		s.hums.Clear()
	}
	s.mu.Unlock()

	s.sink.Reading(r)
	if samples > 0 {
		s.sink.Average(avg, samples)
	}
}

// read parses the iio sysfs files the dht11 kernel driver exposes:
// millidegrees and milli-percent.
func (s *Service) read() (Reading, error) {
	temp, err := readMilli(filepath.Join(s.devicePath, "in_temp_input"))
	if err != nil {
		return Reading{}, fmt.Errorf("read temperature: %w", err)
	}
	hum, err := readMilli(filepath.Join(s.devicePath, "in_humidityrelative_input"))
	if err != nil {
		return Reading{}, fmt.Errorf("read humidity: %w", err)
	}

	if temp < -40 || temp > 80 || hum < 0 || hum > 100 {
		return Reading{}, fmt.Errorf("reading out of range: %.1f°C %.1f%%", temp, hum)
	}

	return Reading{Temperature: temp, Humidity: hum, Timestamp: time.Now()}, nil
}

func readMilli(path string) (float64, error) {
	data, err := readFile(path)
	if err != nil {
		return 0, err
	}
	milli, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("malformed value in %s: %w", path, err)
	}
	return float64(milli) / 1000.0, nil
}
