package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/rs/zerolog"
)

type GPIO struct {
	LEDRed   *int `json:"led_red"`
	LEDGreen *int `json:"led_green"`
	LEDBlue  *int `json:"led_blue"`
}

type Config struct {
	ConfigFile string
	LogLevel   zerolog.Level
	SafeMode   bool

	DeviceID   string `json:"device_id"`
	MQTTBroker string `json:"mqtt_broker"`

	IRDevice string `json:"ir_device"`
	// CaptureFile switches the encoder to prerecorded pulse trains when
	// set. Empty means the computed Midea encoding.
	CaptureFile string `json:"capture_file"`

	SensorDevice             string `json:"sensor_device"`
	SampleIntervalSeconds    int    `json:"sample_interval_seconds"`
	AvgSamples               int    `json:"avg_samples"`
	HeartbeatIntervalSeconds int    `json:"heartbeat_interval_seconds"`

	DBFile string `json:"db_file"`

	LEDActiveHigh bool `json:"led_active_high"`
	GPIO          GPIO `json:"gpio"`

	EnableDatadog bool     `json:"enable_datadog"`
	DDAgentAddr   string   `json:"dd_agent_addr"`
	DDNamespace   string   `json:"dd_namespace"`
	DDTags        []string `json:"dd_tags"`
}

func Load() Config {
	var cfg Config
	var logLevel string

	flag.StringVar(&cfg.ConfigFile, "config-file", "config.json", "Path to controller config file")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&cfg.SafeMode, "safe-mode", false, "Disable all hardware writes")
	flag.Parse()

	cfg.LogLevel = parseLogLevel(logLevel)

	file, err := os.Open(cfg.ConfigFile)
	if err != nil {
		panic("Failed to load config file: " + err.Error())
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		panic("Failed to parse config file: " + err.Error())
	}

	cfg.applyDefaults()
	cfg.validate()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.DeviceID == "" {
		cfg.DeviceID = "room_01"
	}
	if cfg.MQTTBroker == "" {
		cfg.MQTTBroker = "tcp://localhost:1883"
	}
	if cfg.IRDevice == "" {
		cfg.IRDevice = "/dev/lirc0"
	}
	if cfg.SensorDevice == "" {
		cfg.SensorDevice = "/sys/bus/iio/devices/iio:device0"
	}
	if cfg.SampleIntervalSeconds == 0 {
		cfg.SampleIntervalSeconds = 30
	}
	if cfg.AvgSamples == 0 {
		cfg.AvgSamples = 10
	}
	if cfg.HeartbeatIntervalSeconds == 0 {
		cfg.HeartbeatIntervalSeconds = 60
	}
	if cfg.DBFile == "" {
		cfg.DBFile = "data/ac-controller.db"
	}
}

func parseLogLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (cfg *Config) validate() {
	var (
		missingFields []string
		usedPins      = map[int]string{}
		conflicts     []string
	)

	v := reflect.ValueOf(cfg.GPIO)
	t := reflect.TypeOf(cfg.GPIO)

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldName := t.Field(i).Tag.Get("json")

		if field.IsNil() {
			missingFields = append(missingFields, "gpio."+fieldName)
			continue
		}

		pin := int(field.Elem().Int())
		if other, exists := usedPins[pin]; exists {
			conflicts = append(conflicts, fmt.Sprintf("gpio.%s and gpio.%s both use pin %d", fieldName, other, pin))
		} else {
			usedPins[pin] = fieldName
		}
	}

	if len(missingFields) > 0 {
		panic("Missing required GPIO config fields: " + strings.Join(missingFields, ", "))
	}
	if len(conflicts) > 0 {
		panic("Conflicting GPIO pins: " + strings.Join(conflicts, ", "))
	}
}
