package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ferecasa/ac-controller/db"
	"github.com/ferecasa/ac-controller/internal/config"
	"github.com/ferecasa/ac-controller/internal/controller"
	"github.com/ferecasa/ac-controller/internal/datadog"
	"github.com/ferecasa/ac-controller/internal/env"
	"github.com/ferecasa/ac-controller/internal/irtx"
	"github.com/ferecasa/ac-controller/internal/led"
	"github.com/ferecasa/ac-controller/internal/logging"
	"github.com/ferecasa/ac-controller/internal/midea"
	"github.com/ferecasa/ac-controller/internal/model"
	"github.com/ferecasa/ac-controller/internal/mqtt"
	"github.com/ferecasa/ac-controller/internal/sensor"
	"github.com/ferecasa/ac-controller/system/shutdown"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.LogLevel)
	env.Cfg = &cfg
	env.StartTime = time.Now()

	log.Info().
		Str("device_id", cfg.DeviceID).
		Str("broker", cfg.MQTTBroker).
		Str("ir_device", cfg.IRDevice).
		Msg("Starting AC controller")

	irtx.SetSafeMode(cfg.SafeMode)
	led.SetSafeMode(cfg.SafeMode)
	if cfg.SafeMode {
		log.Warn().Msg("SAFE MODE ENABLED: IR transmit and LED writes are disabled")
	}

	datadog.InitMetrics()

	dbConn, err := db.Open(cfg.DBFile)
	if err != nil {
		log.Warn().Err(err).Str("db_file", cfg.DBFile).Msg("Local log unavailable, continuing without it")
		dbConn = nil
	}

	statusLED := led.New(
		model.GPIOPin{Number: *cfg.GPIO.LEDRed, ActiveHigh: cfg.LEDActiveHigh},
		model.GPIOPin{Number: *cfg.GPIO.LEDGreen, ActiveHigh: cfg.LEDActiveHigh},
		model.GPIOPin{Number: *cfg.GPIO.LEDBlue, ActiveHigh: cfg.LEDActiveHigh},
	)
	if err := statusLED.Init(); err != nil {
		log.Warn().Err(err).Msg("Failed to initialize status LED")
	}

	var source midea.Source = midea.ComputedSource{}
	if cfg.CaptureFile != "" {
		literal, err := midea.LoadLiteralSource(cfg.CaptureFile)
		if err != nil {
			log.Fatal().Err(err).Str("capture_file", cfg.CaptureFile).Msg("Failed to load capture file")
		}
		source = literal
		log.Info().Str("capture_file", cfg.CaptureFile).Msg("Using prerecorded pulse trains")
	}

	ctrl := controller.New(source, irtx.NewDevice(cfg.IRDevice))

	h := &handler{
		ctrl:     ctrl,
		led:      statusLED,
		db:       dbConn,
		deviceID: cfg.DeviceID,
	}
	client := mqtt.New(mqtt.Config{BrokerURL: cfg.MQTTBroker, DeviceID: cfg.DeviceID}, h)

	sensors := sensor.NewService(
		cfg.SensorDevice,
		time.Duration(cfg.SampleIntervalSeconds)*time.Second,
		cfg.AvgSamples,
		&sensorSink{client: client, db: dbConn, led: statusLED, deviceID: cfg.DeviceID},
	)
	h.sensors = sensors

	if err := client.Connect(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MQTT broker")
	}

	done := make(chan struct{})
	go sensors.Run(done)
	go heartbeat(client, done)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("Signal received, shutting down")
	close(done)
	client.Disconnect()
	if dbConn != nil {
		dbConn.Close()
	}
	shutdown.Shutdown()
}

func heartbeat(client *mqtt.Client, done <-chan struct{}) {
	interval := time.Duration(env.Cfg.HeartbeatIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			client.PublishHeartbeat(time.Since(env.StartTime), freeMemBytes())
		}
	}
}
