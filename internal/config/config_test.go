package config

import (
	"testing"
)

func intPtr(n int) *int {
	return &n
}

func TestValidate_GPIOValid(t *testing.T) {
	cfg := Config{
		GPIO: GPIO{
			LEDRed:   intPtr(16),
			LEDGreen: intPtr(17),
			LEDBlue:  intPtr(18),
		},
	}

	cfg.validate() // should not panic
}

func TestValidate_GPIO_Missing(t *testing.T) {
	cfg := Config{
		GPIO: GPIO{
			LEDRed:   intPtr(16),
			LEDGreen: nil, // Missing
			LEDBlue:  intPtr(18),
		},
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic due to missing GPIO config, but got none")
		}
	}()

	cfg.validate()
}

func TestValidate_GPIO_Conflict(t *testing.T) {
	cfg := Config{
		GPIO: GPIO{
			LEDRed:   intPtr(16),
			LEDGreen: intPtr(16), // Conflict
			LEDBlue:  intPtr(18),
		},
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic due to conflicting pin numbers, but got none")
		}
	}()

	cfg.validate()
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.applyDefaults()

	if cfg.DeviceID != "room_01" {
		t.Errorf("expected default device id room_01, got %q", cfg.DeviceID)
	}
	if cfg.IRDevice != "/dev/lirc0" {
		t.Errorf("expected default IR device /dev/lirc0, got %q", cfg.IRDevice)
	}
	if cfg.SampleIntervalSeconds != 30 || cfg.AvgSamples != 10 {
		t.Errorf("unexpected sampling defaults: %d/%d", cfg.SampleIntervalSeconds, cfg.AvgSamples)
	}
	if cfg.HeartbeatIntervalSeconds != 60 {
		t.Errorf("expected heartbeat default 60, got %d", cfg.HeartbeatIntervalSeconds)
	}
}

func TestApplyDefaults_DoesNotOverrideExplicit(t *testing.T) {
	cfg := Config{DeviceID: "bedroom", SampleIntervalSeconds: 10}
	cfg.applyDefaults()

	if cfg.DeviceID != "bedroom" {
		t.Errorf("explicit device id was overridden: %q", cfg.DeviceID)
	}
	if cfg.SampleIntervalSeconds != 10 {
		t.Errorf("explicit sample interval was overridden: %d", cfg.SampleIntervalSeconds)
	}
}
