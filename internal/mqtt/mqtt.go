// Package mqtt connects the controller to the broker: command topics in,
// retained status and sensor telemetry out. Topic layout matches the
// backend's expectations, rooted at the device id (e.g. room_01/ac/command).
package mqtt

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/ferecasa/ac-controller/internal/model"
)

// Handler receives decoded commands. The client holds an explicit
// reference; nothing routes through package globals, so independent
// clients and controllers can coexist in one process.
type Handler interface {
	// ACCommand executes a normalized-on-arrival request and returns the
	// resulting device state. An error means the command was rejected or
	// the transmission failed; no confirmation is published for it.
	ACCommand(req model.Request) (model.DeviceState, error)

	LEDCommand(r, g, b uint8, enabled bool)
	ConfigUpdate(sampleInterval time.Duration, avgSamples int)
	Reboot()
}

type Config struct {
	BrokerURL string
	DeviceID  string
}

type Client struct {
	paho     paho.Client
	deviceID string
	handler  Handler
}

func New(cfg Config, handler Handler) *Client {
	c := &Client{deviceID: cfg.DeviceID, handler: handler}

	opts := paho.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.DeviceID).
		SetKeepAlive(60 * time.Second).
		SetConnectTimeout(15 * time.Second).
		SetAutoReconnect(true).
		SetWill(c.topic("system/status"), "offline", 1, true).
		SetOnConnectHandler(func(paho.Client) {
			c.onConnect()
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warn().Err(err).Msg("MQTT connection lost")
		})

	c.paho = paho.NewClient(opts)
	return c
}

func (c *Client) Connect() error {
	token := c.paho.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to broker: %w", err)
	}
	return nil
}

func (c *Client) Disconnect() {
	c.publish("system/status", "offline", true)
	c.paho.Disconnect(250)
}

func (c *Client) topic(suffix string) string {
	return c.deviceID + "/" + suffix
}

// onConnect also runs on every reconnect, re-establishing subscriptions
// and announcing presence.
func (c *Client) onConnect() {
	log.Info().Str("device_id", c.deviceID).Msg("Connected to MQTT broker")

	subs := map[string]paho.MessageHandler{
		"ac/command":    c.handleACCommand,
		"led/command":   c.handleLEDCommand,
		"config/update": c.handleConfigUpdate,
		"system/reboot": c.handleReboot,
	}
	for suffix, handler := range subs {
		topic := c.topic(suffix)
		if token := c.paho.Subscribe(topic, 1, handler); token.Wait() && token.Error() != nil {
			log.Error().Err(token.Error()).Str("topic", topic).Msg("Subscribe failed")
		}
	}

	c.publish("system/status", "online", true)
}

func (c *Client) handleACCommand(_ paho.Client, msg paho.Message) {
	req, err := parseACCommand(msg.Payload())
	if err != nil {
		log.Warn().Err(err).Str("topic", msg.Topic()).Msg("Dropping malformed AC command")
		return
	}

	st, err := c.handler.ACCommand(req)
	if err != nil {
		log.Warn().Err(err).Msg("AC command not executed")
		return
	}

	c.PublishACStatus(st)
}

func (c *Client) handleLEDCommand(_ paho.Client, msg paho.Message) {
	p := ledCommandPayload{Enabled: true}
	if err := json.Unmarshal(msg.Payload(), &p); err != nil {
		log.Warn().Err(err).Str("topic", msg.Topic()).Msg("Dropping malformed LED command")
		return
	}
	c.handler.LEDCommand(p.R, p.G, p.B, p.Enabled)
}

func (c *Client) handleConfigUpdate(_ paho.Client, msg paho.Message) {
	p := configUpdatePayload{SampleInterval: 30, AvgSamples: 10}
	if err := json.Unmarshal(msg.Payload(), &p); err != nil {
		log.Warn().Err(err).Str("topic", msg.Topic()).Msg("Dropping malformed config update")
		return
	}
	c.handler.ConfigUpdate(time.Duration(p.SampleInterval)*time.Second, p.AvgSamples)
}

func (c *Client) handleReboot(_ paho.Client, msg paho.Message) {
	var p struct {
		Confirm bool `json:"confirm"`
	}
	if err := json.Unmarshal(msg.Payload(), &p); err != nil || !p.Confirm {
		log.Warn().Str("topic", msg.Topic()).Msg("Ignoring unconfirmed reboot request")
		return
	}
	log.Info().Msg("Rebooting on remote command")
	c.handler.Reboot()
}

// PublishACStatus publishes the confirmed device state, retained so late
// subscribers see the last accepted command.
func (c *Client) PublishACStatus(st model.DeviceState) {
	c.publishJSON("ac/status", map[string]any{
		"state":       st.PowerString(),
		"temperature": st.Temperature,
		"mode":        string(st.Mode),
		"fan_speed":   string(st.Fan),
		"confirmed":   true,
		"timestamp":   st.LastTransmitted.Unix(),
	}, true)
}

func (c *Client) PublishSensorReading(temp, hum float64, ts time.Time) {
	c.publishJSON("sensor/raw", map[string]any{
		"temperature": round1(temp),
		"humidity":    round1(hum),
		"timestamp":   ts.Unix(),
	}, false)
}

func (c *Client) PublishSensorAverage(temp, hum float64, samples int, ts time.Time) {
	c.publishJSON("sensor/avg", map[string]any{
		"temp":      round1(temp),
		"hum":       round1(hum),
		"samples":   samples,
		"timestamp": ts.Unix(),
	}, false)
}

func (c *Client) PublishHeartbeat(uptime time.Duration, freeMem uint64) {
	c.publishJSON("system/heartbeat", map[string]any{
		"uptime":   int64(uptime.Seconds()),
		"free_mem": freeMem,
	}, false)
}

func (c *Client) publishJSON(suffix string, payload any, retained bool) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("topic", c.topic(suffix)).Msg("Failed to marshal payload")
		return
	}
	c.publish(suffix, string(data), retained)
}

func (c *Client) publish(suffix, payload string, retained bool) {
	if !c.paho.IsConnectionOpen() {
		return
	}
	topic := c.topic(suffix)
	if token := c.paho.Publish(topic, 1, retained, payload); token.Wait() && token.Error() != nil {
		log.Warn().Err(token.Error()).Str("topic", topic).Msg("Publish failed")
	}
}

type acCommandPayload struct {
	Action      string `json:"action"`
	Temperature *int   `json:"temperature"`
	Mode        string `json:"mode"`
	FanSpeed    string `json:"fan_speed"`
}

type ledCommandPayload struct {
	R       uint8 `json:"r"`
	G       uint8 `json:"g"`
	B       uint8 `json:"b"`
	Enabled bool  `json:"enabled"`
}

type configUpdatePayload struct {
	SampleInterval int `json:"sample_interval"`
	AvgSamples     int `json:"avg_samples"`
}

// parseACCommand applies the wire defaults the firmware used: 24°C, cool,
// fan auto. Unknown mode/fan tokens pass through untouched; deciding what
// they fall back to is the controller's job, not the transport's.
func parseACCommand(data []byte) (model.Request, error) {
	var p acCommandPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Request{}, err
	}

	req := model.Request{
		Power:       p.Action == "on",
		Temperature: 24,
		Mode:        "cool",
		Fan:         "auto",
	}
	if p.Temperature != nil {
		req.Temperature = *p.Temperature
	}
	if p.Mode != "" {
		req.Mode = p.Mode
	}
	if p.FanSpeed != "" {
		req.Fan = p.FanSpeed
	}
	return req, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
