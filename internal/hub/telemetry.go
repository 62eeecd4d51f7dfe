package hub

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/kb9vy/nettrxd/internal/config"
	"github.com/kb9vy/nettrxd/internal/logging"
)

// Telemetry publishes floor-ownership transitions to an MQTT broker,
// grounded on the teacher's mqtt_publisher.go connection setup (retained
// auto-reconnect client, random client ID, JSON payload).
type Telemetry struct {
	client mqtt.Client
	topic  string
	log    *mqttLogger
}

type floorEvent struct {
	Timestamp int64  `json:"timestamp"`
	Session   string `json:"session"`
	Holding   bool   `json:"holding"`
}

type mqttLogger struct {
	l interface {
		Infof(string, ...interface{})
		Warnf(string, ...interface{})
	}
}

// NewTelemetry connects to the configured broker, or returns nil (a legal,
// no-op *Telemetry receiver) if MQTT publishing is disabled.
func NewTelemetry(cfg *config.MQTTConfig) *Telemetry {
	log := logging.For("mqtt")
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "nettrxd_" + randomHex(8)
	}
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(10 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) { log.Info("connected to broker", "broker", cfg.Broker) })
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) { log.Warn("connection lost", "err", err) })

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Warn("failed to connect to broker, telemetry disabled", "broker", cfg.Broker, "err", token.Error())
		return nil
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "nettrxd/floor"
	}
	return &Telemetry{client: client, topic: topic}
}

// PublishFloor reports a floor acquire/release, a no-op on a nil receiver
// so call sites don't need to check whether MQTT is configured.
func (t *Telemetry) PublishFloor(session string, holding bool) {
	if t == nil {
		return
	}
	payload, err := json.Marshal(floorEvent{
		Timestamp: time.Now().Unix(),
		Session:   session,
		Holding:   holding,
	})
	if err != nil {
		return
	}
	t.client.Publish(t.topic, 0, false, payload)
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
