package metrics

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	coremetrics "github.com/kilianp07/traveldelay/core/metrics"
	"github.com/kilianp07/traveldelay/infra/logger"
)

// MQTTConfig defines the broker connection and topics of the MQTT sink.
type MQTTConfig struct {
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	Topic       string `json:"topic"`
	StatusTopic string `json:"status_topic"`
	QoS         byte   `json:"qos"`
	Retained    bool   `json:"retained"`
	TimeoutMS   int    `json:"timeout_ms"`
}

// SetDefaults fills the optional fields.
func (c *MQTTConfig) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "traveldelay-" + uuid.NewString()
	}
	if c.Topic == "" {
		c.Topic = "traveldelay/predictions"
	}
	if c.StatusTopic == "" {
		c.StatusTopic = "traveldelay/status"
	}
	if c.TimeoutMS <= 0 {
		c.TimeoutMS = 5000
	}
}

// Validate checks the required fields.
func (c MQTTConfig) Validate() error {
	if c.Broker == "" {
		return errors.New("mqtt sink: broker is required")
	}
	if c.QoS > 2 {
		return fmt.Errorf("mqtt sink: invalid qos %d", c.QoS)
	}
	return nil
}

type pahoClient interface {
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// MQTTSink publishes prediction events as JSON messages.
type MQTTSink struct {
	cli         pahoClient
	topic       string
	statusTopic string
	qos         byte
	retained    bool
	timeout     time.Duration
	log         logger.Logger
}

// NewMQTTSink connects to the broker described by cfg.
func NewMQTTSink(cfg MQTTConfig) (*MQTTSink, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.New("mqtt-sink")
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	c := newMQTTClient(opts)
	if err := waitToken(c.Connect(), timeout); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	log.Infof("connected to %s", cfg.Broker)
	return &MQTTSink{
		cli:         c,
		topic:       cfg.Topic,
		statusTopic: cfg.StatusTopic,
		qos:         cfg.QoS,
		retained:    cfg.Retained,
		timeout:     timeout,
		log:         log,
	}, nil
}

// RecordPrediction publishes the event on the prediction topic.
func (s *MQTTSink) RecordPrediction(ev coremetrics.PredictionEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return waitToken(s.cli.Publish(s.topic, s.qos, s.retained, payload), s.timeout)
}

// RecordModelStatus publishes a retained status message.
func (s *MQTTSink) RecordModelStatus(estimator string, loaded bool) error {
	payload, err := json.Marshal(struct {
		Estimator   string `json:"estimator"`
		ModelLoaded bool   `json:"model_loaded"`
	}{estimator, loaded})
	if err != nil {
		return err
	}
	return waitToken(s.cli.Publish(s.statusTopic, s.qos, true, payload), s.timeout)
}

// Close disconnects from the broker.
func (s *MQTTSink) Close() error {
	s.cli.Disconnect(250)
	return nil
}

func waitToken(t paho.Token, timeout time.Duration) error {
	if !t.WaitTimeout(timeout) {
		return errors.New("timeout waiting for broker")
	}
	return t.Error()
}
