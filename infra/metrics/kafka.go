package metrics

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"

	coremetrics "github.com/kilianp07/traveldelay/core/metrics"
)

// KafkaConfig configures the Kafka sink.
type KafkaConfig struct {
	// Brokers accepts a list or comma separated entries.
	Brokers []string `json:"brokers"`
	Topic   string   `json:"topic"`
}

func (c *KafkaConfig) brokerList() []string {
	var out []string
	for _, b := range c.Brokers {
		for _, part := range strings.Split(b, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// KafkaSink publishes prediction events to a Kafka topic.
type KafkaSink struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaSink creates a synchronous producer for the configured brokers.
func NewKafkaSink(cfg KafkaConfig) (*KafkaSink, error) {
	brokers := cfg.brokerList()
	if len(brokers) == 0 {
		return nil, errors.New("kafka sink: brokers are required")
	}
	if cfg.Topic == "" {
		cfg.Topic = "delay-predictions"
	}
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Retry.Backoff = 100 * time.Millisecond
	config.Producer.Return.Successes = true
	config.Net.DialTimeout = 10 * time.Second
	config.Net.ReadTimeout = 10 * time.Second
	config.Net.WriteTimeout = 10 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return NewKafkaSinkWithProducer(producer, cfg.Topic), nil
}

// NewKafkaSinkWithProducer wraps an existing producer.
func NewKafkaSinkWithProducer(p sarama.SyncProducer, topic string) *KafkaSink {
	return &KafkaSink{producer: p, topic: topic}
}

// RecordPrediction sends the event keyed by request ID.
func (k *KafkaSink) RecordPrediction(ev coremetrics.PredictionEvent) error {
	msg, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pm := &sarama.ProducerMessage{
		Topic: k.topic,
		Value: sarama.ByteEncoder(msg),
	}
	if ev.RequestID != "" {
		pm.Key = sarama.StringEncoder(ev.RequestID)
	}
	if _, _, err := k.producer.SendMessage(pm); err != nil {
		return fmt.Errorf("kafka send to %s: %w", k.topic, err)
	}
	return nil
}

// Close closes the producer.
func (k *KafkaSink) Close() error {
	return k.producer.Close()
}
