package metrics

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/traveldelay/core/metrics"
)

func TestKafkaSink_RecordPrediction(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var ev coremetrics.PredictionEvent
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		if ev.RequestID != "r1" || ev.Outcome != coremetrics.OutcomeSuccess {
			return errors.New("unexpected event")
		}
		return nil
	})
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	sink := NewKafkaSinkWithProducer(producer, "predictions")
	require.NoError(t, sink.RecordPrediction(coremetrics.PredictionEvent{
		RequestID: "r1", Estimator: "formula", Outcome: coremetrics.OutcomeSuccess, DelayMinutes: 3,
	}))
	err := sink.RecordPrediction(coremetrics.PredictionEvent{RequestID: "r2"})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, sink.Close())
}

func TestKafkaConfig_BrokerList(t *testing.T) {
	c := KafkaConfig{Brokers: []string{"a:9092, b:9092", "", "c:9092"}}
	assert.Equal(t, []string{"a:9092", "b:9092", "c:9092"}, c.brokerList())

	_, err := NewKafkaSink(KafkaConfig{})
	assert.Error(t, err)
}
