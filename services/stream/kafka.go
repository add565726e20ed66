// Package streamsvc publishes domain events to a message broker so other
// school systems (payroll exports, notification fan-out) can consume them.
package streamsvc

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/trezcool/shule/core"
)

type kafkaPublisher struct {
	writer *kafka.Writer
	logger core.Logger
}

var _ core.EventPublisher = (*kafkaPublisher)(nil)

func NewKafkaPublisher(brokers []string, logger core.Logger) *kafkaPublisher {
	return &kafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Balancer: &kafka.LeastBytes{},
		},
		logger: logger,
	}
}

func (p *kafkaPublisher) Publish(events ...core.Event) {
	for _, evt := range events {
		evt := evt
		go func() {
			data, err := json.Marshal(evt.Payload)
			if err != nil {
				p.logger.Error("marshalling event payload", err, map[string]interface{}{"topic": evt.Topic})
				return
			}
			err = p.writer.WriteMessages(context.Background(), kafka.Message{
				Topic: evt.Topic,
				Value: data,
			})
			if err != nil {
				p.logger.Error("publishing event", err, map[string]interface{}{"topic": evt.Topic})
			}
		}()
	}
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}
