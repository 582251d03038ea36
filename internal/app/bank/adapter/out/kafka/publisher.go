package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/bank/usecase"
)

// DefaultTopic 交易事件預設的 topic
const DefaultTopic = "transaction_recorded"

// messageWriter 是 kafka.Writer 用到的部分，方便測試替換
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher 將交易事件寫入 Kafka
type Publisher struct {
	writer messageWriter
}

// NewPublisher 建立 Kafka 事件發布者
//
// 參數:
//
//	brokers: Kafka broker 地址
//	topic: 寫入的 topic，空字串時使用 DefaultTopic
func NewPublisher(brokers []string, topic string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Publish 發布一筆交易事件，以交易類型作為 message key
func (p *Publisher) Publish(ctx context.Context, event domain.TransactionRecorded) error {
	msg, err := encodeEvent(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func encodeEvent(event domain.TransactionRecorded) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.Kind),
		Value: data,
		Time:  event.OccurredAt,
	}, nil
}

var _ usecase.EventPublisher = (*Publisher)(nil)
