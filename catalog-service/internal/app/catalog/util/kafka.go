package util

import (
	"context"
	"fmt"
	"time"

	"apicatalogo/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

// messageWriter - часть kafka.Writer, которой пользуется producer
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer обертка над Kafka writer для отправки событий о товарах
type KafkaProducer struct {
	writer messageWriter
	topic  string
}

// NewKafkaProducer создает producer для топика событий товаров
// brokers - список брокеров Kafka в формате ["host:port"]
func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{}, // один товар - одна партиция, порядок событий сохраняется
		// Запись синхронная: BatchTimeout ограничивает задержку ответа на запрос
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaProducer{writer: writer, topic: topic}
}

// PublishMessage отправляет сообщение в Kafka
// key - ProductID, value - JSON события ProductEvent
func (p *KafkaProducer) PublishMessage(ctx context.Context, key string, value []byte) error {
	message := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	}

	timer := metrics.NewKafkaProduceTimer(serviceName, p.topic)
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		timer.Error()
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	timer.Success()

	return nil
}

// Close закрывает Kafka writer и освобождает ресурсы
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
