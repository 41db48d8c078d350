package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cinematickets/pkg/logger"

	"github.com/IBM/sarama"
)

// ReceiptProducer publishes purchase receipts
type ReceiptProducer interface {
	PublishReceipt(ctx context.Context, receipt *Receipt) error
	Close() error
}

// KafkaProducerConfig contains configuration for the Kafka receipt producer
type KafkaProducerConfig struct {
	Brokers          []string
	ReceiptTopic     string
	RetryMax         int
	TimeoutMs        int
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:          []string{"localhost:9092"},
		ReceiptTopic:     "purchase-receipts",
		RetryMax:         3,
		TimeoutMs:        10000,             // 10 seconds
		RequiredAcks:     sarama.WaitForAll, // Wait for all in-sync replicas
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000, // 1MB
	}
}

// SaramaConfig translates the producer configuration into a sarama config
func (c *KafkaProducerConfig) SaramaConfig() *sarama.Config {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = c.RequiredAcks
	saramaConfig.Producer.Compression = c.CompressionType
	saramaConfig.Producer.Retry.Max = c.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(c.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = c.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = c.MaxMessageBytes

	// Idempotent producers need a single in-flight request and a recent protocol version
	if c.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
		saramaConfig.Version = sarama.V2_1_0_0
	}

	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner
	return saramaConfig
}

// KafkaReceiptProducer handles publishing receipts to Kafka
type KafkaReceiptProducer struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
	log      *logger.Logger
}

// NewKafkaReceiptProducer connects a sync producer to the configured brokers
func NewKafkaReceiptProducer(config *KafkaProducerConfig) (*KafkaReceiptProducer, error) {
	producer, err := sarama.NewSyncProducer(config.Brokers, config.SaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return NewKafkaReceiptProducerWithClient(producer, config), nil
}

// NewKafkaReceiptProducerWithClient wraps an existing sync producer
func NewKafkaReceiptProducerWithClient(producer sarama.SyncProducer, config *KafkaProducerConfig) *KafkaReceiptProducer {
	return &KafkaReceiptProducer{
		producer: producer,
		config:   config,
		log:      logger.GetDefault(),
	}
}

// PublishReceipt publishes a single receipt to Kafka
func (p *KafkaReceiptProducer) PublishReceipt(ctx context.Context, receipt *Receipt) error {
	messageBytes, err := receipt.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal receipt: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.config.ReceiptTopic,
		Key:       sarama.StringEncoder(receipt.GetPartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   p.createHeaders(receipt),
		Timestamp: receipt.CreatedAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send receipt to Kafka: %w", err)
	}

	p.log.DebugContext(ctx, "Receipt published",
		slog.String("topic", p.config.ReceiptTopic),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
		slog.String("receipt_id", receipt.ID.String()),
	)
	return nil
}

// createHeaders creates Kafka headers for receipts
func (p *KafkaReceiptProducer) createHeaders(receipt *Receipt) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("receipt_id"), Value: []byte(receipt.ID.String())},
		{Key: []byte("account_id"), Value: []byte(receipt.GetPartitionKey())},
		{Key: []byte("version"), Value: []byte("1.0")},
		{Key: []byte("producer"), Value: []byte("cinematickets-purchases")},
		{Key: []byte("created_at"), Value: []byte(receipt.CreatedAt.Format(time.RFC3339))},
	}
}

// Close closes the Kafka producer
func (p *KafkaReceiptProducer) Close() error {
	if p.producer != nil {
		if err := p.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
	}
	return nil
}
