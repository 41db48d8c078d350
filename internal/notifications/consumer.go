package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cinematickets/pkg/logger"

	"github.com/IBM/sarama"
)

// ReceiptHandler processes one decoded receipt
type ReceiptHandler func(ctx context.Context, receipt *Receipt) error

type ConsumerConfig struct {
	Brokers              []string
	GroupID              string
	Topics               []string
	SessionTimeoutMs     int
	HeartbeatMs          int
	RetryBackoffMs       int
	MaxProcessingTime    time.Duration
	OffsetOldest         bool
	MaxRetries           int
	RetryBackoffDuration time.Duration
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:              []string{"localhost:9092"},
		GroupID:              "cinematickets-receipt-workers",
		Topics:               []string{"purchase-receipts"},
		SessionTimeoutMs:     30000,
		HeartbeatMs:          3000,
		RetryBackoffMs:       100,
		MaxProcessingTime:    time.Minute,
		OffsetOldest:         false,
		MaxRetries:           3,
		RetryBackoffDuration: time.Second,
	}
}

type ReceiptConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	handle        ReceiptHandler
	log           *logger.Logger
	wg            sync.WaitGroup
}

// NewReceiptConsumer joins the configured consumer group. A nil handler logs each receipt.
func NewReceiptConsumer(config *ConsumerConfig, handle ReceiptHandler) (*ReceiptConsumer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(config.SessionTimeoutMs) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(config.HeartbeatMs) * time.Millisecond
	saramaConfig.Consumer.Retry.Backoff = time.Duration(config.RetryBackoffMs) * time.Millisecond
	saramaConfig.Consumer.MaxProcessingTime = config.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = 1 * time.Second

	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	c := &ReceiptConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		handle:        handle,
		log:           logger.GetDefault(),
	}
	if c.handle == nil {
		c.handle = LogReceipt(c.log)
	}
	return c, nil
}

// Start runs numWorkers consume loops until ctx is cancelled
func (c *ReceiptConsumer) Start(ctx context.Context, numWorkers int) {
	c.log.Info("Starting receipt consumers",
		slog.Int("workers", numWorkers),
		slog.Any("topics", c.config.Topics),
	)

	go c.handleErrors()

	for i := 0; i < numWorkers; i++ {
		c.wg.Add(1)
		go func(workerID int) {
			defer c.wg.Done()
			c.runWorker(ctx, workerID)
		}(i)
	}
}

func (c *ReceiptConsumer) runWorker(ctx context.Context, workerID int) {
	handler := &consumerGroupHandler{consumer: c, workerID: workerID}

	for {
		if ctx.Err() != nil {
			c.log.Info("Receipt worker shutting down", slog.Int("worker", workerID))
			return
		}
		if err := c.consumerGroup.Consume(ctx, c.config.Topics, handler); err != nil {
			c.log.Error("Receipt worker consume error", slog.Int("worker", workerID), slog.Any("error", err))
			time.Sleep(time.Second)
		}
	}
}

func (c *ReceiptConsumer) handleErrors() {
	for err := range c.consumerGroup.Errors() {
		c.log.Error("Receipt consumer group error", slog.Any("error", err))
	}
}

// Stop closes the consumer group and waits for the workers to exit.
// Cancel the context passed to Start before calling Stop.
func (c *ReceiptConsumer) Stop() error {
	err := c.consumerGroup.Close()
	c.wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

// processMessage decodes a message and hands it to the handler, retrying with exponential backoff
func (c *ReceiptConsumer) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	receipt, err := ReceiptFromJSON(message.Value)
	if err != nil {
		return fmt.Errorf("failed to unmarshal receipt: %w", err)
	}

	backoff := c.config.RetryBackoffDuration
	for attempt := 0; ; attempt++ {
		err = c.handle(ctx, receipt)
		if err == nil || attempt >= c.config.MaxRetries {
			return err
		}

		select {
		case <-time.After(backoff * time.Duration(1<<attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

type consumerGroupHandler struct {
	consumer *ReceiptConsumer
	workerID int
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return nil
			}

			if err := h.consumer.processMessage(session.Context(), message); err != nil {
				// Poison messages are logged and committed so the partition keeps moving
				h.consumer.log.Error("Failed to process receipt",
					slog.Int("worker", h.workerID),
					slog.String("topic", message.Topic),
					slog.Int("partition", int(message.Partition)),
					slog.Int64("offset", message.Offset),
					slog.Any("error", err),
				)
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

// LogReceipt returns a handler that writes the purchase summary to the log
func LogReceipt(l *logger.Logger) ReceiptHandler {
	return func(ctx context.Context, receipt *Receipt) error {
		l.InfoContext(ctx, "Purchase receipt",
			slog.String("receipt_id", receipt.ID.String()),
			slog.Int64("account_id", receipt.AccountID),
			slog.String("total_price", fmt.Sprintf("%d %s", receipt.TotalPrice, receipt.Currency)),
			slog.Int("reserved_seats", receipt.TotalSeats),
			slog.Int("tickets", receipt.TotalTickets),
		)
		return nil
	}
}
