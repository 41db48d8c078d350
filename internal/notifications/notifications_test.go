package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"cinematickets/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReceipt() *Receipt {
	return NewReceipt(7, "GBP", []ReceiptLine{
		{Type: "ADULT", Quantity: 1, Price: 20},
		{Type: "CHILD", Quantity: 2, Price: 20},
	}, 3, 40, 3)
}

func TestReceiptRoundTrip(t *testing.T) {
	receipt := sampleReceipt()

	data, err := receipt.ToJSON()
	require.NoError(t, err)

	decoded, err := ReceiptFromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, receipt.ID, decoded.ID)
	assert.Equal(t, receipt.Lines, decoded.Lines)
	assert.Equal(t, "7", decoded.GetPartitionKey())
}

func TestKafkaReceiptProducer_Publish(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	receipt := sampleReceipt()

	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		decoded, err := ReceiptFromJSON(val)
		if err != nil {
			return err
		}
		if decoded.TotalPrice != 40 {
			return errors.New("unexpected total price")
		}
		return nil
	})

	producer := NewKafkaReceiptProducerWithClient(mock, DefaultKafkaProducerConfig())
	require.NoError(t, producer.PublishReceipt(context.Background(), receipt))
	require.NoError(t, producer.Close())
}

func TestKafkaReceiptProducer_PublishFailure(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	producer := NewKafkaReceiptProducerWithClient(mock, DefaultKafkaProducerConfig())
	err := producer.PublishReceipt(context.Background(), sampleReceipt())
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, producer.Close())
}

func TestProducerSaramaConfig(t *testing.T) {
	cfg := DefaultKafkaProducerConfig().SaramaConfig()
	assert.True(t, cfg.Producer.Idempotent)
	assert.Equal(t, 1, cfg.Net.MaxOpenRequests)
	assert.NoError(t, cfg.Validate())
}

func newTestConsumer(handle ReceiptHandler) *ReceiptConsumer {
	cfg := DefaultConsumerConfig()
	cfg.RetryBackoffDuration = time.Millisecond
	return &ReceiptConsumer{config: cfg, handle: handle, log: logger.GetDefault()}
}

func TestProcessMessage(t *testing.T) {
	receipt := sampleReceipt()
	data, err := receipt.ToJSON()
	require.NoError(t, err)

	var got *Receipt
	c := newTestConsumer(func(ctx context.Context, r *Receipt) error {
		got = r
		return nil
	})

	require.NoError(t, c.processMessage(context.Background(), &sarama.ConsumerMessage{Value: data}))
	require.NotNil(t, got)
	assert.Equal(t, receipt.AccountID, got.AccountID)
}

func TestProcessMessage_RetriesThenGivesUp(t *testing.T) {
	data, err := sampleReceipt().ToJSON()
	require.NoError(t, err)

	calls := 0
	c := newTestConsumer(func(ctx context.Context, r *Receipt) error {
		calls++
		return errors.New("downstream unavailable")
	})

	err = c.processMessage(context.Background(), &sarama.ConsumerMessage{Value: data})
	assert.Error(t, err)
	assert.Equal(t, c.config.MaxRetries+1, calls)
}

func TestProcessMessage_RecoversAfterRetry(t *testing.T) {
	data, err := sampleReceipt().ToJSON()
	require.NoError(t, err)

	calls := 0
	c := newTestConsumer(func(ctx context.Context, r *Receipt) error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, c.processMessage(context.Background(), &sarama.ConsumerMessage{Value: data}))
	assert.Equal(t, 2, calls)
}

func TestProcessMessage_RejectsGarbage(t *testing.T) {
	c := newTestConsumer(LogReceipt(logger.GetDefault()))
	err := c.processMessage(context.Background(), &sarama.ConsumerMessage{Value: []byte("not json")})
	assert.Error(t, err)
}
