package kafka_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Astemirdum/circulation-service/pkg/circuit_breaker"
	"github.com/Astemirdum/circulation-service/pkg/kafka"
	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublisher_Run(t *testing.T) {
	t.Parallel()
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event kafka.CirculationEvent
		if err := kafka.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.EventType != kafka.EventCheckout || event.LoanID != "L1" || event.ItemID != "B1" {
			return errors.New("unexpected event")
		}
		return nil
	})

	cb := circuit_breaker.New(10, time.Minute, 0.5, 1)
	p := kafka.NewPublisher(sp, kafka.CirculationEventsTopic, cb, zap.NewNop())
	p.Publish(kafka.CirculationEvent{
		Timestamp:  time.Now(),
		EventType:  kafka.EventCheckout,
		LoanID:     "L1",
		ItemID:     "B1",
		BorrowerID: "U1",
		Category:   "student",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, p.Run(ctx))
	require.NoError(t, p.Close())
}

func TestPublisher_OpenBreakerDropsEvents(t *testing.T) {
	t.Parallel()
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	cb := circuit_breaker.New(2, time.Minute, 0.5, 1)
	p := kafka.NewPublisher(sp, kafka.CirculationEventsTopic, cb, zap.NewNop())
	p.Publish(kafka.CirculationEvent{EventType: kafka.EventCheckin, ItemID: "B1"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, p.Run(ctx))
	require.Equal(t, circuit_breaker.Open, cb.State())

	p.Publish(kafka.CirculationEvent{EventType: kafka.EventCheckin, ItemID: "B2"})
	require.NoError(t, p.Run(ctx))
	require.NoError(t, p.Close())
}

func TestEventCodec(t *testing.T) {
	t.Parallel()
	due := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	data, err := kafka.Marshal(kafka.CirculationEvent{EventType: kafka.EventRenew, ItemID: "B1", DueAt: &due, RenewCount: 1})
	require.NoError(t, err)
	require.JSONEq(t, `{"timestamp":"0001-01-01T00:00:00Z","eventType":"RENEW","itemId":"B1","dueAt":"2024-03-01T12:00:00Z","renewCount":1}`, string(data))

	var req kafka.ReturnRequest
	require.NoError(t, kafka.Unmarshal([]byte(`{"loanId":"L1","borrowerId":"U1"}`), &req))
	require.Equal(t, kafka.ReturnRequest{LoanID: "L1", BorrowerID: "U1"}, req)
}
