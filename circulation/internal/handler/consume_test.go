package handler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Astemirdum/circulation-service/circulation/internal/errs"
	"github.com/Astemirdum/circulation-service/circulation/internal/handler"
	"github.com/IBM/sarama"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSession struct {
	sarama.ConsumerGroupSession
	ctx    context.Context
	mu     sync.Mutex
	marked []int64
}

func (s *fakeSession) Context() context.Context { return s.ctx }

func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	messages chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func newClaim(values ...string) *fakeClaim {
	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage, len(values))}
	for i, v := range values {
		claim.messages <- &sarama.ConsumerMessage{Offset: int64(i), Value: []byte(v), Topic: "circulation.returns"}
	}
	close(claim.messages)
	return claim
}

// checkins replays a scripted sequence of results per loan; the last result repeats.
type checkins struct {
	mu      sync.Mutex
	results map[string][]error
	calls   []string
}

func (c *checkins) checkin(_ context.Context, loanID, borrowerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, loanID+"/"+borrowerID)
	results := c.results[loanID]
	if len(results) == 0 {
		return nil
	}
	err := results[0]
	if len(results) > 1 {
		c.results[loanID] = results[1:]
	}
	return err
}

func TestConsumer_ConsumeClaim(t *testing.T) {
	t.Parallel()
	fake := &checkins{results: map[string][]error{
		"L2": {errs.ErrAlreadyReturned},
		"L3": {errs.ErrNotLoanOwner},
		"L4": {errors.New("connection reset"), errors.New("connection reset"), nil},
		"L5": {errors.Wrap(errs.ErrConcurrencyConflict, "UpdateLoan"), nil},
	}}
	consumer := handler.NewConsumer(fake.checkin, zap.NewNop(), handler.WithRetryDelay(time.Millisecond, 2*time.Millisecond))

	session := &fakeSession{ctx: context.Background()}
	require.NoError(t, consumer.Setup(session))
	require.NoError(t, consumer.Setup(session))
	<-consumer.Ready()

	claim := newClaim(
		`{"loanId":"L1","borrowerId":"U1"}`,
		`{"loanId":"L2","borrowerId":"U1"}`,
		`{"loanId":"L3","borrowerId":"U2"}`,
		`{"loanId":"L4","borrowerId":"U1"}`,
		`{"loanId":"L5","borrowerId":"U1"}`,
		`not json`,
	)
	require.NoError(t, consumer.ConsumeClaim(session, claim))
	require.NoError(t, consumer.Cleanup(session))

	require.Equal(t, []string{
		"L1/U1", "L2/U1", "L3/U2",
		"L4/U1", "L4/U1", "L4/U1",
		"L5/U1", "L5/U1",
	}, fake.calls)
	require.Equal(t, []int64{0, 1, 2, 3, 4, 5}, session.marked)
}

func TestConsumer_ConsumeClaim_NothingMarkedPastFailure(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var attempts int
	checkin := func(_ context.Context, loanID, _ string) error {
		if loanID != "L2" {
			return nil
		}
		attempts++
		if attempts == 3 {
			cancel()
		}
		return errors.New("connection reset")
	}
	consumer := handler.NewConsumer(checkin, zap.NewNop(), handler.WithRetryDelay(time.Millisecond, time.Millisecond))

	session := &fakeSession{ctx: ctx}
	claim := newClaim(
		`{"loanId":"L1","borrowerId":"U1"}`,
		`{"loanId":"L2","borrowerId":"U1"}`,
		`{"loanId":"L3","borrowerId":"U1"}`,
	)
	require.NoError(t, consumer.ConsumeClaim(session, claim))

	require.Equal(t, 3, attempts)
	require.Equal(t, []int64{0}, session.marked)
}
