package handler

import (
	"context"
	"sync"
	"time"

	"github.com/Astemirdum/circulation-service/circulation/internal/errs"
	"github.com/Astemirdum/circulation-service/pkg/kafka"
	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type checkinFunc func(ctx context.Context, loanID, borrowerID string) error

const (
	defaultRetryDelay    = 100 * time.Millisecond
	defaultMaxRetryDelay = 10 * time.Second
)

// Consumer applies return requests from the returns topic through checkin.
// Offsets are marked in order: a message that fails on storage is retried
// in place until it goes through or the session ends.
type Consumer struct {
	checkin       checkinFunc
	log           *zap.Logger
	ready         chan struct{}
	once          sync.Once
	retryDelay    time.Duration
	maxRetryDelay time.Duration
}

type ConsumerOption func(*Consumer)

// WithRetryDelay sets the backoff between attempts on a failing message.
func WithRetryDelay(delay, maxDelay time.Duration) ConsumerOption {
	return func(c *Consumer) {
		if delay > 0 {
			c.retryDelay = delay
		}
		if maxDelay >= c.retryDelay {
			c.maxRetryDelay = maxDelay
		}
	}
}

func NewConsumer(checkin checkinFunc, log *zap.Logger, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		checkin:       checkin,
		log:           log.Named("consumer"),
		ready:         make(chan struct{}),
		retryDelay:    defaultRetryDelay,
		maxRetryDelay: defaultMaxRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ready is closed once the first session has been set up.
func (consumer *Consumer) Ready() <-chan struct{} {
	return consumer.ready
}

func (consumer *Consumer) Setup(sarama.ConsumerGroupSession) error {
	consumer.once.Do(func() { close(consumer.ready) })
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited.
func (consumer *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				consumer.log.Warn("message channel was closed")
				return nil
			}
			if !consumer.apply(session.Context(), message) {
				// session is over; the message stays uncommitted
				return nil
			}
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

// apply retries message until it may be acknowledged. It returns false when ctx is done first.
func (consumer *Consumer) apply(ctx context.Context, message *sarama.ConsumerMessage) bool {
	delay := consumer.retryDelay
	for attempt := 1; ; attempt++ {
		if consumer.handle(ctx, message) {
			return true
		}
		consumer.log.Warn("retrying return request", zap.Int64("offset", message.Offset),
			zap.Int("attempt", attempt), zap.Duration("delay", delay))
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
		delay = min(delay*2, consumer.maxRetryDelay)
	}
}

// handle reports whether the message may be acknowledged.
// Storage failures are not acknowledged.
func (consumer *Consumer) handle(ctx context.Context, message *sarama.ConsumerMessage) bool {
	var req kafka.ReturnRequest
	if err := kafka.Unmarshal(message.Value, &req); err != nil {
		consumer.log.Error("bad return request", zap.Error(err), zap.ByteString("value", message.Value))
		return true
	}

	err := consumer.checkin(ctx, req.LoanID, req.BorrowerID)
	switch kind := errs.KindOf(err); {
	case err == nil:
		consumer.log.Debug("return applied", zap.String("loan", req.LoanID),
			zap.Time("timestamp", message.Timestamp), zap.String("topic", message.Topic))
		return true
	case kind == errs.KindAlreadyReturned:
		consumer.log.Debug("return redelivered", zap.String("loan", req.LoanID))
		return true
	case kind == errs.KindInternal || kind == errs.KindConcurrencyConflict:
		consumer.log.Error("consumer.checkin", zap.String("loan", req.LoanID), zap.Error(err))
		return false
	default:
		consumer.log.Warn("return rejected", zap.String("loan", req.LoanID),
			zap.String("kind", string(kind)), zap.Error(err))
		return true
	}
}
