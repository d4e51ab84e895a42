package kafka

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	CirculationEventsTopic    = "circulation.events"
	CirculationReturnsTopic   = "circulation.returns"
	CirculationConsumerGroup  = "circulation"
	defaultConsumeRetryPeriod = 5 * time.Second
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct {
	Addrs         []string `yaml:"addrs" envconfig:"KAFKA_ADDRS"`
	EventsTopic   string   `yaml:"eventsTopic" envconfig:"KAFKA_EVENTS_TOPIC" default:"circulation.events"`
	ReturnsTopic  string   `yaml:"returnsTopic" envconfig:"KAFKA_RETURNS_TOPIC" default:"circulation.returns"`
	ConsumerGroup string   `yaml:"consumerGroup" envconfig:"KAFKA_CONSUMER_GROUP" default:"circulation"`
}

func (c Config) Enabled() bool {
	return len(c.Addrs) > 0
}

type EventType string

const (
	EventCheckout    EventType = "CHECKOUT"
	EventCheckin     EventType = "CHECKIN"
	EventRenew       EventType = "RENEW"
	EventForceReturn EventType = "FORCE_RETURN"
	EventForceRenew  EventType = "FORCE_RENEW"
	EventOverdue     EventType = "OVERDUE"
	EventWithdraw    EventType = "WITHDRAW"
)

// CirculationEvent is the statistics record emitted after a committed engine mutation.
type CirculationEvent struct {
	Timestamp  time.Time  `json:"timestamp"`
	EventType  EventType  `json:"eventType"`
	LoanID     string     `json:"loanId,omitempty"`
	ItemID     string     `json:"itemId"`
	BorrowerID string     `json:"borrowerId,omitempty"`
	Category   string     `json:"category,omitempty"`
	DueAt      *time.Time `json:"dueAt,omitempty"`
	RenewCount int        `json:"renewCount,omitempty"`
}

// ReturnRequest is a checkin delivered by a remote client through the returns topic.
type ReturnRequest struct {
	LoanID     string `json:"loanId"`
	BorrowerID string `json:"borrowerId"`
}

func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true
	defaultCfg.Producer.Retry.Max = 3

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}

func NewConsumer(cfg Config, group string) (sarama.ConsumerGroup, error) {
	defaultCfg := sarama.NewConfig()
	defaultCfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	defaultCfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}

	return sarama.NewConsumerGroup(cfg.Addrs, group, defaultCfg)
}

// Consume runs the consumer group session loop until ctx is done.
func Consume(ctx context.Context, group sarama.ConsumerGroup, handler sarama.ConsumerGroupHandler, log *zap.Logger, topics ...string) error {
	for {
		if err := group.Consume(ctx, topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			log.Error("kafka consume", zap.Error(err), zap.Strings("topics", topics))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(defaultConsumeRetryPeriod):
			}
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}
