package kafka

import (
	"context"

	"github.com/Astemirdum/circulation-service/pkg/circuit_breaker"
	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

const defaultPublisherBuffer = 1024

// Publisher ships circulation events to Kafka in the background.
// Publish never blocks: when the buffer is full the event is dropped.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	cb       circuit_breaker.CircuitBreaker
	events   chan CirculationEvent
	log      *zap.Logger
}

func NewPublisher(producer sarama.SyncProducer, topic string, cb circuit_breaker.CircuitBreaker, log *zap.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		cb:       cb,
		events:   make(chan CirculationEvent, defaultPublisherBuffer),
		log:      log.Named("publisher"),
	}
}

func (p *Publisher) Publish(event CirculationEvent) {
	select {
	case p.events <- event:
	default:
		p.log.Warn("event buffer full, dropping", zap.String("type", string(event.EventType)), zap.String("loanId", event.LoanID))
	}
}

// Run drains the buffer until ctx is done, then flushes what is left.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case event := <-p.events:
			p.send(event)
		case <-ctx.Done():
			for {
				select {
				case event := <-p.events:
					p.send(event)
				default:
					return nil
				}
			}
		}
	}
}

func (p *Publisher) send(event CirculationEvent) {
	data, err := Marshal(event)
	if err != nil {
		p.log.Error("marshal event", zap.Error(err))
		return
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.ItemID),
		Value: sarama.ByteEncoder(data),
	}
	err = p.cb.Call(func() error {
		_, _, err := p.producer.SendMessage(msg)
		return err
	})
	if err != nil {
		p.log.Warn("publish event", zap.Error(err), zap.String("type", string(event.EventType)))
	}
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}
