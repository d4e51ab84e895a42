package service

import (
	"time"

	"github.com/Astemirdum/circulation-service/circulation/internal/model"
	"github.com/Astemirdum/circulation-service/pkg/kafka"
)

// EventPublisher receives circulation events after the mutation has been committed.
// Publish must not block.
type EventPublisher interface {
	Publish(event kafka.CirculationEvent)
}

type noopPublisher struct{}

func (noopPublisher) Publish(kafka.CirculationEvent) {}

func (s *Service) emit(eventType kafka.EventType, loan model.LoanRecord, at time.Time) {
	event := kafka.CirculationEvent{
		Timestamp:  at,
		EventType:  eventType,
		LoanID:     loan.LoanID,
		ItemID:     loan.ItemID,
		BorrowerID: loan.BorrowerID,
		Category:   loan.Category,
		RenewCount: loan.RenewCount,
	}
	if loan.Status != model.LoanReturned {
		due := loan.DueAt
		event.DueAt = &due
	}
	s.events.Publish(event)
}
