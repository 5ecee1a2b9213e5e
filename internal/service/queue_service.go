package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/queue-service/internal/clock"
	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/events"
	"github.com/spec-kit/queue-service/internal/repository"
)

// QueueService is the facade over the queue engine. It converts repository
// failures into the typed error taxonomy, derives wait times, and fires the
// post-commit side effects (print, display). The storage commit is
// authoritative; side effects are best-effort and never roll a ticket back.
type QueueService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	clock      clock.Clock
	logger     *zap.Logger
}

// QueueDependencies bundles collaborators for the queue service.
type QueueDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Clock      clock.Clock
	Logger     *zap.Logger
}

// CalledTicket is the derived result of calling the next ticket.
type CalledTicket struct {
	TicketNumber int64
	CalledAt     time.Time
	WaitTime     time.Duration
}

// NewQueueService constructs the service.
func NewQueueService(deps QueueDependencies) *QueueService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &QueueService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		clock:      clk,
		logger:     deps.Logger,
	}
}

// IssueTicket creates the next sequential ticket. The ticket is durable once
// this returns; printing happens asynchronously via the dispatcher.
func (s *QueueService) IssueTicket(ctx context.Context) (*domain.Ticket, error) {
	ticket, err := s.tickets.Issue(ctx)
	if err != nil {
		s.logger.Error("ticket issuance aborted", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrCreationFailed, err)
	}

	s.publishEvent(ctx, events.Event{
		Type: events.EventTicketIssued,
		Payload: events.TicketIssuedPayload{
			TicketNumber: ticket.TicketNumber,
			IssuedAt:     ticket.IssuedAt,
		},
	})
	return ticket, nil
}

// CallNext attends the earliest waiting ticket and reports how long it
// waited. An empty queue is a defined outcome, surfaced as ErrQueueEmpty.
func (s *QueueService) CallNext(ctx context.Context) (*CalledTicket, error) {
	ticket, err := s.tickets.CallNext(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrQueueEmpty) {
			return nil, domain.ErrQueueEmpty
		}
		s.logger.Error("call next aborted", zap.Error(err))
		return nil, err
	}

	calledAt := s.clock.Now()
	wait := calledAt.Sub(ticket.IssuedAt)
	if wait < 0 {
		wait = 0
	}

	called := &CalledTicket{
		TicketNumber: ticket.TicketNumber,
		CalledAt:     calledAt,
		WaitTime:     wait,
	}

	s.publishEvent(ctx, events.Event{
		Type: events.EventTicketCalled,
		Payload: events.TicketCalledPayload{
			TicketNumber:    called.TicketNumber,
			CalledAt:        called.CalledAt,
			WaitTimeSeconds: called.WaitTime.Seconds(),
		},
	})
	return called, nil
}

// QueueStatus reports current queue depth.
func (s *QueueService) QueueStatus(ctx context.Context) (domain.QueueStatus, error) {
	return s.tickets.Status(ctx)
}

// CurrentlyCalled returns the most recently attended ticket, nil when the
// queue has never been called.
func (s *QueueService) CurrentlyCalled(ctx context.Context) (*domain.Ticket, error) {
	return s.tickets.CurrentlyCalled(ctx)
}

// TicketHistory lists recently attended tickets, newest first.
func (s *QueueService) TicketHistory(ctx context.Context, limit int) ([]domain.Ticket, error) {
	return s.tickets.History(ctx, limit)
}

// ResetQueue marks every waiting ticket attended. Ticket history survives;
// only the waiting state is flushed.
func (s *QueueService) ResetQueue(ctx context.Context) (int64, error) {
	reset, err := s.tickets.Reset(ctx)
	if err != nil {
		s.logger.Error("queue reset aborted", zap.Error(err))
		return 0, fmt.Errorf("%w: %v", domain.ErrResetFailed, err)
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventQueueReset,
		Payload: events.QueueResetPayload{TicketsReset: reset},
	})
	return reset, nil
}

func (s *QueueService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
