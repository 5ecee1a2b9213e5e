package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/queue-service/internal/events"
	"github.com/spec-kit/queue-service/internal/observability"
	"github.com/spec-kit/queue-service/internal/printer"
)

// PrintWorker drives the print sink from issuance events. Each job runs in
// its own goroutine so a slow or wedged printer never delays the HTTP
// response that already carries the committed ticket.
type PrintWorker struct {
	printer printer.TicketPrinter
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewPrintWorker constructs the worker.
func NewPrintWorker(p printer.TicketPrinter, metrics *observability.Metrics, logger *zap.Logger) *PrintWorker {
	return &PrintWorker{printer: p, metrics: metrics, logger: logger}
}

// Register subscribes the worker to ticket issuance events.
func (w *PrintWorker) Register(dispatcher events.Dispatcher) {
	if dispatcher == nil || w.printer == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketIssued, w.handleTicketIssued)
}

func (w *PrintWorker) handleTicketIssued(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketIssuedPayload)
	if !ok {
		return nil
	}

	go func() {
		// Detached from the request context: print outcome must not be
		// tied to the caller still waiting.
		err := w.printer.Print(context.Background(), payload.TicketNumber, payload.IssuedAt)
		if err != nil {
			w.metrics.RecordPrint(false)
			w.logger.Error("ticket print failed",
				zap.Int64("ticket_number", payload.TicketNumber),
				zap.Error(err))
			return
		}
		w.metrics.RecordPrint(true)
	}()
	return nil
}
