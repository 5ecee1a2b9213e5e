package printer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/queue-service/internal/config"
)

// TicketPrinter renders and physically prints an issued ticket. Printing is
// best-effort: the ticket is already durable when Print is invoked, and a
// failed print must never cost a customer their place in line.
type TicketPrinter interface {
	Print(ctx context.Context, ticketNumber int64, issuedAt time.Time) error
}

// fallbackPrinter tries each sink in order until one accepts the job.
type fallbackPrinter struct {
	sinks  []TicketPrinter
	logger *zap.Logger
}

// NewFromConfig builds the hardware discovery chain: raw device file first,
// then the system spooler, finally a log-only printer so printerless
// deployments still record issuance.
func NewFromConfig(cfg config.PrinterConfig, logger *zap.Logger) TicketPrinter {
	if !cfg.Enabled {
		return NewLogPrinter(logger)
	}

	var sinks []TicketPrinter
	if cfg.DevicePath != "" {
		sinks = append(sinks, NewDevicePrinter(cfg.DevicePath, cfg.HeaderText))
	}
	if cfg.SpoolerName != "" {
		sinks = append(sinks, NewSpoolerPrinter(cfg.SpoolerName, cfg.HeaderText))
	}
	sinks = append(sinks, NewLogPrinter(logger))

	return &fallbackPrinter{sinks: sinks, logger: logger}
}

// NewFallbackPrinter chains sinks explicitly, mainly for tests.
func NewFallbackPrinter(logger *zap.Logger, sinks ...TicketPrinter) TicketPrinter {
	return &fallbackPrinter{sinks: sinks, logger: logger}
}

func (p *fallbackPrinter) Print(ctx context.Context, ticketNumber int64, issuedAt time.Time) error {
	var errs []error
	for _, sink := range p.sinks {
		err := sink.Print(ctx, ticketNumber, issuedAt)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
		p.logger.Warn("print sink failed, trying next",
			zap.Int64("ticket_number", ticketNumber),
			zap.Error(err))
	}
	return fmt.Errorf("all print sinks failed: %w", errors.Join(errs...))
}

// logPrinter records the ticket instead of printing it.
type logPrinter struct {
	logger *zap.Logger
}

// NewLogPrinter returns a sink that always succeeds by logging the ticket.
func NewLogPrinter(logger *zap.Logger) TicketPrinter {
	return &logPrinter{logger: logger}
}

func (p *logPrinter) Print(_ context.Context, ticketNumber int64, issuedAt time.Time) error {
	p.logger.Info("ticket printed to log",
		zap.Int64("ticket_number", ticketNumber),
		zap.Time("issued_at", issuedAt))
	return nil
}
