package printer

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// spoolerPrinter submits the rendered ticket to the local print spooler via
// lp, the fallback when no raw device file is writable.
type spoolerPrinter struct {
	queueName string
	header    string
}

// NewSpoolerPrinter targets a named spooler queue.
func NewSpoolerPrinter(queueName, header string) TicketPrinter {
	return &spoolerPrinter{queueName: queueName, header: header}
}

func (p *spoolerPrinter) Print(ctx context.Context, ticketNumber int64, issuedAt time.Time) error {
	cmd := exec.CommandContext(ctx, "lp", "-d", p.queueName, "-o", "raw", "-")
	cmd.Stdin = bytes.NewReader(renderTicket(p.header, ticketNumber, issuedAt))

	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("spool to %s: %w (%s)", p.queueName, err, bytes.TrimSpace(out))
	}
	return nil
}
