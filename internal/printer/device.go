package printer

import (
	"context"
	"fmt"
	"os"
	"time"
)

// devicePrinter writes raw ESC/POS bytes to a printer device file, typically
// /dev/usb/lp0 on Linux hosts with a USB thermal printer.
type devicePrinter struct {
	path   string
	header string
}

// NewDevicePrinter targets a raw printer device file.
func NewDevicePrinter(path, header string) TicketPrinter {
	return &devicePrinter{path: path, header: header}
}

func (p *devicePrinter) Print(_ context.Context, ticketNumber int64, issuedAt time.Time) error {
	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open printer device %s: %w", p.path, err)
	}
	defer f.Close()

	if _, err := f.Write(renderTicket(p.header, ticketNumber, issuedAt)); err != nil {
		return fmt.Errorf("write to printer device %s: %w", p.path, err)
	}
	return nil
}
