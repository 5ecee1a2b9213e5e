package printer

import (
	"bytes"
	"fmt"
	"time"
)

// ESC/POS command sequences understood by common thermal printers.
var (
	escInit      = []byte{0x1b, 0x40}             // ESC @
	escAlignMid  = []byte{0x1b, 0x61, 0x01}       // ESC a 1
	escAlignLeft = []byte{0x1b, 0x61, 0x00}       // ESC a 0
	gsSizeBig    = []byte{0x1d, 0x21, 0x33}       // GS ! quadruple width/height
	gsSizeNormal = []byte{0x1d, 0x21, 0x00}       // GS ! normal
	gsCut        = []byte{0x1d, 0x56, 0x42, 0x00} // GS V partial cut
)

// renderTicket produces the raw ESC/POS byte stream for one ticket: centered
// header, oversized ticket number, issuance timestamp, feed and cut.
func renderTicket(header string, ticketNumber int64, issuedAt time.Time) []byte {
	var buf bytes.Buffer

	buf.Write(escInit)
	buf.Write(escAlignMid)

	if header != "" {
		buf.WriteString(header)
		buf.WriteString("\n\n")
	}

	buf.Write(gsSizeBig)
	fmt.Fprintf(&buf, "%d\n", ticketNumber)
	buf.Write(gsSizeNormal)

	buf.WriteString("\n")
	buf.WriteString(issuedAt.Format("2006-01-02 15:04:05"))
	buf.WriteString("\n\n\n")

	buf.Write(escAlignLeft)
	buf.Write(gsCut)

	return buf.Bytes()
}
