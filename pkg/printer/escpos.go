package printer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ESC/POS control bytes
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Alignment values for ESC a
const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

// Character sizes for GS !
const (
	SizeNormal = 0x00
	SizeDouble = 0x11
	SizeTall   = 0x01
)

// Ticket accumulates an ESC/POS byte stream for a receipt printer.
// Widths are in characters: 32 on 58mm paper, 48 on 80mm.
type Ticket struct {
	buf   bytes.Buffer
	width int
}

func NewTicket(width int) *Ticket {
	if width <= 0 {
		width = 32
	}
	t := &Ticket{width: width}
	t.buf.Write([]byte{ESC, '@'})
	return t
}

// Width returns the line width in characters.
func (t *Ticket) Width() int {
	return t.width
}

func (t *Ticket) Align(a int) *Ticket {
	t.buf.Write([]byte{ESC, 'a', byte(a)})
	return t
}

func (t *Ticket) Bold(on bool) *Ticket {
	var b byte
	if on {
		b = 1
	}
	t.buf.Write([]byte{ESC, 'E', b})
	return t
}

func (t *Ticket) Size(s byte) *Ticket {
	t.buf.Write([]byte{GS, '!', s})
	return t
}

// Line writes s clipped to the ticket width.
func (t *Ticket) Line(s string) *Ticket {
	t.buf.WriteString(clip(s, t.width))
	t.buf.WriteByte(LF)
	return t
}

func (t *Ticket) Linef(format string, args ...interface{}) *Ticket {
	return t.Line(fmt.Sprintf(format, args...))
}

// Rule prints a full-width line of c.
func (t *Ticket) Rule(c rune) *Ticket {
	t.buf.WriteString(strings.Repeat(string(c), t.width))
	t.buf.WriteByte(LF)
	return t
}

// Row prints left and right text on one line, padding between them.
// The left side is clipped when both do not fit.
func (t *Ticket) Row(left, right string) *Ticket {
	room := t.width - utf8.RuneCountInString(right) - 1
	if room < 1 {
		room = 1
	}
	left = clip(left, room)
	pad := t.width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if pad < 1 {
		pad = 1
	}
	t.buf.WriteString(left)
	t.buf.WriteString(strings.Repeat(" ", pad))
	t.buf.WriteString(right)
	t.buf.WriteByte(LF)
	return t
}

// Item prints the product name on its own line followed by an indented
// "qty x price" row with the line total on the right.
func (t *Ticket) Item(name string, qty int, unit, total string) *Ticket {
	t.Line(name)
	return t.Row(fmt.Sprintf("  %d x %s", qty, unit), total)
}

// QR prints data as a native ESC/POS QR code (model 2, error level M).
func (t *Ticket) QR(data string, moduleSize byte) *Ticket {
	if moduleSize < 1 || moduleSize > 16 {
		moduleSize = 6
	}
	t.buf.Write([]byte{GS, '(', 'k', 4, 0, 49, 65, 50, 0})
	t.buf.Write([]byte{GS, '(', 'k', 3, 0, 49, 67, moduleSize})
	t.buf.Write([]byte{GS, '(', 'k', 3, 0, 49, 69, 49})

	n := len(data) + 3
	t.buf.Write([]byte{GS, '(', 'k', byte(n % 256), byte(n / 256), 49, 80, 48})
	t.buf.WriteString(data)
	t.buf.Write([]byte{GS, '(', 'k', 3, 0, 49, 81, 48})
	t.buf.WriteByte(LF)
	return t
}

func (t *Ticket) Feed(n int) *Ticket {
	for i := 0; i < n; i++ {
		t.buf.WriteByte(LF)
	}
	return t
}

// Cut feeds a few lines and performs a partial cut.
func (t *Ticket) Cut() *Ticket {
	t.Feed(3)
	t.buf.Write([]byte{GS, 'V', 0x01})
	return t
}

func (t *Ticket) Bytes() []byte {
	return t.buf.Bytes()
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
