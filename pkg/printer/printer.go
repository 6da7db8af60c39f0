package printer

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync"
	"time"
)

// Printer sends raw ESC/POS bytes to a receipt printer.
type Printer interface {
	Print(ctx context.Context, data []byte) error
	Name() string
}

// devicePrinter writes to a character device such as /dev/usb/lp0.
type devicePrinter struct {
	path string
	mu   sync.Mutex
}

func (p *devicePrinter) Print(_ context.Context, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("printer: open %s: %w", p.path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.path, err)
	}
	return nil
}

func (p *devicePrinter) Name() string { return "usb:" + p.path }

// networkPrinter speaks raw TCP, usually port 9100.
type networkPrinter struct {
	address string
	dialer  net.Dialer
}

func (p *networkPrinter) Print(ctx context.Context, data []byte) error {
	conn, err := p.dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return fmt.Errorf("printer: dial %s: %w", p.address, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(10 * time.Second)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetWriteDeadline(deadline)

	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("printer: write %s: %w", p.address, err)
	}
	return nil
}

func (p *networkPrinter) Name() string { return "network:" + p.address }

type discardPrinter struct{}

func (discardPrinter) Print(context.Context, []byte) error { return nil }
func (discardPrinter) Name() string                        { return "none" }

// New builds a Printer for kind "usb", "network" or "none".
func New(kind, usbPath, address string) (Printer, error) {
	switch kind {
	case "usb":
		if usbPath == "" {
			return nil, fmt.Errorf("printer: PRINTER_USB_PATH is required for usb printers")
		}
		return &devicePrinter{path: usbPath}, nil
	case "network":
		if address == "" {
			return nil, fmt.Errorf("printer: PRINTER_ADDRESS is required for network printers")
		}
		return &networkPrinter{address: address, dialer: net.Dialer{Timeout: 5 * time.Second}}, nil
	case "none", "":
		return discardPrinter{}, nil
	default:
		return nil, fmt.Errorf("printer: unknown type %q", kind)
	}
}

// IsConfigured reports whether p actually reaches hardware.
func IsConfigured(p Printer) bool {
	_, none := p.(discardPrinter)
	return !none
}
