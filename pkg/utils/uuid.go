package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ParseUUID parses a string into a UUID
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(s))
}

// GenerateInvoiceNo generates a unique invoice number such as INV-20240131-1A2B3C4D
func GenerateInvoiceNo(now time.Time) string {
	return fmt.Sprintf("INV-%s-%s", now.Format("20060102"), strings.ToUpper(uuid.New().String()[:8]))
}

// BillKey names the stored bill PDF for an invoice. The date is the billing day
// in the store timezone.
func BillKey(invoiceNo string, billedAt time.Time) string {
	return fmt.Sprintf("bill-%s-%s.pdf", invoiceNo, billedAt.Format("2006-01-02"))
}

// UploadKey names a stored proof image.
func UploadKey(ext string, now time.Time) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	return fmt.Sprintf("%s-%s.%s", now.Format("20060102150405"), uuid.New().String()[:8], ext)
}
