package entity

// ReceiptHeader is the shop block printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"storeName"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// ReceiptItem is one printed cart line. Amounts are decimals.
type ReceiptItem struct {
	Name      string  `json:"name"`
	Qty       int     `json:"qty"`
	UnitPrice float64 `json:"unitPrice"`
	Total     float64 `json:"total"`
}

// Receipt is composed from a billed order at print time; it is never stored.
type Receipt struct {
	Header    ReceiptHeader `json:"header"`
	InvoiceNo string        `json:"invoiceNo"`
	Date      string        `json:"date"`
	Cashier   string        `json:"cashier,omitempty"`
	Customer  string        `json:"customer,omitempty"`
	Currency  string        `json:"currency"`
	Items     []ReceiptItem `json:"items"`
	Total     float64       `json:"total"`
	Paid      float64       `json:"paid"`
	Due       float64       `json:"due"`
	Udhar     float64       `json:"udhar"`
	BillURL   string        `json:"billUrl,omitempty"`
}
