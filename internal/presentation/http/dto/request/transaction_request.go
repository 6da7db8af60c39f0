package request

// CreateTransactionRequest is the JSON form of /create-transaction.
// Multipart uploads carry the same fields plus a proofImage file.
type CreateTransactionRequest struct {
	Type        string  `json:"type" binding:"required"`
	Description string  `json:"description" binding:"max=500"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
}

// SalesRequest is the body of /get-sales
type SalesRequest struct {
	Type string `json:"type"`
	DateRangeRequest
}

// TransactionFilterRequest represents ledger list filters
type TransactionFilterRequest struct {
	Type        string `form:"type"`
	DateRange   string `form:"dateRange"`
	StartDate   string `form:"startDate"`
	EndDate     string `form:"endDate"`
	Granularity string `form:"granularity"`
	Format      string `form:"format"`
	Page        string `form:"page"`
	PerPage     string `form:"per_page"`
}
