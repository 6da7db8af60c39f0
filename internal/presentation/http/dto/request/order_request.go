package request

// FillCartRequest adds a product line to the customer's cart
type FillCartRequest struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	Qty       int    `json:"qty" binding:"required,min=1"`
}

// CheckoutRequest finalises a cart into a bill
type CheckoutRequest struct {
	BillPayment float64 `json:"billPayment" binding:"min=0"`
	CustomerID  string  `json:"customerId" binding:"omitempty,uuid"`
}

// OrderFilterRequest represents order list filters
type OrderFilterRequest struct {
	Status     string `form:"status"`
	CustomerID string `form:"customerId" binding:"omitempty,uuid"`
	DateRange  string `form:"dateRange"`
	StartDate  string `form:"startDate"`
	EndDate    string `form:"endDate"`
	Page       string `form:"page"`
	PerPage    string `form:"per_page"`
}
