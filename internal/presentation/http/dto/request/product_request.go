package request

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	Name          string   `json:"name" binding:"required,max=255"`
	Category      string   `json:"category" binding:"max=100"`
	Price         float64  `json:"price" binding:"min=0"`
	PurchasePrice float64  `json:"purchasePrice" binding:"min=0"`
	Discount      float64  `json:"discount" binding:"min=0"`
	StockQty      int      `json:"stockQty" binding:"min=0"`
	LowStockAlert int      `json:"lowStockAlert" binding:"min=0"`
	TotalBill     *float64 `json:"totalBill" binding:"omitempty,min=0"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	Name          *string  `json:"name" binding:"omitempty,min=1,max=255"`
	Category      *string  `json:"category" binding:"omitempty,max=100"`
	Price         *float64 `json:"price" binding:"omitempty,min=0"`
	PurchasePrice *float64 `json:"purchasePrice" binding:"omitempty,min=0"`
	Discount      *float64 `json:"discount" binding:"omitempty,min=0"`
	LowStockAlert *int     `json:"lowStockAlert" binding:"omitempty,min=0"`
}

// RestockProductRequest adds bought stock to a product
type RestockProductRequest struct {
	StockQty      int      `json:"stockQty" binding:"required,min=1"`
	PurchasePrice *float64 `json:"purchasePrice" binding:"omitempty,min=0"`
	Price         *float64 `json:"price" binding:"omitempty,min=0"`
	TotalBill     *float64 `json:"totalBill" binding:"omitempty,min=0"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	LowStock bool   `form:"lowStock"`
	Page     string `form:"page"`
	PerPage  string `form:"per_page"`
}

// DateRangeRequest is the range selector shared by the sales screens
type DateRangeRequest struct {
	DateRange string `json:"dateRange" form:"dateRange"`
	StartDate string `json:"startDate" form:"startDate"`
	EndDate   string `json:"endDate" form:"endDate"`
}

// ProductSalesRequest is the body of /get-product-sales
type ProductSalesRequest struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	DateRangeRequest
}
