package request

// CreateCustomerRequest represents a customer creation request
type CreateCustomerRequest struct {
	Name    string  `json:"name" binding:"required,max=255"`
	Address string  `json:"address" binding:"max=500"`
	Contact string  `json:"contact" binding:"max=50"`
	Udhar   float64 `json:"udhar" binding:"min=0"`
}

// UpdateCustomerRequest represents a customer update request
type UpdateCustomerRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=255"`
	Address *string `json:"address" binding:"omitempty,max=500"`
	Contact *string `json:"contact" binding:"omitempty,max=50"`
}

// ReturnUdharRequest records money repaid against credit
type ReturnUdharRequest struct {
	ReturnUdhar float64 `json:"returnUdhar" binding:"required,gt=0"`
}
