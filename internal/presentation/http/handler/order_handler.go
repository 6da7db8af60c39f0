package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/pos-api/pkg/pagination"
	"github.com/spf13/cast"
)

// OrderHandler handles cart, checkout and order HTTP requests
type OrderHandler struct {
	orderService *service.OrderService
	bills        *service.BillService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService, bills *service.BillService) *OrderHandler {
	return &OrderHandler{orderService: orderService, bills: bills}
}

func (h *OrderHandler) orderData(order *entity.Order) gin.H {
	data := gin.H{"order": order}
	if order != nil && order.Bill != nil && h.bills != nil {
		data["billUrl"] = h.bills.URL(*order.Bill)
	}
	return data
}

// FillCart adds a product to the customer's open cart
func (h *OrderHandler) FillCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	customerID, ok := paramID(c, "customerId", "customer")
	if !ok {
		return
	}

	var req request.FillCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	order, err := h.orderService.FillCart(c.Request.Context(), &service.FillCartInput{
		UserID:     userID,
		CustomerID: customerID,
		ProductID:  productID,
		Qty:        req.Qty,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product added to cart", gin.H{"order": order})
}

// Get handles getting a single order with its cart
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order retrieved successfully", h.orderData(order))
}

// DeleteCartItem removes the line at :index from an open cart
func (h *OrderHandler) DeleteCartItem(c *gin.Context) {
	orderID, ok := paramID(c, "orderId", "order")
	if !ok {
		return
	}
	index, err := cast.ToIntE(c.Param("index"))
	if err != nil {
		response.BadRequest(c, "Invalid cart index")
		return
	}

	order, err := h.orderService.DeleteCartItem(c.Request.Context(), orderID, index)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item removed from cart", gin.H{"order": order})
}

// Checkout turns the cart into a billed order
func (h *OrderHandler) Checkout(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "orderId", "order")
	if !ok {
		return
	}

	var req request.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	input := &service.CheckoutInput{
		UserID:  userID,
		OrderID: orderID,
		Payment: req.BillPayment,
	}
	if req.CustomerID != "" {
		customerID, err := uuid.Parse(req.CustomerID)
		if err != nil {
			response.BadRequest(c, "Invalid customer ID")
			return
		}
		input.CustomerID = &customerID
	}

	output, err := h.orderService.Checkout(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	data := h.orderData(output.Order)
	data["change"] = output.Change
	response.OK(c, "Order billed successfully", data)
}

// List handles listing orders
func (h *OrderHandler) List(c *gin.Context) {
	var filter request.OrderFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	input := &service.ListOrdersInput{
		Pagination: pagination.FromQuery(filter.Page, filter.PerPage),
		Status:     filter.Status,
		Range: service.RangeInput{
			Name:  filter.DateRange,
			Start: filter.StartDate,
			End:   filter.EndDate,
		},
	}
	if filter.CustomerID != "" {
		customerID, err := uuid.Parse(filter.CustomerID)
		if err != nil {
			response.BadRequest(c, "Invalid customer ID")
			return
		}
		input.CustomerID = &customerID
	}

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Orders retrieved successfully", listData("orders", orders, input.Pagination, total))
}

// Delete removes an order; an open cart gives its stock back first
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id", "order")
	if !ok {
		return
	}

	if err := h.orderService.DeleteOrder(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order deleted successfully", nil)
}
