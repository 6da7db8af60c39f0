package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
)

// PrinterHandler handles printer-related HTTP requests.
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// GetStatus returns the current printer configuration.
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	response.OK(c, "Printer status retrieved", h.printerService.GetStatus())
}

// PrintBill sends the receipt of a billed order to the till printer.
func (h *PrinterHandler) PrintBill(c *gin.Context) {
	id, ok := paramID(c, "orderId", "order")
	if !ok {
		return
	}

	receipt, err := h.printerService.PrintOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Receipt sent to printer"
	if !h.printerService.GetStatus().Configured {
		message = "Receipt generated (no printer configured)"
	}
	response.OK(c, message, gin.H{"receipt": receipt})
}
