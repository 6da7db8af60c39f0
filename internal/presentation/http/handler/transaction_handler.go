package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/pos-api/pkg/money"
	"github.com/sangkips/pos-api/pkg/pagination"
	"github.com/spf13/cast"
)

// TransactionHandler handles ledger HTTP requests
type TransactionHandler struct {
	txService *service.TransactionService
	maxUpload int64
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(txService *service.TransactionService, maxUpload int64) *TransactionHandler {
	return &TransactionHandler{txService: txService, maxUpload: maxUpload}
}

// Create records a sale, expense or investment. Multipart bodies may carry a proofImage file.
func (h *TransactionHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	input := &service.CreateTransactionInput{UserID: userID}

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if h.maxUpload > 0 {
			// room for the other form fields
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+1<<20)
		}
		if err := c.Request.ParseMultipartForm(8 << 20); err != nil {
			response.BadRequest(c, "Upload is too large or malformed")
			return
		}
		amount, err := cast.ToFloat64E(c.PostForm("amount"))
		if err != nil {
			response.BadRequest(c, "Amount must be a number")
			return
		}
		input.Type = c.PostForm("type")
		input.Description = c.PostForm("description")
		input.Amount = amount

		proof, err := h.readProof(c)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		input.Proof = proof
	} else {
		var req request.CreateTransactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body: "+err.Error())
			return
		}
		input.Type = req.Type
		input.Description = req.Description
		input.Amount = req.Amount
	}

	tx, err := h.txService.CreateTransaction(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Transaction recorded successfully", gin.H{"transaction": tx})
}

type uploadError string

func (e uploadError) Error() string { return string(e) }

func (h *TransactionHandler) readProof(c *gin.Context) (*service.ProofImage, error) {
	header, err := c.FormFile("proofImage")
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, uploadError("Proof image could not be read")
	}
	if h.maxUpload > 0 && header.Size > h.maxUpload {
		return nil, uploadError("Proof image is too large")
	}

	f, err := header.Open()
	if err != nil {
		return nil, uploadError("Proof image could not be read")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, uploadError("Proof image could not be read")
	}
	return &service.ProofImage{Filename: header.Filename, Data: data}, nil
}

func ledgerFilter(f *request.TransactionFilterRequest) *service.LedgerFilter {
	return &service.LedgerFilter{
		Pagination: pagination.FromQuery(f.Page, f.PerPage),
		Type:       f.Type,
		Range: service.RangeInput{
			Name:  f.DateRange,
			Start: f.StartDate,
			End:   f.EndDate,
		},
	}
}

// GetSales returns the rows of one type in a date range with their total
func (h *TransactionHandler) GetSales(c *gin.Context) {
	var req request.SalesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	out, err := h.txService.GetSales(c.Request.Context(), &service.LedgerFilter{
		Type:  req.Type,
		Range: rangeInput(req.DateRangeRequest),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transactions retrieved successfully", gin.H{
		"transactions": out.Transactions,
		"total":        money.FromCents(out.Total),
	})
}

// Today lists the ledger rows of the current store day
func (h *TransactionHandler) Today(c *gin.Context) {
	txs, err := h.txService.TodayTransactions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transactions retrieved successfully", gin.H{"transactions": txs})
}

// List handles listing ledger rows
func (h *TransactionHandler) List(c *gin.Context) {
	var filter request.TransactionFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	lf := ledgerFilter(&filter)
	txs, total, err := h.txService.ListTransactions(c.Request.Context(), lf)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transactions retrieved successfully", listData("transactions", txs, lf.Pagination, total))
}

// Delete removes a ledger row
func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id", "transaction")
	if !ok {
		return
	}

	if err := h.txService.DeleteTransaction(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transaction deleted successfully", nil)
}

// SalesSummary buckets sales by hour, day, week or month
func (h *TransactionHandler) SalesSummary(c *gin.Context) {
	var filter request.TransactionFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	buckets, err := h.txService.SalesSummary(c.Request.Context(), filter.Granularity, service.RangeInput{
		Name:  filter.DateRange,
		Start: filter.StartDate,
		End:   filter.EndDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sales summary retrieved successfully", gin.H{"buckets": buckets})
}

// Export downloads the filtered ledger as CSV or XLSX
func (h *TransactionHandler) Export(c *gin.Context) {
	var filter request.TransactionFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	lf := ledgerFilter(&filter)
	lf.Pagination = nil
	out, err := h.txService.Export(c.Request.Context(), filter.Format, lf)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+out.Filename+`"`)
	c.Data(http.StatusOK, out.ContentType, out.Data)
}
