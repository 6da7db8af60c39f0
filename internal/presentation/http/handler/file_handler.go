package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/pos-api/internal/infrastructure/storage"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
	"go.uber.org/zap"
)

// ObjectOpener reads stored files
type ObjectOpener interface {
	Open(ctx context.Context, prefix, name string) (*storage.Object, error)
}

// FileHandler streams stored bills and proof images
type FileHandler struct {
	store ObjectOpener
}

// NewFileHandler creates a new file handler
func NewFileHandler(store ObjectOpener) *FileHandler {
	return &FileHandler{store: store}
}

// Bill streams a bill PDF
func (h *FileHandler) Bill(c *gin.Context) {
	h.serve(c, storage.BillsPrefix)
}

// Upload streams a proof image
func (h *FileHandler) Upload(c *gin.Context) {
	h.serve(c, storage.UploadsPrefix)
}

func (h *FileHandler) serve(c *gin.Context, prefix string) {
	key := strings.TrimPrefix(c.Param("key"), "/")

	obj, err := h.store.Open(c.Request.Context(), prefix, key)
	if err == storage.ErrNotFound {
		response.NotFound(c, "File not found")
		return
	}
	if err != nil {
		zap.S().Warnw("open stored file", "prefix", prefix, "key", key, "error", err)
		response.NotFound(c, "File not found")
		return
	}
	defer obj.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "private, max-age=86400")
	c.DataFromReader(http.StatusOK, obj.Size, contentType, io.Reader(obj), nil)
}
