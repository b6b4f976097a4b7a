package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/receipt-reconciler/internal/adapters/sources"
	"github.com/eshaffer321/receipt-reconciler/internal/api/dto"
	"github.com/eshaffer321/receipt-reconciler/internal/application/service"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/expense"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/parser"
)

// DocumentsHandler handles document ingestion.
type DocumentsHandler struct {
	*Base
	ingest *service.IngestService
}

// NewDocumentsHandler creates a new documents handler.
func NewDocumentsHandler(ingest *service.IngestService) *DocumentsHandler {
	return &DocumentsHandler{Base: NewBase(nil), ingest: ingest}
}

// Create handles POST /api/documents - parses a block document and stores
// its records. An unknown tag is 422; a document without records is 200.
func (h *DocumentsHandler) Create(c *gin.Context) {
	var req dto.DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError("tag and document are required"))
		return
	}

	doc, err := sources.DecodeBlockJSON(req.Document)
	if err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	result, err := h.ingest.ParseDocument(c.Request.Context(), service.DocumentRequest{
		Tag:        expense.SourceTag(req.Tag),
		SubjectID:  req.SubjectID,
		DocumentID: req.DocumentID,
		Vendor:     req.Vendor,
		Document:   doc,
	})
	switch {
	case errors.Is(err, parser.ErrUnsupportedFormat):
		h.WriteError(c, http.StatusUnprocessableEntity, dto.UnsupportedFormatError(req.Tag))
		return
	case errors.Is(err, service.ErrInvalidRequest):
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	case err != nil:
		h.WriteError(c, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(c, http.StatusOK, dto.IngestResponse{
		DocumentID: result.DocumentID,
		Tag:        result.Tag,
		Records:    result.Records,
		Count:      len(result.Records),
		Saved:      result.Saved,
		Failed:     result.Failed,
		Warnings:   result.Warnings,
	})
}

// FormatsHandler lists supported document types.
type FormatsHandler struct {
	*Base
	ingest *service.IngestService
}

// NewFormatsHandler creates a new formats handler.
func NewFormatsHandler(ingest *service.IngestService) *FormatsHandler {
	return &FormatsHandler{Base: NewBase(nil), ingest: ingest}
}

// List handles GET /api/formats.
func (h *FormatsHandler) List(c *gin.Context) {
	formats := h.ingest.Formats()
	h.WriteJSON(c, http.StatusOK, dto.FormatListResponse{Formats: formats, Count: len(formats)})
}
