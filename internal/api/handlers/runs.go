package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/receipt-reconciler/internal/api/dto"
	"github.com/eshaffer321/receipt-reconciler/internal/application/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RunsHandler handles reconciliation runs.
type RunsHandler struct {
	*Base
	reconcile *service.ReconcileService
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(reconcile *service.ReconcileService) *RunsHandler {
	return &RunsHandler{Base: NewBase(nil), reconcile: reconcile}
}

// Create handles POST /api/reconcile - runs the matcher and records the run.
func (h *RunsHandler) Create(c *gin.Context) {
	var req dto.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
		return
	}

	outcome, err := h.reconcile.Reconcile(c.Request.Context(), service.ReconcileRequest{
		SubjectID: req.SubjectID,
		Ledger:    req.Ledger,
		Receipts:  req.Receipts,
		Floor:     req.Floor,
	})
	if errors.Is(err, service.ErrInvalidRequest) {
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}
	if err != nil {
		h.WriteError(c, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(c, http.StatusOK, dto.ReconcileResponse{
		Run:    dto.NewRunResponse(*outcome.Run),
		Report: outcome.Report,
	})
}

// List handles GET /api/runs - returns recent runs.
func (h *RunsHandler) List(c *gin.Context) {
	limit := ParseIntParam(c, "limit", 20)

	runs, err := h.reconcile.ListRuns(c.Request.Context(), limit)
	if err != nil {
		h.WriteError(c, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.RunListResponse{
		Runs:  make([]dto.RunResponse, 0, len(runs)),
		Count: len(runs),
	}
	for _, run := range runs {
		response.Runs = append(response.Runs, dto.NewRunResponse(run))
	}

	h.WriteJSON(c, http.StatusOK, response)
}

// Get handles GET /api/runs/:id - returns a run with its report.
func (h *RunsHandler) Get(c *gin.Context) {
	id := c.Param("id")

	run, err := h.reconcile.GetRun(c.Request.Context(), id)
	if service.IsNotFound(err) {
		h.WriteError(c, http.StatusNotFound, dto.NotFoundError("run"))
		return
	}
	if err != nil {
		h.WriteError(c, http.StatusInternalServerError, dto.InternalError())
		return
	}

	rep, err := h.reconcile.Report(c.Request.Context(), id)
	if err != nil && !service.IsNotFound(err) {
		h.WriteError(c, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(c, http.StatusOK, dto.ReconcileResponse{
		Run:    dto.NewRunResponse(*run),
		Report: rep,
	})
}

// Export handles GET /api/runs/:id/export - returns the run as XLSX.
func (h *RunsHandler) Export(c *gin.Context) {
	id := c.Param("id")

	data, err := h.reconcile.ExportRun(c.Request.Context(), id)
	if service.IsNotFound(err) {
		h.WriteError(c, http.StatusNotFound, dto.NotFoundError("run"))
		return
	}
	if err != nil {
		h.WriteError(c, http.StatusInternalServerError, dto.InternalError())
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="reconciliation-%s.xlsx"`, id))
	c.Data(http.StatusOK, xlsxContentType, data)
}
