package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/receipt-reconciler/internal/api/dto"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/expense"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/storage"
)

// ExpensesHandler handles expense-related HTTP requests.
type ExpensesHandler struct {
	*Base
}

// NewExpensesHandler creates a new expenses handler.
func NewExpensesHandler(repo storage.Repository) *ExpensesHandler {
	return &ExpensesHandler{
		Base: NewBase(repo),
	}
}

// List handles GET /api/expenses - filters: subject_id, source_tag
// (comma separated), status, limit.
func (h *ExpensesHandler) List(c *gin.Context) {
	filters := storage.ExpenseFilters{
		SubjectID: c.Query("subject_id"),
		Status:    c.Query("status"),
		Limit:     ParseIntParam(c, "limit", 0),
	}
	if tags := c.Query("source_tag"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filters.SourceTags = append(filters.SourceTags, expense.SourceTag(tag))
			}
		}
	}

	records, err := h.repo.ListExpenses(filters)
	if err != nil {
		h.WriteError(c, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(c, http.StatusOK, dto.ExpenseListResponse{Expenses: records, Count: len(records)})
}

// Get handles GET /api/expenses/:id - returns a single expense.
func (h *ExpensesHandler) Get(c *gin.Context) {
	record, err := h.repo.GetExpense(c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		h.WriteError(c, http.StatusNotFound, dto.NotFoundError("expense"))
		return
	}
	if err != nil {
		h.WriteError(c, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(c, http.StatusOK, record)
}
