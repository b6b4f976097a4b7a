package api_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/eshaffer321/receipt-reconciler/internal/api"
	"github.com/eshaffer321/receipt-reconciler/internal/api/dto"
	"github.com/eshaffer321/receipt-reconciler/internal/application/service"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/matcher"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/parser"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/export"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestServer(t *testing.T) (*api.Server, *storage.MockRepository) {
	t.Helper()
	repo := storage.NewMockRepository()
	registry := parser.NewDefaultRegistry(parser.Options{ProcessingYear: 2024})
	ingest := service.NewIngestService(registry, repo, nil)
	reconcile := service.NewReconcileService(repo, matcher.DefaultConfig(), nil)
	return api.NewServer(api.DefaultConfig(), repo, ingest, reconcile, nil), repo
}

func doJSON(t *testing.T, srv *api.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func postDocument(t *testing.T, srv *api.Server, tag string, lines []string) *httptest.ResponseRecorder {
	t.Helper()
	doc, err := json.Marshal(map[string]any{"lines": lines})
	require.NoError(t, err)
	return doJSON(t, srv, http.MethodPost, "/api/documents", map[string]any{
		"tag":        tag,
		"subject_id": "acme",
		"document":   json.RawMessage(doc),
	})
}

func seedDocuments(t *testing.T, srv *api.Server) {
	t.Helper()
	rec := postDocument(t, srv, "card_statement", []string{
		"07/02 BLUE BOTTLE COFFEE 12.50",
		"07/05 HILTON HOTELS 200.00",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = postDocument(t, srv, "receipt", []string{"Blue Bottle Coffee $12.50"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestServer_Health(t *testing.T) {
	srv, _ := setupTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp dto.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestServer_Documents(t *testing.T) {
	t.Run("parses and stores records", func(t *testing.T) {
		srv, repo := setupTestServer(t)

		rec := postDocument(t, srv, "card_statement", []string{
			"07/02 BLUE BOTTLE COFFEE 12.50",
			"07/05 HILTON HOTELS 200.00",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		var resp dto.IngestResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Count)
		assert.Equal(t, 2, resp.Saved)
		assert.NotEmpty(t, resp.DocumentID)
		assert.Equal(t, 2, repo.ExpenseCount())
	})

	t.Run("empty document is not an error", func(t *testing.T) {
		srv, _ := setupTestServer(t)

		rec := postDocument(t, srv, "receipt", []string{"THANK YOU"})

		require.Equal(t, http.StatusOK, rec.Code)
		var resp dto.IngestResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.Count)
		assert.Empty(t, resp.Records)
	})

	t.Run("unknown tag is unprocessable", func(t *testing.T) {
		srv, _ := setupTestServer(t)

		rec := postDocument(t, srv, "bank_letter", []string{"07/02 COFFEE 1.00"})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var apiErr dto.APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
		assert.Equal(t, dto.ErrCodeUnsupportedFormat, apiErr.Code)
	})

	t.Run("invalid block document", func(t *testing.T) {
		srv, _ := setupTestServer(t)

		rec := doJSON(t, srv, http.MethodPost, "/api/documents", map[string]any{
			"tag":      "receipt",
			"document": map[string]any{"blocks": []any{map[string]any{"kind": "LINE"}}},
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var apiErr dto.APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
		assert.Equal(t, dto.ErrCodeValidation, apiErr.Code)
	})

	t.Run("missing tag", func(t *testing.T) {
		srv, _ := setupTestServer(t)

		rec := doJSON(t, srv, http.MethodPost, "/api/documents", map[string]any{
			"document": map[string]any{"lines": []string{"x"}},
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_Formats(t *testing.T) {
	srv, _ := setupTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/formats", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.FormatListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Count)
}

func TestServer_Expenses(t *testing.T) {
	srv, repo := setupTestServer(t)
	seedDocuments(t, srv)

	t.Run("lists all", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/expenses?subject_id=acme", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp dto.ExpenseListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 3, resp.Count)
	})

	t.Run("filters by source tag", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/expenses?source_tag=receipt,order_receipt", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp dto.ExpenseListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, 1, resp.Count)
		assert.Equal(t, "receipt", string(resp.Expenses[0].SourceTag))
	})

	t.Run("gets one by id", func(t *testing.T) {
		list := doJSON(t, srv, http.MethodGet, "/api/expenses?limit=1", nil)
		var resp dto.ExpenseListResponse
		require.NoError(t, json.Unmarshal(list.Body.Bytes(), &resp))
		require.Len(t, resp.Expenses, 1)

		rec := doJSON(t, srv, http.MethodGet, "/api/expenses/"+resp.Expenses[0].ID, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/expenses/nope", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("storage failure is 500", func(t *testing.T) {
		repo.ListExpensesErr = errors.New("disk gone")
		defer func() { repo.ListExpensesErr = nil }()

		rec := doJSON(t, srv, http.MethodGet, "/api/expenses", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestServer_ReconcileAndRuns(t *testing.T) {
	srv, _ := setupTestServer(t)
	seedDocuments(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/api/reconcile", map[string]any{"subject_id": "acme"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var outcome dto.ReconcileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	runID := outcome.Run.ID
	require.NotEmpty(t, runID)
	assert.Equal(t, 1, outcome.Run.Summary.MatchedCount)
	require.NotNil(t, outcome.Report)
	assert.Len(t, outcome.Report.Matches, 1)
	assert.Len(t, outcome.Report.UnmatchedLedger, 1)

	t.Run("matched records are marked", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/expenses?status=matched", nil)
		var resp dto.ExpenseListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Count)
	})

	t.Run("lists runs", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/runs", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp dto.RunListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, 1, resp.Count)
		assert.Equal(t, runID, resp.Runs[0].ID)
	})

	t.Run("gets run with report", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/runs/"+runID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp dto.ReconcileResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, runID, resp.Run.ID)
		require.NotNil(t, resp.Report)
		assert.Equal(t, 1, resp.Report.Summary.MatchedCount)
	})

	t.Run("exports workbook", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/runs/"+runID+"/export", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), runID)

		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		rows, err := f.GetRows(export.SheetMatches)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("unknown run is 404", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, doJSON(t, srv, http.MethodGet, "/api/runs/missing", nil).Code)
		assert.Equal(t, http.StatusNotFound, doJSON(t, srv, http.MethodGet, "/api/runs/missing/export", nil).Code)
	})
}

func TestServer_ReconcileValidation(t *testing.T) {
	srv, _ := setupTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/reconcile", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/reconcile", "not an object")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_ReconcileExplicitLists(t *testing.T) {
	srv, repo := setupTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/reconcile", map[string]any{
		"ledger": []map[string]any{
			{"id": "l1", "date": "2024-07-02", "vendor": "Blue Bottle", "amount": "12.50", "source_tag": "card_statement"},
		},
		"receipts": []map[string]any{
			{"id": "r1", "date": "2024-07-02", "vendor": "Blue Bottle", "amount": "12.50", "source_tag": "receipt"},
		},
		"floor": 50,
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp dto.ReconcileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 50.0, resp.Run.Floor)
	require.Len(t, resp.Report.Matches, 1)
	assert.Equal(t, 95.0, resp.Report.Matches[0].Confidence)
	// Explicit lists are not written to the expense store
	assert.Equal(t, 0, repo.ExpenseCount())
}
