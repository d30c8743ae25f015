package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ATKuehn/supersearch/config"
	internalErrors "github.com/ATKuehn/supersearch/internal/errors"
	"github.com/ATKuehn/supersearch/model"
	"github.com/ATKuehn/supersearch/services"
)

// stubEngine implements services.EngineService with canned responses.
type stubEngine struct {
	searchResult services.SearchResult
	searchErr    error
	article      *model.Article
	indexStats   services.IndexingStats
	indexErr     error
	loadErr      error
	saveErr      error

	lastQuery services.SearchQuery
	lastDir   string
}

func (s *stubEngine) IndexDirectory(_ context.Context, dir string) (services.IndexingStats, error) {
	s.lastDir = dir
	return s.indexStats, s.indexErr
}

func (s *stubEngine) Search(query services.SearchQuery) (services.SearchResult, error) {
	s.lastQuery = query
	return s.searchResult, s.searchErr
}

func (s *stubEngine) Document(docID string) (*model.Article, error) {
	if s.article == nil {
		return nil, internalErrors.NewDocumentNotFoundError(docID)
	}
	return s.article, nil
}

func (s *stubEngine) SaveIndexes() error { return s.saveErr }
func (s *stubEngine) LoadIndexes() error { return s.loadErr }

func (s *stubEngine) Stats() services.EngineStats {
	return services.EngineStats{Documents: 2, Words: 10, Persons: 3, Organizations: 1}
}

func newTestRouter(engine services.EngineService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, engine, config.Default(), nil)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(&stubEngine{})

	w := doJSON(t, router, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSearchHandler(t *testing.T) {
	engine := &stubEngine{
		searchResult: services.SearchResult{
			Hits: []services.HitResult{
				{DocumentID: "doc1", Frequency: 12, Title: "Solar farm opens"},
			},
			Total:    1,
			Page:     1,
			PageSize: 15,
			QueryId:  "q-123",
		},
	}
	router := newTestRouter(engine)

	w := doJSON(t, router, http.MethodPost, "/search", SearchRequest{Query: "example test"})

	require.Equal(t, http.StatusOK, w.Code)
	var result services.SearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Total)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "doc1", result.Hits[0].DocumentID)
	assert.Equal(t, "example test", engine.lastQuery.QueryString)
}

func TestSearchHandlerRejectsNegativePage(t *testing.T) {
	router := newTestRouter(&stubEngine{})

	w := doJSON(t, router, http.MethodPost, "/search", SearchRequest{Query: "x", Page: -1})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var apiErr APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, ErrorCodeValidationFailed, apiErr.Code)
	require.Len(t, apiErr.Details, 1)
	assert.Equal(t, "page", apiErr.Details[0].Field)
}

func TestSearchHandlerRejectsMalformedBody(t *testing.T) {
	router := newTestRouter(&stubEngine{})

	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var apiErr APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, ErrorCodeInvalidQuery, apiErr.Code)
}

func TestSearchHandlerReportsEngineFailure(t *testing.T) {
	router := newTestRouter(&stubEngine{searchErr: fmt.Errorf("boom")})

	w := doJSON(t, router, http.MethodPost, "/search", SearchRequest{Query: "x"})

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var apiErr APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, ErrorCodeSearchFailed, apiErr.Code)
	assert.NotEmpty(t, apiErr.RequestID)
}

func TestGetDocumentHandler(t *testing.T) {
	engine := &stubEngine{article: &model.Article{Title: "Solar farm opens"}}
	router := newTestRouter(engine)

	w := doJSON(t, router, http.MethodGet, "/documents?id=articles%2Fsolar.json", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		DocumentID string        `json:"document_id"`
		Article    model.Article `json:"article"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "articles/solar.json", body.DocumentID)
	assert.Equal(t, "Solar farm opens", body.Article.Title)
}

func TestGetDocumentHandlerMissingID(t *testing.T) {
	router := newTestRouter(&stubEngine{})

	w := doJSON(t, router, http.MethodGet, "/documents", nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetDocumentHandlerNotFound(t *testing.T) {
	router := newTestRouter(&stubEngine{})

	w := doJSON(t, router, http.MethodGet, "/documents?id=missing.json", nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	var apiErr APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, ErrorCodeDocumentNotFound, apiErr.Code)
}

func TestIndexDirectoryHandler(t *testing.T) {
	engine := &stubEngine{indexStats: services.IndexingStats{FilesIndexed: 7, Took: 12}}
	router := newTestRouter(engine)

	w := doJSON(t, router, http.MethodPost, "/index", IndexDirectoryRequest{Directory: "/data/articles"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/data/articles", engine.lastDir)
	var body struct {
		Stats services.IndexingStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 7, body.Stats.FilesIndexed)
}

func TestIndexDirectoryHandlerRequiresDirectory(t *testing.T) {
	router := newTestRouter(&stubEngine{})

	w := doJSON(t, router, http.MethodPost, "/index", map[string]string{})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var apiErr APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, ErrorCodeInvalidJSON, apiErr.Code)
}

func TestIndexDirectoryHandlerRejectsBlankDirectory(t *testing.T) {
	engine := &stubEngine{indexErr: internalErrors.NewValidationError("directory", "directory cannot be empty")}
	router := newTestRouter(engine)

	// A whitespace-only directory passes the required binding but fails the
	// engine's own validation, which must surface as a 400, not a 500.
	w := doJSON(t, router, http.MethodPost, "/index", IndexDirectoryRequest{Directory: "  "})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var apiErr APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, ErrorCodeValidationFailed, apiErr.Code)
}

func TestSnapshotHandlers(t *testing.T) {
	router := newTestRouter(&stubEngine{})

	save := doJSON(t, router, http.MethodPost, "/indexes/save", nil)
	require.Equal(t, http.StatusOK, save.Code)

	load := doJSON(t, router, http.MethodPost, "/indexes/load", nil)
	require.Equal(t, http.StatusOK, load.Code)
}

func TestLoadIndexesHandlerMissingSnapshots(t *testing.T) {
	router := newTestRouter(&stubEngine{loadErr: internalErrors.NewSnapshotNotFoundError("data/words.txt")})

	w := doJSON(t, router, http.MethodPost, "/indexes/load", nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	var apiErr APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, ErrorCodeSnapshotNotFound, apiErr.Code)
}

func TestGetStatsHandler(t *testing.T) {
	router := newTestRouter(&stubEngine{})

	w := doJSON(t, router, http.MethodGet, "/stats", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var stats services.EngineStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 10, stats.Words)
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	cfg := config.Default()
	cfg.Server.RateLimit = 1
	cfg.Server.RateBurst = 1
	SetupRoutes(router, &stubEngine{}, cfg, nil)

	first := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, first.Code)

	// The single-token burst is spent; the immediate follow-up is rejected.
	second := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	var apiErr APIError
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &apiErr))
	assert.Equal(t, ErrorCodeRateLimited, apiErr.Code)
}

func TestRequestSizeLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	cfg := config.Default()
	cfg.Server.MaxRequestBytes = 32
	SetupRoutes(router, &stubEngine{}, cfg, nil)

	big := bytes.Repeat([]byte("a"), 1024)
	w := doJSON(t, router, http.MethodPost, "/search", map[string]string{"query": string(big)})

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(&stubEngine{})

	req := httptest.NewRequest(http.MethodOptions, "/search", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
