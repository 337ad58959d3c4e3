package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archivechat/models"
	"archivechat/services"
)

type stubChatService struct {
	resp *models.QueryResponse
	err  error
}

func (s *stubChatService) Query(context.Context, models.QueryRequest) (*models.QueryResponse, error) {
	return s.resp, s.err
}

func (s *stubChatService) Stats(context.Context) (*models.StatsResponse, error) {
	return &models.StatsResponse{Chunks: 7}, nil
}

func newTestRouter(svc services.ChatService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	c := NewChatController(svc)
	router.POST("/api/v1/query", c.Query)
	router.GET("/api/v1/stats", c.Stats)
	return router
}

func TestQueryReturnsAnswerAndCitations(t *testing.T) {
	router := newTestRouter(&stubChatService{resp: &models.QueryResponse{
		Answer:    "Fourteen-hour days were common.",
		Citations: []models.EvidenceItem{{Title: "Sadler Report", Page: 3}},
		Grounded:  true,
	}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(`{"query":"child labor hours"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Sadler Report")
	assert.Contains(t, w.Body.String(), `"grounded":true`)
}

func TestQuerySearchUnavailableMapsTo503(t *testing.T) {
	router := newTestRouter(&stubChatService{err: services.ErrSearchUnavailable})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(`{"query":"anything"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Cannot reach the archive")
}

func TestQueryMissingBodyIsBadRequest(t *testing.T) {
	router := newTestRouter(&stubChatService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueryWhitespaceOnlyIsBadRequest(t *testing.T) {
	// "   " satisfies the binding:"required" tag, so the service's own
	// rejection has to come back as a 400, not a 500.
	router := newTestRouter(&stubChatService{err: services.ErrEmptyQuery})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(`{"query":"   "}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "must not be empty")
}

func TestStats(t *testing.T) {
	router := newTestRouter(&stubChatService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"chunks":7`)
}
