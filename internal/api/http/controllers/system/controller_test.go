package system

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"kidcalc/internal/mocks"
)

func newRouter(t *testing.T) (*gin.Engine, *mocks.MockICalculationRepository, *Controller) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockICalculationRepository(ctrl)
	c := New(repo, zap.NewNop())
	r := gin.New()
	c.RegisterRoutes(r)
	return r, repo, c
}

func do(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestLiveness(t *testing.T) {
	r, _, _ := newRouter(t)

	w := do(r, "/liveness")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"alive"}`, w.Body.String())
}

func TestReadiness(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		r, repo, _ := newRouter(t)
		repo.EXPECT().Ping(gomock.Any()).Return(nil)

		w := do(r, "/readiness")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ready"}`, w.Body.String())
	})

	t.Run("store down", func(t *testing.T) {
		r, repo, _ := newRouter(t)
		repo.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))

		w := do(r, "/readiness")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "connection refused")
	})
}

func TestHealthcheck(t *testing.T) {
	r, _, c := newRouter(t)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	w := do(r, "/healthcheck")
	require.Equal(t, http.StatusOK, w.Code)

	var got HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "ok", got.Status)
	assert.True(t, fixed.Equal(got.Timestamp))
}
