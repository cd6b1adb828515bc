package calculator

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"kidcalc/internal/domain"
	"kidcalc/internal/mocks"
)

func newRouter(t *testing.T) (*gin.Engine, *mocks.MockICalculatorUseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	uc := mocks.NewMockICalculatorUseCase(ctrl)
	r := gin.New()
	New(uc, zap.NewNop()).RegisterRoutes(r)
	return r, uc
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

var createdAt = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func TestPerformCalculation(t *testing.T) {
	r, uc := newRouter(t)
	calc := domain.Calculation{
		ID: 7, FirstNumber: 5, SecondNumber: 3, Operation: domain.OpAdd, Result: 8, CreatedAt: createdAt,
	}
	uc.EXPECT().PerformCalculation(gomock.Any(), 5.0, 3.0, domain.OpAdd).
		Return(&domain.CalculationResult{Result: 8, Calculation: calc}, nil)

	w := do(r, http.MethodPost, "/api/v1/calculations", `{"first_number":5,"second_number":3,"operation":"add"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"result": 8,
		"calculation": {
			"id": 7, "first_number": 5, "second_number": 3, "operation": "add",
			"result": 8, "created_at": "2024-01-02T03:04:05Z"
		}
	}`, w.Body.String())
}

func TestPerformCalculation_ZeroOperands(t *testing.T) {
	r, uc := newRouter(t)
	uc.EXPECT().PerformCalculation(gomock.Any(), 0.0, 0.0, domain.OpMultiply).
		Return(&domain.CalculationResult{Calculation: domain.Calculation{ID: 1, Operation: domain.OpMultiply}}, nil)

	w := do(r, http.MethodPost, "/api/v1/calculations", `{"first_number":0,"second_number":0,"operation":"multiply"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPerformCalculation_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		ucErr    error
		wantCode int
		wantErr  string
	}{
		{
			name:     "malformed json",
			body:     `{"first_number":`,
			wantCode: http.StatusBadRequest,
			wantErr:  CodeInvalidRequest,
		},
		{
			name:     "missing operand",
			body:     `{"first_number":1,"operation":"add"}`,
			wantCode: http.StatusBadRequest,
			wantErr:  CodeInvalidRequest,
		},
		{
			name:     "operand is not a number",
			body:     `{"first_number":"one","second_number":2,"operation":"add"}`,
			wantCode: http.StatusBadRequest,
			wantErr:  CodeInvalidRequest,
		},
		{
			name:     "unknown operation",
			body:     `{"first_number":1,"second_number":2,"operation":"power"}`,
			wantCode: http.StatusBadRequest,
			wantErr:  CodeInvalidOperation,
		},
		{
			name:     "division by zero",
			body:     `{"first_number":10,"second_number":0,"operation":"divide"}`,
			ucErr:    domain.ErrDivisionByZero,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  CodeDivisionByZero,
		},
		{
			name:     "result out of range",
			body:     `{"first_number":1e308,"second_number":10,"operation":"multiply"}`,
			ucErr:    domain.ErrResultOutOfRange,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  CodeResultOutOfRange,
		},
		{
			name:     "storage down",
			body:     `{"first_number":1,"second_number":2,"operation":"add"}`,
			ucErr:    domain.NewStorageError("save calculation", errors.New("connection reset")),
			wantCode: http.StatusServiceUnavailable,
			wantErr:  CodeStorageFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, uc := newRouter(t)
			if tt.ucErr != nil {
				uc.EXPECT().PerformCalculation(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, tt.ucErr)
			}

			w := do(r, http.MethodPost, "/api/v1/calculations", tt.body)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantErr, decodeError(t, w).Code)
		})
	}
}

func TestHistory(t *testing.T) {
	r, uc := newRouter(t)
	uc.EXPECT().History(gomock.Any()).Return([]domain.Calculation{
		{ID: 2, FirstNumber: 6, SecondNumber: 2, Operation: domain.OpDivide, Result: 3, CreatedAt: createdAt.Add(time.Second)},
		{ID: 1, FirstNumber: 5, SecondNumber: 3, Operation: domain.OpSubtract, Result: 2, CreatedAt: createdAt},
	}, nil)

	w := do(r, http.MethodGet, "/api/v1/calculations", "")

	require.Equal(t, http.StatusOK, w.Code)
	var items []CalculationDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].ID)
	assert.Equal(t, "divide", items[0].Operation)
	assert.Equal(t, "subtract", items[1].Operation)
}

func TestHistory_Empty(t *testing.T) {
	r, uc := newRouter(t)
	uc.EXPECT().History(gomock.Any()).Return([]domain.Calculation{}, nil)

	w := do(r, http.MethodGet, "/api/v1/calculations", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestHistory_StorageFailure(t *testing.T) {
	r, uc := newRouter(t)
	uc.EXPECT().History(gomock.Any()).Return(nil, domain.NewStorageError("get history", errors.New("timeout")))

	w := do(r, http.MethodGet, "/api/v1/calculations", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, CodeStorageFailure, decodeError(t, w).Code)
}

func TestClearHistory(t *testing.T) {
	r, uc := newRouter(t)
	uc.EXPECT().ClearHistory(gomock.Any()).
		Return(domain.ClearOutcome{Success: true, Message: "Calculation history cleared successfully!"}, nil)

	w := do(r, http.MethodDelete, "/api/v1/calculations", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Calculation history cleared successfully!"}`, w.Body.String())
}

func TestClearHistory_StorageFailure(t *testing.T) {
	r, uc := newRouter(t)
	uc.EXPECT().ClearHistory(gomock.Any()).Return(domain.ClearOutcome{}, domain.NewStorageError("clear history", errors.New("boom")))

	w := do(r, http.MethodDelete, "/api/v1/calculations", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, CodeStorageFailure, decodeError(t, w).Code)
}

func TestOperationStats(t *testing.T) {
	r, uc := newRouter(t)
	uc.EXPECT().OperationStats(gomock.Any()).
		Return(map[string]uint64{"add": 2, "subtract": 0, "multiply": 1, "divide": 0}, nil)

	w := do(r, http.MethodGet, "/api/v1/calculations/stats", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"counts":{"add":2,"subtract":0,"multiply":1,"divide":0}}`, w.Body.String())
}

func TestOperationStats_Disabled(t *testing.T) {
	r, uc := newRouter(t)
	uc.EXPECT().OperationStats(gomock.Any()).Return(nil, domain.ErrAnalyticsDisabled)

	w := do(r, http.MethodGet, "/api/v1/calculations/stats", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeAnalyticsDisabled, decodeError(t, w).Code)
}
