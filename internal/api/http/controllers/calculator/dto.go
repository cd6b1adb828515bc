package calculator

import (
	"errors"
	"time"

	"kidcalc/internal/domain"
)

// PerformCalculationRequest — запрос на вычисление (POST /api/v1/calculations).
// Числа — указатели: binding:"required" иначе отверг бы законный 0.
type PerformCalculationRequest struct {
	FirstNumber  *float64 `json:"first_number" binding:"required"`
	SecondNumber *float64 `json:"second_number" binding:"required"`
	Operation    string   `json:"operation" binding:"required"`
}

// Parse проверяет операцию и возвращает типизированные аргументы расчёта.
func (r PerformCalculationRequest) Parse() (first, second float64, op domain.Operation, err error) {
	if r.FirstNumber == nil || r.SecondNumber == nil {
		return 0, 0, op, errors.New("first_number and second_number are required")
	}
	op, err = domain.ParseOperation(r.Operation)
	if err != nil {
		return 0, 0, op, err
	}
	return *r.FirstNumber, *r.SecondNumber, op, nil
}

// CalculationDTO — запись истории в формате API.
type CalculationDTO struct {
	ID           int64     `json:"id"`
	FirstNumber  float64   `json:"first_number"`
	SecondNumber float64   `json:"second_number"`
	Operation    string    `json:"operation"`
	Result       float64   `json:"result"`
	CreatedAt    time.Time `json:"created_at"`
}

func toDTO(c domain.Calculation) CalculationDTO {
	return CalculationDTO{
		ID:           c.ID,
		FirstNumber:  c.FirstNumber,
		SecondNumber: c.SecondNumber,
		Operation:    c.Operation.String(),
		Result:       c.Result,
		CreatedAt:    c.CreatedAt,
	}
}

// PerformCalculationResponse — результат и сохранённая запись.
type PerformCalculationResponse struct {
	Result      float64        `json:"result"`
	Calculation CalculationDTO `json:"calculation"`
}

// ClearHistoryResponse — ответ на очистку истории.
type ClearHistoryResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// OperationStatsResponse — число расчётов по операциям.
type OperationStatsResponse struct {
	Counts map[string]uint64 `json:"counts"`
}

// Коды ошибок API, по ним клиент различает виды отказа.
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeInvalidOperation  = "INVALID_OPERATION"
	CodeDivisionByZero    = "DIVISION_BY_ZERO"
	CodeResultOutOfRange  = "RESULT_OUT_OF_RANGE"
	CodeStorageFailure    = "STORAGE_FAILURE"
	CodeAnalyticsDisabled = "ANALYTICS_DISABLED"
	CodeInternal          = "INTERNAL"
)

// ErrorBody — описание ошибки.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — тело ответа с ошибкой.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}
