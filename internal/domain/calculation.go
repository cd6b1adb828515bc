package domain

import (
	"fmt"
	"math"
	"time"
)

// Operation — арифметическая операция калькулятора. Нулевое значение — неизвестная операция.
type Operation uint8

// Константы арифметических операций.
const (
	opUnknown Operation = iota
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
)

var operationNames = map[Operation]string{
	OpAdd:      "add",
	OpSubtract: "subtract",
	OpMultiply: "multiply",
	OpDivide:   "divide",
}

// Operations возвращает все поддерживаемые операции в каноническом порядке.
func Operations() []Operation {
	return []Operation{OpAdd, OpSubtract, OpMultiply, OpDivide}
}

// ParseOperation переводит имя операции ("add", "subtract", ...) в Operation.
func ParseOperation(s string) (Operation, error) {
	for op, name := range operationNames {
		if name == s {
			return op, nil
		}
	}
	return opUnknown, fmt.Errorf("%w: %q", ErrInvalidOperation, s)
}

// Valid сообщает, входит ли операция в закрытый набор.
func (o Operation) Valid() bool {
	_, ok := operationNames[o]
	return ok
}

func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Operation(%d)", uint8(o))
}

// MarshalText отдаёт имя операции (JSON, BSON-строки и т.п.).
func (o Operation) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOperation, uint8(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText разбирает имя операции.
func (o *Operation) UnmarshalText(text []byte) error {
	op, err := ParseOperation(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// Expression — два операнда и операция над ними.
type Expression struct {
	FirstNumber  float64
	SecondNumber float64
	Operation    Operation
}

// Evaluate считает выражение. Деление на ноль и неизвестная операция возвращают ошибки,
// бесконечность и NaN наружу не отдаются: такой результат нельзя ни сохранить, ни закодировать в JSON.
func (e Expression) Evaluate() (float64, error) {
	a, b := e.FirstNumber, e.SecondNumber
	var res float64
	switch e.Operation {
	case OpAdd:
		res = a + b
	case OpSubtract:
		res = a - b
	case OpMultiply:
		res = a * b
	case OpDivide:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		res = a / b
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidOperation, e.Operation)
	}
	if math.IsInf(res, 0) || math.IsNaN(res) {
		return 0, fmt.Errorf("%w: %v %s %v", ErrResultOutOfRange, a, e.Operation, b)
	}
	return res, nil
}

// Calculation — запись истории. После создания не меняется.
type Calculation struct {
	ID           int64     `json:"id"`
	FirstNumber  float64   `json:"first_number"`
	SecondNumber float64   `json:"second_number"`
	Operation    Operation `json:"operation"`
	Result       float64   `json:"result"`
	CreatedAt    time.Time `json:"created_at"`
}

// Expression возвращает выражение, из которого получена запись.
func (c Calculation) Expression() Expression {
	return Expression{FirstNumber: c.FirstNumber, SecondNumber: c.SecondNumber, Operation: c.Operation}
}

// CalculationResult — ответ сервиса на успешный расчёт.
type CalculationResult struct {
	Result      float64     `json:"result"`
	Calculation Calculation `json:"calculation"`
}

// ClearOutcome — результат очистки истории.
type ClearOutcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
