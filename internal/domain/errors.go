package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOperation возвращается, когда операция не из набора add/subtract/multiply/divide.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrDivisionByZero возвращается при делении на ноль. Запись в историю не создаётся.
	ErrDivisionByZero = errors.New("cannot divide by zero")
	// ErrStorage — общий признак сбоя хранилища истории.
	ErrStorage = errors.New("storage failure")
	// ErrResultOutOfRange возвращается, когда результат не помещается в float64 (±Inf, NaN).
	ErrResultOutOfRange = errors.New("result is out of range")
	// ErrAnalyticsDisabled — аналитика (ClickHouse) не подключена.
	ErrAnalyticsDisabled = errors.New("analytics disabled")
)

// StorageError оборачивает ошибку хранилища: errors.Is(err, ErrStorage) == true, причина доступна через Unwrap.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError оборачивает err, nil остаётся nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }
