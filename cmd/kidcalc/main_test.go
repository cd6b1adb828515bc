package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kidcalc/internal/domain"
	"kidcalc/internal/keypad"
)

// fakeService считает локально и хранит историю в памяти.
type fakeService struct {
	history []domain.Calculation
	cleared int
}

func (f *fakeService) PerformCalculation(_ context.Context, expr domain.Expression) (*domain.CalculationResult, error) {
	res, err := expr.Evaluate()
	if err != nil {
		return nil, err
	}
	c := domain.Calculation{
		ID: int64(len(f.history) + 1), FirstNumber: expr.FirstNumber, SecondNumber: expr.SecondNumber,
		Operation: expr.Operation, Result: res, CreatedAt: time.Now(),
	}
	f.history = append([]domain.Calculation{c}, f.history...)
	return &domain.CalculationResult{Result: res, Calculation: c}, nil
}

func (f *fakeService) History(context.Context) ([]domain.Calculation, error) {
	return f.history, nil
}

func (f *fakeService) ClearHistory(context.Context) (domain.ClearOutcome, error) {
	f.cleared++
	f.history = nil
	return domain.ClearOutcome{Success: true, Message: "Calculation history cleared successfully!"}, nil
}

func newTerminal(svc service) (*terminal, *bytes.Buffer) {
	var out bytes.Buffer
	return &terminal{svc: svc, out: &out, timeout: time.Second, pad: keypad.New()}, &out
}

func TestTerminal_Calculate(t *testing.T) {
	svc := &fakeService{}
	term, out := newTerminal(svc)

	err := term.run(context.Background(), strings.NewReader("12 + 3 =\nhistory\nquit\n"))

	require.NoError(t, err)
	assert.Equal(t, "15", term.pad.Display())
	require.Len(t, svc.history, 1)
	assert.Contains(t, out.String(), "12 + 3 = 15")
}

func TestTerminal_DivisionByZero(t *testing.T) {
	svc := &fakeService{}
	term, out := newTerminal(svc)

	require.NoError(t, term.run(context.Background(), strings.NewReader("8/0=\n")))

	assert.Contains(t, out.String(), keypad.DivisionByZeroNotice)
	assert.Empty(t, svc.history)
}

func TestTerminal_Forget(t *testing.T) {
	svc := &fakeService{}
	term, out := newTerminal(svc)

	require.NoError(t, term.run(context.Background(), strings.NewReader("1+1=\nforget\nhistory\n")))

	assert.Equal(t, 1, svc.cleared)
	assert.Contains(t, out.String(), "Calculation history cleared successfully!")
	assert.Contains(t, out.String(), "no calculations yet")
}

func TestTerminal_UnknownKey(t *testing.T) {
	term, out := newTerminal(&fakeService{})

	require.NoError(t, term.run(context.Background(), strings.NewReader("2?\n")))

	assert.Contains(t, out.String(), "unknown key")
	assert.Equal(t, "2", term.pad.Display())
}
