// Package keypad — состояние кнопочного калькулятора: что на экране, какое число и операция ждут
// второго операнда. Сам ничего не считает: по "=" отдаёт domain.Expression, результат приходит через Apply.
package keypad

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"kidcalc/internal/domain"
)

// State — фаза ввода.
type State uint8

const (
	// Idle — набирается первое число.
	Idle State = iota
	// AwaitingSecondOperand — операция выбрана, ждём второе число и "=".
	AwaitingSecondOperand
	// ResultShown — на экране результат, следующая цифра начнёт новый ввод.
	ResultShown
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingSecondOperand:
		return "awaiting_second_operand"
	case ResultShown:
		return "result_shown"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Сообщения на экране при ошибке расчёта.
const (
	DivisionByZeroNotice = "Can't ÷ by 0"
	TooBigNotice         = "Too big!"
	GenericNotice        = "Hmm..."
)

// ErrUnknownKey — клавиша не из набора Press.
var ErrUnknownKey = errors.New("unknown key")

// Keypad — состояние калькулятора. Создаётся через New.
type Keypad struct {
	display  string
	notice   string
	first    float64
	hasFirst bool
	op       domain.Operation
	waiting  bool
	state    State
}

// New возвращает калькулятор с "0" на экране.
func New() Keypad {
	return Keypad{display: "0"}
}

// Display — текст на экране.
func (k Keypad) Display() string {
	if k.notice != "" {
		return k.notice
	}
	return k.display
}

func (k Keypad) State() State { return k.state }

// Pending — первое число и выбранная операция, например "12 ×". Пусто, если операция не выбрана.
func (k Keypad) Pending() string {
	if !k.hasFirst || !k.op.Valid() {
		return ""
	}
	return formatNumber(k.first) + " " + Symbol(k.op)
}

// Digit добавляет цифру 0-9. Ведущий "0" заменяется.
func (k *Keypad) Digit(d rune) error {
	if d < '0' || d > '9' {
		return fmt.Errorf("%w: %q", ErrUnknownKey, d)
	}
	k.notice = ""
	switch {
	case k.waiting:
		k.display = string(d)
		k.waiting = false
	case k.display == "0":
		k.display = string(d)
	default:
		k.display += string(d)
	}
	if k.state == ResultShown {
		k.state = Idle
	}
	return nil
}

// Decimal ставит десятичную точку. Вторая точка в том же числе игнорируется.
func (k *Keypad) Decimal() {
	k.notice = ""
	switch {
	case k.waiting:
		k.display = "0."
		k.waiting = false
	case !strings.Contains(k.display, "."):
		k.display += "."
	}
	if k.state == ResultShown {
		k.state = Idle
	}
}

// Clear сбрасывает всё к начальному состоянию.
func (k *Keypad) Clear() {
	*k = New()
}

// Operation выбирает операцию. Если первое число и операция уже есть, нажатие работает как "=":
// возвращается выражение для расчёта, а новая операция не запоминается.
func (k *Keypad) Operation(op domain.Operation) (domain.Expression, bool) {
	k.notice = ""
	if k.hasFirst && k.op.Valid() {
		return k.Equals()
	}
	if !k.hasFirst {
		k.first = k.value()
		k.hasFirst = true
	}
	k.op = op
	k.waiting = true
	k.state = AwaitingSecondOperand
	return domain.Expression{}, false
}

// Equals возвращает выражение для отправки на сервер, если выбрана операция.
// Состояние не меняется, пока не придёт Apply или Fail.
func (k *Keypad) Equals() (domain.Expression, bool) {
	if !k.hasFirst || !k.op.Valid() {
		return domain.Expression{}, false
	}
	return domain.Expression{FirstNumber: k.first, SecondNumber: k.value(), Operation: k.op}, true
}

// Apply показывает результат расчёта. Следующая операция возьмёт его первым числом.
func (k *Keypad) Apply(result float64) {
	k.display = formatNumber(result)
	k.notice = ""
	k.first = 0
	k.hasFirst = false
	k.op = 0
	k.waiting = true
	k.state = ResultShown
}

// Fail показывает понятное ребёнку сообщение и сбрасывает ввод.
func (k *Keypad) Fail(err error) {
	k.Clear()
	if errors.Is(err, domain.ErrDivisionByZero) {
		k.notice = DivisionByZeroNotice
		return
	}
	if errors.Is(err, domain.ErrResultOutOfRange) {
		k.notice = TooBigNotice
		return
	}
	k.notice = GenericNotice
}

// Press обрабатывает одну клавишу: цифры, ".", "+ - * /" (и "× ÷"), "=", "c".
// submit == true означает, что выражение нужно отправить на расчёт.
func (k *Keypad) Press(key rune) (expr domain.Expression, submit bool, err error) {
	switch key {
	case '.', ',':
		k.Decimal()
		return expr, false, nil
	case '=':
		expr, submit = k.Equals()
		return expr, submit, nil
	case 'c', 'C':
		k.Clear()
		return expr, false, nil
	}
	if op, ok := keyOperation(key); ok {
		expr, submit = k.Operation(op)
		return expr, submit, nil
	}
	return expr, false, k.Digit(key)
}

// Symbol — значок операции на кнопке.
func Symbol(op domain.Operation) string {
	switch op {
	case domain.OpAdd:
		return "+"
	case domain.OpSubtract:
		return "−"
	case domain.OpMultiply:
		return "×"
	case domain.OpDivide:
		return "÷"
	default:
		return "?"
	}
}

func keyOperation(key rune) (domain.Operation, bool) {
	switch key {
	case '+':
		return domain.OpAdd, true
	case '-', '−':
		return domain.OpSubtract, true
	case '*', 'x', '×':
		return domain.OpMultiply, true
	case '/', '÷':
		return domain.OpDivide, true
	default:
		return 0, false
	}
}

// value — число на экране. Экран всегда содержит разбираемое число, кроме сообщения об ошибке.
func (k Keypad) value() float64 {
	v, err := strconv.ParseFloat(k.display, 64)
	if err != nil {
		return 0
	}
	return v
}

// formatNumber печатает число без хвостовых нулей, очень большие и очень маленькие — с экспонентой.
func formatNumber(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
