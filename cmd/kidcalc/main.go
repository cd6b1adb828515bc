// Command kidcalc — терминальный калькулятор: клавиши вводятся строкой ("12+3="), расчёты и история
// идут через gRPC-сервис калькулятора.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode"

	"github.com/kelseyhightower/envconfig"

	"kidcalc/internal/api/grpc/calculator"
	"kidcalc/internal/domain"
	"kidcalc/internal/keypad"
)

// Config — настройки клиента. Переменные: KIDCALC_ADDR, KIDCALC_TIMEOUT.
type Config struct {
	Addr    string        `envconfig:"ADDR" default:"localhost:9090"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"5s"`
}

// service — то, что терминалу нужно от сервиса калькулятора.
type service interface {
	PerformCalculation(ctx context.Context, expr domain.Expression) (*domain.CalculationResult, error)
	History(ctx context.Context) ([]domain.Calculation, error)
	ClearHistory(ctx context.Context) (domain.ClearOutcome, error)
}

const help = `keys: 0-9 . + - * / = c   (e.g. 12+3=)
commands: history, forget (clear history), help, quit`

func main() {
	var cfg Config
	if err := envconfig.Process("KIDCALC", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	client, err := calculator.Dial(cfg.Addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t := &terminal{svc: client, out: os.Stdout, timeout: cfg.Timeout, pad: keypad.New()}
	if err := t.run(ctx, os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "kidcalc: %v\n", err)
		os.Exit(1)
	}
}

type terminal struct {
	svc     service
	out     io.Writer
	timeout time.Duration
	pad     keypad.Keypad
}

// run читает строки до EOF, "quit" или отмены ctx.
func (t *terminal) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(t.out, help)
	t.show()

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(sc.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit", "q":
			return nil
		case "help", "?":
			fmt.Fprintln(t.out, help)
		case "history":
			t.history(ctx)
		case "forget":
			t.forget(ctx)
		default:
			t.keys(ctx, line)
		}
		t.show()
	}
	return sc.Err()
}

// keys нажимает клавиши строки по очереди; "=" или вторая операция отправляют выражение на расчёт.
func (t *terminal) keys(ctx context.Context, line string) {
	for _, r := range line {
		if unicode.IsSpace(r) {
			continue
		}
		expr, submit, err := t.pad.Press(r)
		if err != nil {
			fmt.Fprintf(t.out, "  %v\n", err)
			return
		}
		if submit {
			t.calculate(ctx, expr)
		}
	}
}

func (t *terminal) calculate(ctx context.Context, expr domain.Expression) {
	cctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	res, err := t.svc.PerformCalculation(cctx, expr)
	if err != nil {
		t.pad.Fail(err)
		return
	}
	t.pad.Apply(res.Result)
}

func (t *terminal) history(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	list, err := t.svc.History(cctx)
	if err != nil {
		fmt.Fprintf(t.out, "  history unavailable: %v\n", err)
		return
	}
	if len(list) == 0 {
		fmt.Fprintln(t.out, "  no calculations yet")
		return
	}
	for _, c := range list {
		fmt.Fprintf(t.out, "  #%d  %s  %s = %s\n", c.ID, c.CreatedAt.Local().Format(time.TimeOnly),
			formatExpr(c.Expression()), formatValue(c.Result))
	}
}

func (t *terminal) forget(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	out, err := t.svc.ClearHistory(cctx)
	if err != nil {
		fmt.Fprintf(t.out, "  clear failed: %v\n", err)
		return
	}
	fmt.Fprintf(t.out, "  %s\n", out.Message)
}

func (t *terminal) show() {
	if p := t.pad.Pending(); p != "" {
		fmt.Fprintf(t.out, "[%s] %s\n", p, t.pad.Display())
		return
	}
	fmt.Fprintf(t.out, "[ %s ]\n", t.pad.Display())
}

func formatExpr(e domain.Expression) string {
	return formatValue(e.FirstNumber) + " " + keypad.Symbol(e.Operation) + " " + formatValue(e.SecondNumber)
}

func formatValue(v float64) string {
	return fmt.Sprintf("%g", v)
}
