// Package session drives the calculator keypad: it owns the input buffer,
// the last answer and the overwrite-after-equals behaviour.
package session

import (
	"log"
	"strconv"
	"strings"
	"sync"

	"kitchencalc/internal/calculator"
	"kitchencalc/internal/history"
)

// Клавиши, которые не попадают в буфер как есть.
const (
	KeyEquals    = "="
	KeyBackspace = "⌫"
	KeyClear     = "AC"
	KeyAns       = "Ans"
)

var keyAliases = map[string]string{
	"×": "*",
	"x": "*",
	"÷": "/",
	"−": "-",
	",": ".",
}

type State struct {
	Expression string   `json:"expression"`
	Preview    string   `json:"preview"`
	Error      string   `json:"error"`
	Overwrite  bool     `json:"overwrite"`
	LastAnswer *float64 `json:"lastAnswer,omitempty"`
}

// Session is safe for concurrent use; every call runs to completion under one lock.
type Session struct {
	mu sync.Mutex

	expression   string
	lastAnswer   float64
	hasAnswer    bool
	errorMessage string
	overwrite    bool

	ledger *history.Ledger
}

func New(ledger *history.Ledger) *Session {
	return &Session{ledger: ledger}
}

func (s *Session) History() *history.Ledger {
	return s.ledger
}

// Press feeds one keypad symbol.
func (s *Session) Press(symbol string) {
	switch symbol {
	case KeyEquals:
		_, _ = s.Submit()
		return
	case KeyBackspace:
		s.Backspace()
		return
	case KeyClear:
		s.Clear()
		return
	}

	if alias, ok := keyAliases[symbol]; ok {
		symbol = alias
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.errorMessage = ""

	if !s.overwrite {
		s.expression += symbol
		return
	}

	s.overwrite = false
	switch {
	case isOperand(symbol):
		s.expression = symbol
	case calculator.IsOperator(symbol):
		s.expression = calculator.FormatResult(s.lastAnswer) + symbol
	default:
		s.expression = symbol
	}
}

func isOperand(symbol string) bool {
	if symbol == "." || symbol == "(" || symbol == KeyAns {
		return true
	}
	for _, r := range symbol {
		if r < '0' || r > '9' {
			return false
		}
	}
	return symbol != ""
}

func (s *Session) Backspace() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overwrite = false
	s.errorMessage = ""
	if s.expression == "" {
		return
	}
	// Ans стирается целиком
	if strings.HasSuffix(s.expression, KeyAns) {
		s.expression = strings.TrimSuffix(s.expression, KeyAns)
		return
	}
	runes := []rune(s.expression)
	s.expression = string(runes[:len(runes)-1])
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expression = ""
	s.errorMessage = ""
	s.overwrite = false
}

// LivePreview never reports errors: incomplete or invalid input previews as "".
func (s *Session) LivePreview() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previewLocked()
}

func (s *Session) previewLocked() string {
	expr := strings.TrimSpace(s.expression)
	if expr == "" || looksIncomplete(expr) {
		return ""
	}

	v, err := calculator.Calc(s.substituteAns(expr))
	if err != nil {
		return ""
	}
	return calculator.FormatResult(v)
}

func looksIncomplete(expr string) bool {
	runes := []rune(expr)
	last := calculator.Normalize(string(runes[len(runes)-1]))
	return calculator.IsOperator(last) || last == "(" || last == "."
}

// Submit evaluates the buffer, records it in the history and arms overwrite mode.
// The buffer itself is left as typed.
func (s *Session) Submit() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	display := s.expression
	if strings.TrimSpace(display) == "" {
		return "", nil
	}

	v, err := calculator.Calc(s.substituteAns(display))
	if err != nil {
		s.errorMessage = calculator.Describe(err)
		s.overwrite = false
		log.Printf("Ошибка вычисления %q: %v", display, err)
		return "", err
	}

	result := calculator.FormatResult(v)
	s.lastAnswer = v
	s.hasAnswer = true
	s.errorMessage = ""
	s.overwrite = true

	if s.ledger != nil {
		s.ledger.Append(display, result)
	}

	return result, nil
}

// без предыдущего ответа Ans равен нулю; скобки нужны для отрицательных значений
func (s *Session) substituteAns(expr string) string {
	if !strings.Contains(expr, KeyAns) {
		return expr
	}
	v := 0.0
	if s.hasAnswer {
		v = s.lastAnswer
	}
	value := "(" + strconv.FormatFloat(v, 'f', -1, 64) + ")"
	return strings.ReplaceAll(expr, KeyAns, value)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Expression: s.expression,
		Preview:    s.previewLocked(),
		Error:      s.errorMessage,
		Overwrite:  s.overwrite,
	}
	if s.hasAnswer {
		answer := s.lastAnswer
		st.LastAnswer = &answer
	}
	return st
}

func (s *Session) Expression() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expression
}

func (s *Session) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errorMessage
}
