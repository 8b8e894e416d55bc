package calculator

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

type TokenType string

const (
	Number     TokenType = "number"
	Operator   TokenType = "operator"
	LeftParen  TokenType = "left_paren"
	RightParen TokenType = "right_paren"
)

var (
	ErrInvalidCharacter          = errors.New("invalid character")
	ErrMalformedNumber           = errors.New("malformed number")
	ErrUnmatchedRightParenthesis = errors.New("unmatched right parenthesis")
	ErrUnmatchedLeftParenthesis  = errors.New("unmatched left parenthesis")
	ErrMalformedExpression       = errors.New("malformed expression")
	ErrDivisionByZero            = errors.New("division by zero")
	ErrModuloByZero              = errors.New("modulo by zero")
)

// Token is produced by Tokenize and never mutated afterwards.
// Num holds the parsed value of a Number token.
// Unary marks the "-" synthesized for a leading minus; it is still a binary
// subtraction from zero, only its precedence differs.
type Token struct {
	Type  TokenType
	Value string
	Num   float64
	Unary bool
}

func (t Token) String() string {
	return t.Value
}

// Приоритеты операторов
var precedence = map[string]int{
	"+": 1,
	"-": 1,
	"*": 2,
	"/": 2,
	"%": 2,
	"^": 3,
}

// unary minus sits between * / % and ^, so that 4*-2 = -8 and -2^2 = -4
const unaryPrecedence = 2.5

func tokenPrecedence(t Token) float64 {
	if t.Unary {
		return unaryPrecedence
	}
	return float64(precedence[t.Value])
}

func rightAssociative(t Token) bool {
	return t.Value == "^"
}

// IsOperator reports whether s is one of the binary operator symbols.
func IsOperator(s string) bool {
	_, ok := precedence[s]
	return ok
}

var glyphs = strings.NewReplacer(
	"×", "*",
	"x", "*",
	"X", "*",
	"÷", "/",
	"−", "-",
	"=", "",
	",", ".",
)

// Normalize заменяет типографские символы на ASCII-операторы.
func Normalize(raw string) string {
	return glyphs.Replace(raw)
}

type Calculator struct {
	tokens []Token
}

func NewCalculator() *Calculator {
	return &Calculator{}
}

func Calc(expr string) (float64, error) {
	calc := NewCalculator()
	return calc.Calculate(expr)
}

func (c *Calculator) Calculate(expr string) (float64, error) {
	if err := c.Tokenize(expr); err != nil {
		return 0, fmt.Errorf("tokenization error: %w", err)
	}

	rpn, err := c.ToRPN()
	if err != nil {
		return 0, fmt.Errorf("RPN conversion error: %w", err)
	}

	return Evaluate(rpn)
}

func (c *Calculator) Tokenize(expr string) error {
	tokens, err := Tokenize(expr)
	if err != nil {
		return err
	}
	c.tokens = tokens
	return nil
}

func (c *Calculator) ToRPN() ([]Token, error) {
	return ToPostfix(c.tokens)
}

func (c *Calculator) EvaluateRPN(rpn []Token) (float64, error) {
	return Evaluate(rpn)
}

// Tokenize разбивает выражение на токены.
func Tokenize(raw string) ([]Token, error) {
	expr := Normalize(raw)

	var tokens []Token
	runes := []rune(expr)

	for i := 0; i < len(runes); i++ {
		char := runes[i]

		switch {
		case unicode.IsSpace(char):
			continue
		case char == '(':
			tokens = append(tokens, Token{Type: LeftParen, Value: "("})
		case char == ')':
			tokens = append(tokens, Token{Type: RightParen, Value: ")"})
		case char == '-' && expectsOperand(tokens):
			tokens = append(tokens,
				Token{Type: Number, Value: "0", Num: 0},
				Token{Type: Operator, Value: "-", Unary: true},
			)
		case IsOperator(string(char)):
			tokens = append(tokens, Token{Type: Operator, Value: string(char)})
		case isDigit(char) || char == '.':
			j := i
			dots := 0
			for j < len(runes) && (isDigit(runes[j]) || runes[j] == '.') {
				if runes[j] == '.' {
					dots++
					if dots > 1 {
						return nil, fmt.Errorf("%w: %q", ErrMalformedNumber, string(runes[i:j+1]))
					}
				}
				j++
			}
			literal := string(runes[i:j])
			num, err := strconv.ParseFloat(literal, 64)
			if err != nil || math.IsInf(num, 0) || math.IsNaN(num) {
				return nil, fmt.Errorf("%w: %q", ErrMalformedNumber, literal)
			}
			tokens = append(tokens, Token{Type: Number, Value: literal, Num: num})
			i = j - 1
		default:
			return nil, fmt.Errorf("%w: %c", ErrInvalidCharacter, char)
		}
	}

	return tokens, nil
}

// a minus is unary at the start, after an operator or after "("
func expectsOperand(tokens []Token) bool {
	if len(tokens) == 0 {
		return true
	}
	last := tokens[len(tokens)-1]
	return last.Type == Operator || last.Type == LeftParen
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// ToPostfix converts infix tokens to RPN with the shunting-yard algorithm.
func ToPostfix(tokens []Token) ([]Token, error) {
	var output []Token
	var stack []Token

	for _, token := range tokens {
		switch token.Type {
		case Number:
			output = append(output, token)
		case Operator:
			// prefix operators never pop: their operand is still to come
			if !token.Unary {
				for len(stack) > 0 && stack[len(stack)-1].Type == Operator {
					top := stack[len(stack)-1]
					if tokenPrecedence(top) > tokenPrecedence(token) ||
						(tokenPrecedence(top) == tokenPrecedence(token) && !rightAssociative(token)) {
						output = append(output, top)
						stack = stack[:len(stack)-1]
						continue
					}
					break
				}
			}
			stack = append(stack, token)
		case LeftParen:
			stack = append(stack, token)
		case RightParen:
			foundLeftParen := false
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.Type == LeftParen {
					foundLeftParen = true
					break
				}
				output = append(output, top)
			}
			if !foundLeftParen {
				return nil, ErrUnmatchedRightParenthesis
			}
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.Type == LeftParen {
			return nil, ErrUnmatchedLeftParenthesis
		}
		output = append(output, top)
	}

	return output, nil
}

// Evaluate reduces an RPN sequence to a single value.
func Evaluate(rpn []Token) (float64, error) {
	var stack []float64

	for _, token := range rpn {
		switch token.Type {
		case Number:
			stack = append(stack, token.Num)
		case Operator:
			if len(stack) < 2 {
				return 0, ErrMalformedExpression
			}

			b := stack[len(stack)-1]
			a := stack[len(stack)-2]
			stack = stack[:len(stack)-2]

			result, err := apply(token.Value, a, b)
			if err != nil {
				return 0, err
			}

			stack = append(stack, result)
		default:
			return 0, fmt.Errorf("%w: unexpected %s in RPN", ErrMalformedExpression, token.Type)
		}
	}

	if len(stack) != 1 {
		return 0, ErrMalformedExpression
	}

	return stack[0], nil
}

func apply(op string, a, b float64) (float64, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	case "%":
		if b == 0 {
			return 0, ErrModuloByZero
		}
		return math.Mod(a, b), nil
	case "^":
		return math.Pow(a, b), nil
	}
	return 0, fmt.Errorf("%w: unknown operator %q", ErrMalformedExpression, op)
}
