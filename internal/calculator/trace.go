package calculator

import "fmt"

// Step is one binary operation in evaluation order.
type Step struct {
	Left   float64
	Op     string
	Right  float64
	Result float64
}

func (s Step) String() string {
	return fmt.Sprintf("%s %s %s = %s", FormatResult(s.Left), s.Op, FormatResult(s.Right), FormatResult(s.Result))
}

// Trace раскладывает RPN на последовательность элементарных операций,
// в том порядке, в котором их выполняет Evaluate.
func Trace(rpn []Token) ([]Step, error) {
	var steps []Step
	var stack []float64

	for _, token := range rpn {
		switch token.Type {
		case Number:
			stack = append(stack, token.Num)
		case Operator:
			if len(stack) < 2 {
				return nil, ErrMalformedExpression
			}

			right := stack[len(stack)-1]
			left := stack[len(stack)-2]
			stack = stack[:len(stack)-2]

			result, err := apply(token.Value, left, right)
			if err != nil {
				return nil, err
			}

			steps = append(steps, Step{Left: left, Op: token.Value, Right: right, Result: result})
			stack = append(stack, result)
		default:
			return nil, ErrMalformedExpression
		}
	}

	if len(stack) != 1 {
		return nil, ErrMalformedExpression
	}

	return steps, nil
}
