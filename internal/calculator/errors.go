package calculator

import "errors"

var messages = []struct {
	err  error
	text string
}{
	{ErrInvalidCharacter, "Invalid character"},
	{ErrMalformedNumber, "Malformed number"},
	{ErrUnmatchedRightParenthesis, "Unmatched )"},
	{ErrUnmatchedLeftParenthesis, "Unmatched ("},
	{ErrMalformedExpression, "Malformed expression"},
	{ErrDivisionByZero, "Division by zero"},
	{ErrModuloByZero, "Modulo by zero"},
}

// Describe returns the text shown to the user for a failed evaluation.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.text
		}
	}
	return "Error"
}
