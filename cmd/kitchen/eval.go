package main

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"kitchencalc/internal/calculator"
	"kitchencalc/internal/history"
	"kitchencalc/internal/session"
)

func newEvalCmd(a *app) *cobra.Command {
	var trace bool

	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate an expression and record it in history",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr := strings.Join(args, " ")
			input := substituteAns(expr, a.ledger.Entries())

			if trace {
				if err := printTrace(cmd, input); err != nil {
					return err
				}
			}

			v, err := calculator.Calc(input)
			if err != nil {
				return errors.New(calculator.Describe(err))
			}
			result := calculator.FormatResult(v)
			a.ledger.Append(expr, result)
			cmd.Println(result)
			return nil
		},
	}
	cmd.Flags().BoolVar(&trace, "trace", false, "print every evaluation step")
	return cmd
}

// Ans is the newest history result; with empty history it is 0.
func substituteAns(expr string, entries []history.Entry) string {
	if !strings.Contains(expr, session.KeyAns) {
		return expr
	}
	v := 0.0
	if len(entries) > 0 {
		// "1e+21" и "—" токенизатор не примет, поэтому переводим в 'f'
		if n, err := strconv.ParseFloat(entries[0].Result, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
			v = n
		}
	}
	value := "(" + strconv.FormatFloat(v, 'f', -1, 64) + ")"
	return strings.ReplaceAll(expr, session.KeyAns, value)
}

func printTrace(cmd *cobra.Command, expr string) error {
	tokens, err := calculator.Tokenize(expr)
	if err != nil {
		return errors.New(calculator.Describe(err))
	}
	rpn, err := calculator.ToPostfix(tokens)
	if err != nil {
		return errors.New(calculator.Describe(err))
	}

	parts := make([]string, len(rpn))
	for i, t := range rpn {
		parts[i] = t.Value
	}
	cmd.Printf("rpn: %s\n", strings.Join(parts, " "))

	steps, err := calculator.Trace(rpn)
	for _, s := range steps {
		cmd.Printf("  %s\n", s)
	}
	if err != nil {
		return errors.New(calculator.Describe(err))
	}
	return nil
}
