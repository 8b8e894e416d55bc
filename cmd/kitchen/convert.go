package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"kitchencalc/internal/calculator"
	"kitchencalc/internal/convert"
)

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <value> <from> <to>",
		Short: "Convert between kitchen units (quote multi-word units: \"fl oz\", \"gas mark\")",
		Example: `  kitchen convert 2 cup ml
  kitchen convert 180 C F
  kitchen convert 8 "fl oz" cup`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseNumber(args[0])
			if err != nil {
				return err
			}
			v, err := convert.Convert(value, args[1], args[2])
			if err != nil {
				return err
			}
			cmd.Printf("%s %s = %s %s\n", calculator.FormatResult(value), args[1], calculator.FormatResult(v), args[2])
			return nil
		},
	}
}

func newPartsCmd() *cobra.Command {
	var (
		total float64
		ratio string
		names []string
	)

	cmd := &cobra.Command{
		Use:     "parts",
		Short:   "Split a total amount by a ratio such as 2:1:1",
		Example: "  kitchen parts --total 800 --parts 2,1,1 --names flour,water,butter",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parts, err := convert.ParseRatio(ratio)
			if err != nil {
				return err
			}
			for i := range parts {
				if i < len(names) {
					parts[i].Name = names[i]
				}
			}
			portions, err := convert.ScaleParts(parts, total)
			if err != nil {
				return err
			}
			for _, p := range portions {
				cmd.Printf("%s: %s\n", p.Name, calculator.FormatResult(p.Amount))
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&total, "total", 0, "total amount to split")
	cmd.Flags().StringVar(&ratio, "parts", "", "ratio, e.g. 2:1:1 or 2,1,1")
	cmd.Flags().StringSliceVar(&names, "names", nil, "names for the parts, in order")
	_ = cmd.MarkFlagRequired("total")
	_ = cmd.MarkFlagRequired("parts")
	return cmd
}

func newScaleCmd() *cobra.Command {
	var from, to float64

	cmd := &cobra.Command{
		Use:     "scale <amount>...",
		Short:   "Scale recipe amounts from one number of servings to another",
		Example: "  kitchen scale --from 4 --to 6 200 3 0.5",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amounts := make([]float64, len(args))
			for i, s := range args {
				v, err := parseNumber(s)
				if err != nil {
					return err
				}
				amounts[i] = v
			}
			scaled, err := convert.ScaleRecipe(amounts, from, to)
			if err != nil {
				return err
			}
			out := make([]string, len(scaled))
			for i, v := range scaled {
				out[i] = calculator.FormatResult(v)
			}
			cmd.Println(strings.Join(out, " "))
			return nil
		},
	}
	cmd.Flags().Float64Var(&from, "from", 0, "servings the recipe is written for")
	cmd.Flags().Float64Var(&to, "to", 0, "servings wanted")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// parseNumber accepts a decimal comma.
func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return v, nil
}
