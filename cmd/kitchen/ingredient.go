package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"kitchencalc/internal/calculator"
	"kitchencalc/internal/convert"
)

func newIngredientCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingredient",
		Short: "Spoon, piece and peeling conversions for common ingredients",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List known ingredients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, ing := range a.catalog.List() {
				ing, _ = a.overrides.Resolve(cmd.Context(), a.catalog, ing.ID)
				cmd.Printf("%-8s %s\n", ing.ID, ing.Name)
			}
			return nil
		},
	})

	cmd.AddCommand(newIngredientConvertCmd(a), newIngredientOverrideCmd(a))
	return cmd
}

func newIngredientConvertCmd(a *app) *cobra.Command {
	var (
		spoon                 string
		spoons, grams, pieces float64
		peeled, unpeeled      float64
	)

	cmd := &cobra.Command{
		Use:   "convert <id>",
		Short: "Convert one amount of an ingredient",
		Example: `  kitchen ingredient convert flour --spoons 3 --spoon tbsp
  kitchen ingredient convert potato --pieces 4
  kitchen ingredient convert onion --unpeeled 500`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ing, err := a.overrides.Resolve(cmd.Context(), a.catalog, args[0])
			if err != nil {
				return err
			}
			s, err := convert.ParseSpoon(spoon)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			var v float64
			var unit string
			switch {
			case flags.Changed("spoons"):
				v, err = ing.SpoonsToGrams(spoons, s)
				unit = "g"
			case flags.Changed("grams") && flags.Changed("spoon"):
				v, err = ing.GramsToSpoons(grams, s)
				unit = string(s)
			case flags.Changed("grams"):
				v, err = ing.GramsToPieces(grams)
				unit = "pcs"
			case flags.Changed("pieces"):
				v, err = ing.PiecesToGrams(pieces)
				unit = "g"
			case flags.Changed("unpeeled"):
				v, err = ing.PeeledWeight(unpeeled)
				unit = "g peeled"
			case flags.Changed("peeled"):
				v, err = ing.UnpeeledWeight(peeled)
				unit = "g unpeeled"
			default:
				return errors.New("nothing to convert: pass --spoons, --grams, --pieces, --peeled or --unpeeled")
			}
			if err != nil {
				return err
			}
			cmd.Printf("%s: %s %s\n", ing.Name, calculator.FormatResult(v), unit)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&spoon, "spoon", "tbsp", "spoon size: tbsp or tsp")
	f.Float64Var(&spoons, "spoons", 0, "spoons to grams")
	f.Float64Var(&grams, "grams", 0, "grams to spoons (with --spoon) or to pieces")
	f.Float64Var(&pieces, "pieces", 0, "pieces to grams")
	f.Float64Var(&unpeeled, "unpeeled", 0, "unpeeled grams to peeled grams")
	f.Float64Var(&peeled, "peeled", 0, "peeled grams to unpeeled grams")
	return cmd
}

func newIngredientOverrideCmd(a *app) *cobra.Command {
	var (
		tbsp, tsp, piece, yield float64
		reset                   bool
	)

	cmd := &cobra.Command{
		Use:   "override <id>",
		Short: "Correct an ingredient's factors for your own kitchen",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ing, err := a.catalog.Get(args[0])
			if err != nil {
				return err
			}
			if reset {
				a.overrides.Remove(ing.ID)
				cmd.Printf("%s: override removed\n", ing.ID)
				return nil
			}

			o, _ := a.overrides.Get(cmd.Context(), ing.ID)
			flags := cmd.Flags()
			if flags.Changed("tbsp") {
				o.GramsPerTbsp = &tbsp
			}
			if flags.Changed("tsp") {
				o.GramsPerTsp = &tsp
			}
			if flags.Changed("piece") {
				o.GramsPerPiece = &piece
			}
			if flags.Changed("yield") {
				if yield <= 0 || yield > 1 {
					return fmt.Errorf("yield must be in (0, 1], got %v", yield)
				}
				o.PeeledYield = &yield
			}
			if o.Empty() {
				return errors.New("nothing to override: pass --tbsp, --tsp, --piece or --yield")
			}

			a.overrides.Set(ing.ID, o)
			r := o.Apply(ing)
			cmd.Printf("%s: tbsp=%s tsp=%s piece=%s yield=%s\n", r.ID,
				calculator.FormatResult(r.GramsPerTbsp), calculator.FormatResult(r.GramsPerTsp),
				calculator.FormatResult(r.GramsPerPiece), calculator.FormatResult(r.PeeledYield))
			return nil
		},
	}

	f := cmd.Flags()
	f.Float64Var(&tbsp, "tbsp", 0, "grams per tablespoon")
	f.Float64Var(&tsp, "tsp", 0, "grams per teaspoon")
	f.Float64Var(&piece, "piece", 0, "grams per piece")
	f.Float64Var(&yield, "yield", 0, "peeled yield, 0..1")
	f.BoolVar(&reset, "reset", false, "remove the override")
	return cmd
}
