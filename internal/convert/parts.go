package convert

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrNonPositiveTotal = errors.New("total must be positive")
	ErrEmptyParts       = errors.New("parts must sum to a positive value")
	ErrServings         = errors.New("servings must be positive")
)

type Part struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

type Portion struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// ScaleParts splits total proportionally to the part weights:
// 2:1:1 of 800 gives 400, 200, 200.
func ScaleParts(parts []Part, total float64) ([]Portion, error) {
	if !finite(total) || total <= 0 {
		return nil, ErrNonPositiveTotal
	}

	var sum float64
	for _, p := range parts {
		if !finite(p.Weight) {
			return nil, fmt.Errorf("%w: part %q is not a number", ErrEmptyParts, p.Name)
		}
		if p.Weight < 0 {
			return nil, fmt.Errorf("%w: part %q is negative", ErrEmptyParts, p.Name)
		}
		sum += p.Weight
	}
	if sum <= 0 {
		return nil, ErrEmptyParts
	}

	portions := make([]Portion, len(parts))
	for i, p := range parts {
		portions[i] = Portion{Name: p.Name, Amount: total * p.Weight / sum}
	}
	return portions, nil
}

// ScaleRecipe multiplies every amount by to/from servings.
func ScaleRecipe(amounts []float64, from, to float64) ([]float64, error) {
	if !finite(from) || !finite(to) || from <= 0 || to <= 0 {
		return nil, ErrServings
	}
	ratio := to / from
	out := make([]float64, len(amounts))
	for i, a := range amounts {
		out[i] = a * ratio
	}
	return out, nil
}

// ParseRatio reads "2:1:1" or "2,1,1" into unnamed parts.
func ParseRatio(s string) ([]Part, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ':' || r == ',' || r == ' '
	})
	if len(fields) == 0 {
		return nil, ErrEmptyParts
	}

	parts := make([]Part, 0, len(fields))
	for i, f := range fields {
		w, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", i+1, err)
		}
		if !finite(w) {
			return nil, fmt.Errorf("%w: part %d is %q", ErrEmptyParts, i+1, f)
		}
		parts = append(parts, Part{Name: strconv.Itoa(i + 1), Weight: w})
	}
	return parts, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
