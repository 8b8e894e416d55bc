package calculator

import (
	"math"
	"strconv"
)

// NotANumber is shown instead of NaN and ±Inf.
const NotANumber = "—"

// FormatResult rounds to 12 decimal places and drops redundant zeros.
func FormatResult(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotANumber
	}
	if math.Abs(v) >= 1e21 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}

	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 12, 64), 64)
	if err != nil {
		return NotANumber
	}
	if rounded == 0 {
		// без "-0"
		return "0"
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
