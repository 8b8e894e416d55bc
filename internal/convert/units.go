// Package convert holds the kitchen unit tables, batch scaling and the
// per-ingredient spoon/piece converter.
package convert

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownUnit       = errors.New("unknown unit")
	ErrIncompatibleUnits = errors.New("incompatible units")
)

type Dimension string

const (
	Mass        Dimension = "mass"
	Volume      Dimension = "volume"
	Length      Dimension = "length"
	Temperature Dimension = "temperature"
)

// Unit converts linearly to the base unit of its dimension (g, ml, m).
// Temperature units carry their own affine conversion through kelvin.
type Unit struct {
	Symbol     string
	Dimension  Dimension
	Factor     float64
	toKelvin   func(float64) float64
	fromKelvin func(float64) float64
}

// US customary volumes.
var units = []Unit{
	{Symbol: "mg", Dimension: Mass, Factor: 0.001},
	{Symbol: "g", Dimension: Mass, Factor: 1},
	{Symbol: "kg", Dimension: Mass, Factor: 1000},
	{Symbol: "oz", Dimension: Mass, Factor: 28.349523125},
	{Symbol: "lb", Dimension: Mass, Factor: 453.59237},

	{Symbol: "ml", Dimension: Volume, Factor: 1},
	{Symbol: "l", Dimension: Volume, Factor: 1000},
	{Symbol: "tsp", Dimension: Volume, Factor: 4.92892159375},
	{Symbol: "tbsp", Dimension: Volume, Factor: 14.78676478125},
	{Symbol: "fl oz", Dimension: Volume, Factor: 29.5735295625},
	{Symbol: "cup", Dimension: Volume, Factor: 236.5882365},
	{Symbol: "pint", Dimension: Volume, Factor: 473.176473},
	{Symbol: "quart", Dimension: Volume, Factor: 946.352946},
	{Symbol: "gallon", Dimension: Volume, Factor: 3785.411784},

	{Symbol: "mm", Dimension: Length, Factor: 0.001},
	{Symbol: "cm", Dimension: Length, Factor: 0.01},
	{Symbol: "m", Dimension: Length, Factor: 1},
	{Symbol: "in", Dimension: Length, Factor: 0.0254},
	{Symbol: "ft", Dimension: Length, Factor: 0.3048},

	{
		Symbol: "C", Dimension: Temperature,
		toKelvin:   func(v float64) float64 { return v + 273.15 },
		fromKelvin: func(k float64) float64 { return k - 273.15 },
	},
	{
		Symbol: "F", Dimension: Temperature,
		toKelvin:   fahrenheitToKelvin,
		fromKelvin: kelvinToFahrenheit,
	},
	{
		Symbol: "K", Dimension: Temperature,
		toKelvin:   func(v float64) float64 { return v },
		fromKelvin: func(k float64) float64 { return k },
	},
	// gas mark N = 250 + 25·N °F
	{
		Symbol: "gas mark", Dimension: Temperature,
		toKelvin:   func(v float64) float64 { return fahrenheitToKelvin(250 + 25*v) },
		fromKelvin: func(k float64) float64 { return (kelvinToFahrenheit(k) - 250) / 25 },
	},
}

func fahrenheitToKelvin(f float64) float64 { return (f-32)*5/9 + 273.15 }
func kelvinToFahrenheit(k float64) float64 { return (k-273.15)*9/5 + 32 }

var aliases = map[string]string{
	"milligram": "mg", "milligrams": "mg",
	"gram": "g", "grams": "g", "gr": "g",
	"kilogram": "kg", "kilograms": "kg",
	"ounce": "oz", "ounces": "oz",
	"pound": "lb", "pounds": "lb", "lbs": "lb",
	"milliliter": "ml", "milliliters": "ml", "millilitre": "ml",
	"liter": "l", "liters": "l", "litre": "l", "litres": "l",
	"teaspoon": "tsp", "teaspoons": "tsp",
	"tablespoon": "tbsp", "tablespoons": "tbsp",
	"floz": "fl oz", "fl. oz": "fl oz", "fluid ounce": "fl oz", "fluid ounces": "fl oz",
	"cups": "cup",
	"pints": "pint", "pt": "pint",
	"quarts": "quart", "qt": "quart",
	"gallons": "gallon", "gal": "gallon",
	"millimeter": "mm", "centimeter": "cm", "meter": "m",
	"inch": "in", "inches": "in",
	"foot": "ft", "feet": "ft",
	"c": "C", "°c": "C", "celsius": "C",
	"f": "F", "°f": "F", "fahrenheit": "F",
	"k": "K", "kelvin": "K",
	"gas": "gas mark", "gasmark": "gas mark",
}

var bySymbol = func() map[string]Unit {
	m := make(map[string]Unit, len(units))
	for _, u := range units {
		m[u.Symbol] = u
	}
	return m
}()

// Lookup resolves a unit symbol or alias, case-insensitively.
func Lookup(name string) (Unit, error) {
	key := strings.Join(strings.Fields(name), " ")
	if u, ok := bySymbol[key]; ok {
		return u, nil
	}
	lower := strings.ToLower(key)
	if u, ok := bySymbol[lower]; ok {
		return u, nil
	}
	if sym, ok := aliases[lower]; ok {
		return bySymbol[sym], nil
	}
	return Unit{}, fmt.Errorf("%w: %q", ErrUnknownUnit, name)
}

// Units lists the known unit symbols of a dimension in table order.
func Units(d Dimension) []string {
	var out []string
	for _, u := range units {
		if u.Dimension == d {
			out = append(out, u.Symbol)
		}
	}
	return out
}

func Convert(value float64, from, to string) (float64, error) {
	src, err := Lookup(from)
	if err != nil {
		return 0, err
	}
	dst, err := Lookup(to)
	if err != nil {
		return 0, err
	}
	if src.Dimension != dst.Dimension {
		return 0, fmt.Errorf("%w: %s (%s) -> %s (%s)", ErrIncompatibleUnits, src.Symbol, src.Dimension, dst.Symbol, dst.Dimension)
	}

	if src.Dimension == Temperature {
		return dst.fromKelvin(src.toKelvin(value)), nil
	}
	return value * src.Factor / dst.Factor, nil
}
