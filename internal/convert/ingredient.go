package convert

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
)

var (
	ErrUnknownIngredient = errors.New("unknown ingredient")
	ErrNoFactor          = errors.New("ingredient has no factor for this conversion")
)

type Spoon string

const (
	Tablespoon Spoon = "tbsp"
	Teaspoon   Spoon = "tsp"
)

// ParseSpoon accepts the same spellings as Lookup.
func ParseSpoon(s string) (Spoon, error) {
	u, err := Lookup(s)
	if err != nil {
		return "", err
	}
	switch u.Symbol {
	case "tbsp":
		return Tablespoon, nil
	case "tsp":
		return Teaspoon, nil
	}
	return "", fmt.Errorf("%w: %q is not a spoon", ErrIncompatibleUnits, s)
}

// Ingredient factors are zero when unknown.
type Ingredient struct {
	ID            string  `toml:"id" json:"id"`
	Name          string  `toml:"name" json:"name"`
	GramsPerTbsp  float64 `toml:"grams_per_tbsp" json:"gramsPerTbsp,omitempty"`
	GramsPerTsp   float64 `toml:"grams_per_tsp" json:"gramsPerTsp,omitempty"`
	GramsPerPiece float64 `toml:"grams_per_piece" json:"gramsPerPiece,omitempty"`
	PeeledYield   float64 `toml:"peeled_yield" json:"peeledYield,omitempty"`
}

func (i Ingredient) perSpoon(s Spoon) float64 {
	if s == Teaspoon {
		return i.GramsPerTsp
	}
	return i.GramsPerTbsp
}

func (i Ingredient) SpoonsToGrams(count float64, s Spoon) (float64, error) {
	f := i.perSpoon(s)
	if f <= 0 {
		return 0, fmt.Errorf("%w: %s per %s", ErrNoFactor, i.ID, s)
	}
	return count * f, nil
}

func (i Ingredient) GramsToSpoons(grams float64, s Spoon) (float64, error) {
	f := i.perSpoon(s)
	if f <= 0 {
		return 0, fmt.Errorf("%w: %s per %s", ErrNoFactor, i.ID, s)
	}
	return grams / f, nil
}

func (i Ingredient) PiecesToGrams(pieces float64) (float64, error) {
	if i.GramsPerPiece <= 0 {
		return 0, fmt.Errorf("%w: %s per piece", ErrNoFactor, i.ID)
	}
	return pieces * i.GramsPerPiece, nil
}

func (i Ingredient) GramsToPieces(grams float64) (float64, error) {
	if i.GramsPerPiece <= 0 {
		return 0, fmt.Errorf("%w: %s per piece", ErrNoFactor, i.ID)
	}
	return grams / i.GramsPerPiece, nil
}

// PeeledWeight returns what is left after peeling.
func (i Ingredient) PeeledWeight(unpeeled float64) (float64, error) {
	if i.PeeledYield <= 0 {
		return 0, fmt.Errorf("%w: %s peeled yield", ErrNoFactor, i.ID)
	}
	return unpeeled * i.PeeledYield, nil
}

// UnpeeledWeight returns how much to buy to end up with peeled grams.
func (i Ingredient) UnpeeledWeight(peeled float64) (float64, error) {
	if i.PeeledYield <= 0 {
		return 0, fmt.Errorf("%w: %s peeled yield", ErrNoFactor, i.ID)
	}
	return peeled / i.PeeledYield, nil
}

// NormalizeID lowercases, trims and replaces every non-alphanumeric rune with "_".
func NormalizeID(id string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, strings.ToLower(strings.TrimSpace(id)))
}

//go:embed ingredients.toml
var catalogData string

type catalogFile struct {
	Ingredient []Ingredient `toml:"ingredient"`
}

type Catalog struct {
	byID map[string]Ingredient
}

// LoadCatalog parses the built-in ingredient table.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(catalogData)
}

func ParseCatalog(data string) (*Catalog, error) {
	var f catalogFile
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, fmt.Errorf("ошибка разбора каталога ингредиентов: %w", err)
	}

	c := &Catalog{byID: make(map[string]Ingredient, len(f.Ingredient))}
	for _, ing := range f.Ingredient {
		ing.ID = NormalizeID(ing.ID)
		if ing.ID == "" {
			return nil, errors.New("ingredient without id in catalog")
		}
		c.byID[ing.ID] = ing
	}
	return c, nil
}

func (c *Catalog) Get(id string) (Ingredient, error) {
	ing, ok := c.byID[NormalizeID(id)]
	if !ok {
		return Ingredient{}, fmt.Errorf("%w: %q", ErrUnknownIngredient, id)
	}
	return ing, nil
}

// List returns the catalog sorted by id.
func (c *Catalog) List() []Ingredient {
	out := make([]Ingredient, 0, len(c.byID))
	for _, ing := range c.byID {
		out = append(out, ing)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
