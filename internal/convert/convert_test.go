package convert_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"kitchencalc/internal/convert"
	"kitchencalc/internal/storage"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		from  string
		to    string
		want  float64
	}{
		{name: "килограммы в граммы", value: 1.5, from: "kg", to: "g", want: 1500},
		{name: "фунт в граммы", value: 1, from: "lb", to: "g", want: 453.59237},
		{name: "унции в фунты", value: 16, from: "oz", to: "lb", want: 1},
		{name: "стакан в мл", value: 1, from: "cup", to: "ml", want: 236.5882365},
		{name: "ложки", value: 1, from: "tbsp", to: "tsp", want: 3},
		{name: "жидкие унции", value: 8, from: "fl oz", to: "cup", want: 1},
		{name: "алиас", value: 2, from: "Tablespoons", to: "teaspoon", want: 6},
		{name: "дюймы", value: 1, from: "in", to: "cm", want: 2.54},
		{name: "цельсий в фаренгейт", value: 180, from: "C", to: "F", want: 356},
		{name: "фаренгейт в цельсий", value: 212, from: "°F", to: "c", want: 100},
		{name: "кельвин", value: 0, from: "C", to: "K", want: 273.15},
		{name: "газовая отметка", value: 4, from: "gas mark", to: "F", want: 350},
		{name: "обратно в газовую отметку", value: 350, from: "F", to: "gas  mark", want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := convert.Convert(tt.value, tt.from, tt.to)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestConvertErrors(t *testing.T) {
	_, err := convert.Convert(1, "smidgen", "g")
	assert.ErrorIs(t, err, convert.ErrUnknownUnit)

	_, err = convert.Convert(1, "g", "ml")
	assert.ErrorIs(t, err, convert.ErrIncompatibleUnits)

	_, err = convert.Convert(1, "C", "kg")
	assert.ErrorIs(t, err, convert.ErrIncompatibleUnits)
}

func TestUnits(t *testing.T) {
	assert.Equal(t, []string{"mm", "cm", "m", "in", "ft"}, convert.Units(convert.Length))
	assert.Contains(t, convert.Units(convert.Temperature), "gas mark")
}

func TestConvertRoundTripProperty(t *testing.T) {
	var linear []string
	for _, d := range []convert.Dimension{convert.Mass, convert.Volume, convert.Length} {
		linear = append(linear, convert.Units(d)...)
	}
	rapid.Check(t, func(rt *rapid.T) {
		from := rapid.SampledFrom(linear).Draw(rt, "from")
		to := rapid.SampledFrom(linear).Draw(rt, "to")
		v := rapid.Float64Range(-1e6, 1e6).Draw(rt, "v")

		there, err := convert.Convert(v, from, to)
		if err != nil {
			// разные размерности
			return
		}
		back, err := convert.Convert(there, to, from)
		if err != nil {
			rt.Fatalf("back conversion failed: %v", err)
		}
		if diff := back - v; diff > 1e-6 || diff < -1e-6 {
			rt.Fatalf("%v %s -> %s -> %v", v, from, to, back)
		}
	})
}

func TestScaleParts(t *testing.T) {
	parts, err := convert.ParseRatio("2:1:1")
	require.NoError(t, err)

	portions, err := convert.ScaleParts(parts, 800)
	require.NoError(t, err)
	require.Len(t, portions, 3)
	assert.Equal(t, 400.0, portions[0].Amount)
	assert.Equal(t, 200.0, portions[1].Amount)
	assert.Equal(t, 200.0, portions[2].Amount)
	assert.Equal(t, "1", portions[0].Name)

	_, err = convert.ScaleParts(parts, 0)
	assert.ErrorIs(t, err, convert.ErrNonPositiveTotal)

	_, err = convert.ScaleParts([]convert.Part{{Name: "a", Weight: 0}}, 100)
	assert.ErrorIs(t, err, convert.ErrEmptyParts)

	_, err = convert.ScaleParts([]convert.Part{{Name: "a", Weight: 2}, {Name: "b", Weight: -1}}, 100)
	assert.ErrorIs(t, err, convert.ErrEmptyParts)

	_, err = convert.ParseRatio("2:x")
	assert.Error(t, err)

	for _, ratio := range []string{"NaN:1", "1:Inf", "-Inf,2"} {
		_, err = convert.ParseRatio(ratio)
		assert.ErrorIs(t, err, convert.ErrEmptyParts, ratio)
	}

	_, err = convert.ScaleParts([]convert.Part{{Name: "a", Weight: math.NaN()}, {Name: "b", Weight: 1}}, 100)
	assert.ErrorIs(t, err, convert.ErrEmptyParts)
	_, err = convert.ScaleParts([]convert.Part{{Name: "a", Weight: math.Inf(1)}}, 100)
	assert.ErrorIs(t, err, convert.ErrEmptyParts)

	for _, total := range []float64{math.NaN(), math.Inf(1)} {
		_, err = convert.ScaleParts(parts, total)
		assert.ErrorIs(t, err, convert.ErrNonPositiveTotal)
	}
}

func TestScalePartsSumsToTotal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		weights := rapid.SliceOfN(rapid.Float64Range(0.1, 100), 1, 8).Draw(rt, "weights")
		total := rapid.Float64Range(1, 10000).Draw(rt, "total")

		parts := make([]convert.Part, len(weights))
		for i, w := range weights {
			parts[i] = convert.Part{Weight: w}
		}
		portions, err := convert.ScaleParts(parts, total)
		if err != nil {
			rt.Fatal(err)
		}
		var sum float64
		for _, p := range portions {
			sum += p.Amount
		}
		if diff := sum - total; diff > 1e-6 || diff < -1e-6 {
			rt.Fatalf("sum %v != total %v", sum, total)
		}
	})
}

func TestScaleRecipe(t *testing.T) {
	got, err := convert.ScaleRecipe([]float64{200, 3, 0.5}, 4, 6)
	require.NoError(t, err)
	assert.Equal(t, []float64{300, 4.5, 0.75}, got)

	_, err = convert.ScaleRecipe([]float64{1}, 0, 2)
	assert.ErrorIs(t, err, convert.ErrServings)

	_, err = convert.ScaleRecipe([]float64{1}, 4, math.NaN())
	assert.ErrorIs(t, err, convert.ErrServings)
}

func TestCatalog(t *testing.T) {
	c, err := convert.LoadCatalog()
	require.NoError(t, err)

	flour, err := c.Get(" Flour ")
	require.NoError(t, err)
	grams, err := flour.SpoonsToGrams(3, convert.Tablespoon)
	require.NoError(t, err)
	assert.Equal(t, 24.0, grams)

	spoons, err := flour.GramsToSpoons(9, convert.Teaspoon)
	require.NoError(t, err)
	assert.Equal(t, 3.0, spoons)

	_, err = flour.PiecesToGrams(2)
	assert.ErrorIs(t, err, convert.ErrNoFactor)

	potato, err := c.Get("potato")
	require.NoError(t, err)
	g, err := potato.PiecesToGrams(2)
	require.NoError(t, err)
	assert.Equal(t, 340.0, g)
	pieces, err := potato.GramsToPieces(850)
	require.NoError(t, err)
	assert.Equal(t, 5.0, pieces)

	peeled, err := potato.PeeledWeight(1000)
	require.NoError(t, err)
	assert.InDelta(t, 850, peeled, 1e-9)
	unpeeled, err := potato.UnpeeledWeight(850)
	require.NoError(t, err)
	assert.InDelta(t, 1000, unpeeled, 1e-9)

	_, err = c.Get("dragonfruit")
	assert.ErrorIs(t, err, convert.ErrUnknownIngredient)

	list := c.List()
	require.NotEmpty(t, list)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].ID, list[i].ID)
	}
}

func TestParseCatalogRejectsBadInput(t *testing.T) {
	_, err := convert.ParseCatalog("[[ingredient]]\nname = \"nameless\"\n")
	assert.Error(t, err)

	_, err = convert.ParseCatalog("not = [toml")
	assert.Error(t, err)
}

func TestParseSpoon(t *testing.T) {
	s, err := convert.ParseSpoon("teaspoons")
	require.NoError(t, err)
	assert.Equal(t, convert.Teaspoon, s)

	_, err = convert.ParseSpoon("cup")
	assert.ErrorIs(t, err, convert.ErrIncompatibleUnits)
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "brown_sugar", convert.NormalizeID("  Brown Sugar "))
	assert.Equal(t, "ovr_creme_fraiche_", convert.OverrideKey("Creme-Fraiche!"))
}

func ptr(v float64) *float64 { return &v }

func TestOverrideStore(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	catalog, err := convert.LoadCatalog()
	require.NoError(t, err)

	store := convert.NewOverrideStore(kv)
	_, ok := store.Get(ctx, "flour")
	assert.False(t, ok)

	store.Set("Flour", convert.Override{GramsPerTbsp: ptr(9)})
	store.Flush()

	raw, ok, err := kv.Get(ctx, "ovr_flour")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"gramsPerTbsp":9}`, raw)

	// новый экземпляр читает из хранилища
	reloaded := convert.NewOverrideStore(kv)
	flour, err := reloaded.Resolve(ctx, catalog, "flour")
	require.NoError(t, err)
	assert.Equal(t, 9.0, flour.GramsPerTbsp)
	assert.Equal(t, 3.0, flour.GramsPerTsp, "unset fields keep catalog value")

	reloaded.Remove("flour")
	reloaded.Flush()
	_, ok, err = kv.Get(ctx, "ovr_flour")
	require.NoError(t, err)
	assert.False(t, ok)

	flour, err = reloaded.Resolve(ctx, catalog, "flour")
	require.NoError(t, err)
	assert.Equal(t, 8.0, flour.GramsPerTbsp)
}

func TestOverrideStoreToleratesCorruptValue(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(ctx, "ovr_sugar", "{broken"))

	store := convert.NewOverrideStore(kv)
	_, ok := store.Get(ctx, "sugar")
	assert.False(t, ok)
}

func TestOverrideStoreLastWriteWins(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	store := convert.NewOverrideStore(kv)

	for i := 1; i <= 50; i++ {
		store.Set("egg", convert.Override{GramsPerPiece: ptr(float64(i))})
	}
	store.Flush()

	raw, ok, err := kv.Get(ctx, "ovr_egg")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"gramsPerPiece":50}`, raw)

	o, ok := store.Get(ctx, "egg")
	require.True(t, ok)
	assert.Equal(t, 50.0, *o.GramsPerPiece)
}
