package lookup

import (
	"context"
	"errors"
	"testing"

	"github.com/fdg312/calorie-diary/internal/lookup/openfoodfacts"
)

type fakeSource struct {
	product *openfoodfacts.Product
	err     error
	calls   []string
}

func (f *fakeSource) Product(ctx context.Context, barcode string) (*openfoodfacts.Product, error) {
	f.calls = append(f.calls, barcode)
	return f.product, f.err
}

func product(name string, n map[string]any) *openfoodfacts.Product {
	return &openfoodfacts.Product{ProductName: name, Nutriments: n}
}

func TestLookupPrefersServing(t *testing.T) {
	src := &fakeSource{product: product("Granola", map[string]any{
		"energy-kcal_serving": 212.6,
		"energy-kcal_100g":    450.0,
		"proteins_serving":    5.4,
	})}
	c, err := NewService(src, nil).Lookup(context.Background(), "0 12345-6789", 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if src.calls[0] != "0123456789" {
		t.Fatalf("expected digits-only barcode, got %q", src.calls[0])
	}
	if c.Calories != 213 || c.Basis != "serving" || c.Protein != 5 {
		t.Fatalf("unexpected candidate %+v", c)
	}
}

func TestLookupUnsuffixedEnergyUsesUnsuffixedMacros(t *testing.T) {
	src := &fakeSource{product: product("Cola", map[string]any{
		"energy-kcal":   139.0,
		"carbohydrates": 35.2,
		"proteins":      0.4,
		"fat_serving":   9.0,
	})}
	c, err := NewService(src, nil).Lookup(context.Background(), "5449000000996", 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Calories != 139 || c.Carbs != 35 || c.Protein != 0 || c.Fat != 0 {
		t.Fatalf("expected macros from unsuffixed keys, got %+v", c)
	}
}

func TestLookupPer100gScalesByGrams(t *testing.T) {
	src := &fakeSource{product: product("", map[string]any{
		"energy-kcal_100g":   250.0,
		"carbohydrates_100g": 60.0,
	})}
	src.product.GenericName = "Pasta"
	svc := NewService(src, nil)

	c, err := svc.Lookup(context.Background(), "8001", 150)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Calories != 375 || c.Carbs != 90 || c.Name != "Pasta" {
		t.Fatalf("unexpected candidate %+v", c)
	}

	partial, err := svc.Lookup(context.Background(), "8001", 0)
	if !errors.Is(err, ErrGramsRequired) {
		t.Fatalf("expected ErrGramsRequired, got %v", err)
	}
	if partial.KcalPer100g == nil || *partial.KcalPer100g != 250 || partial.Calories != 0 {
		t.Fatalf("expected partial candidate with kcal per 100g, got %+v", partial)
	}
}

func TestLookupZeroServingFallsBackTo100g(t *testing.T) {
	src := &fakeSource{product: product("Water", map[string]any{
		"energy-kcal_serving": 0,
		"energy-kcal_100g":    40.0,
	})}
	c, err := NewService(src, nil).Lookup(context.Background(), "42", 200)
	if err != nil || c.Calories != 80 || c.Basis != "100g" {
		t.Fatalf("expected 80 kcal on 100g basis, got %+v (%v)", c, err)
	}
}

func TestLookupErrors(t *testing.T) {
	t.Run("invalid barcode", func(t *testing.T) {
		src := &fakeSource{}
		if _, err := NewService(src, nil).Lookup(context.Background(), "abc", 0); !errors.Is(err, ErrInvalidBarcode) {
			t.Fatalf("expected ErrInvalidBarcode, got %v", err)
		}
		if len(src.calls) != 0 {
			t.Fatal("expected no upstream call")
		}
	})

	t.Run("not found", func(t *testing.T) {
		src := &fakeSource{err: openfoodfacts.ErrNotFound}
		if _, err := NewService(src, nil).Lookup(context.Background(), "1", 0); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("network", func(t *testing.T) {
		src := &fakeSource{err: openfoodfacts.ErrUnavailable}
		if _, err := NewService(src, nil).Lookup(context.Background(), "1", 0); !errors.Is(err, ErrNetwork) {
			t.Fatalf("expected ErrNetwork, got %v", err)
		}
	})

	t.Run("no calories", func(t *testing.T) {
		src := &fakeSource{product: product("Mystery", map[string]any{"fat_100g": 3.0})}
		c, err := NewService(src, nil).Lookup(context.Background(), "1", 100)
		if !errors.Is(err, ErrMissingNutritionData) {
			t.Fatalf("expected ErrMissingNutritionData, got %v", err)
		}
		if c.Name != "Mystery" {
			t.Fatalf("expected name on partial candidate, got %q", c.Name)
		}
	})

	t.Run("default name", func(t *testing.T) {
		src := &fakeSource{product: product("  ", map[string]any{"energy-kcal": 99.0})}
		c, _ := NewService(src, nil).Lookup(context.Background(), "1", 0)
		if c.Name != "Scanned item" || c.Calories != 99 {
			t.Fatalf("unexpected candidate %+v", c)
		}
	})
}
