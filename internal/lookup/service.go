package lookup

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/fdg312/calorie-diary/internal/lookup/openfoodfacts"
)

var (
	ErrInvalidBarcode       = errors.New("invalid barcode")
	ErrNotFound             = errors.New("product not found")
	ErrNetwork              = errors.New("lookup failed")
	ErrGramsRequired        = errors.New("grams required")
	ErrMissingNutritionData = errors.New("missing nutrition data")
)

// ProductSource fetches a product by barcode digits.
type ProductSource interface {
	Product(ctx context.Context, barcode string) (*openfoodfacts.Product, error)
}

type Logger interface {
	Printf(format string, v ...any)
}

type Service struct {
	source ProductSource
	logger Logger
}

func NewService(source ProductSource, logger Logger) *Service {
	return &Service{source: source, logger: logger}
}

// Lookup resolves a barcode into a candidate entry. Calories per serving win
// over per-100g values; per-100g values need grams > 0, otherwise
// ErrGramsRequired is returned together with a partial candidate.
func (s *Service) Lookup(ctx context.Context, barcode string, grams float64) (Candidate, error) {
	digits := DigitsOnly(barcode)
	if digits == "" {
		return Candidate{}, ErrInvalidBarcode
	}

	product, err := s.source.Product(ctx, digits)
	if err != nil {
		switch {
		case errors.Is(err, openfoodfacts.ErrNotFound):
			return Candidate{}, ErrNotFound
		default:
			s.logf("WARN lookup: barcode=%s err=%v", digits, err)
			return Candidate{}, fmt.Errorf("%w: %v", ErrNetwork, err)
		}
	}

	c := Candidate{Barcode: digits, Name: productName(product)}

	// macros follow the key the calories came from
	for _, suffix := range []string{"_serving", ""} {
		kcal, ok := product.Nutrient("energy-kcal" + suffix)
		if !ok {
			continue
		}
		c.Basis = "serving"
		c.Calories = roundNonNegative(kcal)
		c.Protein = nutrientRounded(product, "proteins"+suffix)
		c.Carbs = nutrientRounded(product, "carbohydrates"+suffix)
		c.Fat = nutrientRounded(product, "fat"+suffix)
		return c, nil
	}

	if kcal100, ok := product.Nutrient("energy-kcal_100g"); ok {
		c.Basis = "100g"
		c.KcalPer100g = &kcal100
		if grams <= 0 || math.IsNaN(grams) || math.IsInf(grams, 0) {
			return c, ErrGramsRequired
		}
		c.Grams = grams
		c.Calories = roundNonNegative(kcal100 * grams / 100)
		c.Protein = scaled(product, "proteins_100g", grams)
		c.Carbs = scaled(product, "carbohydrates_100g", grams)
		c.Fat = scaled(product, "fat_100g", grams)
		return c, nil
	}

	return c, ErrMissingNutritionData
}

func (s *Service) logf(format string, v ...any) {
	if s.logger != nil {
		s.logger.Printf(format, v...)
	}
}

// DigitsOnly strips every non-digit rune.
func DigitsOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func productName(p *openfoodfacts.Product) string {
	for _, name := range []string{p.ProductName, p.GenericName} {
		if n := strings.TrimSpace(name); n != "" {
			return n
		}
	}
	return "Scanned item"
}

func nutrientRounded(p *openfoodfacts.Product, key string) int {
	v, _ := p.Nutrient(key)
	return roundNonNegative(v)
}

func scaled(p *openfoodfacts.Product, key string, grams float64) int {
	v, _ := p.Nutrient(key)
	return roundNonNegative(v * grams / 100)
}

func roundNonNegative(v float64) int {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return int(math.Round(v))
}
