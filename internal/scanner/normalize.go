package scanner

import (
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/tair/freshsave/internal/product/domain"
)

// Defaults for provider fields that are missing or empty.
const (
	DefaultName     = "Unknown Product"
	DefaultBrand    = "Unknown Brand"
	DefaultCategory = "General"
)

// Normalize maps a provider record onto the canonical product. The barcode is
// always the caller's, never the provider's echo.
func Normalize(barcode string, p *ExternalProduct, now time.Time) *domain.Product {
	product := &domain.Product{
		Barcode:     barcode,
		Name:        orDefault(p.ProductName, DefaultName),
		Brand:       orDefault(p.Brands, DefaultBrand),
		Category:    DefaultCategory,
		ImageURL:    p.ImageURL,
		Unit:        p.Quantity,
		StoreID:     domain.ExternalStoreID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Rating:      p.NutriscoreGrade,
		Ingredients: splitIngredients(p.IngredientsTextEN),
		Allergens:   uniqueTags(p.AllergensTags),
	}
	if len(p.CategoriesTags) > 0 && p.CategoriesTags[0] != "" {
		product.Category = p.CategoriesTags[0]
	}
	if p.NutriscoreScore != nil {
		score := float64(*p.NutriscoreScore)
		product.Score = &score
	}
	if p.Nutriments != nil {
		n := p.Nutriments
		product.NutritionalInfo = &domain.NutritionalInfo{
			Calories:      value(n.Energy),
			Fat:           value(n.Fat),
			SaturatedFat:  value(n.SaturatedFat),
			Carbohydrates: value(n.Carbohydrates),
			Sugar:         value(n.Sugars),
			Protein:       value(n.Proteins),
			Salt:          value(n.Salt),
		}
	}
	return product
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func value(n *Number) float64 {
	if n == nil {
		return 0
	}
	return float64(*n)
}

func splitIngredients(text string) datatypes.JSONSlice[string] {
	out := datatypes.JSONSlice[string]{}
	for _, part := range strings.Split(text, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func uniqueTags(tags []string) datatypes.JSONSlice[string] {
	out := datatypes.JSONSlice[string]{}
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
