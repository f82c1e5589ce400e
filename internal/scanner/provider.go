package scanner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Number decodes a JSON number that providers sometimes encode as a string.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("number %q: %w", s, err)
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Nutriments are the per-100g values of the provider payload. A nil field
// means the provider did not send that nutrient.
type Nutriments struct {
	Energy        *Number `json:"energy_100g"`
	Fat           *Number `json:"fat_100g"`
	SaturatedFat  *Number `json:"saturated-fat_100g"`
	Carbohydrates *Number `json:"carbohydrates_100g"`
	Sugars        *Number `json:"sugars_100g"`
	Proteins      *Number `json:"proteins_100g"`
	Salt          *Number `json:"salt_100g"`
}

// ExternalProduct is the subset of an Open Food Facts product the resolver maps.
type ExternalProduct struct {
	Code              string      `json:"code"`
	ProductName       string      `json:"product_name"`
	Brands            string      `json:"brands"`
	CategoriesTags    []string    `json:"categories_tags"`
	ImageURL          string      `json:"image_url"`
	Quantity          string      `json:"quantity"`
	NutriscoreScore   *Number     `json:"nutriscore_score"`
	NutriscoreGrade   string      `json:"nutriscore_grade"`
	IngredientsTextEN string      `json:"ingredients_text_en"`
	AllergensTags     []string    `json:"allergens_tags"`
	Nutriments        *Nutriments `json:"nutriments"`
}

// ExternalResponse is the provider envelope. Status 1 means found.
type ExternalResponse struct {
	Status  int              `json:"status"`
	Product *ExternalProduct `json:"product"`
}
