package lookup

// Candidate is a food entry proposed from a barcode. It is never written to
// the diary by the lookup itself.
type Candidate struct {
	Barcode  string `json:"barcode"`
	Name     string `json:"name"`
	Calories int    `json:"cals"`
	Protein  int    `json:"protein"`
	Carbs    int    `json:"carbs"`
	Fat      int    `json:"fat"`

	// Basis is "serving" or "100g".
	Basis       string   `json:"basis"`
	Grams       float64  `json:"grams,omitempty"`
	KcalPer100g *float64 `json:"kcal_per_100g,omitempty"`
}

// LookupResponse wraps a candidate; Candidate is partial when GramsRequired is set.
type LookupResponse struct {
	Candidate     Candidate `json:"candidate"`
	GramsRequired bool      `json:"grams_required"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
