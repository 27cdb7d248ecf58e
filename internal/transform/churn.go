package transform

import "github.com/mkravets/datalift/internal/model"

// ChurnTransformer enriches telco customer-churn records.
type ChurnTransformer struct {
	required     []string
	tenureBands  Binning
	chargeBands  Binning
	internetCode codeMap
	contractCode codeMap
	drop         []string
}

// NewChurnTransformer returns the churn profile with its fixed bucketing and
// coding rules.
func NewChurnTransformer() *ChurnTransformer {
	return &ChurnTransformer{
		required: []string{"tenure", "MonthlyCharges", "TotalCharges"},
		tenureBands: Binning{
			Column: "tenure",
			Target: "tenure_group",
			Bounds: []float64{12, 36, 60},
			Labels: []string{"New", "Regular", "Loyal", "Champion"},
		},
		chargeBands: Binning{
			Column: "MonthlyCharges",
			Target: "monthly_charge_segment",
			Bounds: []float64{30, 70},
			Labels: []string{"Low", "Medium", "High"},
		},
		internetCode: codeMap{
			Column: "InternetService",
			Target: "has_internet_service",
			Codes:  map[string]int{"DSL": 1, "Fiber optic": 1, "No": 0},
		},
		contractCode: codeMap{
			Column: "Contract",
			Target: "contract_type_code",
			Codes:  map[string]int{"Month-to-month": 0, "One year": 1, "Two year": 2},
		},
		drop: []string{"customerID", "gender"},
	}
}

// Name implements Transformer.
func (t *ChurnTransformer) Name() string { return "churn" }

// Transform implements Transformer. Every record survives: the churn profile
// has no record-level validity filter, only column policies.
func (t *ChurnTransformer) Transform(records []model.Record) ([]model.Record, error) {
	out := cloneAll(records)

	// TotalCharges arrives as text in the source data and may hold blanks.
	coerceNumeric(out, t.required...)
	medianFill(out, t.required...)
	fillUnknown(out)

	t.tenureBands.Apply(out)
	t.chargeBands.Apply(out)
	t.internetCode.Apply(out)
	t.contractCode.Apply(out)

	for _, rec := range out {
		if s, _ := rec.String("MultipleLines"); s == "Yes" {
			rec["is_multi_line_user"] = 1
		} else {
			rec["is_multi_line_user"] = 0
		}
	}

	dropColumns(out, t.drop...)
	return out, nil
}

// Schema implements Transformer.
func (t *ChurnTransformer) Schema() Schema {
	return Schema{
		Required: t.required,
		Bands: map[string][]string{
			t.tenureBands.Target: t.tenureBands.Labels,
			t.chargeBands.Target: t.chargeBands.Labels,
		},
		Codes: map[string][]int{
			t.contractCode.Target: {0, 1, 2},
			t.internetCode.Target: {0, 1},
			"is_multi_line_user":  {0, 1},
		},
	}
}
