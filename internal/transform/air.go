package transform

import (
	"time"

	"github.com/mkravets/datalift/internal/extract"
	"github.com/mkravets/datalift/internal/model"
)

// severityWeights are the fixed positive weights of the composite severity
// score, applied to the normalized pollutant readings.
var severityWeights = map[string]float64{
	"pm2_5":            5,
	"pm10":             3,
	"nitrogen_dioxide": 4,
	"sulphur_dioxide":  4,
	"carbon_monoxide":  2,
	"ozone":            3,
}

// timeLayouts are the timestamp formats raw sensor documents use.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// AirTransformer enriches city air-quality sensor records.
type AirTransformer struct {
	aqiBands  Binning
	riskBands Binning
}

// NewAirTransformer returns the air-quality profile with its fixed AQI and
// risk thresholds.
func NewAirTransformer() *AirTransformer {
	return &AirTransformer{
		aqiBands: Binning{
			Column: "pm2_5",
			Target: "aqi_category",
			Bounds: []float64{50, 100, 200, 300},
			Labels: []string{"Good", "Moderate", "Unhealthy", "Very Unhealthy", "Hazardous"},
		},
		riskBands: Binning{
			Column: "severity_score",
			Target: "risk_flag",
			Bounds: []float64{200, 400},
			Labels: []string{"Low Risk", "Moderate Risk", "High Risk"},
		},
	}
}

// Name implements Transformer.
func (t *AirTransformer) Name() string { return "air" }

// Transform implements Transformer. Records with every pollutant reading
// missing are filtered out; all others produce exactly one enriched record.
// A pollutant that is missing or non-numeric after coercion contributes 0 to
// the severity score; this zero-contribution policy is applied uniformly.
func (t *AirTransformer) Transform(records []model.Record) ([]model.Record, error) {
	out := make([]model.Record, 0, len(records))
	for _, rec := range records {
		if allPollutantsMissing(rec) {
			continue
		}
		out = append(out, rec.Clone())
	}

	coerceNumeric(out, append(append([]string{}, extract.PollutantColumns...), "uv_index")...)

	for _, rec := range out {
		parseTimeField(rec)

		severity := 0.0
		for col, weight := range severityWeights {
			if v, ok := rec.Float(col); ok {
				severity += v * weight
			}
		}
		rec["severity_score"] = severity

		if ts, ok := rec.Time("time"); ok {
			rec["hour"] = ts.Hour()
		} else {
			rec["hour"] = nil
		}
	}

	t.aqiBands.Apply(out)
	t.riskBands.Apply(out)
	return out, nil
}

// Schema implements Transformer.
func (t *AirTransformer) Schema() Schema {
	hours := make([]int, 24)
	for i := range hours {
		hours[i] = i
	}
	return Schema{
		Required: []string{"severity_score", "risk_flag"},
		Bands: map[string][]string{
			t.aqiBands.Target:  t.aqiBands.Labels,
			t.riskBands.Target: t.riskBands.Labels,
		},
		Codes: map[string][]int{
			"hour": hours,
		},
	}
}

func allPollutantsMissing(rec model.Record) bool {
	for _, col := range extract.PollutantColumns {
		if _, ok := rec.Float(col); ok {
			return false
		}
	}
	return true
}

// parseTimeField converts a textual timestamp into time.Time in place. An
// already-parsed or missing timestamp is left alone, an unparseable one
// becomes an explicit null.
func parseTimeField(rec model.Record) {
	s, ok := rec.String("time")
	if !ok {
		return
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			rec["time"] = ts
			return
		}
	}
	rec["time"] = nil
}
