package transform

import (
	"testing"
	"time"

	"github.com/mkravets/datalift/internal/model"
)

func airRecord(overrides model.Record) model.Record {
	rec := model.Record{
		"city":             "delhi",
		"time":             "2024-06-01T14:00",
		"pm2_5":            40.0,
		"pm10":             80.0,
		"nitrogen_dioxide": 10.0,
		"sulphur_dioxide":  5.0,
		"carbon_monoxide":  200.0,
		"ozone":            30.0,
	}
	for k, v := range overrides {
		rec[k] = v
	}
	return rec
}

func TestAirSeverityScore(t *testing.T) {
	out, err := NewAirTransformer().Transform([]model.Record{airRecord(nil)})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	// 5*40 + 3*80 + 4*10 + 4*5 + 2*200 + 3*30 = 990
	if got := out[0]["severity_score"]; got != 990.0 {
		t.Errorf("severity_score = %v, want 990", got)
	}
	if got := out[0]["risk_flag"]; got != "High Risk" {
		t.Errorf("risk_flag = %v, want High Risk", got)
	}
}

func TestAirSeverityMissingContributesZero(t *testing.T) {
	out, err := NewAirTransformer().Transform([]model.Record{airRecord(model.Record{
		"pm10":            nil,
		"carbon_monoxide": nil,
		"ozone":           "n/a",
	})})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	// remaining: 5*40 + 4*10 + 4*5 = 260
	if got := out[0]["severity_score"]; got != 260.0 {
		t.Errorf("severity_score = %v, want 260 with missing readings at zero", got)
	}
}

func TestAirRiskBoundaries(t *testing.T) {
	tests := []struct {
		severity float64
		want     string
	}{
		{0, "Low Risk"},
		{199.99, "Low Risk"},
		{200, "Moderate Risk"},
		{399.99, "Moderate Risk"},
		{400, "High Risk"},
	}
	tr := NewAirTransformer()
	for _, tt := range tests {
		// drive severity through sulphur dioxide (weight 4) with all
		// others absent; dividing by 4 keeps the product exact
		out, err := tr.Transform([]model.Record{{
			"city":            "oslo",
			"sulphur_dioxide": tt.severity / 4,
		}})
		if err != nil {
			t.Fatalf("Transform() error = %v", err)
		}
		if got := out[0]["risk_flag"]; got != tt.want {
			t.Errorf("severity %v: risk_flag = %v, want %q", tt.severity, got, tt.want)
		}
	}
}

func TestAirAQIBoundaries(t *testing.T) {
	tests := []struct {
		pm25 float64
		want string
	}{
		{0, "Good"},
		{49.9, "Good"},
		{50, "Moderate"},
		{100, "Unhealthy"},
		{200, "Very Unhealthy"},
		{300, "Hazardous"},
		{500, "Hazardous"},
	}
	tr := NewAirTransformer()
	for _, tt := range tests {
		out, err := tr.Transform([]model.Record{{"city": "oslo", "pm2_5": tt.pm25}})
		if err != nil {
			t.Fatalf("Transform() error = %v", err)
		}
		if got := out[0]["aqi_category"]; got != tt.want {
			t.Errorf("pm2_5 %v: aqi_category = %v, want %q", tt.pm25, got, tt.want)
		}
	}
}

func TestAirAQINullWhenPM25Missing(t *testing.T) {
	out, err := NewAirTransformer().Transform([]model.Record{{
		"city": "oslo",
		"pm10": 30.0,
	}})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if got := out[0]["aqi_category"]; got != nil {
		t.Errorf("aqi_category without pm2_5 = %v, want nil", got)
	}
}

func TestAirDropsAllMissingRows(t *testing.T) {
	in := []model.Record{
		airRecord(nil),
		{"city": "oslo", "time": "2024-06-01T02:00"}, // no readings at all
		{"city": "oslo", "pm2_5": nil, "pm10": "bad"},
		airRecord(model.Record{"city": "oslo"}),
	}
	out, err := NewAirTransformer().Transform(in)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d records, want 2 after dropping all-missing rows", len(out))
	}
	if city, _ := out[1].String("city"); city != "oslo" {
		t.Errorf("surviving records out of order: %v", out[1]["city"])
	}
}

func TestAirHourFeature(t *testing.T) {
	tests := []struct {
		name string
		time any
		want any
	}{
		{"compact layout", "2024-06-01T14:00", 14},
		{"rfc3339", "2024-06-01T23:15:00Z", 23},
		{"seconds layout", "2024-06-01T05:30:00", 5},
		{"space layout", "2024-06-01 09:30:00", 9},
		{"garbage", "yesterday", nil},
		{"absent", nil, nil},
	}
	tr := NewAirTransformer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := airRecord(nil)
			if tt.time == nil {
				delete(rec, "time")
			} else {
				rec["time"] = tt.time
			}
			out, err := tr.Transform([]model.Record{rec})
			if err != nil {
				t.Fatalf("Transform() error = %v", err)
			}
			if got := out[0]["hour"]; got != tt.want {
				t.Errorf("hour = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAirTimeParsedInPlace(t *testing.T) {
	out, err := NewAirTransformer().Transform([]model.Record{airRecord(nil)})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	ts, ok := out[0].Time("time")
	if !ok {
		t.Fatalf("time = %v (%T), want time.Time", out[0]["time"], out[0]["time"])
	}
	want := time.Date(2024, 6, 1, 14, 0, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("time = %v, want %v", ts, want)
	}
}

func TestBinningLabel(t *testing.T) {
	b := Binning{Bounds: []float64{50, 100, 200, 300}, Labels: []string{"Good", "Moderate", "Unhealthy", "Very Unhealthy", "Hazardous"}}
	if got := b.Label(49.999); got != "Good" {
		t.Errorf("Label(49.999) = %q", got)
	}
	if got := b.Label(300); got != "Hazardous" {
		t.Errorf("Label(300) = %q", got)
	}
}

func TestForProfile(t *testing.T) {
	for _, name := range []string{"churn", "air"} {
		tr, err := ForProfile(name)
		if err != nil {
			t.Fatalf("ForProfile(%q) error = %v", name, err)
		}
		if tr.Name() != name {
			t.Errorf("ForProfile(%q).Name() = %q", name, tr.Name())
		}
	}
	if _, err := ForProfile("weather"); err == nil {
		t.Error("ForProfile(weather) succeeded, want error")
	}
}
