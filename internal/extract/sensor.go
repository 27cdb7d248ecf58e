package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mkravets/datalift/internal/model"
)

// PollutantColumns are the six pollutant-named columns every normalized
// sensor record carries. Unmapped pollutants stay as explicit nulls, never
// absent columns.
var PollutantColumns = []string{
	"pm10", "pm2_5", "carbon_monoxide", "nitrogen_dioxide", "sulphur_dioxide", "ozone",
}

// ShapeError reports a document that matches no recognized schema. The
// document is skipped and logged; no row is synthesized from it.
type ShapeError struct {
	Path   string
	Reason string
}

func (e *ShapeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("unrecognized document shape: %s", e.Reason)
	}
	return fmt.Sprintf("unrecognized document shape in %s: %s", e.Path, e.Reason)
}

// stationDocument is the "one reading per pollutant per station" shape.
type stationDocument struct {
	Results []struct {
		Measurements []struct {
			Parameter   string   `json:"parameter"`
			Value       *float64 `json:"value"`
			LastUpdated string   `json:"lastUpdated"`
		} `json:"measurements"`
	} `json:"results"`
}

// hourlyDocument is the "parallel arrays keyed by pollutant" shape.
type hourlyDocument struct {
	Hourly map[string]json.RawMessage `json:"hourly"`
}

// stationParameters maps source pollutant identifiers to normalized columns.
var stationParameters = map[string]string{
	"pm10":  "pm10",
	"pm25":  "pm2_5",
	"pm2.5": "pm2_5",
	"co":    "carbon_monoxide",
	"no2":   "nitrogen_dioxide",
	"so2":   "sulphur_dioxide",
	"o3":    "ozone",
}

// ParseSensorDocument normalizes one raw sensor JSON document into records.
// Both recognized shapes yield the same schema: city, time, the six pollutant
// columns and uv_index, with nulls where a reading is not reported.
func ParseSensorDocument(data []byte, city string) ([]model.Record, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, &ShapeError{Reason: fmt.Sprintf("not a JSON object: %v", err)}
	}

	switch {
	case probe["results"] != nil:
		return parseStationShape(data, city)
	case probe["hourly"] != nil:
		return parseHourlyShape(data, city)
	default:
		return nil, &ShapeError{Reason: "neither \"results\" nor \"hourly\" key present"}
	}
}

func parseStationShape(data []byte, city string) ([]model.Record, error) {
	var doc stationDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ShapeError{Reason: fmt.Sprintf("station shape: %v", err)}
	}

	var records []model.Record
	for _, station := range doc.Results {
		for _, m := range station.Measurements {
			rec := emptySensorRecord(city)
			if m.LastUpdated != "" {
				rec["time"] = m.LastUpdated
			}
			if col, ok := stationParameters[m.Parameter]; ok && m.Value != nil {
				rec[col] = *m.Value
			}
			records = append(records, rec)
		}
	}
	return records, nil
}

func parseHourlyShape(data []byte, city string) ([]model.Record, error) {
	var doc hourlyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ShapeError{Reason: fmt.Sprintf("hourly shape: %v", err)}
	}

	var times []string
	if raw, ok := doc.Hourly["time"]; ok {
		if err := json.Unmarshal(raw, &times); err != nil {
			return nil, &ShapeError{Reason: fmt.Sprintf("hourly time axis: %v", err)}
		}
	}
	if len(times) == 0 {
		return nil, &ShapeError{Reason: "hourly shape has no time axis"}
	}

	series := make(map[string][]*float64)
	for key, raw := range doc.Hourly {
		if key == "time" {
			continue
		}
		var vals []*float64
		if err := json.Unmarshal(raw, &vals); err != nil {
			continue // non-numeric series, e.g. metadata
		}
		series[key] = vals
	}

	records := make([]model.Record, 0, len(times))
	for i, ts := range times {
		rec := emptySensorRecord(city)
		rec["time"] = ts
		for _, col := range append(append([]string{}, PollutantColumns...), "uv_index") {
			vals, ok := series[col]
			if !ok || i >= len(vals) || vals[i] == nil {
				continue
			}
			rec[col] = *vals[i]
		}
		records = append(records, rec)
	}
	return records, nil
}

// emptySensorRecord returns a record with every pollutant column present as
// an explicit null.
func emptySensorRecord(city string) model.Record {
	rec := model.Record{"city": city, "time": nil, "uv_index": nil}
	for _, col := range PollutantColumns {
		rec[col] = nil
	}
	return rec
}

// CityFromFilename recovers the city name from a raw file named like
// "delhi_raw_20251201.json".
func CityFromFilename(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if i := strings.Index(base, "_"); i > 0 {
		return base[:i]
	}
	return base
}

// ReadSensorFile parses one raw JSON file from disk.
func ReadSensorFile(path string) ([]model.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sensor file: %w", err)
	}
	records, err := ParseSensorDocument(data, CityFromFilename(path))
	if err != nil {
		var se *ShapeError
		if errors.As(err, &se) {
			se.Path = path
		}
		return nil, err
	}
	return records, nil
}
