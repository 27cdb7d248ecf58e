package analyze

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mkravets/datalift/internal/model"
)

func metricValue(t *testing.T, metrics []model.Metric, name string) string {
	t.Helper()
	for _, m := range metrics {
		if m.Name == name {
			return m.Value
		}
	}
	t.Fatalf("metric %q not found in %+v", name, metrics)
	return ""
}

func TestNewAnalyzerRejectsUnknownProfile(t *testing.T) {
	if _, err := NewAnalyzer("weather"); err == nil {
		t.Error("NewAnalyzer(weather) succeeded, want error")
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	a, err := NewAnalyzer("churn")
	if err != nil {
		t.Fatal(err)
	}
	report := a.Analyze(nil)
	if report.Rows != 0 || len(report.Metrics) != 0 {
		t.Errorf("empty input produced metrics: %+v", report)
	}
}

func TestChurnMetrics(t *testing.T) {
	records := []model.Record{
		{"Churn": "Yes", "Contract": "Month-to-month", "MonthlyCharges": 80.0, "tenure_group": "New", "InternetService": "Fiber optic"},
		{"Churn": "No", "Contract": "Month-to-month", "MonthlyCharges": 40.0, "tenure_group": "New", "InternetService": "DSL"},
		{"Churn": "No", "Contract": "Two year", "MonthlyCharges": 100.0, "tenure_group": "Champion", "InternetService": "DSL"},
		{"Churn": "No", "Contract": "Two year", "MonthlyCharges": 60.0, "tenure_group": "Champion", "InternetService": "No"},
	}

	a, _ := NewAnalyzer("churn")
	report := a.Analyze(records)

	if got := metricValue(t, report.Metrics, "churn_percentage"); got != "25.00" {
		t.Errorf("churn_percentage = %q, want 25.00", got)
	}
	if got := metricValue(t, report.Metrics, "avg_monthly_charges[Month-to-month]"); got != "60.00" {
		t.Errorf("avg_monthly_charges[Month-to-month] = %q, want 60.00", got)
	}
	if got := metricValue(t, report.Metrics, "avg_monthly_charges[Two year]"); got != "80.00" {
		t.Errorf("avg_monthly_charges[Two year] = %q, want 80.00", got)
	}
	if got := metricValue(t, report.Metrics, "customers[Champion]"); got != "2" {
		t.Errorf("customers[Champion] = %q, want 2", got)
	}
	if got := metricValue(t, report.Metrics, "internet_service_pct[DSL]"); got != "50.00" {
		t.Errorf("internet_service_pct[DSL] = %q, want 50.00", got)
	}
}

func TestAirMetrics(t *testing.T) {
	records := []model.Record{
		{"city": "delhi", "pm2_5": 120.0, "severity_score": 800.0, "risk_flag": "High Risk", "hour": 9.0},
		{"city": "delhi", "pm2_5": 80.0, "severity_score": 600.0, "risk_flag": "High Risk", "hour": 9.0},
		{"city": "oslo", "pm2_5": 10.0, "severity_score": 50.0, "risk_flag": "Low Risk", "hour": 2.0},
		{"city": "oslo", "pm2_5": 14.0, "severity_score": 70.0, "risk_flag": "Low Risk", "hour": 14.0},
	}

	a, _ := NewAnalyzer("air")
	report := a.Analyze(records)

	if got := metricValue(t, report.Metrics, "city_highest_avg_pm2_5"); got != "delhi (100.00)" {
		t.Errorf("city_highest_avg_pm2_5 = %q", got)
	}
	if got := metricValue(t, report.Metrics, "city_highest_avg_severity"); got != "delhi (700.00)" {
		t.Errorf("city_highest_avg_severity = %q", got)
	}
	if got := metricValue(t, report.Metrics, "risk_pct[High Risk]"); got != "50.00" {
		t.Errorf("risk_pct[High Risk] = %q", got)
	}
	if got := metricValue(t, report.Metrics, "worst_aqi_hour"); got != "09:00 (avg pm2_5 100.00)" {
		t.Errorf("worst_aqi_hour = %q", got)
	}
}

func TestArgmaxTieBreaksAlphabetically(t *testing.T) {
	key, val := argmax(map[string]float64{"b": 5, "a": 5, "c": 2})
	if key != "a" || val != 5 {
		t.Errorf("argmax = %q/%v, want a/5", key, val)
	}
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "summary.csv")

	report := &model.AnalysisReport{
		Profile: "churn",
		Rows:    2,
		Metrics: []model.Metric{
			{Name: "churn_percentage", Value: "50.00"},
			{Name: "customers[New]", Value: "2"},
		},
	}
	if err := WriteCSV(report, path); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("summary has %d lines, want 3", len(lines))
	}
	if lines[0] != "metric,value" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "churn_percentage,50.00" {
		t.Errorf("row 1 = %q", lines[1])
	}
}
