package analyze

import (
	"fmt"

	"github.com/mkravets/datalift/internal/model"
)

func churnMetrics(records []model.Record) []model.Metric {
	var metrics []model.Metric

	churned := 0
	for _, rec := range records {
		if s, _ := rec.String("Churn"); s == "Yes" {
			churned++
		}
	}
	metrics = append(metrics, model.Metric{
		Name:  "churn_percentage",
		Value: percent(churned, len(records)),
	})

	chargesByContract := groupMeans(records, "Contract", "MonthlyCharges")
	for _, contract := range sortedKeys(chargesByContract) {
		metrics = append(metrics, model.Metric{
			Name:  fmt.Sprintf("avg_monthly_charges[%s]", contract),
			Value: formatFloat(chargesByContract[contract]),
		})
	}

	tenureGroups := groupCounts(records, "tenure_group")
	for _, group := range sortedKeys(tenureGroups) {
		metrics = append(metrics, model.Metric{
			Name:  fmt.Sprintf("customers[%s]", group),
			Value: fmt.Sprintf("%d", tenureGroups[group]),
		})
	}

	internet := groupCounts(records, "InternetService")
	for _, svc := range sortedKeys(internet) {
		metrics = append(metrics, model.Metric{
			Name:  fmt.Sprintf("internet_service_pct[%s]", svc),
			Value: percent(internet[svc], len(records)),
		})
	}

	return metrics
}
