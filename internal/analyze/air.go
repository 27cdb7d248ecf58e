package analyze

import (
	"fmt"

	"github.com/mkravets/datalift/internal/model"
)

func airMetrics(records []model.Record) []model.Metric {
	var metrics []model.Metric

	if city, avg := argmax(groupMeans(records, "city", "pm2_5")); city != "" {
		metrics = append(metrics, model.Metric{
			Name:  "city_highest_avg_pm2_5",
			Value: fmt.Sprintf("%s (%s)", city, formatFloat(avg)),
		})
	}

	if city, avg := argmax(groupMeans(records, "city", "severity_score")); city != "" {
		metrics = append(metrics, model.Metric{
			Name:  "city_highest_avg_severity",
			Value: fmt.Sprintf("%s (%s)", city, formatFloat(avg)),
		})
	}

	risks := groupCounts(records, "risk_flag")
	for _, flag := range sortedKeys(risks) {
		metrics = append(metrics, model.Metric{
			Name:  fmt.Sprintf("risk_pct[%s]", flag),
			Value: percent(risks[flag], len(records)),
		})
	}

	// Hour of day with the worst average PM2.5.
	hourSums := make(map[string]float64)
	hourCounts := make(map[string]int)
	for _, rec := range records {
		h, ok := rec.Int("hour")
		if !ok {
			continue
		}
		v, ok := rec.Float("pm2_5")
		if !ok {
			continue
		}
		key := fmt.Sprintf("%02d", h)
		hourSums[key] += v
		hourCounts[key]++
	}
	hourMeans := make(map[string]float64, len(hourSums))
	for h, sum := range hourSums {
		hourMeans[h] = sum / float64(hourCounts[h])
	}
	if hour, avg := argmax(hourMeans); hour != "" {
		metrics = append(metrics, model.Metric{
			Name:  "worst_aqi_hour",
			Value: fmt.Sprintf("%s:00 (avg pm2_5 %s)", hour, formatFloat(avg)),
		})
	}

	return metrics
}
