package services

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/models"
	"github.com/shopspring/decimal"
)

// DefaultSMAPeriod is the moving-average window used when none is configured.
const DefaultSMAPeriod = 20

// MovingAverage computes the simple moving average of Close over period.
// Each value is dated with the last price in its window. It returns nil when
// there are fewer points than the period.
func MovingAverage(points []models.PricePoint, period int) []models.SeriesPoint {
	if period <= 0 || len(points) < period {
		return nil
	}

	prices := make([]float64, len(points))
	for i, p := range points {
		prices[i] = p.Close.InexactFloat64()
	}

	smaIndicator := trend.NewSmaWithPeriod[float64](period)
	result := helper.ChanToSlice(smaIndicator.Compute(helper.SliceToChan(prices)))

	offset := len(points) - len(result)
	series := make([]models.SeriesPoint, len(result))
	for i, v := range result {
		series[i] = models.SeriesPoint{
			Date:  points[offset+i].Date,
			Value: decimal.NewFromFloat(v).Round(4),
		}
	}
	return series
}
