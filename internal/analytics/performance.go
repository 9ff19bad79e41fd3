package analytics

import (
	"context"
	"time"

	"github.com/Veraticus/spice-ask/internal/service"
	"github.com/shopspring/decimal"
)

const (
	daysPerYear  = 365.25
	daysPerMonth = 30
)

// Performance compares net worth on start and end.
func (a *Analyzer) Performance(ctx context.Context, start, end time.Time) (*service.PerformanceSummary, error) {
	if end.IsZero() {
		end = a.today()
	}

	startValue, err := a.netWorthOn(ctx, start)
	if err != nil {
		return nil, err
	}
	endValue, err := a.netWorthOn(ctx, end)
	if err != nil {
		return nil, err
	}

	absolute := endValue.Sub(startValue)
	percent := percentOf(absolute, startValue)

	days := int(end.Sub(start).Hours() / 24)
	annualized := percent
	if days > 0 {
		years := decimal.NewFromFloat(float64(days) / daysPerYear)
		annualized = percent.Div(years).Round(2)
	}

	return &service.PerformanceSummary{
		StartDate:        start,
		EndDate:          end,
		Days:             days,
		StartValue:       startValue,
		EndValue:         endValue,
		AbsoluteReturn:   absolute,
		PercentReturn:    percent,
		AnnualizedReturn: annualized,
	}, nil
}

// MonthlyPerformance reports one entry per calendar month, starting with the
// month containing today minus months*30 days and ending with the current
// partial month.
func (a *Analyzer) MonthlyPerformance(ctx context.Context, months int) ([]service.MonthlyPerformance, error) {
	if months < 1 {
		months = 1
	}

	end := a.today()
	first := end.AddDate(0, 0, -months*daysPerMonth)
	current := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, end.Location())

	var out []service.MonthlyPerformance
	for !current.After(end) {
		monthEnd := current.AddDate(0, 1, -1)
		if monthEnd.After(end) {
			monthEnd = end
		}

		startValue, err := a.netWorthOn(ctx, current)
		if err != nil {
			return nil, err
		}
		endValue, err := a.netWorthOn(ctx, monthEnd)
		if err != nil {
			return nil, err
		}
		change := endValue.Sub(startValue)

		out = append(out, service.MonthlyPerformance{
			Month:         current.Format("2006-01"),
			StartDate:     current,
			EndDate:       monthEnd,
			StartValue:    startValue,
			EndValue:      endValue,
			Return:        change,
			ReturnPercent: percentOf(change, startValue),
		})

		current = current.AddDate(0, 1, 0)
	}
	return out, nil
}
