package gateway

import (
	"errors"
	"fmt"
	"time"

	"business-assistant/internal/store"
	"business-assistant/internal/timeparse"
)

var ErrInvalidQuery = errors.New("INVALID_QUERY")

type CustomerQuery struct {
	Limit  int                  `mapstructure:"limit"`
	Filter store.CustomerFilter `mapstructure:"filter"`
}

type ProductQuery struct {
	Limit    int    `mapstructure:"limit"`
	Category string `mapstructure:"category"`
	LowStock bool   `mapstructure:"lowStock"`
}

// PeriodQuery selects a date range: explicit dates win, missing bounds come
// from the current window of Period.
type PeriodQuery struct {
	Period    string `mapstructure:"period"`
	StartDate string `mapstructure:"startDate"`
	EndDate   string `mapstructure:"endDate"`
}

type SalesQuery struct {
	PeriodQuery `mapstructure:",squash"`
}

type ExpenseQuery struct {
	PeriodQuery `mapstructure:",squash"`
}

type FinancialQuery struct {
	PeriodQuery     `mapstructure:",squash"`
	IncludeExpenses bool `mapstructure:"includeExpenses"`
	IncludeSales    bool `mapstructure:"includeSales"`
}

type OverviewQuery struct {
	PeriodQuery      `mapstructure:",squash"`
	IncludeCustomers bool `mapstructure:"includeCustomers"`
	IncludeSales     bool `mapstructure:"includeSales"`
	IncludeInventory bool `mapstructure:"includeInventory"`
	IncludeFinances  bool `mapstructure:"includeFinances"`
}

const (
	defaultLimit  = 10
	overviewLimit = 100
)

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return limit
}

// resolvedRange carries the concrete bounds and the period they came from.
type resolvedRange struct {
	Period string
	Range  store.DateRange
}

func resolveRange(q PeriodQuery, now time.Time) (resolvedRange, error) {
	period := q.Period
	if period == "" {
		period = string(timeparse.PeriodMonth)
	}

	w, err := timeparse.WindowFor(timeparse.Period(period), timeparse.TimeframeCurrent, now)
	if err != nil {
		return resolvedRange{}, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	r := store.DateRange{Start: w.Start, End: w.End}

	if q.StartDate != "" {
		if r.Start, err = parseDate(q.StartDate, false, now.Location()); err != nil {
			return resolvedRange{}, err
		}
	}
	if q.EndDate != "" {
		if r.End, err = parseDate(q.EndDate, true, now.Location()); err != nil {
			return resolvedRange{}, err
		}
	}
	if r.End.Before(r.Start) {
		return resolvedRange{}, fmt.Errorf("%w: endDate %s is before startDate %s", ErrInvalidQuery, q.EndDate, q.StartDate)
	}
	return resolvedRange{Period: period, Range: r}, nil
}

// parseDate accepts YYYY-MM-DD (expanded to the start or end of that day) or
// RFC3339.
func parseDate(s string, endOfDay bool, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		if endOfDay {
			return t.Add(24*time.Hour - time.Millisecond), nil
		}
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrInvalidQuery, s)
}
