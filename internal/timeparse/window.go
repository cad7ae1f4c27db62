// Package timeparse turns natural-language time references into concrete
// calendar windows.
package timeparse

import (
	"fmt"
	"time"
)

type Period string

const (
	PeriodDay     Period = "day"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

type Timeframe string

const (
	TimeframeCurrent  Timeframe = "current"
	TimeframePrevious Timeframe = "previous"
)

const dateLayout = "2006-01-02"

// TimeWindow is an inclusive calendar window. Start is midnight of the first
// day, End is 23:59:59.999 of the last day.
type TimeWindow struct {
	Period             Period    `json:"period"`
	Timeframe          Timeframe `json:"timeframe"`
	Start              time.Time `json:"start"`
	End                time.Time `json:"end"`
	OriginalExpression string    `json:"originalExpression,omitempty"`
}

func (w TimeWindow) StartDate() string { return w.Start.Format(dateLayout) }
func (w TimeWindow) EndDate() string   { return w.End.Format(dateLayout) }

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("%s/%s [%s..%s]", w.Period, w.Timeframe, w.StartDate(), w.EndDate())
}

func ValidPeriod(p Period) bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear:
		return true
	}
	return false
}

// WindowFor computes the window of the given period relative to ref. The
// location of ref is kept on both bounds.
func WindowFor(period Period, timeframe Timeframe, ref time.Time) (TimeWindow, error) {
	if !ValidPeriod(period) {
		return TimeWindow{}, fmt.Errorf("unknown period %q", period)
	}
	if timeframe != TimeframeCurrent && timeframe != TimeframePrevious {
		return TimeWindow{}, fmt.Errorf("unknown timeframe %q", timeframe)
	}

	y, m, d := ref.Date()
	loc := ref.Location()
	var first, last time.Time

	switch period {
	case PeriodDay:
		first = time.Date(y, m, d, 0, 0, 0, 0, loc)
		if timeframe == TimeframePrevious {
			first = first.AddDate(0, 0, -1)
		}
		last = first

	case PeriodWeek:
		offset := int(ref.Weekday()) - 1
		if ref.Weekday() == time.Sunday {
			offset = 6
		}
		first = time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
		if timeframe == TimeframePrevious {
			first = first.AddDate(0, 0, -7)
		}
		last = first.AddDate(0, 0, 6)

	case PeriodMonth:
		first = time.Date(y, m, 1, 0, 0, 0, 0, loc)
		if timeframe == TimeframePrevious {
			first = time.Date(y, m-1, 1, 0, 0, 0, 0, loc)
		}
		last = first.AddDate(0, 1, -1)

	case PeriodQuarter:
		quarter := (int(m) - 1) / 3
		year := y
		if timeframe == TimeframePrevious {
			quarter--
			if quarter < 0 {
				quarter = 3
				year--
			}
		}
		first = time.Date(year, time.Month(quarter*3+1), 1, 0, 0, 0, 0, loc)
		last = first.AddDate(0, 3, -1)

	case PeriodYear:
		year := y
		if timeframe == TimeframePrevious {
			year--
		}
		first = time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		last = time.Date(year, time.December, 31, 0, 0, 0, 0, loc)
	}

	return TimeWindow{
		Period:    period,
		Timeframe: timeframe,
		Start:     first,
		End:       endOfDay(last),
	}, nil
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}
