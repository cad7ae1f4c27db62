package timeparse

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func endOf(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), time.UTC)
}

// ==== Concrete windows ====

func TestParseAt_QuarterScenario(t *testing.T) {
	ref := time.Date(2024, time.May, 15, 10, 30, 0, 0, time.UTC)

	got := New().ParseAt("sales overview for this quarter", ref)
	require.NotNil(t, got)

	want := TimeWindow{
		Period:             PeriodQuarter,
		Timeframe:          TimeframeCurrent,
		Start:              day(2024, time.April, 1),
		End:                endOf(2024, time.June, 30),
		OriginalExpression: "this quarter",
	}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("window mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "2024-04-01", got.StartDate())
	assert.Equal(t, "2024-06-30", got.EndDate())
}

func TestParseAt_PreviousQuarterWrapsToPriorYear(t *testing.T) {
	ref := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)

	got := New().ParseAt("revenue for the previous quarter", ref)
	require.NotNil(t, got)

	assert.Equal(t, day(2023, time.October, 1), got.Start)
	assert.Equal(t, endOf(2023, time.December, 31), got.End)
}

func TestParseAt_SundayWeekStartsSixDaysEarlier(t *testing.T) {
	sunday := time.Date(2024, time.May, 19, 18, 0, 0, 0, time.UTC)
	require.Equal(t, time.Sunday, sunday.Weekday())

	got := New().ParseAt("orders this week", sunday)
	require.NotNil(t, got)

	assert.Equal(t, day(2024, time.May, 13), got.Start)
	assert.Equal(t, time.Monday, got.Start.Weekday())
	assert.Equal(t, endOf(2024, time.May, 19), got.End)
}

func TestParseAt_PreviousMonthWrapsJanuary(t *testing.T) {
	ref := time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC)

	got := New().ParseAt("Expenses LAST MONTH please", ref)
	require.NotNil(t, got)

	assert.Equal(t, day(2023, time.December, 1), got.Start)
	assert.Equal(t, endOf(2023, time.December, 31), got.End)
	assert.Equal(t, "LAST MONTH", got.OriginalExpression)
}

func TestParseAt_LeapFebruary(t *testing.T) {
	ref := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)

	got := New().ParseAt("this month", ref)
	require.NotNil(t, got)
	assert.Equal(t, endOf(2024, time.February, 29), got.End)
}

func TestParseAt_DayWindows(t *testing.T) {
	ref := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	p := New()

	today := p.ParseAt("what did we sell today?", ref)
	require.NotNil(t, today)
	assert.Equal(t, day(2024, time.March, 1), today.Start)
	assert.Equal(t, endOf(2024, time.March, 1), today.End)

	yesterday := p.ParseAt("and yesterday", ref)
	require.NotNil(t, yesterday)
	assert.Equal(t, PeriodDay, yesterday.Period)
	assert.Equal(t, TimeframePrevious, yesterday.Timeframe)
	assert.Equal(t, day(2024, time.February, 29), yesterday.Start)
}

func TestParseAt_SpanishPhrases(t *testing.T) {
	ref := time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC)

	got := New().ParseAt("Ventas del Año Pasado", ref)
	require.NotNil(t, got)
	assert.Equal(t, PeriodYear, got.Period)
	assert.Equal(t, TimeframePrevious, got.Timeframe)
	assert.Equal(t, "Año Pasado", got.OriginalExpression)
	assert.Equal(t, day(2023, time.January, 1), got.Start)
}

func TestParseAt_NoExpression(t *testing.T) {
	assert.Nil(t, New().ParseAt("show me all customers", time.Now()))
	assert.Nil(t, New().ParseAt("", time.Now()))
}

func TestParseAt_PhraseInsideWordIgnored(t *testing.T) {
	ref := time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

	for _, text := range []string{
		"sales from late payers",
		"top players by revenue",
		"ahoy, show customers",
	} {
		assert.Nil(t, New().ParseAt(text, ref), text)
	}

	got := New().ParseAt("ventas de ayer", ref)
	require.NotNil(t, got)
	assert.Equal(t, PeriodDay, got.Period)
	assert.Equal(t, TimeframePrevious, got.Timeframe)
	assert.Equal(t, "ayer", got.OriginalExpression)
	assert.Equal(t, day(2024, time.May, 14), got.Start)
}

func TestParse_UsesInjectedClock(t *testing.T) {
	fixed := time.Date(2023, time.August, 3, 0, 0, 0, 0, time.UTC)
	p := New(WithClock(func() time.Time { return fixed }))

	got := p.Parse("this year")
	require.NotNil(t, got)
	assert.Equal(t, day(2023, time.January, 1), got.Start)
	assert.Equal(t, endOf(2023, time.December, 31), got.End)
}

func TestParse_CustomExpressionTable(t *testing.T) {
	p := New(WithExpressions([]Expression{
		{Locale: "pt", Phrase: "este mês", Period: PeriodMonth, Timeframe: TimeframeCurrent},
	}))

	ref := time.Date(2024, time.July, 4, 0, 0, 0, 0, time.UTC)
	got := p.ParseAt("vendas este mês", ref)
	require.NotNil(t, got)
	assert.Equal(t, day(2024, time.July, 1), got.Start)
	assert.Nil(t, p.ParseAt("this month", ref))
}

func TestWindowFor_PreservesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	ref := time.Date(2024, time.May, 15, 22, 0, 0, 0, loc)

	w, err := WindowFor(PeriodDay, TimeframeCurrent, ref)
	require.NoError(t, err)
	assert.Equal(t, loc, w.Start.Location())
	assert.Equal(t, 15, w.Start.Day())
}

func TestWindowFor_RejectsUnknownPeriod(t *testing.T) {
	_, err := WindowFor(Period("decade"), TimeframeCurrent, time.Now())
	assert.Error(t, err)
}

// ==== Properties ====

func TestWindowFor_BoundsStayInsideOneUnit(t *testing.T) {
	periods := []Period{PeriodDay, PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear}
	timeframes := []Timeframe{TimeframeCurrent, TimeframePrevious}

	ref := time.Date(2023, time.January, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 400; i++ {
		r := ref.AddDate(0, 0, i)
		for _, period := range periods {
			for _, tf := range timeframes {
				w, err := WindowFor(period, tf, r)
				require.NoError(t, err)
				require.False(t, w.End.Before(w.Start), "%s %s at %s", period, tf, r)

				switch period {
				case PeriodDay:
					assert.Equal(t, w.Start.YearDay(), w.End.YearDay())
				case PeriodWeek:
					assert.Equal(t, time.Monday, w.Start.Weekday())
					assert.Equal(t, time.Sunday, w.End.Weekday())
				case PeriodMonth:
					assert.Equal(t, w.Start.Month(), w.End.Month())
					assert.Equal(t, 1, w.Start.Day())
				case PeriodQuarter:
					assert.Equal(t, (int(w.Start.Month())-1)/3, (int(w.End.Month())-1)/3)
					assert.Equal(t, w.Start.Year(), w.End.Year())
				case PeriodYear:
					assert.Equal(t, w.Start.Year(), w.End.Year())
				}

				if tf == TimeframeCurrent {
					assert.True(t, w.Contains(r), "%s window must contain its reference", period)
				} else {
					assert.True(t, w.End.Before(r), "previous %s must end before the reference", period)
				}
			}
		}
	}
}
