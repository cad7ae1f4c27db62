package timeparse

import (
	"strings"
	"time"

	"business-assistant/internal/common/textmatch"
)

// Expression is one row of the phrase table.
type Expression struct {
	Locale    string    `yaml:"locale"`
	Phrase    string    `yaml:"phrase"`
	Period    Period    `yaml:"period"`
	Timeframe Timeframe `yaml:"timeframe"`
}

// DefaultExpressions is ordered; the first phrase found in the text wins, so
// longer phrases sharing a word with a shorter one must come first.
var DefaultExpressions = []Expression{
	{Locale: "en", Phrase: "this month", Period: PeriodMonth, Timeframe: TimeframeCurrent},
	{Locale: "en", Phrase: "last month", Period: PeriodMonth, Timeframe: TimeframePrevious},
	{Locale: "en", Phrase: "previous month", Period: PeriodMonth, Timeframe: TimeframePrevious},
	{Locale: "en", Phrase: "this quarter", Period: PeriodQuarter, Timeframe: TimeframeCurrent},
	{Locale: "en", Phrase: "last quarter", Period: PeriodQuarter, Timeframe: TimeframePrevious},
	{Locale: "en", Phrase: "previous quarter", Period: PeriodQuarter, Timeframe: TimeframePrevious},
	{Locale: "en", Phrase: "this year", Period: PeriodYear, Timeframe: TimeframeCurrent},
	{Locale: "en", Phrase: "last year", Period: PeriodYear, Timeframe: TimeframePrevious},
	{Locale: "en", Phrase: "previous year", Period: PeriodYear, Timeframe: TimeframePrevious},
	{Locale: "en", Phrase: "this week", Period: PeriodWeek, Timeframe: TimeframeCurrent},
	{Locale: "en", Phrase: "last week", Period: PeriodWeek, Timeframe: TimeframePrevious},
	{Locale: "en", Phrase: "previous week", Period: PeriodWeek, Timeframe: TimeframePrevious},
	{Locale: "en", Phrase: "yesterday", Period: PeriodDay, Timeframe: TimeframePrevious},
	{Locale: "en", Phrase: "today", Period: PeriodDay, Timeframe: TimeframeCurrent},

	{Locale: "es", Phrase: "este mes", Period: PeriodMonth, Timeframe: TimeframeCurrent},
	{Locale: "es", Phrase: "mes pasado", Period: PeriodMonth, Timeframe: TimeframePrevious},
	{Locale: "es", Phrase: "este trimestre", Period: PeriodQuarter, Timeframe: TimeframeCurrent},
	{Locale: "es", Phrase: "trimestre pasado", Period: PeriodQuarter, Timeframe: TimeframePrevious},
	{Locale: "es", Phrase: "este año", Period: PeriodYear, Timeframe: TimeframeCurrent},
	{Locale: "es", Phrase: "año pasado", Period: PeriodYear, Timeframe: TimeframePrevious},
	{Locale: "es", Phrase: "esta semana", Period: PeriodWeek, Timeframe: TimeframeCurrent},
	{Locale: "es", Phrase: "semana pasada", Period: PeriodWeek, Timeframe: TimeframePrevious},
	{Locale: "es", Phrase: "hoy", Period: PeriodDay, Timeframe: TimeframeCurrent},
	{Locale: "es", Phrase: "ayer", Period: PeriodDay, Timeframe: TimeframePrevious},
}

type Parser struct {
	now         func() time.Time
	expressions []Expression
}

type Option func(*Parser)

// WithClock replaces time.Now as the reference instant for Parse.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

func WithExpressions(exprs []Expression) Option {
	return func(p *Parser) {
		p.expressions = append([]Expression(nil), exprs...)
	}
}

func New(opts ...Option) *Parser {
	p := &Parser{
		now:         time.Now,
		expressions: DefaultExpressions,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse resolves the first known expression in text against the clock, or
// returns nil when none is present.
func (p *Parser) Parse(text string) *TimeWindow {
	return p.ParseAt(text, p.now())
}

func (p *Parser) ParseAt(text string, ref time.Time) *TimeWindow {
	lower := strings.ToLower(text)
	for _, expr := range p.expressions {
		phrase := strings.ToLower(expr.Phrase)
		if phrase == "" {
			continue
		}
		idx, _ := textmatch.Index(lower, phrase)
		if idx < 0 {
			continue
		}
		w, err := WindowFor(expr.Period, expr.Timeframe, ref)
		if err != nil {
			continue
		}
		w.OriginalExpression = literalAt(text, lower, idx, len(phrase))
		return &w
	}
	return nil
}

// literalAt returns the slice of the original text matching lower[idx:idx+n].
// Lowercasing can change byte lengths, so offsets are mapped rune by rune.
func literalAt(text, lower string, idx, n int) string {
	if len(text) == len(lower) {
		return text[idx : idx+n]
	}
	startRune := len([]rune(lower[:idx]))
	countRune := len([]rune(lower[idx : idx+n]))
	runes := []rune(text)
	if startRune+countRune > len(runes) {
		return lower[idx : idx+n]
	}
	return string(runes[startRune : startRune+countRune])
}
