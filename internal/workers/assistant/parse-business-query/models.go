package parsebusinessquery

type Input struct {
	Query string `json:"query"`
}

// Output is written back as process variables and feeds collect-business-data.
type Output struct {
	Intent        string          `json:"intent"`
	Capabilities  []string        `json:"capabilities"`
	HasTimeWindow bool            `json:"hasTimeWindow"`
	TimeWindow    *TimeWindowVars `json:"timeWindow,omitempty"`
}

type TimeWindowVars struct {
	Period             string `json:"period"`
	Timeframe          string `json:"timeframe"`
	StartDate          string `json:"startDate"`
	EndDate            string `json:"endDate"`
	OriginalExpression string `json:"originalExpression"`
}
