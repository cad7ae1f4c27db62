package collectbusinessdata

import "business-assistant/internal/orchestrator"

// Input accepts the variables parse-business-query writes.
type Input struct {
	Capabilities []string        `json:"capabilities"`
	TimeWindow   *TimeWindowVars `json:"timeWindow,omitempty"`
}

type TimeWindowVars struct {
	Period             string `json:"period"`
	Timeframe          string `json:"timeframe"`
	StartDate          string `json:"startDate,omitempty"`
	EndDate            string `json:"endDate,omitempty"`
	OriginalExpression string `json:"originalExpression,omitempty"`
}

type Output struct {
	BusinessData  *orchestrator.BusinessDataBag `json:"businessData"`
	CollectedKeys []string                      `json:"collectedKeys"`
	HasErrors     bool                          `json:"hasErrors"`
	Degraded      bool                          `json:"degraded"`
}
