package collectbusinessdata

import (
	"business-assistant/internal/common/validation"
	"business-assistant/internal/timeparse"
)

const datePattern = `^\d{4}-\d{2}-\d{2}$`

func GetInputSchema() validation.JSONSchema {
	closed := false
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"capabilities"},
		Properties: map[string]validation.Property{
			"capabilities": {
				Type:        "array",
				Description: "Capabilities resolved for the query",
				Items:       &validation.Property{Type: "string"},
			},
			"timeWindow": {
				Type:        "object",
				Description: "Optional window produced by parse-business-query",
				Properties: map[string]validation.Property{
					"period": {
						Type: "string",
						Enum: []string{
							string(timeparse.PeriodDay),
							string(timeparse.PeriodWeek),
							string(timeparse.PeriodMonth),
							string(timeparse.PeriodQuarter),
							string(timeparse.PeriodYear),
						},
					},
					"timeframe": {
						Type: "string",
						Enum: []string{string(timeparse.TimeframeCurrent), string(timeparse.TimeframePrevious)},
					},
					"startDate":          {Type: "string", Pattern: datePattern},
					"endDate":            {Type: "string", Pattern: datePattern},
					"originalExpression": {Type: "string"},
				},
				AdditionalProperties: &closed,
			},
		},
		AdditionalProperties: true,
	}
}
