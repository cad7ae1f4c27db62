package parsebusinessquery

import "business-assistant/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"query"},
		Properties: map[string]validation.Property{
			"query": {
				Type:        "string",
				Description: "Free-text business question",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(2000),
				Pattern:     `\S`,
			},
		},
		// other process variables travel with the job
		AdditionalProperties: true,
	}
}

func intPtr(i int) *int {
	return &i
}
