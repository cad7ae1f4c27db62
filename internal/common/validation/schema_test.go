package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitSchema() JSONSchema {
	min, max := 1.0, 100.0
	return JSONSchema{
		Type: "object",
		Properties: map[string]Property{
			"limit":    {Type: "integer", Minimum: &min, Maximum: &max},
			"period":   {Type: "string", Enum: []string{"day", "month"}},
			"lowStock": {Type: "boolean"},
		},
	}
}

func TestValidator_AcceptsWellFormedInput(t *testing.T) {
	v := MustCompile(limitSchema())

	assert.NoError(t, v.Validate(map[string]interface{}{"limit": 10.0, "period": "month"}))
	assert.NoError(t, v.Validate(nil))
}

func TestValidator_RejectsUnknownProperty(t *testing.T) {
	v := MustCompile(limitSchema())

	err := v.Validate(map[string]interface{}{"bogus": true})
	require.Error(t, err)

	var vErr *Error
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Errors, 1)
	assert.Equal(t, "bogus", vErr.Errors[0].Field)
}

func TestValidator_ReportsEveryViolation(t *testing.T) {
	result := ValidateInput(map[string]interface{}{
		"limit":    500.0,
		"period":   "fortnight",
		"lowStock": "yes",
	}, limitSchema())

	assert.False(t, result.Valid)
	assert.True(t, result.HasErrors("limit"))
	assert.True(t, result.HasErrors("period"))
	assert.True(t, result.HasErrors("lowStock"))
	assert.Len(t, result.GetErrorMessages(), 3)
}

func TestValidator_RejectsFractionalInteger(t *testing.T) {
	v := MustCompile(limitSchema())
	assert.Error(t, v.Validate(map[string]interface{}{"limit": 2.5}))
}
