package etl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformDefaultMappings(t *testing.T) {
	source := map[string]any{
		"id":          "e-1",
		"payrollId":   "PR-100",
		"firstName":   "Ana",
		"lastName":    "Diaz",
		"displayName": "Ana D.",
		"email":       "Ana.Diaz@Example.com",
		"phone":       "(312) 555-0147",
		"isActive":    true,
	}

	out, err := Transform(source, DefaultEmployeeMappings)
	require.NoError(t, err)
	assert.Equal(t, "PR-100", out["employee_id"])
	assert.Equal(t, "Ana", out["first_name"])
	assert.Equal(t, "ana.diaz@example.com", out["primary_email"])
	assert.Equal(t, "3125550147", out["phone_number"])
	assert.Equal(t, "ACTIVE", out["status"])
}

func TestTransformPayrollIDFallback(t *testing.T) {
	source := map[string]any{"id": "e-1", "firstName": "Bo", "lastName": "Li", "isActive": false}
	out, err := Transform(source, DefaultEmployeeMappings)
	require.NoError(t, err)
	assert.Equal(t, "e-1", out["employee_id"])
	assert.Equal(t, "TERMINATED", out["status"])
}

func TestTransformRequiredMissing(t *testing.T) {
	source := map[string]any{"id": "e-1", "firstName": "Bo"}
	_, err := Transform(source, DefaultEmployeeMappings)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "last_name")
}

func TestTransformOptionalMissingOmitted(t *testing.T) {
	source := map[string]any{"id": "e-1", "firstName": "Bo", "lastName": "Li", "isActive": true}
	out, err := Transform(source, DefaultEmployeeMappings)
	require.NoError(t, err)
	_, ok := out["primary_email"]
	assert.False(t, ok)
}

func TestApplyTransforms(t *testing.T) {
	assert.Equal(t, "HI", applyTransform("upper", "hi"))
	assert.Equal(t, "hi", applyTransform("trim", "  hi  "))
	assert.Equal(t, "42", applyTransform("to_string", 42))
	assert.Equal(t, 12.5, applyTransform("to_number", " 12.5 "))
	assert.Nil(t, applyTransform("to_number", "not a number"))
	// unknown transform passes through
	assert.Equal(t, "x", applyTransform("nope", "x"))
}
