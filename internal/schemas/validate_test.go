package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string"},
		"age": {"type": "integer", "minimum": 0}
	}
}`

func TestValidateJSONString_Valid(t *testing.T) {
	err := ValidateJSONString(personSchema, `{"name": "Ada", "age": 36}`)
	assert.NoError(t, err)
}

func TestValidateJSONString_MissingField(t *testing.T) {
	err := ValidateJSONString(personSchema, `{"age": 36}`)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	require.Len(t, validationErr.Errors, 1)
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
}

func TestValidateJSONString_WrongType(t *testing.T) {
	err := ValidateJSONString(personSchema, `{"name": 7, "age": -1}`)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	assert.Len(t, validationErr.Errors, 2)
	assert.Contains(t, validationErr.Summary(), "(and 1 more)")
}

func TestValidateBytes_MalformedDocument(t *testing.T) {
	err := ValidateBytes(personSchema, []byte(`{"name":`))
	require.Error(t, err)

	_, ok := err.(*SchemaLoadError)
	assert.True(t, ok, "malformed document should be reported as a load error")
}

func TestValidateBytes_BadSchema(t *testing.T) {
	err := ValidateBytes(`{"type": 12}`, []byte(`{}`))
	require.Error(t, err)

	loadErr, ok := err.(*SchemaLoadError)
	require.True(t, ok)
	assert.Contains(t, loadErr.Error(), "schema compilation failed")
}

func TestValidationError_Formatting(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{
		{Field: "profile.name", Message: "Invalid type"},
	}}

	assert.Contains(t, err.Error(), "1. profile.name: Invalid type")
	assert.Equal(t, "profile.name: Invalid type", err.Summary())
	assert.Equal(t, "validation failed", (&ValidationError{}).Summary())
}
