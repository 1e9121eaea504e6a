package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducnv-dev/shoestore-backend/internal/validate"
)

type signupForm struct {
	UserName string `json:"userName" validate:"required,min=5"`
	Email    string `json:"email" validate:"omitempty,email"`
	RecordID string `json:"recordId" validate:"omitempty,objectid"`
	Kind     string `json:"kind" validate:"omitempty,oneof=basic premium"`
}

func TestStruct_ReportsEveryViolationByJSONName(t *testing.T) {
	err := validate.Struct(signupForm{
		UserName: "abc",
		Email:    "not-an-email",
		RecordID: "zzz",
	})
	require.Error(t, err)

	ve, ok := validate.AsErrors(err)
	require.True(t, ok)
	require.Len(t, ve.Fields, 3, "every violation is reported, not just the first")

	fields := make([]string, 0, len(ve.Fields))
	for _, fe := range ve.Fields {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"userName", "email", "recordId"}, fields)
}

func TestStruct_Valid(t *testing.T) {
	err := validate.Struct(signupForm{
		UserName: "Duc Nguyen",
		Email:    "duc@example.com",
		RecordID: "662f8a1c9d4e5b6a7c8d9e0f",
		Kind:     "premium",
	})
	assert.NoError(t, err)
}

func TestStruct_Messages(t *testing.T) {
	err := validate.Struct(signupForm{UserName: "abc", Kind: "gold"})
	require.Error(t, err)

	ve, ok := validate.AsErrors(err)
	require.True(t, ok)

	byField := map[string]string{}
	for _, fe := range ve.Fields {
		byField[fe.Field] = fe.Message
	}
	assert.Equal(t, "userName must have at least 5 items or characters", byField["userName"])
	assert.Equal(t, "kind must be one of [basic premium]", byField["kind"])
}

func TestErrors_ErrorJoinsMessages(t *testing.T) {
	err := &validate.Errors{Fields: []validate.FieldError{
		{Field: "a", Message: "a is required"},
		{Field: "b", Message: "b is required"},
	}}
	assert.Equal(t, "a is required. b is required", err.Error())
}
