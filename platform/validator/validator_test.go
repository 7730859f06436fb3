package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fullhouse_client/platform/apperr"
)

type sample struct {
	Email   string `validate:"required,email"`
	Urgency string `validate:"urgency"`
}

func TestCheckReportsFields(t *testing.T) {
	v := New()

	err := v.Check(sample{Email: "nope", Urgency: "tomorrow"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	fields, ok := ae.Details.([]FieldError)
	require.True(t, ok)
	assert.Len(t, fields, 2)
	assert.Equal(t, "Email", fields[0].Field)
	assert.Equal(t, "urgency", fields[1].Rule)
}

func TestCheckAcceptsSpanishUrgency(t *testing.T) {
	v := New()
	assert.NoError(t, v.Check(sample{Email: "ana@example.com", Urgency: "Alta"}))
	assert.NoError(t, v.Check(sample{Email: "ana@example.com"}))
}
