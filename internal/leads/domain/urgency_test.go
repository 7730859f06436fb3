package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUrgency(t *testing.T) {
	tests := map[string]Urgency{
		"high":   UrgencyHigh,
		" Alta ": UrgencyHigh,
		"MEDIA":  UrgencyMedium,
		"medium": UrgencyMedium,
		"baja":   UrgencyLow,
		"low":    UrgencyLow,
		"":       UrgencyUnknown,
		"pronto": UrgencyUnknown,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ParseUrgency(raw), "input %q", raw)
	}
}

func TestUrgencyLabelsAndDefaults(t *testing.T) {
	assert.Equal(t, "Alta", UrgencyHigh.Label())
	assert.Equal(t, "Baja", UrgencyLow.Label())
	assert.Equal(t, "Sin definir", UrgencyUnknown.Label())
	assert.Equal(t, "media", UrgencyMedium.Spanish())

	assert.Equal(t, 0.9, DefaultIntentForUrgency(UrgencyHigh))
	assert.Equal(t, 0.7, DefaultIntentForUrgency(UrgencyMedium))
	assert.Equal(t, 0.45, DefaultIntentForUrgency(UrgencyLow))
	assert.Equal(t, 0.45, DefaultIntentForUrgency(UrgencyUnknown))
}
