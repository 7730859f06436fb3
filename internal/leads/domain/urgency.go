package domain

import "strings"

// Urgency is how soon a lead wants to transact.
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
	// UrgencyUnknown scores like low and renders as "Sin definir".
	UrgencyUnknown Urgency = ""
)

var urgencyAliases = map[string]Urgency{
	"high":   UrgencyHigh,
	"alta":   UrgencyHigh,
	"medium": UrgencyMedium,
	"media":  UrgencyMedium,
	"low":    UrgencyLow,
	"baja":   UrgencyLow,
}

// ParseUrgency accepts English or Spanish labels in any case.
// Unrecognised input yields UrgencyUnknown.
func ParseUrgency(raw string) Urgency {
	if u, ok := urgencyAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return u
	}
	return UrgencyUnknown
}

// Score returns the urgency contribution to the classifier total.
func (u Urgency) Score() float64 {
	switch u {
	case UrgencyHigh:
		return 2
	case UrgencyMedium:
		return 1
	default:
		return 0
	}
}

// Label returns the display label.
func (u Urgency) Label() string {
	switch u {
	case UrgencyHigh:
		return "Alta"
	case UrgencyMedium:
		return "Media"
	case UrgencyLow:
		return "Baja"
	default:
		return "Sin definir"
	}
}

// Spanish returns the lower-case Spanish form used by the remote API.
func (u Urgency) Spanish() string {
	switch u {
	case UrgencyHigh:
		return "alta"
	case UrgencyMedium:
		return "media"
	case UrgencyLow:
		return "baja"
	default:
		return ""
	}
}

// DefaultIntentForUrgency is the intent assumed by the lead capture form.
func DefaultIntentForUrgency(u Urgency) float64 {
	switch u {
	case UrgencyHigh:
		return 0.9
	case UrgencyMedium:
		return 0.7
	default:
		return 0.45
	}
}
