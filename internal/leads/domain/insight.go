package domain

import (
	"math"
	"strings"
)

// Interest levels shown on insight cards.
const (
	InterestHigh   = "alto"
	InterestMedium = "medio"
	InterestLow    = "bajo"
)

// insightBaseIntent is assumed when a lead carries no intent score.
const insightBaseIntent = 0.6

// Lead is the local preview shape of a prospective client.
type Lead struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	Budget      float64
	Location    string
	Urgency     Urgency
	IntentScore *float64
}

// ClassifyInput extracts the classifier signals.
func (l Lead) ClassifyInput() ClassifyInput {
	return ClassifyInput{Urgency: l.Urgency, Budget: l.Budget, IntentScore: l.IntentScore}
}

// Category is always derived, never stored.
func (l Lead) Category() Category {
	return Classify(l.ClassifyInput())
}

// Insight is the per-lead card the agent view renders.
type Insight struct {
	LeadID             string   `json:"leadId"`
	InterestLevel      string   `json:"interestLevel"`
	BudgetDetected     float64  `json:"budgetDetected"`
	PreferredZones     []string `json:"preferredZones"`
	Confidence         int      `json:"confidence"`
	Classification     Category `json:"classification"`
	RecommendedActions []string `json:"recommendedActions"`
	Summary            string   `json:"summary"`
}

// BuildInsight derives an Insight from a lead.
func BuildInsight(l Lead) Insight {
	category := l.Category()

	intent := insightBaseIntent
	if l.IntentScore != nil {
		intent = ClampIntent(*l.IntentScore)
	}

	zones := []string{}
	if loc := strings.TrimSpace(l.Location); loc != "" {
		zones = append(zones, loc)
	}

	insight := Insight{
		LeadID:         l.ID,
		InterestLevel:  interestLevel(category),
		BudgetDetected: l.Budget,
		PreferredZones: zones,
		Confidence:     int(math.Round((intent + 0.2) * 100)),
		Classification: category,
	}

	if category == CategoryA {
		insight.RecommendedActions = []string{"Agendar llamada en 24h", "Enviar 3 opciones similares"}
		insight.Summary = "Alta probabilidad de cierre, busca propiedad premium."
	} else {
		insight.RecommendedActions = []string{"Enviar brochure", "Revisar presupuesto en 3 días"}
		insight.Summary = "Lead en exploración, nutrir con contenido y validar presupuesto."
	}
	return insight
}

func interestLevel(c Category) string {
	switch c {
	case CategoryA:
		return InterestHigh
	case CategoryB:
		return InterestMedium
	default:
		return InterestLow
	}
}
