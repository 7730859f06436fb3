package chat

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// StepKind selects the extractor applied to an answer.
type StepKind string

const (
	KindText    StepKind = "text"
	KindInteger StepKind = "integer"
	KindBoolean StepKind = "boolean"
)

// Preference keys of the default script.
const (
	KeyPropertyType = "tipo_propiedad"
	KeyZone         = "zona"
	KeyBudget       = "presupuesto"
	KeyBedrooms     = "habitaciones"
	KeyBathrooms    = "banos"
	KeyParking      = "garaje"
)

// Step is one question in the guided flow.
type Step struct {
	Key    string   `yaml:"key"`
	Prompt string   `yaml:"prompt"`
	Kind   StepKind `yaml:"kind"`
}

// Script is the bot copy and ordered steps for a conversation.
type Script struct {
	Greeting string `yaml:"greeting"`
	Closing  string `yaml:"closing"`
	// Prefill accepts {title} and {location} placeholders.
	Prefill       string `yaml:"prefill"`
	NoLocation    string `yaml:"no_location"`
	FallbackError string `yaml:"fallback_error"`
	Steps         []Step `yaml:"steps"`
}

// DefaultScript returns the standard six-step property questionnaire.
func DefaultScript() *Script {
	return &Script{
		Greeting:      "👋 Hola, soy tu asistente. Te haré algunas preguntas rápidas para encontrar propiedades. ¿Listo?",
		Closing:       "Genial, ya tengo todo. ¿Quieres que te comparta opciones o agendamos una llamada?",
		Prefill:       "Tomamos la propiedad {title} ({location}) como referencia.",
		NoLocation:    "sin ubicación",
		FallbackError: "No pude procesar tu mensaje",
		Steps: []Step{
			{Key: KeyPropertyType, Prompt: "¿Qué tipo de propiedad buscas? (casa, apartamento, local...)", Kind: KindText},
			{Key: KeyZone, Prompt: "¿En qué ciudad o zona te gustaría?", Kind: KindText},
			{Key: KeyBudget, Prompt: "¿Cuál es tu presupuesto aproximado?", Kind: KindInteger},
			{Key: KeyBedrooms, Prompt: "¿Cuántas habitaciones necesitas?", Kind: KindInteger},
			{Key: KeyBathrooms, Prompt: "¿Cuántos baños te gustaría?", Kind: KindInteger},
			{Key: KeyParking, Prompt: "¿Necesitas garaje/parqueadero? (sí/no)", Kind: KindBoolean},
		},
	}
}

// LoadScript reads a YAML script from path. Missing copy fields fall back to
// the default script; steps without a kind get the kind their key implies.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chat script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript decodes and validates a YAML script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse chat script: %w", err)
	}

	def := DefaultScript()
	if strings.TrimSpace(s.Greeting) == "" {
		s.Greeting = def.Greeting
	}
	if strings.TrimSpace(s.Closing) == "" {
		s.Closing = def.Closing
	}
	if strings.TrimSpace(s.Prefill) == "" {
		s.Prefill = def.Prefill
	}
	if strings.TrimSpace(s.NoLocation) == "" {
		s.NoLocation = def.NoLocation
	}
	if strings.TrimSpace(s.FallbackError) == "" {
		s.FallbackError = def.FallbackError
	}
	for i := range s.Steps {
		if s.Steps[i].Kind == "" {
			s.Steps[i].Kind = kindForKey(s.Steps[i].Key)
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that the script can drive a conversation.
func (s *Script) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("chat script: at least one step is required")
	}
	seen := make(map[string]struct{}, len(s.Steps))
	for i, step := range s.Steps {
		if strings.TrimSpace(step.Key) == "" {
			return fmt.Errorf("chat script: step %d has no key", i)
		}
		if strings.TrimSpace(step.Prompt) == "" {
			return fmt.Errorf("chat script: step %q has no prompt", step.Key)
		}
		if _, dup := seen[step.Key]; dup {
			return fmt.Errorf("chat script: duplicate step key %q", step.Key)
		}
		seen[step.Key] = struct{}{}
		switch step.Kind {
		case KindText, KindInteger, KindBoolean:
		default:
			return fmt.Errorf("chat script: step %q has unknown kind %q", step.Key, step.Kind)
		}
	}
	return nil
}

func kindForKey(key string) StepKind {
	switch key {
	case KeyBudget, KeyBedrooms, KeyBathrooms:
		return KindInteger
	case KeyParking:
		return KindBoolean
	default:
		return KindText
	}
}

func (s *Script) prefillMessage(title string, location *string) string {
	loc := s.NoLocation
	if location != nil && strings.TrimSpace(*location) != "" {
		loc = *location
	}
	return strings.NewReplacer("{title}", title, "{location}", loc).Replace(s.Prefill)
}
