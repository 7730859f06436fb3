package analytics

import (
	"context"
	"fmt"
	"strings"

	"fullhouse_client/internal/chat"
	"fullhouse_client/platform/events"
)

// StageCompleted is the funnel stage reached when the last answer is accepted.
const StageCompleted = "completado"

// FunnelRepository counts unique sessions per stage.
type FunnelRepository interface {
	Hit(ctx context.Context, stage, sessionID string) error
	Counts(ctx context.Context) (map[string]int, error)
}

// Funnel tracks how far chat sessions get through the script.
type Funnel struct {
	repo  FunnelRepository
	order []string
}

// NewFunnel orders the stages after the script's steps, followed by StageCompleted.
func NewFunnel(repo FunnelRepository, script *chat.Script) *Funnel {
	if script == nil {
		script = chat.DefaultScript()
	}
	order := make([]string, 0, len(script.Steps)+1)
	for _, step := range script.Steps {
		order = append(order, step.Key)
	}
	order = append(order, StageCompleted)
	return &Funnel{repo: repo, order: order}
}

// Subscribe feeds the funnel from collector events.
func (f *Funnel) Subscribe(bus events.Bus) {
	h := events.HandlerFunc(f.Handle)
	bus.Subscribe(chat.EventStepAdvanced, h)
	bus.Subscribe(chat.EventConversationCompleted, h)
}

func (f *Funnel) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case chat.StepAdvanced:
		return f.Reach(ctx, e.SessionID, e.StepKey)
	case chat.ConversationCompleted:
		return f.Reach(ctx, e.SessionID, StageCompleted)
	}
	return nil
}

func (f *Funnel) Reach(ctx context.Context, sessionID, stage string) error {
	if stage == "" || sessionID == "" {
		return nil
	}
	return f.repo.Hit(ctx, stage, sessionID)
}

// Stage is one row of the funnel.
type Stage struct {
	Key           string `json:"key"`
	Label         string `json:"label"`
	Count         int    `json:"count"`
	PctOfBase     int    `json:"pctOfBase"`
	PctOfPrevious int    `json:"pctOfPrevious"`
}

// Stages returns the funnel in script order with conversion percentages.
// The base is the first stage, or the largest stage when the first is empty.
func (f *Funnel) Stages(ctx context.Context) ([]Stage, error) {
	stages, _, err := f.stages(ctx)
	return stages, err
}

func (f *Funnel) stages(ctx context.Context) ([]Stage, int, error) {
	counts, err := f.repo.Counts(ctx)
	if err != nil {
		return nil, 0, err
	}

	base := 0
	if len(f.order) > 0 {
		base = counts[f.order[0]]
	}
	if base == 0 {
		for _, s := range f.order {
			base = max(base, counts[s])
		}
	}

	out := make([]Stage, 0, len(f.order))
	prev := 0
	for i, key := range f.order {
		c := counts[key]
		relPrev := 0
		if i == 0 {
			relPrev = 100
		} else if prev > 0 {
			relPrev = percent(c, prev)
		}
		out = append(out, Stage{
			Key:           key,
			Label:         stageLabel(key),
			Count:         c,
			PctOfBase:     percent(c, base),
			PctOfPrevious: relPrev,
		})
		prev = c
	}
	return out, base, nil
}

// Chart renders the funnel as a plain-text bar chart.
func (f *Funnel) Chart(ctx context.Context) (string, error) {
	stages, base, err := f.stages(ctx)
	if err != nil {
		return "", err
	}
	if base == 0 {
		return "Aún no hay datos del embudo", nil
	}

	var b strings.Builder
	b.WriteString("Embudo por paso:\n")
	for _, s := range stages {
		fmt.Fprintf(&b, "- %s: %d | %3d%% del inicio | %3d%% del anterior %s\n",
			s.Label, s.Count, s.PctOfBase, s.PctOfPrevious, bar20(s.Count, base))
	}
	return b.String(), nil
}

// GraphData returns labels and values in stage order for plotting.
func (f *Funnel) GraphData(ctx context.Context) ([]string, []int, error) {
	stages, err := f.Stages(ctx)
	if err != nil {
		return nil, nil, err
	}
	labels := make([]string, 0, len(stages))
	values := make([]int, 0, len(stages))
	for _, s := range stages {
		labels = append(labels, s.Label)
		values = append(values, s.Count)
	}
	return labels, values, nil
}

func percent(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (100 * a) / b
}

func bar20(val, top int) string {
	if top <= 0 {
		return ""
	}
	filled := min(max((20*val)/top, 0), 20)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", 20-filled) + "]"
}

func stageLabel(key string) string {
	switch key {
	case chat.KeyPropertyType:
		return "Tipo de propiedad"
	case chat.KeyZone:
		return "Zona"
	case chat.KeyBudget:
		return "Presupuesto"
	case chat.KeyBedrooms:
		return "Habitaciones"
	case chat.KeyBathrooms:
		return "Baños"
	case chat.KeyParking:
		return "Garaje"
	case StageCompleted:
		return "Completado"
	default:
		return key
	}
}
