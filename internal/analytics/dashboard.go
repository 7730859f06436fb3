// Package analytics aggregates lead and conversation metrics: the remote
// summary, a per-step chat funnel, and the dashboard snapshot.
package analytics

import (
	"context"
	"strings"

	"fullhouse_client/internal/api/transport"
	"fullhouse_client/internal/leads/domain"
	"fullhouse_client/platform/logger"

	"golang.org/x/sync/errgroup"
)

// API is the subset of the remote client analytics reads from.
type API interface {
	AnalyticsSummary(ctx context.Context, token string) (transport.AnalyticsSummary, error)
	ListLeads(ctx context.Context, token string) ([]transport.Lead, error)
	ListProperties(ctx context.Context, token string, filters transport.PropertyFilters) ([]transport.Property, error)
}

type Service struct {
	api API
	log *logger.Logger
}

func NewService(api API, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{api: api, log: log}
}

// Summary proxies the remote aggregate read.
func (s *Service) Summary(ctx context.Context, token string) (transport.AnalyticsSummary, error) {
	return s.api.AnalyticsSummary(ctx, token)
}

// Distribution counts leads per category.
type Distribution struct {
	A int `json:"A"`
	B int `json:"B"`
	C int `json:"C"`
}

func (d Distribution) Total() int { return d.A + d.B + d.C }

func (d *Distribution) add(c domain.Category) {
	switch c {
	case domain.CategoryA:
		d.A++
	case domain.CategoryB:
		d.B++
	default:
		d.C++
	}
}

// Dashboard is the snapshot behind the agent dashboard.
type Dashboard struct {
	TotalLeads      int            `json:"totalLeads"`
	ClassifiedLeads int            `json:"classifiedLeads"`
	Distribution    Distribution   `json:"distribution"`
	AvgBudget       float64        `json:"avgBudget"`
	AvgBudgetLabel  string         `json:"avgBudgetLabel"`
	CoverageZones   int            `json:"coverageZones"`
	Properties      int            `json:"properties"`
	ByUrgency       map[string]int `json:"byUrgency,omitempty"`
	ByChannel       map[string]int `json:"byChannel,omitempty"`
}

// LoadDashboard reads the summary, leads and properties concurrently.
// The first failure cancels the other reads.
func (s *Service) LoadDashboard(ctx context.Context, token string) (Dashboard, error) {
	var (
		summary    transport.AnalyticsSummary
		leads      []transport.Lead
		properties []transport.Property
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.api.AnalyticsSummary(gctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		leads, err = s.api.ListLeads(gctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		properties, err = s.api.ListProperties(gctx, token, transport.PropertyFilters{})
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.WithContext(ctx).Warn("dashboard load failed", "error", err)
		return Dashboard{}, err
	}

	return BuildDashboard(summary, leads, properties), nil
}

// BuildDashboard combines the three reads. The summary's by_score counts win
// when present; otherwise each lead is counted by its stored category, or
// classified locally when it has none.
func BuildDashboard(summary transport.AnalyticsSummary, leads []transport.Lead, properties []transport.Property) Dashboard {
	d := Dashboard{
		TotalLeads: summary.TotalLeads,
		Properties: len(properties),
		ByUrgency:  summary.ByUrgency,
		ByChannel:  summary.ByChannel,
	}
	if d.TotalLeads == 0 {
		d.TotalLeads = len(leads)
	}

	fromSummary, ok := distributionFromSummary(summary.ByScore)
	if ok {
		d.Distribution = fromSummary
	}

	zones := make(map[string]struct{})
	var budgetSum float64
	budgetCount := 0
	for _, l := range leads {
		if l.Category != "" {
			d.ClassifiedLeads++
		}
		if !ok {
			d.Distribution.add(leadCategory(l))
		}
		if l.Budget != nil {
			budgetSum += *l.Budget
			budgetCount++
		}
		if l.PreferredArea != nil {
			addZone(zones, *l.PreferredArea)
		}
	}
	for _, p := range properties {
		if p.Location != nil {
			addZone(zones, *p.Location)
		}
	}

	d.CoverageZones = len(zones)
	if budgetCount > 0 {
		d.AvgBudget = budgetSum / float64(budgetCount)
	}
	d.AvgBudgetLabel = domain.FormatCurrency(d.AvgBudget)
	return d
}

func distributionFromSummary(byScore map[string]int) (Distribution, bool) {
	if len(byScore) == 0 {
		return Distribution{}, false
	}
	var d Distribution
	found := false
	for k, v := range byScore {
		switch strings.ToUpper(strings.TrimSpace(k)) {
		case "A":
			d.A += v
			found = true
		case "B":
			d.B += v
			found = true
		case "C":
			d.C += v
			found = true
		}
	}
	return d, found
}

func leadCategory(l transport.Lead) domain.Category {
	switch c := domain.Category(strings.ToUpper(l.Category)); c {
	case domain.CategoryA, domain.CategoryB, domain.CategoryC:
		return c
	}
	var budget float64
	if l.Budget != nil {
		budget = *l.Budget
	}
	return domain.Classify(domain.ClassifyInput{
		Urgency: domain.ParseUrgency(l.Urgency),
		Budget:  budget,
	})
}

func addZone(zones map[string]struct{}, zone string) {
	if z := strings.ToLower(strings.TrimSpace(zone)); z != "" {
		zones[z] = struct{}{}
	}
}
