// Package service implements lead operations: the local classification
// preview and the remote lead endpoints.
package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"fullhouse_client/internal/api/transport"
	"fullhouse_client/internal/leads/domain"
	"fullhouse_client/platform/apperr"
	"fullhouse_client/platform/logger"
	"fullhouse_client/platform/phone"
	"fullhouse_client/platform/sanitize"
	"fullhouse_client/platform/validator"

	"github.com/google/uuid"
)

const previewSource = "Formulario inteligente"

// LeadsAPI is the subset of the remote API the service needs.
type LeadsAPI interface {
	ListLeads(ctx context.Context, token string) ([]transport.Lead, error)
	CreateLead(ctx context.Context, token string, payload transport.LeadCreatePayload) (transport.Lead, error)
	GetLead(ctx context.Context, token string, id int64) (transport.Lead, error)
	UpdateLead(ctx context.Context, token string, id int64, payload transport.LeadUpdatePayload) (transport.Lead, error)
	DeleteLead(ctx context.Context, token string, id int64) error
	AddInteraction(ctx context.Context, token string, id int64, payload transport.InteractionRequest) (json.RawMessage, error)
	AnalyzeLead(ctx context.Context, payload transport.LeadAnalyzeRequest) (transport.LeadAnalyzeResponse, error)
}

type Service struct {
	api   LeadsAPI
	val   *validator.Validator
	phone *phone.Normalizer
	log   *logger.Logger
	now   func() time.Time
}

func New(api LeadsAPI, val *validator.Validator, normalizer *phone.Normalizer, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{api: api, val: val, phone: normalizer, log: log, now: time.Now}
}

// PreviewRequest is what the lead capture form submits.
type PreviewRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Email       string   `json:"email" validate:"required,email"`
	Phone       string   `json:"phone" validate:"omitempty,min=5,max=20"`
	Budget      float64  `json:"budget" validate:"gte=0"`
	Location    string   `json:"location" validate:"max=200"`
	Urgency     string   `json:"urgency" validate:"urgency"`
	IntentScore *float64 `json:"intentScore,omitempty" validate:"omitempty,gte=0,lte=1"`
	Goal        string   `json:"goal,omitempty" validate:"max=500"`
}

// LeadPreview is a locally classified draft, not yet sent to the API.
type LeadPreview struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	PhoneValid   bool            `json:"phoneValid"`
	Budget       float64         `json:"budget"`
	BudgetLabel  string          `json:"budgetLabel"`
	Location     string          `json:"location"`
	Urgency      domain.Urgency  `json:"urgency"`
	UrgencyLabel string          `json:"urgencyLabel"`
	IntentScore  float64         `json:"intentScore"`
	Score        float64         `json:"score"`
	Category     domain.Category `json:"category"`
	Goal         string          `json:"goal,omitempty"`
	Source       string          `json:"source"`
	Insight      domain.Insight  `json:"insight"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Preview validates the form, fills the intent implied by urgency when the
// caller gave none, and classifies the draft.
func (s *Service) Preview(req PreviewRequest) (LeadPreview, error) {
	if err := s.val.Check(req); err != nil {
		return LeadPreview{}, err
	}

	urgency := domain.ParseUrgency(req.Urgency)
	intent := domain.DefaultIntentForUrgency(urgency)
	if req.IntentScore != nil {
		intent = domain.ClampIntent(*req.IntentScore)
	}

	normalized, valid := s.phone.Parse(req.Phone)

	lead := domain.Lead{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		Phone:       normalized,
		Budget:      req.Budget,
		Location:    strings.TrimSpace(req.Location),
		Urgency:     urgency,
		IntentScore: &intent,
	}

	return LeadPreview{
		ID:           lead.ID,
		Name:         lead.Name,
		Email:        lead.Email,
		Phone:        lead.Phone,
		PhoneValid:   valid,
		Budget:       lead.Budget,
		BudgetLabel:  domain.FormatCurrency(lead.Budget),
		Location:     lead.Location,
		Urgency:      urgency,
		UrgencyLabel: urgency.Label(),
		IntentScore:  intent,
		Score:        domain.Score(lead.ClassifyInput()),
		Category:     lead.Category(),
		Goal:         strings.TrimSpace(req.Goal),
		Source:       previewSource,
		Insight:      domain.BuildInsight(lead),
		CreatedAt:    s.now().UTC(),
	}, nil
}

// PayloadFromPreview converts an accepted preview into a create payload.
func PayloadFromPreview(p LeadPreview, agencyID int64) transport.LeadCreatePayload {
	budget := p.Budget
	return transport.LeadCreatePayload{
		FullName:      p.Name,
		Email:         p.Email,
		Phone:         p.Phone,
		Budget:        &budget,
		PreferredArea: p.Location,
		Urgency:       string(p.Urgency),
		Source:        p.Source,
		Notes:         p.Goal,
		AgencyID:      agencyID,
	}
}

func (s *Service) List(ctx context.Context, token string) ([]transport.Lead, error) {
	return s.api.ListLeads(ctx, token)
}

// Create validates and normalises the payload before sending it. Leads can
// only be created on behalf of an agency.
func (s *Service) Create(ctx context.Context, token string, payload transport.LeadCreatePayload) (transport.Lead, error) {
	if payload.AgencyID <= 0 {
		return transport.Lead{}, apperr.Validation("El usuario necesita agency_id para crear leads").WithOp("leads.Create")
	}
	payload.FullName = sanitize.Text(payload.FullName)
	payload.Notes = sanitize.Text(payload.Notes)
	payload.Urgency = string(domain.ParseUrgency(payload.Urgency))
	if payload.Phone != "" {
		payload.Phone = s.phone.NormalizeE164(payload.Phone)
	}
	if err := s.val.Check(payload); err != nil {
		return transport.Lead{}, err
	}

	lead, err := s.api.CreateLead(ctx, token, payload)
	if err != nil {
		return transport.Lead{}, err
	}
	s.log.WithContext(ctx).Info("lead created", "lead_id", lead.ID, "category", lead.Category)
	return lead, nil
}

func (s *Service) Get(ctx context.Context, token string, id int64) (transport.Lead, error) {
	if id <= 0 {
		return transport.Lead{}, apperr.BadRequest("ID de lead no válido").WithOp("leads.Get")
	}
	return s.api.GetLead(ctx, token, id)
}

func (s *Service) Update(ctx context.Context, token string, id int64, payload transport.LeadUpdatePayload) (transport.Lead, error) {
	if id <= 0 {
		return transport.Lead{}, apperr.BadRequest("ID de lead no válido").WithOp("leads.Update")
	}
	payload.FullName = sanitize.TextPtr(payload.FullName)
	payload.Notes = sanitize.TextPtr(payload.Notes)
	if payload.Urgency != nil {
		u := string(domain.ParseUrgency(*payload.Urgency))
		payload.Urgency = &u
	}
	if payload.Phone != nil {
		p := s.phone.NormalizeE164(*payload.Phone)
		payload.Phone = &p
	}
	if err := s.val.Check(payload); err != nil {
		return transport.Lead{}, err
	}
	return s.api.UpdateLead(ctx, token, id, payload)
}

func (s *Service) Delete(ctx context.Context, token string, id int64) error {
	if id <= 0 {
		return apperr.BadRequest("ID de lead no válido").WithOp("leads.Delete")
	}
	return s.api.DeleteLead(ctx, token, id)
}

func (s *Service) AddInteraction(ctx context.Context, token string, id int64, req transport.InteractionRequest) (json.RawMessage, error) {
	if id <= 0 {
		return nil, apperr.BadRequest("ID de lead no válido").WithOp("leads.AddInteraction")
	}
	req.Message = sanitize.Text(req.Message)
	if err := s.val.Check(req); err != nil {
		return nil, err
	}
	return s.api.AddInteraction(ctx, token, id, req)
}

// Analyze asks the remote agent to score a free-text message.
func (s *Service) Analyze(ctx context.Context, req transport.LeadAnalyzeRequest) (transport.LeadAnalyzeResponse, error) {
	if err := s.val.Check(req); err != nil {
		return transport.LeadAnalyzeResponse{}, err
	}
	return s.api.AnalyzeLead(ctx, req)
}
