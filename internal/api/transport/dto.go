// Package transport holds the wire shapes exchanged with the remote
// lead-qualification API. Field names follow the API's JSON exactly.
package transport

import "io"

// Auth

type User struct {
	ID          int64   `json:"id"`
	Email       string  `json:"email"`
	FullName    *string `json:"full_name,omitempty"`
	AgencyID    *int64  `json:"agency_id,omitempty"`
	IsActive    bool    `json:"is_active"`
	IsSuperuser bool    `json:"is_superuser"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name,omitempty" validate:"omitempty,max=200"`
}

// Leads

// Lead is a lead record as stored by the API. Timestamps are kept as the
// API sends them since it emits naive ISO datetimes.
type Lead struct {
	ID            int64          `json:"id"`
	FullName      string         `json:"full_name"`
	Email         *string        `json:"email,omitempty"`
	Phone         *string        `json:"phone,omitempty"`
	Budget        *float64       `json:"budget,omitempty"`
	PreferredArea *string        `json:"preferred_area,omitempty"`
	Urgency       string         `json:"urgency,omitempty"`
	Status        string         `json:"status,omitempty"`
	Category      string         `json:"category,omitempty"`
	Source        *string        `json:"source,omitempty"`
	AgencyID      *int64         `json:"agency_id,omitempty"`
	Preferences   map[string]any `json:"preferences,omitempty"`
	CreatedAt     string         `json:"created_at,omitempty"`
	UpdatedAt     string         `json:"updated_at,omitempty"`
}

type LeadCreatePayload struct {
	FullName      string   `json:"full_name" validate:"required,min=1,max=200"`
	Email         string   `json:"email,omitempty" validate:"omitempty,email"`
	Phone         string   `json:"phone,omitempty" validate:"omitempty,min=5,max=20"`
	Budget        *float64 `json:"budget,omitempty" validate:"omitempty,gte=0"`
	PreferredArea string   `json:"preferred_area,omitempty"`
	Urgency       string   `json:"urgency,omitempty" validate:"omitempty,oneof=high medium low"`
	Source        string   `json:"source,omitempty"`
	Notes         string   `json:"notes,omitempty"`
	AgencyID      int64    `json:"agency_id" validate:"required,gt=0"`
}

type LeadUpdatePayload struct {
	FullName      *string  `json:"full_name,omitempty" validate:"omitempty,min=1,max=200"`
	Email         *string  `json:"email,omitempty" validate:"omitempty,email"`
	Phone         *string  `json:"phone,omitempty" validate:"omitempty,min=5,max=20"`
	Budget        *float64 `json:"budget,omitempty" validate:"omitempty,gte=0"`
	PreferredArea *string  `json:"preferred_area,omitempty"`
	Urgency       *string  `json:"urgency,omitempty" validate:"omitempty,oneof=high medium low"`
	Status        *string  `json:"status,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
}

type InteractionRequest struct {
	Channel   string `json:"channel,omitempty"`
	Direction string `json:"direction,omitempty"`
	Message   string `json:"message" validate:"required"`
}

// Properties

type Property struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Description  *string  `json:"description,omitempty"`
	Price        float64  `json:"price"`
	Area         *string  `json:"area,omitempty"`
	Location     *string  `json:"location,omitempty"`
	PropertyType *string  `json:"property_type,omitempty"`
	Bedrooms     *int     `json:"bedrooms,omitempty"`
	Bathrooms    *int     `json:"bathrooms,omitempty"`
	Parking      *bool    `json:"parking,omitempty"`
	Status       string   `json:"status"`
	AgencyID     *int64   `json:"agency_id,omitempty"`
	Photos       []string `json:"photos,omitempty"`
	CreatedAt    string   `json:"created_at,omitempty"`
}

// PropertyFilters narrows ListProperties. Nil and empty values are omitted.
type PropertyFilters struct {
	Location     string
	PropertyType string
	MinPrice     *float64
	MaxPrice     *float64
	Bedrooms     *int
	Bathrooms    *int
	Parking      *bool
}

// Photo is one file attached to a property on creation.
type Photo struct {
	Filename string
	Content  io.Reader
}

type PropertyCreatePayload struct {
	Title        string  `json:"title" validate:"required"`
	Price        float64 `json:"price" validate:"gte=0"`
	AgencyID     int64   `json:"agency_id" validate:"required,gt=0"`
	Description  string  `json:"description,omitempty"`
	Area         string  `json:"area,omitempty"`
	Location     string  `json:"location,omitempty"`
	PropertyType string  `json:"property_type,omitempty"`
	Bedrooms     *int    `json:"bedrooms,omitempty"`
	Bathrooms    *int    `json:"bathrooms,omitempty"`
	Parking      *bool   `json:"parking,omitempty"`
	Status       string  `json:"status,omitempty"`
	// Photos switches the upload to the multipart endpoint.
	Photos []Photo `json:"-"`
}

type PropertyUpdatePayload struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Area        *string  `json:"area,omitempty"`
	Location    *string  `json:"location,omitempty"`
	Bedrooms    *int     `json:"bedrooms,omitempty"`
	Bathrooms   *int     `json:"bathrooms,omitempty"`
	Status      *string  `json:"status,omitempty"`
}

// Agent analysis

type LeadAnalyzeRequest struct {
	Mensaje   string `json:"mensaje" validate:"required"`
	Canal     string `json:"canal,omitempty"`
	Nombre    string `json:"nombre,omitempty"`
	Contacto  string `json:"contacto,omitempty"`
	UsuarioID string `json:"usuario_id,omitempty"`
	AgencyID  *int64 `json:"agency_id,omitempty"`
}

type Recommendation struct {
	ID           *int64   `json:"id,omitempty"`
	Title        *string  `json:"title,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Location     *string  `json:"location,omitempty"`
	PropertyType *string  `json:"property_type,omitempty"`
	Bedrooms     *int     `json:"bedrooms,omitempty"`
	Bathrooms    *int     `json:"bathrooms,omitempty"`
	Parking      *bool    `json:"parking,omitempty"`
	Photos       []string `json:"photos,omitempty"`
}

// LeadAnalyzeResponse is the opaque analysis result. Every field is kept so
// dashboard consumers can bind to any of them.
type LeadAnalyzeResponse struct {
	LeadID          *int64           `json:"lead_id,omitempty"`
	LeadScore       string           `json:"lead_score"`
	IsInterested    bool             `json:"is_interested"`
	InterestLevel   string           `json:"interest_level"`
	Presupuesto     *float64         `json:"presupuesto,omitempty"`
	Zona            *string          `json:"zona,omitempty"`
	TipoPropiedad   *string          `json:"tipo_propiedad,omitempty"`
	Urgencia        string           `json:"urgencia"`
	IntencionReal   *string          `json:"intencion_real,omitempty"`
	Razonamiento    string           `json:"razonamiento"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
}

// Chatbot

type ChatbotRequest struct {
	Message    string  `json:"message"`
	ContactKey *string `json:"contact_key,omitempty"`
}

type ChatbotResponse struct {
	Reply        string              `json:"reply"`
	LeadAnalysis LeadAnalyzeResponse `json:"lead_analysis"`
}

// Analytics

// AnalyticsSummary is the aggregate read consumed by dashboards.
type AnalyticsSummary struct {
	TotalLeads int            `json:"total_leads"`
	ByScore    map[string]int `json:"by_score,omitempty"`
	ByUrgency  map[string]int `json:"by_urgency,omitempty"`
	ByChannel  map[string]int `json:"by_channel,omitempty"`
}

// Chat preferences

type ChatPreferencePayload struct {
	Mensaje       string `json:"mensaje"`
	Canal         string `json:"canal,omitempty"`
	Contacto      string `json:"contacto,omitempty"`
	Nombre        string `json:"nombre,omitempty"`
	UsuarioID     *int64 `json:"usuario_id,omitempty"`
	AgencyID      *int64 `json:"agency_id,omitempty"`
	Presupuesto   *int64 `json:"presupuesto,omitempty"`
	Zona          string `json:"zona,omitempty"`
	TipoPropiedad string `json:"tipo_propiedad,omitempty"`
	Habitaciones  *int64 `json:"habitaciones,omitempty"`
	Banos         *int64 `json:"banos,omitempty"`
	Garaje        *bool  `json:"garaje,omitempty"`
	PropertyID    *int64 `json:"property_id,omitempty"`
}

type ChatPreferenceResponse struct {
	LeadID        *int64         `json:"lead_id,omitempty"`
	Category      *string        `json:"category,omitempty"`
	IntentScore   *float64       `json:"intent_score,omitempty"`
	IsInterested  bool           `json:"is_interested"`
	InterestLevel string         `json:"interest_level,omitempty"`
	Saved         bool           `json:"saved"`
	Message       string         `json:"message,omitempty"`
	Preferences   map[string]any `json:"preferences,omitempty"`
}
