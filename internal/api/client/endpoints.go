package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"fullhouse_client/internal/api/transport"
	"fullhouse_client/platform/apperr"
)

// Auth

func (c *Client) Login(ctx context.Context, email, password string) (transport.TokenResponse, error) {
	var out transport.TokenResponse
	err := c.doJSON(ctx, "auth.Login", http.MethodPost, "/api/auth/login", "",
		transport.LoginRequest{Email: email, Password: password}, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, req transport.RegisterRequest) (transport.User, error) {
	var out transport.User
	err := c.doJSON(ctx, "auth.Register", http.MethodPost, "/api/auth/register", "", req, &out)
	return out, err
}

func (c *Client) Me(ctx context.Context, token string) (transport.User, error) {
	var out transport.User
	err := c.doJSON(ctx, "auth.Me", http.MethodGet, "/api/auth/me", token, nil, &out)
	return out, err
}

// Leads

func (c *Client) ListLeads(ctx context.Context, token string) ([]transport.Lead, error) {
	var out []transport.Lead
	err := c.doJSON(ctx, "leads.List", http.MethodGet, "/api/leads", token, nil, &out)
	return out, err
}

func (c *Client) CreateLead(ctx context.Context, token string, payload transport.LeadCreatePayload) (transport.Lead, error) {
	var out transport.Lead
	err := c.doJSON(ctx, "leads.Create", http.MethodPost, "/api/leads", token, payload, &out)
	return out, err
}

func (c *Client) GetLead(ctx context.Context, token string, id int64) (transport.Lead, error) {
	var out transport.Lead
	err := c.doJSON(ctx, "leads.Get", http.MethodGet, fmt.Sprintf("/api/leads/%d", id), token, nil, &out)
	return out, err
}

func (c *Client) UpdateLead(ctx context.Context, token string, id int64, payload transport.LeadUpdatePayload) (transport.Lead, error) {
	var out transport.Lead
	err := c.doJSON(ctx, "leads.Update", http.MethodPut, fmt.Sprintf("/api/leads/%d", id), token, payload, &out)
	return out, err
}

func (c *Client) DeleteLead(ctx context.Context, token string, id int64) error {
	return c.doJSON(ctx, "leads.Delete", http.MethodDelete, fmt.Sprintf("/api/leads/%d", id), token, nil, nil)
}

// AddInteraction records a message against a lead. The API's response shape
// is not fixed, so it is returned raw.
func (c *Client) AddInteraction(ctx context.Context, token string, id int64, payload transport.InteractionRequest) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.doJSON(ctx, "leads.AddInteraction", http.MethodPost, fmt.Sprintf("/api/leads/%d/interactions", id), token, payload, &out)
	return out, err
}

// Properties

func (c *Client) ListProperties(ctx context.Context, token string, filters transport.PropertyFilters) ([]transport.Property, error) {
	path := "/api/properties"
	if query := propertyQuery(filters); query != "" {
		path += "?" + query
	}
	var out []transport.Property
	err := c.doJSON(ctx, "properties.List", http.MethodGet, path, token, nil, &out)
	return out, err
}

func (c *Client) GetProperty(ctx context.Context, token string, id int64) (transport.Property, error) {
	var out transport.Property
	err := c.doJSON(ctx, "properties.Get", http.MethodGet, fmt.Sprintf("/api/properties/%d", id), token, nil, &out)
	return out, err
}

// CreateProperty posts JSON, or a multipart form to /with-media when photos are attached.
func (c *Client) CreateProperty(ctx context.Context, token string, payload transport.PropertyCreatePayload) (transport.Property, error) {
	var out transport.Property
	if len(payload.Photos) == 0 {
		err := c.doJSON(ctx, "properties.Create", http.MethodPost, "/api/properties", token, payload, &out)
		return out, err
	}

	body, contentType, err := propertyForm(payload)
	if err != nil {
		return out, apperr.Wrap(apperr.KindInternal, "no se pudo preparar el formulario", err).WithOp("properties.CreateWithMedia")
	}
	err = c.do(ctx, call{
		op:          "properties.CreateWithMedia",
		method:      http.MethodPost,
		path:        "/api/properties/with-media",
		token:       token,
		body:        body,
		contentType: contentType,
	}, &out)
	return out, err
}

func (c *Client) UpdateProperty(ctx context.Context, token string, id int64, payload transport.PropertyUpdatePayload) (transport.Property, error) {
	var out transport.Property
	err := c.doJSON(ctx, "properties.Update", http.MethodPut, fmt.Sprintf("/api/properties/%d", id), token, payload, &out)
	return out, err
}

func (c *Client) DeleteProperty(ctx context.Context, token string, id int64) error {
	return c.doJSON(ctx, "properties.Delete", http.MethodDelete, fmt.Sprintf("/api/properties/%d", id), token, nil, nil)
}

// Agent

func (c *Client) AnalyzeLead(ctx context.Context, payload transport.LeadAnalyzeRequest) (transport.LeadAnalyzeResponse, error) {
	var out transport.LeadAnalyzeResponse
	err := c.doJSON(ctx, "agent.Analyze", http.MethodPost, "/api/agent/analyze", "", payload, &out)
	return out, err
}

func (c *Client) Chatbot(ctx context.Context, payload transport.ChatbotRequest) (transport.ChatbotResponse, error) {
	var out transport.ChatbotResponse
	err := c.doJSON(ctx, "chatbot.Analyze", http.MethodPost, "/api/chatbot/", "", payload, &out)
	return out, err
}

// Analytics

// AnalyticsSummary reads the aggregate summary. token may be empty.
func (c *Client) AnalyticsSummary(ctx context.Context, token string) (transport.AnalyticsSummary, error) {
	var out transport.AnalyticsSummary
	err := c.doJSON(ctx, "analytics.Summary", http.MethodGet, "/api/analytics/summary", token, nil, &out)
	return out, err
}

// Chat preferences

func (c *Client) SaveChatPreferences(ctx context.Context, token string, payload transport.ChatPreferencePayload) (transport.ChatPreferenceResponse, error) {
	var out transport.ChatPreferenceResponse
	err := c.doJSON(ctx, "chat.SavePreferences", http.MethodPost, "/api/chat/preferences", token, payload, &out)
	return out, err
}

func propertyQuery(f transport.PropertyFilters) string {
	params := url.Values{}
	if f.Location != "" {
		params.Set("location", f.Location)
	}
	if f.PropertyType != "" {
		params.Set("property_type", f.PropertyType)
	}
	if f.MinPrice != nil {
		params.Set("min_price", strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		params.Set("max_price", strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}
	if f.Bedrooms != nil {
		params.Set("bedrooms", strconv.Itoa(*f.Bedrooms))
	}
	if f.Bathrooms != nil {
		params.Set("bathrooms", strconv.Itoa(*f.Bathrooms))
	}
	if f.Parking != nil {
		params.Set("parking", strconv.FormatBool(*f.Parking))
	}
	return params.Encode()
}

func propertyForm(p transport.PropertyCreatePayload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"title", p.Title},
		{"price", strconv.FormatFloat(p.Price, 'f', -1, 64)},
		{"description", p.Description},
		{"area", p.Area},
		{"location", p.Location},
		{"property_type", p.PropertyType},
		{"status", p.Status},
	}
	if p.Bedrooms != nil {
		fields = append(fields, [2]string{"bedrooms", strconv.Itoa(*p.Bedrooms)})
	}
	if p.Bathrooms != nil {
		fields = append(fields, [2]string{"bathrooms", strconv.Itoa(*p.Bathrooms)})
	}
	if p.Parking != nil {
		fields = append(fields, [2]string{"parking", strconv.FormatBool(*p.Parking)})
	}
	if p.AgencyID != 0 {
		fields = append(fields, [2]string{"agency_id", strconv.FormatInt(p.AgencyID, 10)})
	}

	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	for _, photo := range p.Photos {
		part, err := w.CreateFormFile("photos", photo.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, photo.Content); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
