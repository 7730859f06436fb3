package handler

import (
	apphttp "fullhouse_client/internal/http"
)

// Module is the chat gateway module implementing http.Module.
type Module struct {
	handler *Handler
	store   *SessionStore
}

func NewModule(h *Handler, store *SessionStore) *Module {
	return &Module{handler: h, store: store}
}

func (m *Module) Name() string {
	return "chat"
}

// Sessions exposes the store so main can run its sweeper.
func (m *Module) Sessions() *SessionStore {
	return m.store
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	limit := ctx.ChatRateLimiter
	group := ctx.V1.Group("/chat/sessions")
	if limit != nil {
		m.handler.RegisterRoutes(group, limit.RateLimit())
		return
	}
	m.handler.RegisterRoutes(group, nil)
}
