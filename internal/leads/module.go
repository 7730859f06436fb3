// Package leads provides the lead bounded context module.
// This file defines the module that encapsulates leads setup and route registration.
package leads

import (
	apphttp "fullhouse_client/internal/http"
	"fullhouse_client/internal/leads/handler"
	"fullhouse_client/internal/leads/service"
	"fullhouse_client/platform/logger"
	"fullhouse_client/platform/phone"
	"fullhouse_client/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the leads service against the remote API.
func NewModule(api service.LeadsAPI, val *validator.Validator, normalizer *phone.Normalizer, log *logger.Logger) *Module {
	svc := service.New(api, val, normalizer, log)
	return &Module{
		handler: handler.New(svc),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the leads service for use by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterPublicRoutes(ctx.V1.Group("/leads"))
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
}
