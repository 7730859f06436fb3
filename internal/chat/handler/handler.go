package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"fullhouse_client/internal/api/transport"
	"fullhouse_client/internal/chat"
	"fullhouse_client/platform/apperr"
	"fullhouse_client/platform/httpkit"
	"fullhouse_client/platform/logger"
	"fullhouse_client/platform/sanitize"
	"fullhouse_client/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest  = "solicitud inválida"
	msgSessionNotFound = "sesión no encontrada"
	msgSessionClosed   = "la sesión ya fue cerrada"
	msgTooManySessions = "hay demasiadas conversaciones abiertas, intenta más tarde"
	msgPropertyFailed  = "no se pudo cargar la propiedad"
)

// PropertyReader loads the listing a session is started from.
type PropertyReader interface {
	GetProperty(ctx context.Context, token string, id int64) (transport.Property, error)
}

type Handler struct {
	store      *SessionStore
	properties PropertyReader
	val        *validator.Validator
	log        *logger.Logger
}

func New(store *SessionStore, properties PropertyReader, val *validator.Validator, log *logger.Logger) *Handler {
	if val == nil {
		val = validator.New()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{store: store, properties: properties, val: val, log: log}
}

type CreateSessionRequest struct {
	ContactKey string `json:"contactKey" validate:"omitempty,max=254"`
	PropertyID *int64 `json:"propertyId" validate:"omitempty,gt=0"`
}

// CreateSessionResponse is the new session. PropertyError is set when the
// requested property could not be used; the session stays open without it.
type CreateSessionResponse struct {
	chat.Snapshot
	PropertyError string `json:"propertyError,omitempty"`
}

type SubmitRequest struct {
	Message string `json:"message" validate:"max=2000"`
}

type SubmitResponse struct {
	Turn    chat.TurnResult `json:"turn"`
	Session chat.Snapshot   `json:"session"`
}

// RegisterRoutes mounts the session routes. submitLimit, when non-nil, guards message posts.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, submitLimit gin.HandlerFunc) {
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	if submitLimit != nil {
		rg.POST("/:id/messages", submitLimit, h.Submit)
	} else {
		rg.POST("/:id/messages", h.Submit)
	}
	rg.DELETE("/:id", h.Close)
}

// Create opens a session, optionally anchored to a property.
func (h *Handler) Create(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if httpkit.HandleError(c, h.val.Check(req)) {
		return
	}

	collector, err := h.store.Create(req.ContactKey)
	if err != nil {
		httpkit.Error(c, http.StatusServiceUnavailable, msgTooManySessions, nil)
		return
	}
	ctx := sessionContext(c, collector)

	var res CreateSessionResponse
	if req.PropertyID != nil {
		if err := h.prefill(ctx, httpkit.TokenFrom(c), *req.PropertyID, collector); err != nil {
			h.log.WithContext(ctx).Warn("property prefill failed", "property_id", *req.PropertyID, "error", err)
			res.PropertyError = apperr.UserMessage(err, msgPropertyFailed)
		}
	}

	h.log.WithContext(ctx).Info("chat session opened", "property_id", req.PropertyID)
	res.Snapshot = collector.Snapshot()
	httpkit.JSON(c, http.StatusCreated, res)
}

func (h *Handler) prefill(ctx context.Context, token string, propertyID int64, collector *chat.Collector) error {
	property, err := h.properties.GetProperty(ctx, token, propertyID)
	if err != nil {
		return err
	}
	_, err = collector.Prefill(ctx, chat.PropertyFromTransport(property))
	return err
}

func (h *Handler) Get(c *gin.Context) {
	collector, ok := h.store.Get(c.Param("id"))
	if !ok {
		httpkit.Error(c, http.StatusNotFound, msgSessionNotFound, nil)
		return
	}
	httpkit.OK(c, collector.Snapshot())
}

// Submit sends one answer. Remote failures are reported inside the turn, not as an HTTP error.
func (h *Handler) Submit(c *gin.Context) {
	collector, ok := h.store.Get(c.Param("id"))
	if !ok {
		httpkit.Error(c, http.StatusNotFound, msgSessionNotFound, nil)
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if httpkit.HandleError(c, h.val.Check(req)) {
		return
	}

	ctx := sessionContext(c, collector)
	turn, err := collector.Submit(ctx, sanitize.Text(req.Message))
	if errors.Is(err, chat.ErrClosed) {
		httpkit.Error(c, http.StatusGone, msgSessionClosed, nil)
		return
	}
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, SubmitResponse{Turn: turn, Session: collector.Snapshot()})
}

func (h *Handler) Close(c *gin.Context) {
	if !h.store.Delete(c.Param("id")) {
		httpkit.Error(c, http.StatusNotFound, msgSessionNotFound, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

func sessionContext(c *gin.Context, collector *chat.Collector) context.Context {
	ctx := context.WithValue(c.Request.Context(), logger.SessionIDKey, collector.SessionID())
	if contact := collector.ContactKey(); contact != "" {
		ctx = context.WithValue(ctx, logger.ContactKey, contact)
	}
	return ctx
}
