package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"fullhouse_client/internal/api/transport"
	"fullhouse_client/internal/leads/service"
	"fullhouse_client/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
}

const (
	msgInvalidRequest = "solicitud inválida"
	msgInvalidID      = "ID de lead no válido"
)

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes mounts routes that work without a session.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/preview", h.Preview)
	rg.POST("/analyze", h.Analyze)
}

// RegisterRoutes mounts the routes that forward the caller's token.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/interactions", h.AddInteraction)
}

func (h *Handler) Preview(c *gin.Context) {
	var req service.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	preview, err := h.svc.Preview(req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, preview)
}

func (h *Handler) Analyze(c *gin.Context) {
	var req transport.LeadAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	res, err := h.svc.Analyze(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

func (h *Handler) List(c *gin.Context) {
	leads, err := h.svc.List(c.Request.Context(), httpkit.TokenFrom(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, leads)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.LeadCreatePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	lead, err := h.svc.Create(c.Request.Context(), httpkit.TokenFrom(c), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, lead)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	lead, err := h.svc.Get(c.Request.Context(), httpkit.TokenFrom(c), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.LeadUpdatePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	lead, err := h.svc.Update(c.Request.Context(), httpkit.TokenFrom(c), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), httpkit.TokenFrom(c), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AddInteraction(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.InteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	raw, err := h.svc.AddInteraction(c.Request.Context(), httpkit.TokenFrom(c), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	c.Data(http.StatusCreated, "application/json; charset=utf-8", raw)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return 0, false
	}
	return id, true
}
