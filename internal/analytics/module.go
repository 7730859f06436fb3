package analytics

import (
	apphttp "fullhouse_client/internal/http"
	"fullhouse_client/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module exposes the funnel, summary and dashboard reads.
type Module struct {
	svc    *Service
	funnel *Funnel
}

func NewModule(svc *Service, funnel *Funnel) *Module {
	return &Module{svc: svc, funnel: funnel}
}

func (m *Module) Name() string {
	return "analytics"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	public := ctx.V1.Group("/analytics")
	public.GET("/funnel", m.Funnel)
	public.GET("/summary", m.Summary)

	ctx.Protected.GET("/analytics/dashboard", m.Dashboard)
}

type funnelResponse struct {
	Stages []Stage  `json:"stages"`
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
	Chart  string   `json:"chart"`
}

func (m *Module) Funnel(c *gin.Context) {
	ctx := c.Request.Context()
	stages, err := m.funnel.Stages(ctx)
	if httpkit.HandleError(c, err) {
		return
	}
	labels, values, err := m.funnel.GraphData(ctx)
	if httpkit.HandleError(c, err) {
		return
	}
	chart, err := m.funnel.Chart(ctx)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, funnelResponse{Stages: stages, Labels: labels, Values: values, Chart: chart})
}

func (m *Module) Summary(c *gin.Context) {
	summary, err := m.svc.Summary(c.Request.Context(), httpkit.TokenFrom(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, summary)
}

func (m *Module) Dashboard(c *gin.Context) {
	d, err := m.svc.LoadDashboard(c.Request.Context(), httpkit.TokenFrom(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, d)
}
