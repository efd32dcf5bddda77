package ginserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"vidaview/internal/app/dto"
	dashboardapp "vidaview/internal/app/handlers/dashboard"
	"vidaview/internal/app/queries"
	"vidaview/internal/infra/report"
)

type DashboardHTTP interface {
	Admin(c *gin.Context)
	Owner(c *gin.Context)
	Tenant(c *gin.Context)
	RevenueChart(c *gin.Context)
	RevenueExport(c *gin.Context)
}

type DashboardHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
	Clock   func() time.Time
}

func (h DashboardHandler) Admin(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	result, err := queries.Ask[dashboardapp.AdminStatsQuery, dto.AdminStats](c.Request.Context(), h.Queries, dashboardapp.AdminStatsQuery{Actor: actor})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h DashboardHandler) Owner(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	result, err := queries.Ask[dashboardapp.OwnerStatsQuery, dto.OwnerStats](c.Request.Context(), h.Queries, dashboardapp.OwnerStatsQuery{Actor: actor})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h DashboardHandler) Tenant(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	result, err := queries.Ask[dashboardapp.TenantStatsQuery, dto.TenantStats](c.Request.Context(), h.Queries, dashboardapp.TenantStatsQuery{Actor: actor})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h DashboardHandler) RevenueChart(c *gin.Context) {
	chart, ok := h.revenue(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, chart)
}

// RevenueExport serves the revenue chart as an xlsx attachment.
func (h DashboardHandler) RevenueExport(c *gin.Context) {
	chart, ok := h.revenue(c)
	if !ok {
		return
	}
	body, err := report.RevenueWorkbook(chart)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	filename := fmt.Sprintf("revenue-%s.xlsx", h.now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, report.ContentTypeXLSX, body)
}

func (h DashboardHandler) revenue(c *gin.Context) (dto.RevenueChart, bool) {
	actor, ok := requireActor(c)
	if !ok {
		return dto.RevenueChart{}, false
	}
	chart, err := queries.Ask[dashboardapp.RevenueChartQuery, dto.RevenueChart](c.Request.Context(), h.Queries, dashboardapp.RevenueChartQuery{Actor: actor})
	if err != nil {
		respondError(c, h.Logger, err)
		return dto.RevenueChart{}, false
	}
	return chart, true
}

func (h DashboardHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock()
	}
	return time.Now().UTC()
}

var _ DashboardHTTP = DashboardHandler{}
