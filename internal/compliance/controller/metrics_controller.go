package controller

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"compliflow/internal/compliance/model"
	"compliflow/internal/compliance/service"
	"compliflow/pkg/errors"
	"compliflow/pkg/utils/response"
)

// MetricsController handles metrics and requirements endpoints.
type MetricsController struct {
	metrics *service.MetricsService
}

// NewMetricsController creates a metrics controller.
func NewMetricsController(metrics *service.MetricsService) *MetricsController {
	return &MetricsController{metrics: metrics}
}

// RegisterRoutes registers metrics routes on the given group.
func (ctl *MetricsController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/metrics", ctl.Compute)
	rg.GET("/metrics/summary", ctl.Summary)
	rg.GET("/requirements", ctl.Requirements)
}

// Compute returns the metrics table. Without parameters it uses the standard
// dashboard periods; a months query parameter like "2026-06,2026-07" selects
// explicit calendar months instead.
func (ctl *MetricsController) Compute(c *gin.Context) {
	var periods []service.Period
	if raw := c.Query("months"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			month, err := time.Parse("2006-01", part)
			if err != nil {
				response.Error(c, errors.Newf(errors.InvalidPeriod, "invalid month %q, expected YYYY-MM", part))
				return
			}
			periods = append(periods, service.CalendarMonth(month.Year(), month.Month(), time.UTC))
		}
	}

	table, err := ctl.metrics.Compute(c.Request.Context(), periods)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, table)
}

// Summary returns the dashboard headline figures and monthly trend.
func (ctl *MetricsController) Summary(c *gin.Context) {
	summary, err := ctl.metrics.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, summary)
}

// Requirements returns the compliance requirement catalog, or the checklist
// for one source when the source query parameter is set.
func (ctl *MetricsController) Requirements(c *gin.Context) {
	if src := c.Query("source"); src != "" {
		set, err := service.RequirementsForSource(model.Source(src))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, set)
		return
	}
	response.Success(c, service.Requirements())
}
