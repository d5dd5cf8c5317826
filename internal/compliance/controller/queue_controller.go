package controller

import (
	"strings"

	"github.com/gin-gonic/gin"

	"compliflow/internal/compliance/service"
	"compliflow/pkg/errors"
	"compliflow/pkg/utils/response"
)

// QueueController handles review queue endpoints.
type QueueController struct {
	queue *service.QueueService
}

// NewQueueController creates a queue controller.
func NewQueueController(queue *service.QueueService) *QueueController {
	return &QueueController{queue: queue}
}

// RegisterRoutes registers queue routes on the given group.
func (ctl *QueueController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/submissions", ctl.List)
	rg.POST("/submissions/:id/assign", ctl.Assign)
}

// List returns the review queue, optionally filtered by a comma-separated
// status query parameter.
func (ctl *QueueController) List(c *gin.Context) {
	var filter []string
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				filter = append(filter, s)
			}
		}
	}

	view, err := ctl.queue.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

type assignRequest struct {
	Reviewer string `json:"reviewer"`
}

// Assign assigns a reviewer to a pending submission.
func (ctl *QueueController) Assign(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errors.Wrap(err, errors.InvalidParams))
		return
	}

	sub, err := ctl.queue.Assign(c.Request.Context(), c.Param("id"), req.Reviewer)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, sub)
}
