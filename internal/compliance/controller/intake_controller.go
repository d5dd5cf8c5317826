package controller

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"compliflow/internal/compliance/service"
	"compliflow/pkg/errors"
	"compliflow/pkg/utils/response"
)

// IntakeController handles submission intake and retrieval endpoints.
type IntakeController struct {
	intake *service.IntakeService
}

// NewIntakeController creates an intake controller.
func NewIntakeController(intake *service.IntakeService) *IntakeController {
	return &IntakeController{intake: intake}
}

// RegisterRoutes registers intake routes on the given group.
func (ctl *IntakeController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/submissions", ctl.Create)
	rg.GET("/submissions/:id", ctl.Get)
	rg.GET("/submissions/:id/content", ctl.ContentURL)
}

// Create accepts a multipart intake form with fields title, material_type,
// source, page_count and an uploaded file named content.
func (ctl *IntakeController) Create(c *gin.Context) {
	pageCount, err := strconv.Atoi(c.PostForm("page_count"))
	if err != nil {
		response.Error(c, errors.New(errors.InvalidPageCount))
		return
	}

	req := service.SubmitRequest{
		Title:        c.PostForm("title"),
		MaterialType: c.PostForm("material_type"),
		Source:       c.PostForm("source"),
		PageCount:    pageCount,
	}

	fileHeader, err := c.FormFile("content")
	if err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			response.Error(c, errors.Wrap(err, errors.ContentUploadFailed))
			return
		}
		defer file.Close()
		req.Content = file
		req.ContentName = fileHeader.Filename
		req.ContentSize = fileHeader.Size
		req.ContentType = fileHeader.Header.Get("Content-Type")
	}

	sub, err := ctl.intake.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, sub)
}

// Get returns a single submission by ID.
func (ctl *IntakeController) Get(c *gin.Context) {
	sub, err := ctl.intake.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, sub)
}

// ContentURL returns a presigned download URL for the stored material.
func (ctl *IntakeController) ContentURL(c *gin.Context) {
	expiry := 15 * time.Minute
	if raw := c.Query("expiry_seconds"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			response.BadRequest(c, "invalid expiry_seconds")
			return
		}
		expiry = time.Duration(secs) * time.Second
	}

	url, err := ctl.intake.ContentURL(c.Request.Context(), c.Param("id"), expiry)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"url": url, "expires_in": int(expiry.Seconds())})
}
