package handlers

import (
	"net/http"
	"strconv"

	"github.com/architect/elective-advisor/internal/common/errors"
	"github.com/architect/elective-advisor/internal/common/middleware"
	"github.com/architect/elective-advisor/internal/electives/models"
	"github.com/architect/elective-advisor/internal/electives/services"
	"github.com/gin-gonic/gin"
)

// currentUser returns the authenticated user or writes a 401.
func currentUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		middleware.JSONErrorResponse(c, errors.Unauthorized("authentication required"))
		return 0, false
	}
	return userID, true
}

// SubmitActivityResult records an activity attempt
// POST /api/v1/activities/results
func SubmitActivityResult(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.JSONErrorResponse(c, errors.BadRequest("invalid request body: "+err.Error()))
		return
	}

	resp, err := services.SubmitAttempt(c.Request.Context(), userID, req)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}

// GetActivityResults lists the caller's attempts
// GET /api/v1/activities/results?elective=ITBA&page=1&page_size=20
func GetActivityResults(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := services.ListAttempts(c.Request.Context(), userID, c.Query("elective"), page, pageSize)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetActivityAnalysis returns the caller's activity report
// GET /api/v1/activities/analysis
func GetActivityAnalysis(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	analysis, err := services.GetActivityAnalysis(c.Request.Context(), userID)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}
