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

// SubmitSurvey stores the caller's interest survey
// POST /api/v1/survey/results
func SubmitSurvey(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.SubmitSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.JSONErrorResponse(c, errors.BadRequest("invalid request body: "+err.Error()))
		return
	}

	survey, err := services.SubmitSurvey(c.Request.Context(), userID, req)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, survey)
}

// GetMySurvey returns the caller's survey
// GET /api/v1/survey/results/me
func GetMySurvey(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	survey, err := services.GetMySurvey(c.Request.Context(), userID)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}

// DeleteMySurvey removes the caller's survey
// DELETE /api/v1/survey/results/me
func DeleteMySurvey(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := services.DeleteMySurvey(c.Request.Context(), userID); err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSurveyLeaderboard ranks the fastest surveys. Signed-in callers get
// their own row flagged.
// GET /api/v1/survey/leaderboard?limit=10
func GetSurveyLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	board, err := services.GetSurveyLeaderboard(c.Request.Context(), limit)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	if userID, ok := middleware.UserID(c); ok {
		for _, entry := range board.Entries {
			entry.IsCurrentUser = entry.UserID == userID
		}
	}

	c.JSON(http.StatusOK, board)
}
