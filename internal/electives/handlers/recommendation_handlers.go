package handlers

import (
	"net/http"

	"github.com/architect/elective-advisor/internal/common/middleware"
	"github.com/architect/elective-advisor/internal/electives/services"
	"github.com/gin-gonic/gin"
)

// GetRecommendation generates and stores the caller's recommendation
// GET /api/v1/recommendations
func GetRecommendation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	rec, err := services.GenerateRecommendation(c.Request.Context(), userID)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}
