package handlers

import (
	"github.com/architect/elective-advisor/internal/common/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the elective advisor API on v1. stream, when not
// nil, serves live recommendation updates.
func RegisterRoutes(v1 *gin.RouterGroup, stream gin.HandlerFunc) {
	activities := v1.Group("/activities", middleware.AuthRequired())
	{
		activities.POST("/results", SubmitActivityResult)
		activities.GET("/results", GetActivityResults)
		activities.GET("/analysis", GetActivityAnalysis)
	}

	survey := v1.Group("/survey")
	{
		survey.GET("/leaderboard", middleware.OptionalAuth(), GetSurveyLeaderboard)
		survey.POST("/results", middleware.AuthRequired(), SubmitSurvey)
		survey.GET("/results/me", middleware.AuthRequired(), GetMySurvey)
		survey.DELETE("/results/me", middleware.AuthRequired(), DeleteMySurvey)
	}

	recommendations := v1.Group("/recommendations", middleware.AuthRequired())
	{
		recommendations.GET("", GetRecommendation)
		if stream != nil {
			recommendations.GET("/stream", stream)
		}
	}
}
