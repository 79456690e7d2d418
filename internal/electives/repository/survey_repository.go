package repository

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/architect/elective-advisor/internal/common/database"
	"github.com/architect/elective-advisor/internal/common/errors"
	"github.com/architect/elective-advisor/internal/electives/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var surveyUpdateColumns = []string{
	"selected_elective", "trait_scores", "elective_scores", "total_xp", "level",
	"completion_seconds", "questions_answered", "date_completed", "updated_at",
}

// GetLatestSurvey returns the user's survey, or nil when none was submitted.
func GetLatestSurvey(ctx context.Context, userID uint) (*models.SurveyResult, error) {
	var survey models.SurveyResult
	result := database.WithContext(ctx).Where("user_id = ?", userID).Take(&survey)
	if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, errors.Storage("fetch survey", result.Error)
	}
	return &survey, nil
}

// UpsertSurvey stores survey as the user's only survey, replacing any previous one.
func UpsertSurvey(ctx context.Context, survey *models.SurveyResult) (*models.SurveyResult, error) {
	now := time.Now().UTC()
	survey.ID = 0
	survey.CompletedAt = now
	survey.UpdatedAt = now

	result := database.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(surveyUpdateColumns),
	}).Create(survey)
	if result.Error != nil {
		return nil, errors.Storage("save survey", result.Error)
	}
	return GetLatestSurvey(ctx, survey.UserID)
}

// DeleteSurvey removes the user's survey. It reports whether one existed.
func DeleteSurvey(ctx context.Context, userID uint) (bool, error) {
	result := database.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.SurveyResult{})
	if result.Error != nil {
		return false, errors.Storage("delete survey", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// SurveyLeaderboard returns up to limit surveys that recorded a completion
// time, fastest first, earlier completion breaking ties.
func SurveyLeaderboard(ctx context.Context, limit int) ([]*models.SurveyResult, error) {
	var rows []*models.SurveyResult
	result := database.WithContext(ctx).
		Where("completion_seconds IS NOT NULL").
		Order("completion_seconds ASC").
		Order("date_completed ASC").
		Limit(limit).
		Find(&rows)
	if result.Error != nil {
		return nil, errors.Storage("fetch leaderboard", result.Error)
	}
	return rows, nil
}
