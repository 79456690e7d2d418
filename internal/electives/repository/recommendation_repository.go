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

var recommendationUpdateColumns = []string{
	"survey_scores", "survey_weight", "activity_scores", "activity_weight",
	"final_scores", "recommended_elective", "confidence_score", "mode", "date_generated",
}

// UpsertRecommendation replaces the user's stored recommendation with rec.
func UpsertRecommendation(ctx context.Context, rec *models.ElectiveRecommendation) (*models.ElectiveRecommendation, error) {
	rec.ID = 0
	if rec.GeneratedAt.IsZero() {
		rec.GeneratedAt = time.Now().UTC()
	}

	result := database.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(recommendationUpdateColumns),
	}).Create(rec)
	if result.Error != nil {
		return nil, errors.Storage("save recommendation", result.Error)
	}
	return GetRecommendation(ctx, rec.UserID)
}

// GetRecommendation returns the user's latest recommendation, or nil.
func GetRecommendation(ctx context.Context, userID uint) (*models.ElectiveRecommendation, error) {
	var rec models.ElectiveRecommendation
	result := database.WithContext(ctx).Where("user_id = ?", userID).Take(&rec)
	if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, errors.Storage("fetch recommendation", result.Error)
	}
	return &rec, nil
}
