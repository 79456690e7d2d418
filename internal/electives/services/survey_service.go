package services

import (
	"context"
	"fmt"
	"time"

	"github.com/architect/elective-advisor/internal/common/errors"
	"github.com/architect/elective-advisor/internal/common/validation"
	"github.com/architect/elective-advisor/internal/electives/models"
	"github.com/architect/elective-advisor/internal/electives/repository"
	"github.com/architect/elective-advisor/internal/scoring"
	"gorm.io/datatypes"
)

// Leaderboard bounds.
const (
	DefaultLeaderboardSize = 10
	MaxLeaderboardSize     = 100
)

// ========== SURVEY SERVICES ==========

// SubmitSurvey stores the user's interest survey, replacing any previous one.
// Elective keys may be codes or display names and are stored as codes.
func SubmitSurvey(ctx context.Context, userID uint, req models.SubmitSurveyRequest) (*models.SurveyResult, error) {
	if errs := validation.Validate(req); len(errs) > 0 {
		return nil, errors.Validation("invalid survey submission", validation.Summary(errs))
	}

	selected, err := scoring.ParseElective(req.SelectedElective)
	if err != nil {
		return nil, errors.Validation("invalid survey submission", err.Error())
	}

	scores := make(map[scoring.Elective]float64, len(req.ElectiveScores))
	for name, v := range req.ElectiveScores {
		e, err := scoring.ParseElective(name)
		if err != nil {
			return nil, errors.Validation("invalid survey submission", err.Error())
		}
		scores[e] += v
	}

	traits := req.TraitScores
	if traits == nil {
		traits = map[string]float64{}
	}

	return repository.UpsertSurvey(ctx, &models.SurveyResult{
		UserID:            userID,
		SelectedElective:  selected,
		TraitScores:       datatypes.NewJSONType(traits),
		ElectiveScores:    datatypes.NewJSONType(scores),
		TotalXP:           req.TotalXP,
		Level:             max(req.Level, 1),
		CompletionSeconds: req.CompletionTimeSeconds,
		QuestionsAnswered: req.QuestionsAnswered,
	})
}

// GetMySurvey returns the user's survey.
func GetMySurvey(ctx context.Context, userID uint) (*models.SurveyResult, error) {
	survey, err := repository.GetLatestSurvey(ctx, userID)
	if err != nil {
		return nil, err
	}
	if survey == nil {
		return nil, errors.NotFound("survey")
	}
	return survey, nil
}

// DeleteMySurvey removes the user's survey so it can be retaken.
func DeleteMySurvey(ctx context.Context, userID uint) error {
	deleted, err := repository.DeleteSurvey(ctx, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return errors.NotFound("survey")
	}
	return nil
}

// GetSurveyLeaderboard ranks the fastest completed surveys.
func GetSurveyLeaderboard(ctx context.Context, limit int) (*models.SurveyLeaderboardResponse, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	if limit > MaxLeaderboardSize {
		limit = MaxLeaderboardSize
	}

	rows, err := repository.SurveyLeaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]*models.SurveyLeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		var seconds float64
		if row.CompletionSeconds != nil {
			seconds = *row.CompletionSeconds
		}
		entries = append(entries, &models.SurveyLeaderboardEntry{
			Rank:                  i + 1,
			UserID:                row.UserID,
			SelectedElective:      row.SelectedElective,
			TotalXP:               row.TotalXP,
			Level:                 row.Level,
			CompletionTimeSeconds: seconds,
			CompletionTimeDisplay: formatMinutes(seconds),
			QuestionsAnswered:     row.QuestionsAnswered,
			CompletedAt:           row.CompletedAt,
		})
	}

	return &models.SurveyLeaderboardResponse{Entries: entries, UpdatedAt: time.Now().UTC()}, nil
}

// formatMinutes renders seconds as m:ss.
func formatMinutes(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
