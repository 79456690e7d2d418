package services

import (
	"context"
	"math"

	"github.com/architect/elective-advisor/internal/common/errors"
	"github.com/architect/elective-advisor/internal/electives/models"
	"github.com/architect/elective-advisor/internal/electives/repository"
	"github.com/architect/elective-advisor/internal/metrics"
	"github.com/architect/elective-advisor/internal/scoring"
	"github.com/architect/elective-advisor/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// ========== RECOMMENDATION SERVICES ==========

// GenerateRecommendation blends the user's survey with their activity
// performance, stores the result as the user's current recommendation and
// publishes it to live listeners.
func GenerateRecommendation(ctx context.Context, userID uint) (*models.RecommendationResponse, error) {
	survey, err := repository.GetLatestSurvey(ctx, userID)
	if err != nil {
		return nil, err
	}
	if survey == nil {
		return nil, errors.MissingSurvey()
	}

	rows, err := repository.ListAttempts(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	attempts := models.ToAttempts(rows)

	summaries := scoring.SummarizeByElective(scoring.DefaultElectives, attempts)
	rec := scoring.Combine(
		scoring.DefaultElectives,
		scoring.NormalizeSurvey(survey.ElectiveScores.Data()),
		scoring.ActivityScores(summaries),
	)

	completed := len(scoring.CompletedOnly(attempts))
	mode := models.ModeBlended
	if completed == 0 {
		mode = models.ModeSurveyOnly
	}

	stored, err := repository.UpsertRecommendation(ctx, &models.ElectiveRecommendation{
		UserID:              userID,
		SurveyScores:        datatypes.NewJSONType(rec.SurveyScores),
		SurveyWeight:        scoring.SurveyWeight,
		ActivityScores:      datatypes.NewJSONType(rec.ActivityScores),
		ActivityWeight:      scoring.ActivityWeight,
		FinalScores:         datatypes.NewJSONType(rec.FinalScores),
		RecommendedElective: rec.Recommended,
		ConfidenceScore:     rec.Confidence,
		Mode:                mode,
	})
	if err != nil {
		return nil, err
	}

	resp := &models.RecommendationResponse{
		RecommendedElective: rec.Recommended,
		RecommendedName:     rec.Recommended.DisplayName(),
		FinalScores:         roundScores(rec.FinalScores),
		Ranking:             roundRanking(rec.Ranking),
		Breakdown: models.RecommendationBreakdown{
			SurveyScores:     roundScores(rec.SurveyScores),
			ActivityScores:   roundScores(rec.ActivityScores),
			SurveyWeight:     scoring.SurveyWeight,
			ActivityWeight:   scoring.ActivityWeight,
			ActivityAnalysis: summaries,
		},
		ConfidenceScore:     round2(rec.Confidence),
		Mode:                mode,
		SelectedElective:    survey.SelectedElective,
		ActivitiesCompleted: completed,
		GeneratedAt:         stored.GeneratedAt,
	}

	metrics.RecordRecommendation(string(rec.Recommended), mode, rec.Confidence)
	publish(userID, EventRecommendationUpdated, resp)

	logger.Info("recommendation generated",
		zap.Uint("user_id", userID),
		zap.String("elective", string(rec.Recommended)),
		zap.String("mode", mode),
		zap.Float64("confidence", rec.Confidence),
	)
	return resp, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func roundScores(scores map[scoring.Elective]float64) map[scoring.Elective]float64 {
	out := make(map[scoring.Elective]float64, len(scores))
	for e, v := range scores {
		out[e] = round2(v)
	}
	return out
}

func roundRanking(ranking []scoring.RankedElective) []scoring.RankedElective {
	out := make([]scoring.RankedElective, len(ranking))
	for i, r := range ranking {
		out[i] = scoring.RankedElective{Elective: r.Elective, Score: round2(r.Score)}
	}
	return out
}
