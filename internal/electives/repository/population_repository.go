package repository

import (
	"context"

	"github.com/architect/elective-advisor/internal/common/database"
	"github.com/architect/elective-advisor/internal/common/errors"
	"github.com/architect/elective-advisor/internal/electives/models"
	"github.com/architect/elective-advisor/internal/scoring"
)

// PopulationScores returns, for every user with a completed attempt, the mean
// performance score of their completed attempts.
func PopulationScores(ctx context.Context) ([]float64, error) {
	var rows []struct {
		Score float64
	}
	result := database.WithContext(ctx).Model(&models.ActivityResult{}).
		Select("AVG(performance_score) AS score").
		Where("completed = ?", true).
		Group("user_id").
		Scan(&rows)
	if result.Error != nil {
		return nil, errors.Storage("fetch population scores", result.Error)
	}

	scores := make([]float64, 0, len(rows))
	for _, r := range rows {
		scores = append(scores, r.Score)
	}
	return scores, nil
}

// PeerAverages averages engagement and time efficiency over every completed
// attempt of every user.
func PeerAverages(ctx context.Context) (scoring.PeerAverages, error) {
	var row struct {
		Engagement     float64
		TimeEfficiency float64
	}
	result := database.WithContext(ctx).Model(&models.ActivityResult{}).
		Select("COALESCE(AVG(engagement_score), 0) AS engagement, COALESCE(AVG(time_efficiency), 0) AS time_efficiency").
		Where("completed = ?", true).
		Scan(&row)
	if result.Error != nil {
		return scoring.PeerAverages{}, errors.Storage("fetch peer averages", result.Error)
	}
	return scoring.PeerAverages{Engagement: row.Engagement, TimeEfficiency: row.TimeEfficiency}, nil
}

// LoadPopulation materializes the comparison data consumed by scoring.Analyze.
func LoadPopulation(ctx context.Context) (*scoring.Population, error) {
	averages, err := PeerAverages(ctx)
	if err != nil {
		return nil, err
	}
	scores, err := PopulationScores(ctx)
	if err != nil {
		return nil, err
	}
	return &scoring.Population{Averages: averages, Scores: scores}, nil
}
