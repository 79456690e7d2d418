package services

import (
	"context"
	"time"

	"github.com/architect/elective-advisor/internal/common/database"
	"github.com/architect/elective-advisor/internal/common/errors"
	"github.com/architect/elective-advisor/internal/common/validation"
	"github.com/architect/elective-advisor/internal/electives/models"
	"github.com/architect/elective-advisor/internal/electives/repository"
	"github.com/architect/elective-advisor/internal/metrics"
	"github.com/architect/elective-advisor/internal/scoring"
	"github.com/architect/elective-advisor/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// NoActivitiesMessage accompanies an empty activity analysis.
const NoActivitiesMessage = "No completed activities yet. Complete some activities to see your analysis."

// ========== ATTEMPT SERVICES ==========

// SubmitAttempt records an activity submission. A retry of the same activity
// replaces the stored attempt and carries the improvement bookkeeping forward.
func SubmitAttempt(ctx context.Context, userID uint, req models.SubmitAttemptRequest) (*models.SubmitAttemptResponse, error) {
	if errs := validation.Validate(req); len(errs) > 0 {
		return nil, errors.Validation("invalid activity submission", validation.Summary(errs))
	}
	elective, err := scoring.ParseElective(req.Elective)
	if err != nil {
		return nil, errors.Validation("invalid activity submission", err.Error())
	}

	key := models.AttemptKey{UserID: userID, Elective: elective, ActivityName: req.ActivityName}
	stored, created, err := repository.UpsertAttempt(ctx, key, func(existing *models.ActivityResult) (*models.ActivityResult, error) {
		return buildAttempt(existing, req), nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordAttempt(string(elective), created, stored.PerformanceScore)
	invalidatePopulation(ctx)

	logger.Debug("attempt recorded",
		zap.Uint("user_id", userID),
		zap.String("elective", string(elective)),
		zap.String("activity", req.ActivityName),
		zap.Int("attempts", stored.Attempts),
		zap.Bool("created", created),
	)

	return &models.SubmitAttemptResponse{Result: stored, Created: created}, nil
}

// buildAttempt reconciles a submission against the attempt it replaces.
func buildAttempt(existing *models.ActivityResult, req models.SubmitAttemptRequest) *models.ActivityResult {
	var seconds float64
	if req.CompletionTimeSeconds != nil {
		seconds = *req.CompletionTimeSeconds
	}
	duration := time.Duration(seconds * float64(time.Second))
	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}

	var previous *scoring.Attempt
	attempts := max(req.Attempts, 1)
	if existing != nil {
		a := existing.ToAttempt()
		previous = &a
		attempts = max(req.Attempts, existing.Attempts+1)
	}
	improvement := scoring.Reconcile(previous, duration, req.EngagementScore)

	efficiency := scoring.EstimateTimeEfficiency(duration)
	if req.TimeEfficiency != nil {
		efficiency = *req.TimeEfficiency
	}

	rate := interactionsPerMinute(req.TotalInteractions, duration)
	if req.InteractionRate != nil {
		rate = *req.InteractionRate
	}

	indicators := req.QualityIndicators
	if indicators == nil {
		indicators = scoring.QualityIndicators{}
	}

	first := models.DurationSeconds(improvement.FirstDuration)
	last := models.DurationSeconds(improvement.LastDuration)
	row := &models.ActivityResult{
		CompletionSeconds:   seconds,
		Completed:           completed,
		EngagementScore:     req.EngagementScore,
		TotalInteractions:   req.TotalInteractions,
		InteractionRate:     rate,
		TimeEfficiency:      efficiency,
		QualityIndicators:   datatypes.NewJSONType(indicators),
		Attempts:            attempts,
		FirstAttemptSeconds: &first,
		LastAttemptSeconds:  &last,
		ImprovementRate:     improvement.Rate,
	}
	row.PerformanceScore = scoring.PerformanceScore(row.ToAttempt())
	return row
}

func interactionsPerMinute(interactions int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(interactions) / d.Minutes()
}

// ListAttempts returns one page of the user's attempts, newest first.
// electiveFilter may be empty.
func ListAttempts(ctx context.Context, userID uint, electiveFilter string, page, pageSize int) (*database.PaginatedResult, error) {
	var elective scoring.Elective
	if electiveFilter != "" {
		e, err := scoring.ParseElective(electiveFilter)
		if err != nil {
			return nil, errors.Validation("invalid elective filter", err.Error())
		}
		elective = e
	}

	page, pageSize, offset := database.NormalizePage(page, pageSize)
	rows, total, err := repository.ListAttemptsPage(ctx, userID, elective, offset, pageSize)
	if err != nil {
		return nil, err
	}

	result := &database.PaginatedResult{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Data:     rows,
	}
	result.Calculate()
	return result, nil
}

// ========== ANALYSIS SERVICES ==========

// GetActivityAnalysis builds the activity report of the user, including the
// comparison against every user with completed activities.
func GetActivityAnalysis(ctx context.Context, userID uint) (*models.AnalysisResponse, error) {
	rows, err := repository.ListAttempts(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	attempts := models.ToAttempts(rows)

	if len(scoring.CompletedOnly(attempts)) == 0 {
		empty, _ := scoring.Analyze(scoring.DefaultElectives, attempts, nil)
		return &models.AnalysisResponse{Analysis: empty, Message: NoActivitiesMessage}, nil
	}

	pop, err := loadPopulation(ctx)
	if err != nil {
		return nil, err
	}

	analysis, _ := scoring.Analyze(scoring.DefaultElectives, attempts, pop)
	return &models.AnalysisResponse{Analysis: analysis}, nil
}
