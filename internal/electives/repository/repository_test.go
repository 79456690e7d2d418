package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/architect/elective-advisor/internal/common/errors"
	"github.com/architect/elective-advisor/internal/electives/models"
	"github.com/architect/elective-advisor/internal/scoring"
	"github.com/architect/elective-advisor/internal/testsupport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func setupDB(t *testing.T) {
	t.Helper()
	testsupport.UseDatabase(t, &models.ActivityResult{}, &models.SurveyResult{}, &models.ElectiveRecommendation{})
}

func fixedAttempt(seconds, engagement float64, completed bool) Reconciler {
	return func(existing *models.ActivityResult) (*models.ActivityResult, error) {
		attempts := 1
		if existing != nil {
			attempts = existing.Attempts + 1
		}
		return &models.ActivityResult{
			CompletionSeconds: seconds,
			Completed:         completed,
			EngagementScore:   engagement,
			Attempts:          attempts,
			PerformanceScore:  engagement,
			QualityIndicators: datatypes.NewJSONType(scoring.QualityIndicators{"layers": scoring.Number(3)}),
		}, nil
	}
}

func TestUpsertAttempt_CreateThenRetry(t *testing.T) {
	setupDB(t)
	ctx := context.Background()
	key := models.AttemptKey{UserID: 1, Elective: scoring.ITBA, ActivityName: "dashboard"}

	missing, err := GetCurrentAttempt(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, missing)

	first, created, err := UpsertAttempt(ctx, key, fixedAttempt(120, 60, true))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, key, first.Key())
	assert.Equal(t, 1, first.Attempts)
	assert.False(t, first.CompletedAt.IsZero())
	n, ok := first.QualityIndicators.Data()["layers"].AsNumber()
	assert.True(t, ok)
	assert.Equal(t, 3.0, n)

	second, created, err := UpsertAttempt(ctx, key, func(existing *models.ActivityResult) (*models.ActivityResult, error) {
		require.NotNil(t, existing)
		assert.Equal(t, 120.0, existing.CompletionSeconds)
		return fixedAttempt(90, 75, true)(existing)
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Attempts)
	assert.Equal(t, 90.0, second.CompletionSeconds)
	assert.Equal(t, 75.0, second.EngagementScore)
	assert.True(t, first.CompletedAt.Equal(second.CompletedAt), "retry keeps the first completion time")

	rows, err := ListAttempts(ctx, 1, "")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestUpsertAttempt_ReconcileErrorRollsBack(t *testing.T) {
	setupDB(t)
	ctx := context.Background()
	key := models.AttemptKey{UserID: 1, Elective: scoring.MMGD, ActivityName: "sprite"}

	_, _, err := UpsertAttempt(ctx, key, func(*models.ActivityResult) (*models.ActivityResult, error) {
		return nil, errors.Validation("bad attempt", "")
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidation))

	row, err := GetCurrentAttempt(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestUpsertAttempt_ConcurrentRetriesAreSerialized(t *testing.T) {
	setupDB(t)
	ctx := context.Background()
	key := models.AttemptKey{UserID: 4, Elective: scoring.MobileDev, ActivityName: "layout"}

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := UpsertAttempt(ctx, key, fixedAttempt(60, 50, true))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	row, err := GetCurrentAttempt(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, workers, row.Attempts, "every retry saw the previous write")
}

func TestListAttempts_FilterAndPage(t *testing.T) {
	setupDB(t)
	ctx := context.Background()

	for i, e := range []scoring.Elective{scoring.MobileDev, scoring.MobileDev, scoring.ITBA} {
		key := models.AttemptKey{UserID: 2, Elective: e, ActivityName: fmt.Sprintf("activity-%d", i)}
		_, _, err := UpsertAttempt(ctx, key, fixedAttempt(60, 50, true))
		require.NoError(t, err)
	}
	_, _, err := UpsertAttempt(ctx, models.AttemptKey{UserID: 3, Elective: scoring.ITBA, ActivityName: "other"}, fixedAttempt(60, 50, true))
	require.NoError(t, err)

	all, err := ListAttempts(ctx, 2, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mobile, err := ListAttempts(ctx, 2, scoring.MobileDev)
	require.NoError(t, err)
	assert.Len(t, mobile, 2)

	page, total, err := ListAttemptsPage(ctx, 2, "", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 1)
}

func TestSurveyLifecycle(t *testing.T) {
	setupDB(t)
	ctx := context.Background()

	none, err := GetLatestSurvey(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, none)

	first, err := UpsertSurvey(ctx, &models.SurveyResult{
		UserID:           9,
		SelectedElective: scoring.ITBA,
		ElectiveScores:   datatypes.NewJSONType(map[scoring.Elective]float64{scoring.ITBA: 80, scoring.MMGD: 20}),
		Level:            2,
	})
	require.NoError(t, err)
	assert.Equal(t, scoring.ITBA, first.SelectedElective)

	replaced, err := UpsertSurvey(ctx, &models.SurveyResult{
		UserID:           9,
		SelectedElective: scoring.MMGD,
		ElectiveScores:   datatypes.NewJSONType(map[scoring.Elective]float64{scoring.MMGD: 90}),
		Level:            3,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, replaced.ID, "one survey per user")
	assert.Equal(t, scoring.MMGD, replaced.SelectedElective)
	assert.Equal(t, map[scoring.Elective]float64{scoring.MMGD: 90}, replaced.ElectiveScores.Data())
	assert.Equal(t, 3, replaced.Level)

	deleted, err := DeleteSurvey(ctx, 9)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = DeleteSurvey(ctx, 9)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestSurveyLeaderboard(t *testing.T) {
	setupDB(t)
	ctx := context.Background()

	seconds := func(s float64) *float64 { return &s }
	for userID, completion := range map[uint]*float64{1: seconds(95), 2: seconds(61), 3: nil, 4: seconds(200)} {
		_, err := UpsertSurvey(ctx, &models.SurveyResult{
			UserID:            userID,
			SelectedElective:  scoring.ITBA,
			ElectiveScores:    datatypes.NewJSONType(map[scoring.Elective]float64{scoring.ITBA: 1}),
			CompletionSeconds: completion,
		})
		require.NoError(t, err)
	}

	top, err := SurveyLeaderboard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, uint(2), top[0].UserID)
	assert.Equal(t, uint(1), top[1].UserID)

	all, err := SurveyLeaderboard(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3, "surveys without a completion time are not ranked")
}

func TestUpsertRecommendation_ReplacesPrevious(t *testing.T) {
	setupDB(t)
	ctx := context.Background()

	first, err := UpsertRecommendation(ctx, &models.ElectiveRecommendation{
		UserID:              5,
		FinalScores:         datatypes.NewJSONType(map[scoring.Elective]float64{scoring.ITBA: 60}),
		RecommendedElective: scoring.ITBA,
		ConfidenceScore:     100,
		SurveyWeight:        scoring.SurveyWeight,
		ActivityWeight:      scoring.ActivityWeight,
		Mode:                models.ModeSurveyOnly,
	})
	require.NoError(t, err)

	second, err := UpsertRecommendation(ctx, &models.ElectiveRecommendation{
		UserID:              5,
		FinalScores:         datatypes.NewJSONType(map[scoring.Elective]float64{scoring.MMGD: 70}),
		RecommendedElective: scoring.MMGD,
		ConfidenceScore:     64,
		SurveyWeight:        scoring.SurveyWeight,
		ActivityWeight:      scoring.ActivityWeight,
		Mode:                models.ModeBlended,
		GeneratedAt:         time.Now().UTC().Add(time.Minute),
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, scoring.MMGD, second.RecommendedElective)
	assert.Equal(t, 64.0, second.ConfidenceScore)
	assert.Equal(t, models.ModeBlended, second.Mode)

	stored, err := GetRecommendation(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, map[scoring.Elective]float64{scoring.MMGD: 70}, stored.FinalScores.Data())

	missing, err := GetRecommendation(ctx, 6)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLoadPopulation(t *testing.T) {
	setupDB(t)
	ctx := context.Background()

	empty, err := LoadPopulation(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Scores)
	assert.Zero(t, empty.Averages.Engagement)

	write := func(userID uint, name string, perf, engagement, efficiency float64, completed bool) {
		key := models.AttemptKey{UserID: userID, Elective: scoring.ITBA, ActivityName: name}
		_, _, err := UpsertAttempt(ctx, key, func(*models.ActivityResult) (*models.ActivityResult, error) {
			return &models.ActivityResult{
				Completed:        completed,
				PerformanceScore: perf,
				EngagementScore:  engagement,
				TimeEfficiency:   efficiency,
				Attempts:         1,
			}, nil
		})
		require.NoError(t, err)
	}
	write(1, "a", 80, 90, 70, true)
	write(1, "b", 60, 70, 50, true)
	write(2, "a", 40, 20, 30, true)
	write(3, "a", 99, 100, 100, false)

	pop, err := LoadPopulation(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []float64{70, 40}, pop.Scores)
	assert.InDelta(t, 60.0, pop.Averages.Engagement, 1e-9)
	assert.InDelta(t, 50.0, pop.Averages.TimeEfficiency, 1e-9)
}

func TestStripeIsStable(t *testing.T) {
	key := models.AttemptKey{UserID: 1, Elective: scoring.ITBA, ActivityName: "dashboard"}
	assert.Equal(t, stripe(key), stripe(key))
	assert.Less(t, stripe(key), uint32(lockStripes))
}
