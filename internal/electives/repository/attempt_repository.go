package repository

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/architect/elective-advisor/internal/common/database"
	"github.com/architect/elective-advisor/internal/common/errors"
	"github.com/architect/elective-advisor/internal/electives/models"
	"github.com/architect/elective-advisor/internal/scoring"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// attemptUpdateColumns are overwritten when a retry replaces the current attempt.
// date_completed keeps the time of the first submission.
var attemptUpdateColumns = []string{
	"completion_seconds", "completed", "engagement_score", "total_interactions",
	"interaction_rate", "time_efficiency", "quality_indicators", "attempts",
	"first_attempt_seconds", "last_attempt_seconds", "improvement_rate",
	"performance_score", "date_updated",
}

// Reconciler builds the row to store from the current one, which is nil on a
// first submission.
type Reconciler func(existing *models.ActivityResult) (*models.ActivityResult, error)

// GetCurrentAttempt returns the current attempt for key, or nil when absent.
func GetCurrentAttempt(ctx context.Context, key models.AttemptKey) (*models.ActivityResult, error) {
	row, err := findAttempt(database.WithContext(ctx), key, false)
	if err != nil {
		return nil, errors.Storage("fetch attempt", err)
	}
	return row, nil
}

// UpsertAttempt reads the current attempt for key, hands it to reconcile and
// writes the result, all in one transaction. Calls for the same key are
// serialized in-process; on PostgreSQL the existing row is also locked with
// SELECT ... FOR UPDATE. created reports whether no attempt existed before.
func UpsertAttempt(ctx context.Context, key models.AttemptKey, reconcile Reconciler) (stored *models.ActivityResult, created bool, err error) {
	unlock := attemptLocks.Lock(key)
	defer unlock()

	txErr := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findAttempt(tx, key, database.IsPostgres(tx))
		if err != nil {
			return err
		}

		next, err := reconcile(existing)
		if err != nil {
			return err
		}
		next.ID = 0
		next.UserID, next.Elective, next.ActivityName = key.UserID, key.Elective, key.ActivityName
		if existing != nil {
			next.CompletedAt = existing.CompletedAt
		} else if next.CompletedAt.IsZero() {
			next.CompletedAt = time.Now().UTC()
		}
		next.UpdatedAt = time.Now().UTC()

		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "elective"}, {Name: "activity_name"}},
			DoUpdates: clause.AssignmentColumns(attemptUpdateColumns),
		}).Create(next)
		if result.Error != nil {
			return result.Error
		}

		stored, err = findAttempt(tx, key, false)
		if err != nil {
			return err
		}
		created = existing == nil
		return nil
	})
	if txErr != nil {
		if appErr, ok := errors.As(txErr); ok {
			return nil, false, appErr
		}
		return nil, false, errors.Storage("save attempt", txErr)
	}
	return stored, created, nil
}

// ListAttempts returns the user's current attempts, newest first. An empty
// elective lists every elective.
func ListAttempts(ctx context.Context, userID uint, elective scoring.Elective) ([]*models.ActivityResult, error) {
	var rows []*models.ActivityResult
	result := attemptsQuery(ctx, userID, elective).Order("date_completed DESC").Order("id DESC").Find(&rows)
	if result.Error != nil {
		return nil, errors.Storage("list attempts", result.Error)
	}
	return rows, nil
}

// ListAttemptsPage returns one page of the user's attempts and the total count.
func ListAttemptsPage(ctx context.Context, userID uint, elective scoring.Elective, offset, limit int) ([]*models.ActivityResult, int64, error) {
	var total int64
	if err := attemptsQuery(ctx, userID, elective).Count(&total).Error; err != nil {
		return nil, 0, errors.Storage("count attempts", err)
	}

	var rows []*models.ActivityResult
	result := attemptsQuery(ctx, userID, elective).
		Order("date_completed DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&rows)
	if result.Error != nil {
		return nil, 0, errors.Storage("list attempts", result.Error)
	}
	return rows, total, nil
}

func attemptsQuery(ctx context.Context, userID uint, elective scoring.Elective) *gorm.DB {
	q := database.WithContext(ctx).Model(&models.ActivityResult{}).Where("user_id = ?", userID)
	if elective != "" {
		q = q.Where("elective = ?", elective)
	}
	return q
}

func findAttempt(tx *gorm.DB, key models.AttemptKey, forUpdate bool) (*models.ActivityResult, error) {
	q := tx
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var row models.ActivityResult
	result := q.Where("user_id = ? AND elective = ? AND activity_name = ?", key.UserID, key.Elective, key.ActivityName).
		Take(&row)
	if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &row, nil
}
