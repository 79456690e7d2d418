package models

import (
	"time"

	"github.com/architect/elective-advisor/internal/scoring"
	"gorm.io/datatypes"
)

// ========== ACTIVITY MODELS ==========

// ActivityResult is the current attempt of one user at one activity. A retry
// overwrites the row in place.
type ActivityResult struct {
	ID                  uint                                          `gorm:"primaryKey" json:"id"`
	UserID              uint                                          `gorm:"not null;uniqueIndex:idx_activity_key,priority:1" json:"user_id"`
	Elective            scoring.Elective                              `gorm:"size:50;not null;uniqueIndex:idx_activity_key,priority:2" json:"elective"`
	ActivityName        string                                        `gorm:"size:100;not null;uniqueIndex:idx_activity_key,priority:3" json:"activity_name"`
	CompletionSeconds   float64                                       `gorm:"not null;default:0" json:"completion_time_seconds"`
	Completed           bool                                          `gorm:"default:false" json:"completed"`
	EngagementScore     float64                                       `gorm:"default:0" json:"engagement_score"`
	TotalInteractions   int                                           `gorm:"default:0" json:"total_interactions"`
	InteractionRate     float64                                       `gorm:"default:0" json:"interaction_rate"` // per minute
	TimeEfficiency      float64                                       `gorm:"default:0" json:"time_efficiency"`
	QualityIndicators   datatypes.JSONType[scoring.QualityIndicators] `json:"quality_indicators"`
	Attempts            int                                           `gorm:"default:1" json:"attempts"`
	FirstAttemptSeconds *float64                                      `json:"first_attempt_time_seconds,omitempty"`
	LastAttemptSeconds  *float64                                      `json:"last_attempt_time_seconds,omitempty"`
	ImprovementRate     float64                                       `gorm:"default:0" json:"improvement_rate"`
	PerformanceScore    float64                                       `gorm:"default:0" json:"performance_score"`
	CompletedAt         time.Time                                     `gorm:"column:date_completed;index" json:"date_completed"`
	UpdatedAt           time.Time                                     `gorm:"column:date_updated" json:"date_updated"`
}

// AttemptKey identifies the current attempt of a user at an activity.
type AttemptKey struct {
	UserID       uint
	Elective     scoring.Elective
	ActivityName string
}

// Key returns the composite identity of the row.
func (r *ActivityResult) Key() AttemptKey {
	return AttemptKey{UserID: r.UserID, Elective: r.Elective, ActivityName: r.ActivityName}
}

// ToAttempt converts the stored row into the scoring engine's view.
func (r *ActivityResult) ToAttempt() scoring.Attempt {
	return scoring.Attempt{
		UserID:               r.UserID,
		Elective:             r.Elective,
		Activity:             r.ActivityName,
		Duration:             secondsToDuration(r.CompletionSeconds),
		Completed:            r.Completed,
		EngagementScore:      r.EngagementScore,
		InteractionRate:      r.InteractionRate,
		TimeEfficiency:       r.TimeEfficiency,
		TotalInteractions:    r.TotalInteractions,
		Attempts:             r.Attempts,
		QualityIndicators:    r.QualityIndicators.Data(),
		FirstAttemptDuration: optionalDuration(r.FirstAttemptSeconds),
		LastAttemptDuration:  optionalDuration(r.LastAttemptSeconds),
		ImprovementRate:      r.ImprovementRate,
		CompletedAt:          r.CompletedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

// ToAttempts converts a slice of rows.
func ToAttempts(rows []*ActivityResult) []scoring.Attempt {
	out := make([]scoring.Attempt, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToAttempt())
	}
	return out
}

// ========== SURVEY MODELS ==========

// SurveyResult is the interest survey of one user. Retaking replaces it.
type SurveyResult struct {
	ID                uint                                             `gorm:"primaryKey" json:"id"`
	UserID            uint                                             `gorm:"uniqueIndex;not null" json:"user_id"`
	SelectedElective  scoring.Elective                                 `gorm:"size:50;not null" json:"selected_elective"`
	TraitScores       datatypes.JSONType[map[string]float64]           `json:"trait_scores"`
	ElectiveScores    datatypes.JSONType[map[scoring.Elective]float64] `json:"elective_scores"`
	TotalXP           int                                              `gorm:"default:0" json:"total_xp"`
	Level             int                                              `gorm:"default:1" json:"level"`
	CompletionSeconds *float64                                         `gorm:"index" json:"completion_time_seconds,omitempty"`
	QuestionsAnswered int                                              `gorm:"default:0" json:"questions_answered"`
	CompletedAt       time.Time                                        `gorm:"column:date_completed" json:"date_completed"`
	UpdatedAt         time.Time                                        `json:"updated_at"`
}

// ========== RECOMMENDATION MODELS ==========

// ElectiveRecommendation is the latest blended recommendation of a user.
type ElectiveRecommendation struct {
	ID                  uint                                             `gorm:"primaryKey" json:"id"`
	UserID              uint                                             `gorm:"uniqueIndex;not null" json:"user_id"`
	SurveyScores        datatypes.JSONType[map[scoring.Elective]float64] `json:"survey_scores"`
	SurveyWeight        float64                                          `gorm:"default:0.6" json:"survey_weight"`
	ActivityScores      datatypes.JSONType[map[scoring.Elective]float64] `json:"activity_scores"`
	ActivityWeight      float64                                          `gorm:"default:0.4" json:"activity_weight"`
	FinalScores         datatypes.JSONType[map[scoring.Elective]float64] `json:"final_scores"`
	RecommendedElective scoring.Elective                                 `gorm:"size:50;not null" json:"recommended_elective"`
	ConfidenceScore     float64                                          `json:"confidence_score"`
	Mode                string                                           `gorm:"size:20" json:"mode"`
	GeneratedAt         time.Time                                        `gorm:"column:date_generated" json:"date_generated"`
}

// Recommendation modes.
const (
	ModeBlended    = "blended"
	ModeSurveyOnly = "survey_only"
)

// ========== REQUEST/RESPONSE TYPES ==========

// SubmitAttemptRequest is one activity submission from the client.
type SubmitAttemptRequest struct {
	Elective              string                    `json:"elective" validate:"required,elective"`
	ActivityName          string                    `json:"activity_name" validate:"required,max=100"`
	CompletionTimeSeconds *float64                  `json:"completion_time_seconds" validate:"required,gte=0"`
	Completed             *bool                     `json:"completed,omitempty"` // defaults to true
	EngagementScore       float64                   `json:"engagement_score" validate:"gte=0,lte=100"`
	TotalInteractions     int                       `json:"total_interactions" validate:"gte=0"`
	InteractionRate       *float64                  `json:"interaction_rate,omitempty" validate:"omitempty,gte=0"`
	TimeEfficiency        *float64                  `json:"time_efficiency,omitempty" validate:"omitempty,gte=0,lte=100"`
	QualityIndicators     scoring.QualityIndicators `json:"quality_indicators,omitempty"`
	Attempts              int                       `json:"attempts" validate:"gte=0"`
}

// SubmitAttemptResponse reports the stored attempt and whether it was new.
type SubmitAttemptResponse struct {
	Result  *ActivityResult `json:"result"`
	Created bool            `json:"created"`
}

// SubmitSurveyRequest creates or replaces the caller's survey.
type SubmitSurveyRequest struct {
	SelectedElective      string             `json:"selected_elective" validate:"required,elective"`
	TraitScores           map[string]float64 `json:"trait_scores"`
	ElectiveScores        map[string]float64 `json:"elective_scores" validate:"required,min=1,dive,keys,elective,endkeys"`
	TotalXP               int                `json:"total_xp" validate:"gte=0"`
	Level                 int                `json:"level" validate:"gte=0"`
	CompletionTimeSeconds *float64           `json:"completion_time_seconds,omitempty" validate:"omitempty,gte=0"`
	QuestionsAnswered     int                `json:"questions_answered" validate:"gte=0"`
}

// SurveyLeaderboardEntry is one row of the survey leaderboard.
type SurveyLeaderboardEntry struct {
	Rank                  int              `json:"rank"`
	UserID                uint             `json:"user_id"`
	SelectedElective      scoring.Elective `json:"selected_elective"`
	TotalXP               int              `json:"total_xp"`
	Level                 int              `json:"level"`
	CompletionTimeSeconds float64          `json:"completion_time_seconds"`
	CompletionTimeDisplay string           `json:"completion_time_display"` // m:ss
	QuestionsAnswered     int              `json:"questions_answered"`
	CompletedAt           time.Time        `json:"date_completed"`
	IsCurrentUser         bool             `json:"is_current_user"`
}

// SurveyLeaderboardResponse returns ranked surveys.
type SurveyLeaderboardResponse struct {
	Entries   []*SurveyLeaderboardEntry `json:"entries"`
	UpdatedAt time.Time                 `json:"updated_at"`
}

// RecommendationBreakdown explains how the final scores were built.
type RecommendationBreakdown struct {
	SurveyScores     map[scoring.Elective]float64                 `json:"survey_scores"`
	ActivityScores   map[scoring.Elective]float64                 `json:"activity_scores"`
	SurveyWeight     float64                                      `json:"survey_weight"`
	ActivityWeight   float64                                      `json:"activity_weight"`
	ActivityAnalysis map[scoring.Elective]scoring.ElectiveSummary `json:"activity_analysis"`
}

// RecommendationResponse is returned by GET /recommendations.
type RecommendationResponse struct {
	RecommendedElective scoring.Elective             `json:"recommended_elective"`
	RecommendedName     string                       `json:"recommended_elective_name"`
	FinalScores         map[scoring.Elective]float64 `json:"final_scores"`
	Ranking             []scoring.RankedElective     `json:"ranking"`
	Breakdown           RecommendationBreakdown      `json:"breakdown"`
	ConfidenceScore     float64                      `json:"confidence_score"`
	Mode                string                       `json:"mode"`
	SelectedElective    scoring.Elective             `json:"selected_elective,omitempty"`
	ActivitiesCompleted int                          `json:"activities_completed"`
	GeneratedAt         time.Time                    `json:"date_generated"`
}

// AnalysisResponse is returned by GET /activities/analysis.
type AnalysisResponse struct {
	scoring.Analysis
	Message string `json:"message,omitempty"`
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func optionalDuration(s *float64) *time.Duration {
	if s == nil {
		return nil
	}
	d := secondsToDuration(*s)
	return &d
}

// DurationSeconds converts a duration to the stored representation.
func DurationSeconds(d time.Duration) float64 {
	return d.Seconds()
}
