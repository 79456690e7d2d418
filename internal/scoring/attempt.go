package scoring

import "time"

// Attempt is the current recorded submission of one activity by one user.
// At most one Attempt exists per (UserID, Elective, Activity); a retry replaces it.
type Attempt struct {
	UserID   uint
	Elective Elective
	Activity string

	Duration          time.Duration
	Completed         bool
	EngagementScore   float64 // 0-100
	TotalInteractions int
	InteractionRate   float64 // interactions per minute
	TimeEfficiency    float64 // 0-100
	QualityIndicators QualityIndicators
	Attempts          int

	// FirstAttemptDuration is nil for rows recorded before first-attempt tracking existed.
	FirstAttemptDuration *time.Duration
	LastAttemptDuration  *time.Duration
	ImprovementRate      float64 // signed percentage

	CompletedAt time.Time
	UpdatedAt   time.Time
}
