package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func durationPtr(d time.Duration) *time.Duration { return &d }

func TestReconcile_FirstSubmission(t *testing.T) {
	for _, d := range []time.Duration{0, time.Second, 4 * time.Minute, 3 * time.Hour} {
		for _, engagement := range []float64{0, 55, 100} {
			got := Reconcile(nil, d, engagement)
			assert.Equal(t, Improvement{FirstDuration: d, LastDuration: d, Rate: 0}, got)
		}
	}
}

func TestReconcile_Retry(t *testing.T) {
	tests := []struct {
		name          string
		existing      Attempt
		newDuration   time.Duration
		newEngagement float64
		expectedFirst time.Duration
		expectedRate  float64
	}{
		{
			name:          "faster and more engaged",
			existing:      Attempt{Duration: 200 * time.Second, EngagementScore: 60, FirstAttemptDuration: durationPtr(300 * time.Second)},
			newDuration:   100 * time.Second,
			newEngagement: 80,
			expectedFirst: 300 * time.Second,
			expectedRate:  0.5*50 + 0.5*20,
		},
		{
			name:          "slower counts against time",
			existing:      Attempt{Duration: 100 * time.Second, EngagementScore: 50, FirstAttemptDuration: durationPtr(100 * time.Second)},
			newDuration:   150 * time.Second,
			newEngagement: 50,
			expectedFirst: 100 * time.Second,
			expectedRate:  -25,
		},
		{
			name:          "engagement drop is not penalized",
			existing:      Attempt{Duration: 120 * time.Second, EngagementScore: 90, FirstAttemptDuration: durationPtr(120 * time.Second)},
			newDuration:   120 * time.Second,
			newEngagement: 10,
			expectedFirst: 120 * time.Second,
			expectedRate:  0,
		},
		{
			name:          "legacy row without first attempt falls back to completion time",
			existing:      Attempt{Duration: 80 * time.Second, EngagementScore: 40},
			newDuration:   40 * time.Second,
			newEngagement: 40,
			expectedFirst: 80 * time.Second,
			expectedRate:  25,
		},
		{
			name:          "zero previous duration is guarded",
			existing:      Attempt{Duration: 0, EngagementScore: 30},
			newDuration:   60 * time.Second,
			newEngagement: 50,
			expectedFirst: 0,
			expectedRate:  10,
		},
		{
			name:          "negative previous duration is guarded",
			existing:      Attempt{Duration: -time.Minute, EngagementScore: 30},
			newDuration:   60 * time.Second,
			newEngagement: 30,
			expectedFirst: -time.Minute,
			expectedRate:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := tt.existing
			got := Reconcile(&existing, tt.newDuration, tt.newEngagement)
			assert.Equal(t, tt.expectedFirst, got.FirstDuration)
			assert.Equal(t, tt.newDuration, got.LastDuration)
			assert.InDelta(t, tt.expectedRate, got.Rate, 1e-9)
		})
	}
}
