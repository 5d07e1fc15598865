package stats

import (
	"context"

	"github.com/verte-zerg/memospeak/internal/model"
	"github.com/verte-zerg/memospeak/internal/session"
	"github.com/verte-zerg/memospeak/internal/store"
)

// Report contains precomputed data for the session summary.
type Report struct {
	SessionID string
	Tally     session.Tally
	Scores    []int
	Segments  []model.SegmentSummary
}

// BuildReport loads the journal entries of one session.
func BuildReport(ctx context.Context, st *store.Store, sessionID string) (Report, error) {
	report := Report{SessionID: sessionID}
	if sessionID == "" {
		return report, nil
	}
	attempts, err := st.ListAttempts(ctx, sessionID)
	if err != nil {
		return Report{}, err
	}
	report.Scores = make([]int, len(attempts))
	for i, a := range attempts {
		report.Scores[i] = a.Score
		report.Tally.Attempts++
		if a.Success {
			report.Tally.Successes++
		}
	}
	segments, err := st.ListSegmentSummaries(ctx, sessionID)
	if err != nil {
		return Report{}, err
	}
	report.Segments = segments
	return report, nil
}
