package usecase

import (
	"github.com/montanaflynn/stats"

	"github.com/flyt-tools/teamstats/internal/domain"
)

// Summary holds the team-wide aggregates printed under the report table.
type Summary struct {
	TotalCommits  int
	TotalPRs      int
	TotalReviews  int
	TotalComments int
	MostActive    string

	AvgReviewsPerMember  float64
	AvgCommentsPerMember float64
	AvgPRDurationHours   float64
	AvgPREngagement      float64
}

// Summarize computes totals and per-member averages from a scored member
// list. The list is expected sorted descending by score, so the first entry
// is the most active member.
func Summarize(members []domain.MemberStats) Summary {
	var s Summary
	if len(members) == 0 {
		return s
	}
	s.MostActive = members[0].Username

	reviews := make([]float64, len(members))
	comments := make([]float64, len(members))
	durations := make([]float64, len(members))
	engagements := make([]float64, len(members))
	for i, m := range members {
		s.TotalCommits += m.CommitCount
		s.TotalPRs += m.PRCount
		s.TotalReviews += m.ReviewsGiven
		s.TotalComments += m.TotalComments
		reviews[i] = float64(m.ReviewsGiven)
		comments[i] = float64(m.TotalComments)
		durations[i] = m.AvgPRDurationHours
		engagements[i] = m.AvgPREngagement
	}

	// stats.Mean only errors on empty input, which is excluded above.
	s.AvgReviewsPerMember, _ = stats.Mean(reviews)
	s.AvgCommentsPerMember, _ = stats.Mean(comments)
	s.AvgPRDurationHours, _ = stats.Mean(durations)
	s.AvgPREngagement, _ = stats.Mean(engagements)
	return s
}
