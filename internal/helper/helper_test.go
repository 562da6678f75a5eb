package helper

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"skillmatch/pkg/types"
)

func TestExtractYear(t *testing.T) {
	year, ok := ExtractYear("March 2019")
	assert.True(t, ok)
	assert.Equal(t, 2019, year)

	_, ok = ExtractYear("no year here")
	assert.False(t, ok)

	// 3019 is out of the recognized range.
	_, ok = ExtractYear("year 3019")
	assert.False(t, ok)
}

func TestYearsFromPeriod(t *testing.T) {
	now := time.Now().Year()

	tests := []struct {
		period string
		want   int
	}{
		{"2018 - 2023", 5},
		{"2019 - Present", now - 2019},
		{"2020 to Current", now - 2020},
		{"Jan 2015 to Dec 2020", 5},
		{"2018 – 2021", 3},
		{"2018", 0},
		{"", 0},
		{"garbage - nonsense", 0},
		{"2023 - 2019", 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.period), func(t *testing.T) {
			assert.Equal(t, tt.want, YearsFromPeriod(tt.period))
		})
	}
}

func TestTotalExperience(t *testing.T) {
	entries := []types.ExperienceEntry{
		{Period: "2015 - 2018"},
		{Period: "2018 - 2023"},
		{Period: "not a range"},
	}
	assert.Equal(t, 8.0, TotalExperience(entries))
	assert.Equal(t, 0.0, TotalExperience(nil))
}

func TestSummarizeRecommendations(t *testing.T) {
	t.Run("empty aggregate", func(t *testing.T) {
		assert.Equal(t, "No recommendations generated yet.", SummarizeRecommendations(nil))
		assert.Equal(t, "No recommendations generated yet.", SummarizeRecommendations(&types.RecommendationAggregate{}))
	})

	t.Run("renders candidates with fallbacks", func(t *testing.T) {
		agg := &types.RecommendationAggregate{Candidates: []types.CandidateRecord{
			{
				CandidateName: "Jane Doe",
				Recommendations: []types.RecommendationItem{
					{CertID: "cert_1_pmp", CertName: "PMP", Reason: "Delivery background"},
					{CertName: "ITIL Foundation"},
				},
			},
			{CvName: "b.pdf"},
		}}

		got := SummarizeRecommendations(agg)
		assert.Contains(t, got, "Candidate: Jane Doe")
		assert.Contains(t, got, "- PMP [cert_1_pmp]: Delivery background")
		assert.Contains(t, got, "- ITIL Foundation: Reason not provided")
		assert.Contains(t, got, "Candidate: Candidate")
	})
}
