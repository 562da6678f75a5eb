package helper

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"skillmatch/pkg/types"
)

var (
	yearRe  = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	rangeRe = regexp.MustCompile(`(?i)\s*(?:[-–—]|\bto\b)+\s*`)
)

// ExtractYear finds the first four-digit year in a string.
func ExtractYear(s string) (int, bool) {
	match := yearRe.FindString(s)
	if match == "" {
		return 0, false
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return year, true
}

// YearsFromPeriod computes the span of a "2018 - 2023" style period string.
// "present"/"current" end markers resolve to the current year. Anything that
// does not look like a range yields 0.
func YearsFromPeriod(period string) int {
	if period == "" {
		return 0
	}
	parts := rangeRe.Split(period, -1)
	if len(parts) < 2 {
		return 0
	}

	start, ok := ExtractYear(strings.TrimSpace(parts[0]))
	if !ok {
		return 0
	}

	endPart := strings.ToLower(parts[1])
	end := 0
	if strings.Contains(endPart, "present") || strings.Contains(endPart, "current") {
		end = time.Now().Year()
	} else if y, ok := ExtractYear(strings.TrimSpace(parts[1])); ok {
		end = y
	}
	if end == 0 {
		return 0
	}
	if end < start {
		return 0
	}
	return end - start
}

// TotalExperience sums the year spans of all experience entries, rounded to
// one decimal place.
func TotalExperience(entries []types.ExperienceEntry) float64 {
	total := 0.0
	for _, exp := range entries {
		total += float64(YearsFromPeriod(exp.Period))
	}
	return math.Round(total*10) / 10
}

// SummarizeRecommendations renders the latest aggregate as plain text for
// grounding chat turns.
func SummarizeRecommendations(recs *types.RecommendationAggregate) string {
	if recs == nil || len(recs.Candidates) == 0 {
		return "No recommendations generated yet."
	}

	var lines []string
	for _, candidate := range recs.Candidates {
		name := candidate.CandidateName
		if name == "" {
			name = "Candidate"
		}
		lines = append(lines, fmt.Sprintf("Candidate: %s", name))
		for _, rec := range candidate.Recommendations {
			certName := rec.CertName
			if certName == "" {
				certName = "Certification"
			}
			reason := rec.Reason
			if reason == "" {
				reason = "Reason not provided"
			}
			if rec.CertID != "" {
				lines = append(lines, fmt.Sprintf("- %s [%s]: %s", certName, rec.CertID, reason))
			} else {
				lines = append(lines, fmt.Sprintf("- %s: %s", certName, reason))
			}
		}
		lines = append(lines, "")
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
