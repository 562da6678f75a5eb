package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"skillmatch/internal/helper"
	pkgerrors "skillmatch/pkg/errors"
	"skillmatch/pkg/types"
)

const analysisFailedMessage = "Failed to generate recommendations."

const codeFence = "```"

// AnalyzeCv asks the model for certification recommendations for one CV and
// returns a fully normalized CandidateRecord. This stage never surfaces a
// parse failure: anything the recovery chain cannot turn into JSON becomes a
// valued error record, so one bad CV cannot abort the others. The only error
// returned is a transport-level failure from the completion backend.
func (e *Engine) AnalyzeCv(ctx context.Context, cv types.RawCv, rules []string, language string) (types.CandidateRecord, error) {
	logger := slog.With(
		"component", "llm",
		"operation", "analyze_cv",
		"cv", cv.Name,
	)
	logger.Info("starting cv analysis", "rules_count", len(rules), "language", language)

	prompt := fmt.Sprintf(`%s

**Catalog of Certifications:**
%s
%s

**Business Rules:**
%s

**CV to Analyze:**
--- CV Name: %s ---
%s

**Task:**
Provide recommendations for this specific candidate in strict JSON format.

**JSON Structure:**
{
  "candidateName": "Full Name Extracted from CV",
  "recommendations": [
    {
      "certId": "pmp",
      "certName": "Project Management Professional (PMP)",
      "reason": "Clear explanation of why this matches.",
      "rulesApplied": ["Rule 1"]
    }
  ]
}

**CRITICAL:** Respond ONLY with valid JSON. No markdown formatting.
`, strings.TrimSpace(analysisSystemPrompt), e.catalog.PromptString(), languageInstruction(language), formatRules(rules), cv.Name, cvPromptText(cv))

	startTime := time.Now()
	raw, err := e.llm.Complete(ctx, prompt, nil, "")
	if err != nil {
		logger.Error("cv analysis failed", "error", err, "duration_ms", time.Since(startTime).Milliseconds())
		return types.CandidateRecord{}, fmt.Errorf("cv analysis failed for %s: %w", cv.Name, err)
	}
	logger.Info("received LLM response",
		"duration_ms", time.Since(startTime).Milliseconds(),
		"response_length", len(raw))

	recovered, ok := clean.RecoverObject(strings.TrimSpace(raw))
	if !ok || !gjson.Valid(recovered) {
		logger.Error("JSON recovery failed", "content_preview", preview(recovered, 200))
		return errorRecord(cv.Name), nil
	}

	record := normalizeCandidate(gjson.Parse(recovered), cv.Name)
	logger.Info("cv analysis completed",
		"candidate", record.CandidateName,
		"recommendations_count", len(record.Recommendations))
	return record, nil
}

// AnalyzeCvs is the batch variant: one request covering every CV, expecting a
// "candidates" array back. Unlike AnalyzeCv it DOES return an error when the
// aggregate JSON cannot be parsed — the batch caller owns user-visible
// messaging for an all-or-nothing request, while the per-CV path isolates
// failures into records. Keep this asymmetry.
func (e *Engine) AnalyzeCvs(ctx context.Context, cvs []types.RawCv, rules []string, language string) (*types.RecommendationAggregate, error) {
	logger := slog.With(
		"component", "llm",
		"operation", "analyze_cvs",
	)
	logger.Info("starting batch analysis", "cv_count", len(cvs), "rules_count", len(rules))

	var cvBlocks []string
	for _, cv := range cvs {
		cvBlocks = append(cvBlocks, fmt.Sprintf("--- CV for: %s ---\n%s", cv.Name, cvPromptText(cv)))
	}

	prompt := fmt.Sprintf(`%s

**Catalog of Certifications:**
%s
%s
**Business Rules:**
%s

**CVs to Analyze:**
%s

**Task:**
For each CV, provide recommendations in a structured JSON format. The JSON must be an object with a "candidates" field, where each candidate is an object.

**JSON Structure:**
{
  "candidates": [
    {
      "candidateName": "Full Name of Candidate",
      "recommendations": [
        {
          "certId": "pmp",
          "certName": "Project Management Professional (PMP)",
          "reason": "Clear explanation of why this certification is relevant.",
          "rulesApplied": ["List of rules that influenced this recommendation"]
        }
      ]
    }
  ]
}

**CRITICAL INSTRUCTIONS:**
- You MUST respond with ONLY a valid JSON object. Nothing else.
- Do NOT include any introductory text, explanations, comments, or markdown formatting.
- Do NOT wrap the JSON in code blocks like %sjson or %s.
- Do NOT add any text before or after the JSON object.
- Start your response with { and end with }.
- The entire response must be parseable as JSON without any modifications.
- If no recommendations can be made for a candidate, provide an empty array [] for their "recommendations" field.

**Example of correct response format:**
{"candidates":[{"candidateName":"John Doe","recommendations":[]}]}

Begin your response now with the JSON object only:
`, strings.TrimSpace(analysisSystemPrompt), e.catalog.PromptString(), languageInstruction(language),
		formatRules(rules), strings.Join(cvBlocks, "\n\n"), codeFence, codeFence)

	startTime := time.Now()
	raw, err := e.llm.Complete(ctx, prompt, nil, "")
	if err != nil {
		logger.Error("batch analysis failed", "error", err, "duration_ms", time.Since(startTime).Milliseconds())
		return nil, fmt.Errorf("batch analysis failed: %w", err)
	}
	logger.Info("received LLM response",
		"duration_ms", time.Since(startTime).Milliseconds(),
		"response_length", len(raw))

	// Batch recovery is deliberately the lax path only: fences off, then the
	// first/last brace slice.
	cleaned := clean.CleanResponse(strings.TrimSpace(raw))
	if sliced, ok := clean.SliceObject(cleaned); ok {
		cleaned = sliced
	}

	var aggregate types.RecommendationAggregate
	if err := json.Unmarshal([]byte(cleaned), &aggregate); err != nil {
		logger.Error("JSON parsing failed", "error", err, "content_preview", preview(cleaned, 500))
		return nil, &pkgerrors.UnparsableResponseError{Stage: "batch analysis", Preview: preview(cleaned, 200), Err: err}
	}

	for i := range aggregate.Candidates {
		if aggregate.Candidates[i].Recommendations == nil {
			aggregate.Candidates[i].Recommendations = []types.RecommendationItem{}
		}
		for j := range aggregate.Candidates[i].Recommendations {
			if aggregate.Candidates[i].Recommendations[j].RulesApplied == nil {
				aggregate.Candidates[i].Recommendations[j].RulesApplied = []string{}
			}
		}
	}
	if aggregate.Candidates == nil {
		aggregate.Candidates = []types.CandidateRecord{}
	}

	logger.Info("batch analysis completed", "candidates_count", len(aggregate.Candidates))
	return &aggregate, nil
}

// cvPromptText appends a short parsed summary when structuring has already
// run, giving the model the computed experience total up front.
func cvPromptText(cv types.RawCv) string {
	if cv.Structured == nil {
		return cv.Text
	}
	years := helper.TotalExperience(cv.Structured.Experience)
	if years <= 0 {
		return cv.Text
	}
	return fmt.Sprintf("%s\n\n(Parsed summary: ~%.1f years of total experience, %d listed skills)",
		cv.Text, years, len(cv.Structured.Skills))
}

func errorRecord(cvName string) types.CandidateRecord {
	return types.CandidateRecord{
		CandidateName:   cvName,
		CvName:          cvName,
		Recommendations: []types.RecommendationItem{},
		Error:           analysisFailedMessage,
	}
}

// normalizeCandidate coerces whatever JSON shape the model produced into the
// typed record. Every field goes through gjson so a wrong-typed or missing
// value degrades to its zero form instead of breaking downstream code.
func normalizeCandidate(parsed gjson.Result, cvName string) types.CandidateRecord {
	record := types.CandidateRecord{
		CandidateName:   parsed.Get("candidateName").String(),
		CvName:          cvName,
		Recommendations: []types.RecommendationItem{},
	}
	if record.CandidateName == "" {
		record.CandidateName = cvName
	}

	for _, rec := range parsed.Get("recommendations").Array() {
		item := types.RecommendationItem{
			CertID:       rec.Get("certId").String(),
			CertName:     rec.Get("certName").String(),
			Reason:       rec.Get("reason").String(),
			RulesApplied: []string{},
		}
		for _, rule := range rec.Get("rulesApplied").Array() {
			if s := rule.String(); s != "" {
				item.RulesApplied = append(item.RulesApplied, s)
			}
		}
		if item.CertID == "" && item.CertName == "" {
			continue
		}
		record.Recommendations = append(record.Recommendations, item)
	}
	return record
}
