package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"skillmatch/pkg/types"
)

// StructureCv converts raw CV text into the fixed multi-section schema.
// Transport failures are returned as errors; a response that cannot be parsed
// as JSON yields (nil, nil) after logging enough detail for operators — the
// caller treats nil as "structuring produced nothing" and moves on.
func (e *Engine) StructureCv(ctx context.Context, rawText string) (*types.StructuredCv, error) {
	logger := slog.With(
		"component", "llm",
		"operation", "structure_cv",
	)
	logger.Info("starting cv structuring", "text_length", len(rawText))

	prompt := fmt.Sprintf(`%s

CV Text to parse:
---
%s
---

Return the JSON object only, no other text.
`, strings.TrimSpace(cvParserSystemPrompt), rawText)

	startTime := time.Now()
	content, err := e.llm.Complete(ctx, prompt, nil, "")
	if err != nil {
		logger.Error("cv structuring failed", "error", err, "duration_ms", time.Since(startTime).Milliseconds())
		return nil, fmt.Errorf("cv structuring failed: %w", err)
	}
	logger.Info("received LLM response",
		"duration_ms", time.Since(startTime).Milliseconds(),
		"response_length", len(content))

	cleaned := clean.CleanResponse(content)

	var structured types.StructuredCv
	if err := json.Unmarshal([]byte(cleaned), &structured); err != nil {
		logger.Error("JSON parsing failed", "error", err, "content_preview", preview(cleaned, 200))
		return nil, nil
	}
	structured.Normalize()

	logger.Info("cv structuring completed",
		"experience_count", len(structured.Experience),
		"education_count", len(structured.Education),
		"certification_count", len(structured.Certifications),
		"skill_count", len(structured.Skills))

	return &structured, nil
}
