package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	pkgerrors "skillmatch/pkg/errors"
)

// ParseRules turns free-form business-rule text into a clean list of rule
// sentences. Like the batch path, an unparsable response propagates as an
// error: rules are whole-batch input, there is no per-unit slot to absorb a
// failure into.
func (e *Engine) ParseRules(ctx context.Context, rulesText string) ([]string, error) {
	logger := slog.With(
		"component", "llm",
		"operation", "parse_rules",
	)
	logger.Info("starting rule parsing", "text_length", len(rulesText))

	prompt := fmt.Sprintf(`%s

User's rules:
%s

Remember:
- Respond with ONLY a JSON array of strings.
- No extra commentary or formatting.
`, strings.TrimSpace(rulesSystemPrompt), rulesText)

	raw, err := e.llm.Complete(ctx, prompt, nil, "")
	if err != nil {
		logger.Error("rule parsing failed", "error", err)
		return nil, fmt.Errorf("rule parsing failed: %w", err)
	}

	cleaned := clean.CleanResponse(raw)

	var rules []string
	if err := json.Unmarshal([]byte(cleaned), &rules); err != nil {
		logger.Error("JSON parsing failed", "error", err, "content_preview", preview(cleaned, 200))
		return nil, &pkgerrors.UnparsableResponseError{Stage: "rule parsing", Preview: preview(cleaned, 200), Err: err}
	}

	logger.Info("rule parsing completed", "rules_count", len(rules))
	return rules, nil
}
