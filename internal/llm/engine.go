package llm

import (
	"fmt"
	"strings"

	"skillmatch/internal/catalog"
)

// Engine drives every model-backed stage: CV structuring, per-CV and batch
// recommendation, rule parsing, and chat. It owns no global state; the
// catalog handle is passed in by the orchestrator.
type Engine struct {
	llm     Completer
	catalog *catalog.Catalog
}

func NewEngine(llm Completer, cat *catalog.Catalog) *Engine {
	return &Engine{
		llm:     llm,
		catalog: cat,
	}
}

func languageInstruction(language string) string {
	if language == "ar" {
		return "Output the 'reason' field strictly in Arabic. Keep 'candidateName' and 'certName' in their original text."
	}
	return "Output the 'reason' field in English."
}

func formatRules(rules []string) string {
	if len(rules) == 0 {
		return "No specific business rules provided."
	}
	lines := make([]string, len(rules))
	for i, r := range rules {
		lines[i] = fmt.Sprintf("- %s", r)
	}
	return strings.Join(lines, "\n")
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
