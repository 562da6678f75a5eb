package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"skillmatch/internal/helper"
	"skillmatch/pkg/types"
)

// BuildChatSystemPrompt assembles the assistant persona, the full catalog,
// and a CV-context block that changes depending on whether any CVs have been
// uploaded this session.
func (e *Engine) BuildChatSystemPrompt(cvCount int) string {
	catalogString := e.catalog.PromptString()

	var cvContext, uploadGuidance string
	if cvCount > 0 {
		cvContext = fmt.Sprintf("\n\n**Available CV Context:**\nThe user has uploaded %d CV(s). You can reference their experience, skills, and background when making recommendations.", cvCount)
		uploadGuidance = "The user has uploaded their CV, so you can provide personalized recommendations based on their actual experience, skills, and background."
	} else {
		cvContext = "\n\n**Note:** The user has not uploaded a CV yet. You can still answer general questions about certifications, but for personalized recommendations, encourage them to upload their CV."
		uploadGuidance = `When answering questions about certifications or courses:
- Always provide a helpful, informative answer first
- After your answer, naturally suggest uploading a CV for a detailed review and personalized recommendations
- Be friendly and encouraging, not pushy
- Only mention CV upload once per conversation unless they ask about it again`
	}

	return fmt.Sprintf(`%s

**Available Certifications Catalog:**
%s
%s

When recommending certifications, always:
1. Reference specific certifications from the catalog above by their exact name
2. Explain the match clearly and conversationally:
   - **Skills Alignment**: Mention specific skills from their background that match the certification requirements
   - **Experience Level**: Reference their years of experience if relevant
   - **Role Relevance**: Explain how the certification fits their current role or career goals
   - **Career Impact**: Describe what the certification enables or validates
3. Be conversational and natural - respond as if having a friendly, helpful discussion
4. If the user asks about certifications not in the catalog, acknowledge it and suggest similar ones from the catalog
5. When users ask casual questions like "what certifications should I get?", provide personalized recommendations with clear explanations

**IMPORTANT - CV Upload Encouragement:**
%s
`, strings.TrimSpace(chatSystemPromptBase), catalogString, cvContext, uploadGuidance)
}

// BuildChatContextMessage grounds a free-form user message with the current
// business rules and a summary of the latest recommendations.
func BuildChatContextMessage(userMessage string, rules []string, lastRecommendations *types.RecommendationAggregate) string {
	rulesText := "No explicit business rules provided."
	if len(rules) > 0 {
		lines := make([]string, len(rules))
		for i, r := range rules {
			lines[i] = fmt.Sprintf("%d. %s", i+1, r)
		}
		rulesText = strings.Join(lines, "\n")
	}

	return fmt.Sprintf(`%s

[Context]
Business rules:
%s

Latest recommendations:
%s`, userMessage, rulesText, helper.SummarizeRecommendations(lastRecommendations))
}

// Chat answers one conversational turn, grounded in the catalog, the session
// CVs, the rules, and the latest recommendation aggregate.
func (e *Engine) Chat(ctx context.Context, message string, history []types.ChatMessage, cvCount int, rules []string, lastRecommendations *types.RecommendationAggregate) (string, error) {
	logger := slog.With(
		"component", "llm",
		"operation", "chat",
	)
	logger.Info("starting chat turn", "history_length", len(history), "cv_count", cvCount)

	systemPrompt := e.BuildChatSystemPrompt(cvCount)
	contextMessage := BuildChatContextMessage(message, rules, lastRecommendations)

	reply, err := e.llm.Complete(ctx, contextMessage, history, systemPrompt)
	if err != nil {
		logger.Error("chat turn failed", "error", err)
		return "", fmt.Errorf("chat turn failed: %w", err)
	}

	logger.Info("chat turn completed", "reply_length", len(reply))
	return reply, nil
}
