package ai

import (
	"fmt"
	"strings"

	"parser_server/core/domain"

	"github.com/goccy/go-json"
)

// ParseStructured decodes a backend reply into an AnalysisResult. Missing or
// mistyped fields fall back to per-field defaults; only a reply that is not a
// JSON object is rejected.
func ParseStructured(reply string) (*domain.AnalysisResult, error) {
	raw := stripCodeFence(reply)

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisParse, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: reply is not an object", ErrAnalysisParse)
	}

	result := &domain.AnalysisResult{
		ContextualType:    domain.ContextUnknown,
		KeyInsights:       stringList(fields["keyInsights"]),
		SentimentAnalysis: domain.SentimentNeutral,
		UrgencyLevel:      domain.UrgencyLow,
		SuggestedActions:  stringList(fields["suggestedActions"]),
		EntityRecognition: entities(fields["entityRecognition"]),
	}
	if s, ok := fields["contextualType"].(string); ok && strings.TrimSpace(s) != "" {
		result.ContextualType = strings.TrimSpace(s)
	}
	if s, ok := fields["sentimentAnalysis"].(string); ok {
		if v, ok := domain.ParseSentiment(cleanValue(s)); ok {
			result.SentimentAnalysis = v
		}
	}
	if s, ok := fields["urgencyLevel"].(string); ok {
		if v, ok := domain.ParseUrgency(cleanValue(s)); ok {
			result.UrgencyLevel = v
		}
	}
	return result, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// stringList keeps the string elements of an array; anything else is empty.
func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func entities(v any) domain.Entities {
	obj, ok := v.(map[string]any)
	if !ok {
		return domain.NewEntities()
	}
	e := make(domain.Entities, len(obj))
	for k, items := range obj {
		e[k] = stringList(items)
	}
	return e.Normalize()
}
