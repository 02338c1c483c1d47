package ai

import (
	"regexp"
	"strings"

	"parser_server/core/domain"
)

// Labels may appear as prose ("Key Insights:") or as the camelCase keys of a
// truncated JSON reply ("keyInsights":).
var (
	typeLabel      = regexp.MustCompile(`(?i)contextual[ _]?type"?\s*:?\s*"?([^.\n"]+)`)
	insightsLabel  = regexp.MustCompile(`(?is)key[ _]?insights"?\s*:?\s*(.*?)(?:sentiment[ _]?analysis|urgency[ _]?level|suggested[ _]?actions|entity[ _]?recognition|$)`)
	sentimentLabel = regexp.MustCompile(`(?i)sentiment[ _]?analysis"?\s*:?\s*"?([^.\n"]+)`)
	urgencyLabel   = regexp.MustCompile(`(?i)urgency[ _]?level"?\s*:?\s*"?([^.\n"]+)`)
	actionsLabel   = regexp.MustCompile(`(?is)suggested[ _]?actions"?\s*:?\s*(.*?)(?:entity[ _]?recognition|$)`)

	listSplit  = regexp.MustCompile(`\n-|\n•|\n\d+\.`)
	listMarker = regexp.MustCompile(`^(?:[-•*]|\d+\.)\s*`)
)

// ExtractFromText recovers analysis fields from an unstructured reply. Each
// field keeps its default unless its label is found. Entities are never
// recovered here.
func ExtractFromText(text string) *domain.AnalysisResult {
	result := domain.NewAnalysisResult()

	if m := typeLabel.FindStringSubmatch(text); m != nil {
		if v := cleanValue(m[1]); v != "" {
			result.ContextualType = v
		}
	}
	if m := insightsLabel.FindStringSubmatch(text); m != nil {
		result.KeyInsights = splitList(m[1])
	}
	if m := sentimentLabel.FindStringSubmatch(text); m != nil {
		if v, ok := domain.ParseSentiment(cleanValue(m[1])); ok {
			result.SentimentAnalysis = v
		}
	}
	if m := urgencyLabel.FindStringSubmatch(text); m != nil {
		if v, ok := domain.ParseUrgency(cleanValue(m[1])); ok {
			result.UrgencyLevel = v
		}
	}
	if m := actionsLabel.FindStringSubmatch(text); m != nil {
		result.SuggestedActions = splitList(m[1])
	}

	return result
}

func splitList(section string) []string {
	out := []string{}
	for _, part := range listSplit.Split(section, -1) {
		item := strings.TrimSpace(listMarker.ReplaceAllString(strings.TrimSpace(part), ""))
		item = cleanValue(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// cleanValue drops markdown emphasis, quotes and JSON punctuation around a value.
func cleanValue(s string) string {
	return strings.Trim(strings.TrimSpace(s), " \t\r\n*\"'`:,[]{}")
}
