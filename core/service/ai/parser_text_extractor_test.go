package ai

import (
	"testing"

	"parser_server/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestExtractFromTextDefaults(t *testing.T) {
	assert.Equal(t, domain.NewAnalysisResult(), ExtractFromText("the model said nothing useful"))
}

func TestExtractFromTextLabels(t *testing.T) {
	reply := `Here is my analysis.

**Contextual Type:** Shipping Notification
**Key Insights:**
1. Package shipped via UPS
2. Arrives April 26
**Sentiment Analysis:** Positive. The tone is friendly
**Urgency Level:** Low
**Suggested Actions:**
- Track the package
- Be home on delivery day
**Entity Recognition:** Amazon`

	r := ExtractFromText(reply)
	assert.Equal(t, "Shipping Notification", r.ContextualType)
	assert.Equal(t, []string{"Package shipped via UPS", "Arrives April 26"}, r.KeyInsights)
	assert.Equal(t, domain.SentimentPositive, r.SentimentAnalysis)
	assert.Equal(t, domain.UrgencyLow, r.UrgencyLevel)
	assert.Equal(t, []string{"Track the package", "Be home on delivery day"}, r.SuggestedActions)
	assert.Equal(t, domain.NewEntities(), r.EntityRecognition)
}

func TestExtractFromTruncatedJSON(t *testing.T) {
	reply := `{"contextualType": "Newsletter", "sentimentAnalysis": "Neutral", "urgencyLevel": "High", "keyInsi`
	r := ExtractFromText(reply)
	assert.Equal(t, "Newsletter", r.ContextualType)
	assert.Equal(t, domain.SentimentNeutral, r.SentimentAnalysis)
	assert.Equal(t, domain.UrgencyHigh, r.UrgencyLevel)
}

func TestExtractFromTextUnknownSentimentKeepsDefault(t *testing.T) {
	r := ExtractFromText("Sentiment Analysis: Mixed\nUrgency Level: Whenever")
	assert.Equal(t, domain.SentimentNeutral, r.SentimentAnalysis)
	assert.Equal(t, domain.UrgencyLow, r.UrgencyLevel)
}
