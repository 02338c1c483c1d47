package domain

import "strings"

type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentUrgent   Sentiment = "Urgent"
)

var Sentiments = []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral, SentimentUrgent}

type Urgency string

const (
	UrgencyHigh   Urgency = "High"
	UrgencyMedium Urgency = "Medium"
	UrgencyLow    Urgency = "Low"
)

var Urgencies = []Urgency{UrgencyHigh, UrgencyMedium, UrgencyLow}

// Contextual types produced by the heuristic analyzer.
const (
	ContextShipping = "Shipping Notification"
	ContextOrder    = "Order Confirmation"
	ContextGeneral  = "General Communication"
	ContextUnknown  = "Unknown"
)

// Entity categories always present in an AnalysisResult.
const (
	EntityPeople        = "people"
	EntityOrganizations = "organizations"
	EntityLocations     = "locations"
	EntityDates         = "dates"
)

var EntityCategories = []string{EntityPeople, EntityOrganizations, EntityLocations, EntityDates}

// Entities maps an entity category to the values recognized for it.
type Entities map[string][]string

// NewEntities returns an Entities value with every category present and empty.
func NewEntities() Entities {
	e := make(Entities, len(EntityCategories))
	for _, c := range EntityCategories {
		e[c] = []string{}
	}
	return e
}

// Normalize fills in missing categories and replaces nil lists.
func (e Entities) Normalize() Entities {
	if e == nil {
		return NewEntities()
	}
	for _, c := range EntityCategories {
		if e[c] == nil {
			e[c] = []string{}
		}
	}
	return e
}

// AnalysisResult is the contextual analysis of an email.
type AnalysisResult struct {
	ContextualType    string    `json:"contextualType"`
	KeyInsights       []string  `json:"keyInsights"`
	SentimentAnalysis Sentiment `json:"sentimentAnalysis"`
	UrgencyLevel      Urgency   `json:"urgencyLevel"`
	SuggestedActions  []string  `json:"suggestedActions"`
	EntityRecognition Entities  `json:"entityRecognition"`
}

// NewAnalysisResult returns the shared defaults used before any extraction.
func NewAnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		ContextualType:    ContextGeneral,
		KeyInsights:       []string{},
		SentimentAnalysis: SentimentNeutral,
		UrgencyLevel:      UrgencyLow,
		SuggestedActions:  []string{},
		EntityRecognition: NewEntities(),
	}
}

// ParseSentiment maps free text onto the closed sentiment set. Values such as
// "positive - the sender is grateful" resolve by their leading label.
func ParseSentiment(s string) (Sentiment, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Sentiments {
		if strings.HasPrefix(v, strings.ToLower(string(c))) {
			return c, true
		}
	}
	return "", false
}

// ParseUrgency maps free text onto the closed urgency set.
func ParseUrgency(s string) (Urgency, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Urgencies {
		if strings.HasPrefix(v, strings.ToLower(string(c))) {
			return c, true
		}
	}
	return "", false
}

// AnalysisPath records which stage produced an AnalysisResult.
type AnalysisPath string

const (
	PathStructured   AnalysisPath = "structured"
	PathTextFallback AnalysisPath = "text_fallback"
	PathHeuristic    AnalysisPath = "heuristic"
)

// FallbackReason explains why the structured path was not taken.
type FallbackReason string

const (
	ReasonNone         FallbackReason = ""
	ReasonNoCredential FallbackReason = "no_credential"
	ReasonBackendError FallbackReason = "backend_error"
	ReasonParseError   FallbackReason = "parse_error"
)

// AnalysisOutcome is an AnalysisResult tagged with the path that produced it.
type AnalysisOutcome struct {
	Result *AnalysisResult `json:"result"`
	Path   AnalysisPath    `json:"path"`
	Reason FallbackReason  `json:"reason,omitempty"`
}

// Notice returns the informational message shown to the caller, if any.
// Only a missing credential is worth telling the user about.
func (o *AnalysisOutcome) Notice() string {
	if o.Reason == ReasonNoCredential {
		return "No AI credential configured; showing locally generated analysis"
	}
	return ""
}
