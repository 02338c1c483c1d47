// Package heuristic synthesizes an analysis result from keyword and pattern
// heuristics. It is the fallback of last resort and never fails.
package heuristic

import (
	"fmt"
	"regexp"
	"strings"

	"parser_server/core/domain"
	"parser_server/core/service/common"
)

// =============================================================================
// Rule Cascades
// =============================================================================

type category int

const (
	categoryGeneral category = iota
	categoryShipping
	categoryOrder
)

// CategoryRules decides the email category. Shipping shadows order.
var CategoryRules = common.RuleList[category]{
	Rules: []common.Rule[category]{
		{Name: "shipping", Match: common.ContainsAny("ship", "track", "package", "delivery", "ups", "fedex", "usps"), Result: categoryShipping},
		{Name: "order", Match: common.ContainsAny("order", "purchase", "confirmation", "receipt", "invoice"), Result: categoryOrder},
	},
	Default: categoryGeneral,
}

// Tone is a sentiment and the urgency it implies.
type Tone struct {
	Sentiment domain.Sentiment
	Urgency   domain.Urgency
}

var ToneRules = common.RuleList[Tone]{
	Rules: []common.Rule[Tone]{
		{Name: "urgent", Match: common.ContainsAny("urgent", "immediately", "asap"), Result: Tone{domain.SentimentUrgent, domain.UrgencyHigh}},
		{Name: "negative", Match: common.ContainsAny("problem", "issue", "concern", "sorry"), Result: Tone{domain.SentimentNegative, domain.UrgencyMedium}},
		{Name: "positive", Match: common.ContainsAny("thank", "appreciate", "happy", "pleased"), Result: Tone{domain.SentimentPositive, domain.UrgencyLow}},
	},
	Default: Tone{domain.SentimentNeutral, domain.UrgencyLow},
}

var CarrierRules = common.RuleList[string]{
	Rules: []common.Rule[string]{
		{Name: "ups", Match: common.ContainsAny("ups"), Result: "UPS"},
		{Name: "fedex", Match: common.ContainsAny("fedex"), Result: "FedEx"},
		{Name: "usps", Match: common.ContainsAny("usps"), Result: "USPS"},
		{Name: "dhl", Match: common.ContainsAny("dhl"), Result: "DHL"},
	},
	Default: domain.UnknownCarrier,
}

// =============================================================================
// Patterns
// =============================================================================

var (
	labelledTracking = regexp.MustCompile(`(?i:\btracking\s+(?:number|#)?\s*(?:is\s*)?:?)\s*([A-Za-z0-9]{8,22})\b`)
	bareTracking     = regexp.MustCompile(`\b[A-Z0-9]{8,22}\b`)

	deliveryDate = regexp.MustCompile(`(?i)\b(?:delivery|delivered|arrive|arrival|expected)(?:\s+(?:date|on|by))?\s*:?\s*([A-Za-z]+\s+\d{1,2}(?:st|nd|rd|th)?,?\s*\d{4}|\d{1,2}/\d{1,2}/\d{2,4}|\d{1,2}-\d{1,2}-\d{2,4})`)
	orderNumber  = regexp.MustCompile(`(?i)\border\s*(?:number|#)?\s*:?\s*#?\s*([A-Z0-9][A-Z0-9-]{4,24})`)
	price        = regexp.MustCompile(`(?i)\$\d+\.\d{2}|\$\d+(?:\.\d{2})?|\d+\.\d{2}\s*(?:USD|EUR|GBP)`)
	item         = regexp.MustCompile(`(?i)(\d+[ \t]*x[ \t]*[A-Za-z0-9 \t-]+)|\b([A-Za-z0-9 \t-]+(?:headphone|cable|charger|phone|laptop|watch|camera)[A-Za-z0-9 \t-]*)`)
	payment      = regexp.MustCompile(`(?i)\b(?:visa|mastercard|amex|paypal|credit card|debit card)\b`)

	mentionedDate = regexp.MustCompile(`(?i)\b\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\b|\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]* \d{1,2}(?:st|nd|rd|th)?,? \d{2,4}\b`)
	money         = regexp.MustCompile(`(?i)\$\d+(?:\.\d{2})?|\d+(?:\.\d{2})?\s*(?:usd|eur|gbp)`)
	link          = regexp.MustCompile(`(?i)https?://[^\s]+`)

	organization = regexp.MustCompile(`[A-Z][a-z]*(?:\s[A-Z][a-z]+)+\s(?:Inc\.|Corp\.|LLC|Ltd\.)|(?:Amazon|UPS|FedEx|USPS|DHL|Apple|Microsoft|Google)`)

	hasDigit = regexp.MustCompile(`[0-9]`)
)

var (
	shippingActions = []string{
		"Track your package using the provided tracking number",
		"Mark your calendar for the estimated delivery date",
		"Ensure someone will be available to receive the package",
	}
	orderActions = []string{
		"Review your order details to ensure everything is correct",
		"Save the order confirmation for your records",
		"Contact customer service if any items are missing or incorrect",
	}
	generalActions = []string{
		"Read the email carefully and note any important information",
		"Respond if a reply is requested or needed",
		"Archive for future reference",
	}
)

// =============================================================================
// Simulate
// =============================================================================

// Analyzer is the heuristic analysis stage.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Simulate runs the heuristic analysis.
func (a *Analyzer) Simulate(text string) *domain.AnalysisResult {
	return Simulate(text)
}

// Simulate builds an AnalysisResult from keyword and pattern heuristics.
// It always returns exactly three insights and three suggested actions.
func Simulate(text string) *domain.AnalysisResult {
	result := domain.NewAnalysisResult()

	switch CategoryRules.Evaluate(text) {
	case categoryShipping:
		result.ContextualType = domain.ContextShipping
		result.KeyInsights = shippingInsights(text)
		result.SuggestedActions = clone(shippingActions)
	case categoryOrder:
		result.ContextualType = domain.ContextOrder
		result.KeyInsights = orderInsights(text)
		result.SuggestedActions = clone(orderActions)
	default:
		result.ContextualType = domain.ContextGeneral
		result.KeyInsights = generalInsights(text)
		result.SuggestedActions = clone(generalActions)
	}

	tone := ToneRules.Evaluate(text)
	result.SentimentAnalysis = tone.Sentiment
	result.UrgencyLevel = tone.Urgency

	result.EntityRecognition[domain.EntityOrganizations] = Organizations(text)
	result.EntityRecognition[domain.EntityDates] = Dates(text)

	return result
}

func shippingInsights(text string) []string {
	return []string{
		fmt.Sprintf("Your package is being shipped by %s with tracking number %s. Estimated delivery date: %s.",
			CarrierRules.Evaluate(text), TrackingNumber(text), DeliveryDate(text)),
		fmt.Sprintf("Order #%s includes %s. Total order value: %s.",
			OrderNumber(text), Item(text), Price(text)),
		"The package is currently in transit from the warehouse to your delivery address. You will receive a notification when it's out for delivery.",
	}
}

func orderInsights(text string) []string {
	return []string{
		fmt.Sprintf("Order #%s has been confirmed and is being processed. Your order includes %s.",
			OrderNumber(text), Item(text)),
		fmt.Sprintf("Total order amount: %s, paid via %s. A receipt has been sent to your email address.",
			Price(text), PaymentMethod(text)),
		"Your order will be processed within 1-2 business days and you'll receive a shipping confirmation when it ships.",
	}
}

func generalInsights(text string) []string {
	dates := Dates(text)
	amounts := money.FindAllString(text, -1)
	links := link.FindAllString(text, -1)

	datePart := "no specific dates mentioned"
	if len(dates) > 0 {
		datePart = "dates mentioned: " + dates[0]
	}
	moneyPart := "No financial amounts mentioned"
	if len(amounts) > 0 {
		moneyPart = "Financial amounts mentioned: " + strings.Join(amounts, ", ")
	}
	linkPart := "No links found"
	if len(links) > 0 {
		linkPart = "Contains links: " + links[0]
	}

	return []string{
		fmt.Sprintf("This appears to be a general communication email with %s.", datePart),
		fmt.Sprintf("%s in this communication.", moneyPart),
		fmt.Sprintf("%s in the email content.", linkPart),
	}
}

// =============================================================================
// Field Extractors
// =============================================================================

// TrackingNumber prefers a token labelled "tracking number", then the first
// standalone uppercase token of 8-22 characters containing a digit.
func TrackingNumber(text string) string {
	for _, m := range labelledTracking.FindAllStringSubmatch(text, -1) {
		if hasDigit.MatchString(m[1]) {
			return m[1]
		}
	}
	for _, tok := range bareTracking.FindAllString(text, -1) {
		if hasDigit.MatchString(tok) {
			return tok
		}
	}
	return domain.NotFound
}

func DeliveryDate(text string) string {
	if m := deliveryDate.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return domain.NotSpecified
}

// OrderNumber skips words such as "Order Confirmation" that carry no digit.
func OrderNumber(text string) string {
	for _, m := range orderNumber.FindAllStringSubmatch(text, -1) {
		if hasDigit.MatchString(m[1]) {
			return m[1]
		}
	}
	return domain.NotFound
}

func Price(text string) string {
	if m := price.FindString(text); m != "" {
		return m
	}
	return domain.NotSpecified
}

func Item(text string) string {
	if m := strings.Trim(item.FindString(text), " \t-"); m != "" {
		return m
	}
	return domain.ItemsNotSpecified
}

func PaymentMethod(text string) string {
	if m := payment.FindString(text); m != "" {
		return m
	}
	return domain.PaymentNotSpecified
}

// Organizations returns "Name Inc."-style names and known brands, one entry
// per occurrence.
func Organizations(text string) []string {
	return orDefault(organization.FindAllString(text, -1))
}

func Dates(text string) []string {
	return orDefault(mentionedDate.FindAllString(text, -1))
}

func orDefault(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
