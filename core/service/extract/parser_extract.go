// Package extract implements deterministic pattern-based field extraction
// from raw email text.
package extract

import (
	"context"
	"regexp"
	"strings"

	"parser_server/core/domain"
	"parser_server/core/service/common"
	"parser_server/pkg/apperr"

	"github.com/samber/lo"
)

// =============================================================================
// Patterns
// =============================================================================

type headerField struct {
	name string
	re   *regexp.Regexp
	set  func(r *domain.ParseResult, v string)
}

func headerPattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + `:(.+?)(?:\r?\n|$)`)
}

var headerFields = []headerField{
	{"subject", headerPattern("Subject"), func(r *domain.ParseResult, v string) { r.Subject = v }},
	{"from", headerPattern("From"), func(r *domain.ParseResult, v string) { r.From = v }},
	{"to", headerPattern("To"), func(r *domain.ParseResult, v string) { r.To = v }},
	{"date", headerPattern("Date"), func(r *domain.ParseResult, v string) { r.Date = v }},
	{"cc", headerPattern("Cc"), func(r *domain.ParseResult, v string) { r.Cc = v }},
	{"bcc", headerPattern("Bcc"), func(r *domain.ParseResult, v string) { r.Bcc = v }},
	{"replyTo", headerPattern("Reply-To"), func(r *domain.ParseResult, v string) { r.ReplyTo = v }},
	{"messageId", headerPattern("Message-ID"), func(r *domain.ParseResult, v string) { r.MessageID = v }},
}

var (
	addressPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	urlPattern     = regexp.MustCompile(`https?://[^\s]+`)
	bodyPattern    = regexp.MustCompile(`(?s)\r?\n\r?\n(.*)`)

	codeTrigger = regexp.MustCompile(`(?i)code(?:\s+is)?\s*:|confirmation code`)
	// Stays on one line so a trailing "Code" header value cannot swallow the
	// next header name.
	codePattern = regexp.MustCompile(`(?i)\bcode\b(?:[ \t]+is)?:?[ \t]*([a-zA-Z0-9]{4,8})\b`)
)

// TypeRules classifies the coarse email type. Order is significant.
var TypeRules = common.RuleList[domain.EmailType]{
	Rules: []common.Rule[domain.EmailType]{
		{Name: "newsletter", Match: common.Pattern(common.Keywords("unsubscribe", "newsletter", "subscription")), Result: domain.EmailTypeNewsletter},
		{Name: "transaction", Match: common.Pattern(common.Keywords("invoice", "payment", "receipt")), Result: domain.EmailTypeTransaction},
		{Name: "verification", Match: common.Pattern(common.Keywords("confirm", "verification", "activate")), Result: domain.EmailTypeVerification},
		{Name: "password_reset", Match: common.Pattern(common.Keywords("password", "reset")), Result: domain.EmailTypePasswordReset},
	},
	Default: domain.EmailTypeGeneral,
}

// =============================================================================
// Extractor
// =============================================================================

// Extractor turns raw email text into a ParseResult.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Parse implements in.ParseService.
func (e *Extractor) Parse(_ context.Context, text string) (*domain.ParseResult, error) {
	return Parse(text)
}

// Parse extracts headers, addresses, URLs, type and verification code.
// Blank input yields apperr.EmptyInput and no result.
func Parse(text string) (*domain.ParseResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.EmptyInput()
	}

	result := &domain.ParseResult{}
	for _, f := range headerFields {
		f.set(result, Header(text, f.re))
	}

	result.EmailAddresses = joinOr(Addresses(text), domain.NoAddressesFound)
	result.URLs = joinOr(URLs(text), domain.NoURLsFound)
	result.Body = Body(text)
	result.Type = TypeRules.Evaluate(text)
	result.VerificationCode = VerificationCode(text)

	return result, nil
}

// Header returns the trimmed first match of a "Name: value" pattern, or
// domain.NotFound when the label is absent. A label followed only by
// whitespace yields "".
func Header(text string, re *regexp.Regexp) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return domain.NotFound
	}
	return strings.TrimSpace(m[1])
}

// Addresses returns every email address in text, deduplicated in
// first-occurrence order.
func Addresses(text string) []string {
	return lo.Uniq(addressPattern.FindAllString(text, -1))
}

// URLs returns every http(s) URL in text in order of appearance.
func URLs(text string) []string {
	return urlPattern.FindAllString(text, -1)
}

// Body returns everything after the first blank line, or the whole text when
// there is none.
func Body(text string) string {
	if m := bodyPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

// VerificationCode returns the first 4-8 character token following "code".
// It is only attempted when a code label is present.
func VerificationCode(text string) string {
	if !codeTrigger.MatchString(text) {
		return ""
	}
	m := codePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

func joinOr(values []string, sentinel string) string {
	if len(values) == 0 {
		return sentinel
	}
	return strings.Join(values, ", ")
}
