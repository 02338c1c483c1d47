package domain

// Sentinels used when an extraction finds nothing.
const (
	NotFound            = "Not found"
	NoURLsFound         = "No URLs found"
	NoAddressesFound    = "No email addresses found"
	NotSpecified        = "Not specified"
	UnknownCarrier      = "Unknown"
	ItemsNotSpecified   = "Items not specified"
	PaymentNotSpecified = "Payment method not specified"
)

// EmailType is the coarse keyword classification of a raw email.
type EmailType string

const (
	EmailTypeNewsletter    EmailType = "Newsletter/Promotional"
	EmailTypeTransaction   EmailType = "Transaction/Receipt"
	EmailTypeVerification  EmailType = "Account Verification"
	EmailTypePasswordReset EmailType = "Password Reset"
	EmailTypeGeneral       EmailType = "General Correspondence"
)

// EmailTypes lists the closed set of type labels.
var EmailTypes = []EmailType{
	EmailTypeNewsletter,
	EmailTypeTransaction,
	EmailTypeVerification,
	EmailTypePasswordReset,
	EmailTypeGeneral,
}

// RawEmail is caller supplied text with no assumed structure.
type RawEmail string

// ParseResult is the outcome of basic field extraction. Every header field
// holds either the extracted value or NotFound.
type ParseResult struct {
	Subject          string    `json:"subject"`
	From             string    `json:"from"`
	To               string    `json:"to"`
	Date             string    `json:"date"`
	Cc               string    `json:"cc"`
	Bcc              string    `json:"bcc"`
	ReplyTo          string    `json:"replyTo"`
	MessageID        string    `json:"messageId"`
	URLs             string    `json:"urls"`
	EmailAddresses   string    `json:"emailAddresses"`
	Type             EmailType `json:"type"`
	VerificationCode string    `json:"verificationCode,omitempty"`

	// Body is computed but not emitted.
	Body string `json:"-"`
}

// HasVerificationCode reports whether a code was extracted.
func (r *ParseResult) HasVerificationCode() bool {
	return r.VerificationCode != ""
}
