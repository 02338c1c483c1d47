// Package mock provides a mailbox that serves fixed demo messages.
package mock

import (
	"context"
	"time"

	"parser_server/core/domain"
)

// DefaultDelay simulates the latency of a real mailbox.
const DefaultDelay = time.Second

type fixture struct {
	ID        string
	Subject   string
	From      string
	Age       time.Duration
	Preview   string
	Important bool

	Body string
}

var fixtures = []fixture{
	{
		ID:        "mock-email-1",
		Subject:   "Your Flight Confirmation - NYC to SFO",
		From:      "American Airlines <reservations@aa.com>",
		Age:       24 * time.Hour,
		Preview:   "Thank you for booking your flight with American Airlines. Your confirmation code is: AA123456",
		Important: true,

		Body: `Dear Passenger,

Thank you for booking your flight with American Airlines.

Flight Details:
- Confirmation Code: AA123456
- Flight: AA 1234
- Date: June 15, 2023
- Departure: JFK 10:30 AM
- Arrival: SFO 1:45 PM
- Passenger: John Doe
- Seat: 14A (Economy Plus)

Please arrive at the airport at least 2 hours before your scheduled departure.
You can check in online 24 hours before your flight at aa.com.

Thank you for choosing American Airlines.`,
	},
	{
		ID:        "mock-email-2",
		Subject:   "Urgent: Security Alert - Password Reset Required",
		From:      "Apple Security <no-reply@apple.com>",
		Age:       1 * time.Hour,
		Preview:   "We detected unusual activity on your Apple ID. Please reset your password immediately.",
		Important: true,

		Body: `Dear Customer,

We detected unusual sign-in activity on your Apple ID from a device in Moscow, Russia on May 10, 2023 at 3:42 PM.

If this wasn't you, your account may have been compromised. Please reset your password immediately by clicking the link below:

https://appleid.apple.com/reset

Your security code is: 847291

If you recognize this activity, you can ignore this email.

Apple Security Team`,
	},
	{
		ID:        "mock-email-3",
		Subject:   "Your Amazon Order #112-5837942-7539248 has shipped",
		From:      "Amazon.com <ship-confirm@amazon.com>",
		Age:       48 * time.Hour,
		Preview:   "Your package is on its way! Track your shipment to see the delivery date.",
		Important: false,

		Body: `Hello,

Your Amazon order #112-5837942-7539248 has shipped.

Your order was sent to:
John Doe
123 Main St
Anytown, CA 94321

Your package is being shipped by UPS and the tracking number is 1Z999AA10123456789.
Estimated delivery date: May 12, 2023

Your order includes:
1. Sony WH-1000XM4 Wireless Noise Canceling Headphones - $348.00
2. USB C Charger Cable (6ft) - $12.99

Order Total: $360.99

Track your package: https://www.amazon.com/track

Thank you for shopping with Amazon!`,
	},
	{
		ID:        "mock-email-4",
		Subject:   "Team Meeting - Project Roadmap Discussion",
		From:      "Sarah Johnson <sarah.j@company.com>",
		Age:       12 * time.Hour,
		Preview:   "Hi team, Let's meet tomorrow at 2 PM to discuss the Q3 roadmap and feature prioritization.",
		Important: true,

		Body: `Hi team,

I'd like to schedule a meeting for tomorrow at 2 PM in Conference Room A to discuss our Q3 roadmap.

Agenda:
1. Review Q2 accomplishments
2. Discuss feature prioritization for Q3
3. Resource allocation
4. Timeline adjustments

Please come prepared with your team's updates and priorities. If you can't attend in person, here's the Zoom link:
https://zoom.us/j/123456789

Looking forward to our discussion!

Best,
Sarah Johnson
Product Manager
(555) 123-4567`,
	},
	{
		ID:        "mock-email-5",
		Subject:   "Your Monthly Invoice from Spotify",
		From:      "Spotify <no-reply@spotify.com>",
		Age:       72 * time.Hour,
		Preview:   "Your Spotify Premium subscription has been renewed. Here's your receipt.",
		Important: false,

		Body: `Hello,

Thanks for being a Spotify Premium subscriber!

Your monthly subscription has been renewed successfully.

Invoice Details:
- Date: May 8, 2023
- Invoice #: SP-2023-05087642
- Plan: Spotify Premium Individual
- Amount: $9.99
- Payment Method: Visa ending in 4321

Your next billing date will be June 8, 2023.

You can view your complete billing history in your account settings.

Enjoy your music!
The Spotify Team`,
	},
	{
		ID:        "mock-email-6",
		Subject:   "Job Application Update - Software Developer Position",
		From:      "TechCorp Recruiting <recruiting@techcorp.com>",
		Age:       2 * time.Hour,
		Preview:   "Thank you for your application. We would like to invite you for an interview next week.",
		Important: true,

		Body: `Dear Applicant,

Thank you for applying for the Senior Software Developer position at TechCorp.

We were impressed with your qualifications and experience, and we would like to invite you for a virtual interview. Please select a time slot that works for you:

- Monday, May 15, 10:00 AM - 11:30 AM PST
- Tuesday, May 16, 2:00 PM - 3:30 PM PST
- Wednesday, May 17, 11:00 AM - 12:30 PM PST

The interview will be conducted via Zoom and will include a technical assessment and a conversation with the engineering team.

Please reply to this email with your preferred time slot, and we will send you the meeting details.

We look forward to speaking with you!

Best regards,
Jennifer Smith
Recruiting Manager
TechCorp
(555) 987-6543`,
	},
	{
		ID:        "mock-email-7",
		Subject:   "Your Subscription Renewal Notice",
		From:      "Netflix <info@netflix.com>",
		Age:       96 * time.Hour,
		Preview:   "Your Netflix subscription will renew automatically on May 15, 2023.",
		Important: false,

		Body: `Hi there,

This is a reminder that your Netflix subscription will automatically renew on May 15, 2023.

Subscription Details:
- Plan: Premium (4K Ultra HD + 4 screens)
- Monthly Price: $19.99
- Next Billing Date: May 15, 2023
- Payment Method: Mastercard ending in 8765

If you want to make changes to your subscription, please visit your account page at netflix.com/account.

Thank you for being a Netflix member!

The Netflix Team`,
	},
	{
		ID:        "mock-email-8",
		Subject:   "Invitation to Speak at Tech Conference 2023",
		From:      "TechConf Organizers <speakers@techconf2023.com>",
		Age:       144 * time.Hour,
		Preview:   "We would like to invite you to be a speaker at Tech Conference 2023 in San Francisco.",
		Important: true,

		Body: `Dear Tech Professional,

On behalf of the TechConf 2023 organizing committee, I am delighted to invite you to speak at our annual conference, which will be held on September 15-17, 2023, at the Moscone Center in San Francisco.

Based on your expertise and contributions to the field, we believe you would be an excellent speaker for our AI and Machine Learning track. We would be honored if you could present a 45-minute session on a topic of your choice within this domain.

As a speaker, you will receive:
- Complimentary conference pass ($1,499 value)
- Travel allowance of up to $1,000
- 2 nights accommodation at the conference hotel
- Speaker dinner and networking events

Please let us know if you are interested by May 20, 2023, by completing the speaker submission form at:
https://techconf2023.com/speaker-submission

We look forward to your positive response!

Best regards,
Michael Chen
Speaker Coordinator
TechConf 2023
speakers@techconf2023.com`,
	},
	{
		ID:        "mock-email-9",
		Subject:   "Your Credit Card Statement is Ready",
		From:      "Chase Bank <statements@chase.com>",
		Age:       120 * time.Hour,
		Preview:   "Your monthly statement for account ending in 5678 is now available online.",
		Important: false,

		Body: `Dear Valued Customer,

Your monthly credit card statement for the account ending in 5678 is now available online.

Statement Summary:
- Statement Period: April 10 - May 9, 2023
- New Balance: $1,247.63
- Minimum Payment Due: $35.00
- Payment Due Date: June 5, 2023

Recent Transactions:
- May 7: Amazon.com - $129.99
- May 5: Whole Foods Market - $87.32
- May 3: Shell Gas Station - $45.67
- May 1: Netflix Subscription - $19.99
- April 28: Restaurant Charge - $78.45

To view your complete statement and make a payment, please log in to your account at chase.com or use the Chase mobile app.

Thank you for being a Chase customer.

This is an automated email. Please do not reply.`,
	},
	{
		ID:        "mock-email-10",
		Subject:   "Important: Your Tax Return Status Update",
		From:      "Internal Revenue Service <do-not-reply@irs.gov>",
		Age:       36 * time.Hour,
		Preview:   "Your federal tax return has been processed. Your refund has been approved.",
		Important: true,

		Body: `INTERNAL REVENUE SERVICE

Tax Return Status Update

Taxpayer ID: ***-**-1234
Tax Year: 2022

Dear Taxpayer,

We are pleased to inform you that your federal tax return for the year 2022 has been processed.

Status: Refund Approved
Refund Amount: $1,842.00
Refund Method: Direct Deposit
Expected Deposit Date: May 15, 2023

Your refund will be deposited to the bank account ending in 9876.

You can check the status of your refund at:
https://www.irs.gov/refunds

If you have not received your refund by May 20, 2023, please visit our website or call 1-800-829-1040.

Thank you,
Internal Revenue Service
United States Department of the Treasury

This is an automated message. Please do not reply.`,
	},
}

// Provider implements out.MailboxProvider with the fixture messages.
type Provider struct {
	delay time.Duration
	now   func() time.Time
}

// NewProvider creates a mock mailbox that waits delay before answering.
func NewProvider(delay time.Duration) *Provider {
	return &Provider{delay: delay, now: time.Now}
}

func (p *Provider) Name() domain.MailProvider {
	return domain.MailProviderMock
}

// FetchRecent returns up to count fixture messages with dates relative to now.
func (p *Provider) FetchRecent(ctx context.Context, count int) ([]*domain.ConnectedEmail, error) {
	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	n := len(fixtures)
	if count > 0 && count < n {
		n = count
	}

	now := p.now().UTC()
	emails := make([]*domain.ConnectedEmail, 0, n)
	for _, f := range fixtures[:n] {
		emails = append(emails, &domain.ConnectedEmail{
			ID:        f.ID,
			Subject:   f.Subject,
			From:      f.From,
			Date:      now.Add(-f.Age).Format(time.RFC3339),
			Preview:   f.Preview,
			Body:      f.Body,
			Important: f.Important,
		})
	}
	return emails, nil
}
