// Package samples holds the canonical fixture emails used to exercise both
// extraction paths end to end.
package samples

// Sample is a named fixture email.
type Sample struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Text        string `json:"text"`
}

// Standard is a plain business email with the common headers and a link.
const Standard = `From: john.doe@example.com
To: jane.smith@example.com
Subject: Meeting Tomorrow
Date: Mon, 25 Apr 2025 09:30:00 -0700
Cc: team@example.com
Reply-To: john.doe@example.com

Hi Jane,

Just a reminder about our meeting tomorrow at 10:00 AM in the conference room.

Please bring your quarterly report and we'll discuss the new project requirements.

You can also check the details on our project page: https://example.com/projects/123`

// SecurityCode carries a six digit verification code.
const SecurityCode = `From: security@facebookmail.com
To: user@example.com
Subject: Facebook Security Code
Date: Mon, 25 Apr 2025 09:30:00 -0700

Hi User,

Your Facebook security code is: 123456

This code can be used to verify your identity on Facebook.

If you didn't request this code, you can ignore this message.

Thanks,
The Facebook Security Team`

// Shipping is a shipment notification with an order and a tracking number.
const Shipping = `From: shipping@amazon.com
To: customer@example.com
Subject: Your Amazon Order Has Shipped
Date: Mon, 25 Apr 2025 09:30:00 -0700

Hello Customer,

Your order #123-4567890-1234567 has shipped and is on its way!

Your tracking number is: 1Z999AA10123456789
You can track your package at: https://track.carrier.com/tracking?number=1Z999AA10123456789

Your order contains:
1x Wireless Headphones - $149.99
1x Phone Case - $24.99

Estimated delivery date: April 26, 2025

If you have any questions, please contact Amazon Customer Service.

Thank you for shopping with us!
The Amazon.com Team`

// All returns the fixtures in display order.
func All() []Sample {
	return []Sample{
		{Name: "standard", Description: "Standard business email", Text: Standard},
		{Name: "security-code", Description: "Facebook security code email", Text: SecurityCode},
		{Name: "shipping", Description: "Amazon shipping notification", Text: Shipping},
	}
}

// ByName returns the fixture with the given name.
func ByName(name string) (Sample, bool) {
	for _, s := range All() {
		if s.Name == name {
			return s, true
		}
	}
	return Sample{}, false
}
