// Package handoff delivers confirmed purchases to the coach's WhatsApp
// confirmation channel and to the event bus.
package handoff

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/anandgupta07/coach-sub000/internal/checkout/domain"
)

const whatsAppBase = "https://wa.me/"

// Message renders the text the buyer sends to the coach.
func Message(h domain.Handoff) string {
	var b strings.Builder
	b.WriteString("Hi! I have completed the payment for my coaching plan.\n\n")
	fmt.Fprintf(&b, "Name: %s\n", h.Buyer.Name)
	fmt.Fprintf(&b, "Contact: %s\n", h.Buyer.ContactNumber)
	fmt.Fprintf(&b, "Email: %s\n", h.Buyer.Email)
	fmt.Fprintf(&b, "Goal: %s\n", h.Buyer.Goal)
	if h.Buyer.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", h.Buyer.Notes)
	}
	fmt.Fprintf(&b, "\nPlans: %s\n", strings.Join(h.Plans, ", "))
	if h.PromoCode != "" {
		fmt.Fprintf(&b, "Promo: %s (-%s)\n", h.PromoCode, h.Discount.StringFixed(2))
	}
	fmt.Fprintf(&b, "Amount paid: %s\n", h.FinalAmount.StringFixed(2))
	fmt.Fprintf(&b, "Reference: %s", h.SessionID)
	return b.String()
}

// WhatsAppLink builds a wa.me deep link to phone prefilled with the handoff message.
// Non-digits are stripped from phone. An empty phone yields an empty link.
func WhatsAppLink(phone string, h domain.Handoff) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return ""
	}
	return whatsAppBase + digits + "?text=" + url.QueryEscape(Message(h))
}
