package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anandgupta07/coach-sub000/internal/checkout/domain"
	"github.com/anandgupta07/coach-sub000/internal/shared/infrastructure/eventbus"
	"github.com/anandgupta07/coach-sub000/pkg/observability"
)

func sampleHandoff() domain.Handoff {
	return domain.Handoff{
		SessionID: uuid.MustParse("0b7d3f0e-4a57-4bd4-9a9e-2a1c1f6f8e10"),
		UserID:    uuid.New(),
		Buyer: domain.Details{
			Name:          "Asha Rao",
			ContactNumber: "9876543210",
			Email:         "asha@example.com",
			Goal:          "Fat loss",
		},
		Plans:       []string{"3 Month Coaching"},
		PromoCode:   "SAVE10",
		Subtotal:    decimal.NewFromInt(1799),
		Discount:    decimal.RequireFromString("179.9"),
		FinalAmount: decimal.RequireFromString("1619.1"),
		ConfirmedAt: time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestMessage(t *testing.T) {
	msg := Message(sampleHandoff())

	assert.Contains(t, msg, "Name: Asha Rao\n")
	assert.Contains(t, msg, "Contact: 9876543210\n")
	assert.Contains(t, msg, "Plans: 3 Month Coaching\n")
	assert.Contains(t, msg, "Promo: SAVE10 (-179.90)\n")
	assert.Contains(t, msg, "Amount paid: 1619.10\n")
	assert.NotContains(t, msg, "Notes:")
}

func TestWhatsAppLink(t *testing.T) {
	link := WhatsAppLink("+91 98765-43210", sampleHandoff())
	require.True(t, strings.HasPrefix(link, "https://wa.me/919876543210?text="), link)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, Message(sampleHandoff()), u.Query().Get("text"))

	assert.Empty(t, WhatsAppLink("", sampleHandoff()))
}

type failingPublisher struct {
	calls int
}

func (p *failingPublisher) Publish(context.Context, string, []byte) error {
	p.calls++
	return errors.New("broker down")
}

func (p *failingPublisher) Close() error { return nil }

func TestChannel_Send(t *testing.T) {
	pub := eventbus.NewMemoryPublisher()
	ch := NewChannel("919876543210", pub, DefaultBreakerConfig(), nil)

	link, err := ch.Send(context.Background(), sampleHandoff())
	require.NoError(t, err)
	assert.Equal(t, observability.HealthStatusHealthy, ch.Check(context.Background()).Status)
	assert.True(t, strings.HasPrefix(link, "https://wa.me/919876543210?text="))

	msgs := pub.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.RoutingKeyHandoff, msgs[0].RoutingKey)

	var payload struct {
		Link        string `json:"link"`
		FinalAmount string `json:"finalAmount"`
		Buyer       struct {
			Email string `json:"email"`
		} `json:"buyer"`
	}
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &payload))
	assert.Equal(t, link, payload.Link)
	assert.Equal(t, "1619.1", payload.FinalAmount)
	assert.Equal(t, "asha@example.com", payload.Buyer.Email)
}

func TestChannel_BreakerOpens(t *testing.T) {
	pub := &failingPublisher{}
	ch := NewChannel("919876543210", pub, BreakerConfig{FailureThreshold: 2, Timeout: time.Minute, MaxRequests: 1}, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		link, err := ch.Send(ctx, sampleHandoff())
		assert.ErrorContains(t, err, "broker down")
		assert.NotEmpty(t, link)
	}
	assert.Equal(t, "open", ch.State())
	health := ch.Check(ctx)
	assert.Equal(t, observability.HealthStatusDegraded, health.Status)
	assert.Equal(t, "handoff breaker open", health.Message)

	link, err := ch.Send(ctx, sampleHandoff())
	assert.ErrorIs(t, err, ErrChannelUnavailable)
	assert.NotEmpty(t, link, "buyer still gets the link")
	assert.Equal(t, 2, pub.calls)
}
