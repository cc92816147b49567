package payments

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"

	"github.com/thetoretto/hotpoint-bookings/pkg/logger"
)

// Intent is what the frontend needs to collect payment for a confirmed
// booking. Payment happens after finalization; the booking itself is
// already authoritative.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type Provider interface {
	CreateIntent(ctx context.Context, bookingID string, amount int64) (*Intent, error)
}

// StripeProvider creates real payment intents.
type StripeProvider struct {
	currency string
}

func NewStripeProvider(secretKey, currency string) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{currency: currency}
}

func (p *StripeProvider) CreateIntent(ctx context.Context, bookingID string, amount int64) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(p.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("booking_id", bookingID)
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent for booking %s: %w", bookingID, err)
	}
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

// DisabledProvider returns synthetic intents when Stripe is not
// configured, so the booking flow still completes end to end in dev.
type DisabledProvider struct {
	currency string
}

func NewDisabledProvider(currency string) *DisabledProvider {
	return &DisabledProvider{currency: currency}
}

func (p *DisabledProvider) CreateIntent(ctx context.Context, bookingID string, amount int64) (*Intent, error) {
	logger.DebugContext(ctx, "payments disabled, issuing synthetic intent", "booking_id", bookingID)
	return &Intent{
		ID:           "pi_dev_" + bookingID,
		ClientSecret: "dev_secret_" + bookingID,
		Amount:       amount,
		Currency:     p.currency,
	}, nil
}
