// Package payments holds the Stripe-backed payment provider.
package payments

import (
	"errors"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"

	"github.com/pollwave/pollwave/internal/services"
)

type StripeProvider struct{}

// NewStripeProvider configures the global Stripe client key and
// returns a provider. An empty key is allowed; calls will fail
// upstream, which the payment service reports as bad gateway.
func NewStripeProvider(apiKey string) *StripeProvider {
	stripe.Key = apiKey
	return &StripeProvider{}
}

func (p *StripeProvider) CreateIntent(amountMinor int64, currency string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountMinor),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	pi, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}
	if pi.ClientSecret == "" {
		return "", errors.New("intent has no client secret")
	}
	return pi.ClientSecret, nil
}

func (p *StripeProvider) GetIntent(id string) (*services.IntentStatus, error) {
	pi, err := paymentintent.Get(id, nil)
	if err != nil {
		return nil, err
	}
	return &services.IntentStatus{
		Amount:    pi.Amount,
		Currency:  string(pi.Currency),
		Succeeded: pi.Status == stripe.PaymentIntentStatusSucceeded,
	}, nil
}

var _ services.PaymentProvider = (*StripeProvider)(nil)
