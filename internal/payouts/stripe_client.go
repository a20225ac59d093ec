package payouts

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/payout"

	pkgstripe "github.com/mealora/mealora-backend/pkg/stripe"
)

// StripePayoutClient exposes the subset of Stripe operations the payout service needs.
type StripePayoutClient interface {
	// CreatePayout issues a payout on the connected account.
	CreatePayout(ctx context.Context, accountID string, params *stripe.PayoutParams) (*stripe.Payout, error)
}

type stripeClientWrapper struct{}

// NewStripeClient wraps the provided Stripe client so the payout service can be tested.
func NewStripeClient(api *pkgstripe.Client) StripePayoutClient {
	if api == nil {
		return nil
	}
	return &stripeClientWrapper{}
}

func (w *stripeClientWrapper) CreatePayout(ctx context.Context, accountID string, params *stripe.PayoutParams) (*stripe.Payout, error) {
	if params == nil {
		params = &stripe.PayoutParams{}
	}
	params.Context = ctx
	params.SetStripeAccount(accountID)
	return payout.New(params)
}
