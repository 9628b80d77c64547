package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"maidbook/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// IntentFetcher loads a PaymentIntent. paymentintent.Get satisfies it.
type IntentFetcher func(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)

// StripeVerifier confirms a checkout result: the signature must be the one
// issued with the session, and Stripe must report the session's intent as
// succeeded for the session's amount, currency and order.
type StripeVerifier struct {
	signer *Signer
	fetch  IntentFetcher
	logger *zap.Logger
}

// NewStripeVerifier returns a verifier. A nil fetch uses the Stripe API.
func NewStripeVerifier(signer *Signer, logger *zap.Logger, fetch IntentFetcher) *StripeVerifier {
	if fetch == nil {
		fetch = paymentintent.Get
	}
	return &StripeVerifier{signer: signer, fetch: fetch, logger: logger}
}

func (v *StripeVerifier) VerifyPayment(ctx context.Context, sess models.PaymentSession, res models.PaymentResult) (bool, error) {
	if sess.GatewayRef == "" {
		return false, errors.New("payment session has no gateway reference")
	}
	if res.OrderRef != sess.OrderRef || res.PaymentRef != sess.GatewayRef {
		v.logger.Warn("payment result does not match the session",
			zap.String("orderRef", res.OrderRef), zap.String("paymentRef", res.PaymentRef))
		return false, nil
	}
	ok, err := v.signer.Valid(res.OrderRef, res.PaymentRef, res.Signature)
	if err != nil || !ok {
		return false, err
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := v.fetch(sess.GatewayRef, params)
	if err != nil {
		return false, fmt.Errorf("failed to fetch payment intent %s: %w", sess.GatewayRef, err)
	}

	switch {
	case pi.Status != stripe.PaymentIntentStatusSucceeded:
		v.logger.Warn("payment intent not succeeded",
			zap.String("intent", pi.ID), zap.String("status", string(pi.Status)))
		return false, nil
	case pi.ID != sess.GatewayRef:
		return false, nil
	case pi.Amount != sess.Amount || !strings.EqualFold(string(pi.Currency), sess.Currency):
		v.logger.Warn("payment intent amount differs from the session",
			zap.String("intent", pi.ID),
			zap.Int64("intentAmount", pi.Amount), zap.Int64("sessionAmount", sess.Amount),
			zap.String("intentCurrency", string(pi.Currency)), zap.String("sessionCurrency", sess.Currency))
		return false, nil
	case pi.Metadata["order_ref"] != sess.OrderRef:
		v.logger.Warn("payment intent belongs to another order",
			zap.String("intent", pi.ID), zap.String("orderRef", sess.OrderRef))
		return false, nil
	}
	return true, nil
}
