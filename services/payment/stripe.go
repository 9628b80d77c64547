package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"maidbook/models"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// StripeGateway opens PaymentIntents for the interactive checkout. The
// package-level stripe.Key must be set before use.
type StripeGateway struct {
	signer *Signer
	logger *zap.Logger
	create func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// NewStripeGateway returns a gateway backed by the Stripe API. Sessions are
// signed with signer.
func NewStripeGateway(signer *Signer, logger *zap.Logger) *StripeGateway {
	return &StripeGateway{signer: signer, logger: logger, create: paymentintent.New}
}

// CreatePaymentSession creates a PaymentIntent for amount minor units. The
// checkout must echo back OrderRef, the intent id and Signature on success.
func (g *StripeGateway) CreatePaymentSession(ctx context.Context, amount int64, currency string) (*models.PaymentSession, error) {
	if amount <= 0 {
		return nil, errors.New("payment amount must be positive")
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		return nil, errors.New("payment currency is required")
	}

	orderRef := "order_" + uuid.New().String()
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("order_ref", orderRef)

	pi, err := g.create(params)
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) {
			g.logger.Warn("stripe rejected payment intent",
				zap.String("code", string(serr.Code)),
				zap.Int("status", serr.HTTPStatusCode),
				zap.String("orderRef", orderRef))
		}
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	g.logger.Debug("payment intent created",
		zap.String("orderRef", orderRef),
		zap.String("intent", pi.ID),
		zap.Int64("amount", amount))

	return &models.PaymentSession{
		OrderRef:     orderRef,
		GatewayRef:   pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       amount,
		Currency:     strings.ToUpper(currency),
		Signature:    g.signer.Sign(orderRef, pi.ID),
	}, nil
}
