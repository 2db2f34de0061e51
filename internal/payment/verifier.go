package payment

import (
	"context"
	"fmt"
	"math"

	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

// amountToleranceCents absorbs cent-rounding differences between the
// declared total and the charged amount.
const amountToleranceCents = 1

// Gateway is the narrow slice of the payment provider the verifier needs.
type Gateway interface {
	GetPaymentIntent(ctx context.Context, intentID string) (*Intent, error)
}

// Verification is the reconciliation outcome for one payment intent. Note
// is appended to the order's notes as a system annotation.
type Verification struct {
	Verified bool
	Status   string
	Note     string
}

// Verifier reconciles an authorized payment intent against the submitted
// order total. By the time it runs the storefront has already told the
// customer the charge went through, so the outcome is a fraud signal, never
// a gate: Verify has no error return and the pipeline proceeds regardless.
type Verifier struct {
	gateway Gateway
}

func NewVerifier(gateway Gateway) *Verifier {
	return &Verifier{gateway: gateway}
}

func (v *Verifier) Verify(ctx context.Context, intentID string, declaredTotal float64) Verification {
	log := logger.FromCtx(ctx).With(
		zap.String("payment_intent_id", intentID),
		zap.Float64("declared_total", declaredTotal),
	)

	intent, err := v.gateway.GetPaymentIntent(ctx, intentID)
	if err != nil {
		log.Error("payment verification unavailable", zap.Error(err))
		return Verification{
			Verified: false,
			Status:   "unavailable",
			Note:     fmt.Sprintf("payment verification unavailable for intent %s", intentID),
		}
	}

	if intent.Status != StatusSucceeded {
		log.Warn("payment intent not succeeded", zap.String("gateway_status", intent.Status))
		return Verification{
			Verified: false,
			Status:   intent.Status,
			Note:     fmt.Sprintf("payment intent %s has gateway status %q", intentID, intent.Status),
		}
	}

	// Compare in minor units: float subtraction puts exact one-cent
	// differences just above the tolerance.
	charged := float64(intent.Amount) / 100
	diff := intent.Amount - int64(math.Round(declaredTotal*100))
	if diff < -amountToleranceCents || diff > amountToleranceCents {
		log.Warn("payment amount mismatch",
			zap.Float64("charged", charged),
			zap.Float64("declared", declaredTotal),
		)
		return Verification{
			Verified: false,
			Status:   intent.Status,
			Note: fmt.Sprintf("payment amount mismatch for intent %s: charged %.2f, order total %.2f",
				intentID, charged, declaredTotal),
		}
	}

	log.Info("payment verified", zap.Float64("charged", charged))
	return Verification{
		Verified: true,
		Status:   intent.Status,
		Note:     fmt.Sprintf("payment verified via gateway intent %s", intentID),
	}
}
