package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fd1az/slippage-sentinel/business/payments/domain"
	"github.com/fd1az/slippage-sentinel/internal/apm"
	"github.com/fd1az/slippage-sentinel/internal/apperror"
	"github.com/fd1az/slippage-sentinel/internal/logger"
)

const tracerName = "github.com/fd1az/slippage-sentinel/business/payments/app"

// Gate decides whether a request has paid for a resource.
type Gate struct {
	enabled     bool
	spec        domain.PriceSpec
	facilitator Facilitator
	logger      logger.LoggerInterface
	tracer      apm.Tracer
}

// NewGate creates a gate. A disabled gate lets every request through.
func NewGate(enabled bool, spec domain.PriceSpec, facilitator Facilitator, log logger.LoggerInterface) *Gate {
	return &Gate{
		enabled:     enabled,
		spec:        spec,
		facilitator: facilitator,
		logger:      log,
		tracer:      apm.NewTracer(tracerName),
	}
}

// Enabled reports whether payments are enforced.
func (g *Gate) Enabled() bool {
	return g.enabled
}

// Requirements returns the payment terms for resource.
func (g *Gate) Requirements(resource, description string) domain.Requirements {
	return domain.NewRequirements(g.spec, resource, description)
}

// Verify checks the X-PAYMENT header against req.
// Payment problems are PAYMENT_* errors (402); facilitator outages are FACILITATOR_ERROR.
func (g *Gate) Verify(ctx context.Context, header string, req domain.Requirements) (*domain.Payload, error) {
	ctx, span := g.tracer.StartSpanFromContext(ctx, "payments.verify")
	defer span.End()

	if strings.TrimSpace(header) == "" {
		return nil, apperror.PaymentRequired(apperror.CodePaymentRequired, domain.HeaderPayment+" header is required")
	}

	payload, err := domain.DecodePayload(header)
	if err != nil {
		span.NoticeError(err)
		return nil, apperror.New(apperror.CodeInvalidPaymentHeader, apperror.WithCause(err))
	}
	if payload.Scheme != req.Scheme || !strings.EqualFold(payload.Network, req.Network) {
		return nil, apperror.New(apperror.CodeInvalidPaymentHeader,
			apperror.WithContext(fmt.Sprintf("expected %s payment on %s, got %s on %s",
				req.Scheme, req.Network, payload.Scheme, payload.Network)))
	}

	span.SetAttributes(
		attribute.String("payment.network", payload.Network),
		attribute.String("payment.from", payload.Payload.Authorization.From),
	)

	result, err := g.facilitator.Verify(ctx, payload, req)
	if err != nil {
		span.NoticeError(err)
		g.logger.Error(ctx, "payment verification unavailable", "error", err)
		return nil, facilitatorError(err)
	}
	if !result.IsValid {
		reason := result.InvalidReason
		if reason == "" {
			reason = "payment rejected"
		}
		g.logger.Warn(ctx, "payment rejected", "reason", reason, "payer", result.Payer)
		return nil, apperror.New(apperror.CodePaymentVerificationFailed, apperror.WithContext(reason))
	}

	return &payload, nil
}

// Settle captures a verified payment.
func (g *Gate) Settle(ctx context.Context, payload domain.Payload, req domain.Requirements) (*domain.Settlement, error) {
	ctx, span := g.tracer.StartSpanFromContext(ctx, "payments.settle")
	defer span.End()

	settlement, err := g.facilitator.Settle(ctx, payload, req)
	if err != nil {
		span.NoticeError(err)
		g.logger.Error(ctx, "payment settlement unavailable", "error", err)
		return nil, facilitatorError(err)
	}
	if !settlement.Success {
		g.logger.Warn(ctx, "payment settlement failed", "reason", settlement.ErrorReason, "payer", settlement.Payer)
		return nil, apperror.New(apperror.CodePaymentSettlementFailed, apperror.WithContext(settlement.ErrorReason))
	}
	if settlement.Network == "" {
		settlement.Network = req.Network
	}

	span.SetAttributes(attribute.String("payment.transaction", settlement.Transaction))
	g.logger.Info(ctx, "payment settled",
		"transaction", settlement.Transaction,
		"network", settlement.Network,
		"payer", settlement.Payer)

	return settlement, nil
}

func facilitatorError(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.New(apperror.CodeFacilitatorError, apperror.WithCause(err))
}
