// Package httpapi exposes the slippage estimator over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fd1az/slippage-sentinel/business/slippage/app"
	"github.com/fd1az/slippage-sentinel/business/slippage/domain"
	"github.com/fd1az/slippage-sentinel/internal/apm"
	"github.com/fd1az/slippage-sentinel/internal/apperror"
	"github.com/fd1az/slippage-sentinel/internal/logger"
	"github.com/fd1az/slippage-sentinel/internal/server"
)

const (
	// EntrypointKey names the paid estimation entrypoint.
	EntrypointKey = "getSafeSlippage"

	// InvokePath is where the entrypoint is served.
	InvokePath = "/entrypoints/" + EntrypointKey + "/invoke"

	// ManifestPath serves the agent manifest.
	ManifestPath = "/.well-known/agent.json"

	tracerName   = "github.com/fd1az/slippage-sentinel/business/slippage/infra/httpapi"
	maxBodyBytes = 64 << 10
)

// Estimator is the estimation use case. *app.Estimator implements it.
type Estimator interface {
	GetSafeSlippage(ctx context.Context, input domain.SafeSlippageInput) app.Result
}

type invokeRequest struct {
	Input *domain.RawInput `json:"input"`
}

type invokeResponse struct {
	Output domain.SafeSlippageOutput `json:"output"`
}

// Handler serves the estimator and the manifest.
type Handler struct {
	estimator Estimator
	manifest  Manifest
	logger    logger.LoggerInterface
	tracer    apm.Tracer
}

// NewHandler creates a Handler.
func NewHandler(estimator Estimator, manifest Manifest, log logger.LoggerInterface) *Handler {
	return &Handler{
		estimator: estimator,
		manifest:  manifest,
		logger:    log,
		tracer:    apm.NewTracer(tracerName),
	}
}

// Register mounts the routes on router. protect wraps the paid entrypoint.
func (h *Handler) Register(router *mux.Router, protect mux.MiddlewareFunc) {
	router.HandleFunc(ManifestPath, h.Manifest).Methods(http.MethodGet)

	var invoke http.Handler = http.HandlerFunc(h.Invoke)
	if protect != nil {
		invoke = protect(invoke)
	}
	router.Handle(InvokePath, invoke).Methods(http.MethodPost)
}

// Invoke runs one estimation. Estimation failures are answered 200 with an error output;
// malformed requests are 400.
func (h *Handler) Invoke(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r, "slippage.invoke")
	defer span.End()

	var req invokeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		span.NoticeError(err)
		server.WriteError(w, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("request body must be JSON"),
			apperror.WithCause(err)))
		return
	}
	if req.Input == nil {
		server.WriteError(w, apperror.Validation(apperror.CodeRequiredField, "input is required"))
		return
	}

	v := domain.ValidateInput(*req.Input)
	if !v.Valid() {
		h.logger.Debug(ctx, "rejected estimation input", "reason", v.Reason())
		server.WriteError(w, apperror.Validation(apperror.CodeInvalidInput, v.Reason()))
		return
	}

	input := v.Input()
	span.SetAttributes(
		attribute.String("token_in", input.TokenIn),
		attribute.String("token_out", input.TokenOut),
		attribute.String("route_hint", string(input.RouteHint)),
	)

	result := h.estimator.GetSafeSlippage(ctx, input)
	if result.Output.IsError() {
		span.SetAttributes(attribute.String("estimate.error", result.Output.Error))
	}

	server.WriteJSON(w, http.StatusOK, invokeResponse{Output: result.Output})
}

// Manifest serves the agent manifest.
func (h *Handler) Manifest(w http.ResponseWriter, r *http.Request) {
	server.WriteJSON(w, http.StatusOK, h.manifest)
}
