package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/providers"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/proxy"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/proxy/types"
)

// CompletionHandler serves POST /v1/completions.
type CompletionHandler struct {
	Backend Backend

	// Recorder is optional.
	Recorder Recorder

	// MaxBodyBytes limits the request body. Zero uses the proxy default.
	MaxBodyBytes int64
}

// NewCompletionHandler creates a completion handler.
func NewCompletionHandler(backend Backend, recorder Recorder, maxBodyBytes int64) *CompletionHandler {
	return &CompletionHandler{Backend: backend, Recorder: recorder, MaxBodyBytes: maxBodyBytes}
}

// ServeHTTP implements http.Handler.
func (h *CompletionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.writeError(w, r, types.NewErrorResponse(http.StatusMethodNotAllowed, types.ErrorTypeMethodNotAllowed,
			"method "+r.Method+" not allowed, use POST"))
		return
	}

	in, err := proxy.ParseCompletionRequest(r, h.MaxBodyBytes)
	if err != nil {
		slog.WarnContext(ctx, "rejected completion request", "error", err)
		h.writeError(w, r, proxy.HandleError(err))
		return
	}

	client := h.Backend.Client()
	provider := client.Transport().GetName()

	req := proxy.BuildCompletionRequest(in, h.Backend.RequestDefaults()...)
	if req.Model == "" {
		req.Model = client.Transport().DefaultModel()
	}

	slog.InfoContext(ctx, "processing completion request",
		"provider", provider,
		"model", req.Model,
		"prompt_chars", len(req.Prompt),
	)

	start := time.Now()
	result, err := client.Complete(ctx, req)
	elapsed := time.Since(start)

	var ce *providers.ClassifiedError
	if err != nil && !errors.As(err, &ce) {
		ce = &providers.ClassifiedError{Kind: providers.KindRequest, Provider: provider, Message: err.Error(), Err: err}
	}
	h.record(r, req, provider, result, ce, elapsed)

	if ce != nil {
		h.writeError(w, r, proxy.HandleError(ce))
		return
	}

	slog.InfoContext(ctx, "completion succeeded",
		"provider", provider,
		"model", result.Model,
		"attempts", result.Attempts,
		"prompt_tokens", result.Usage.PromptTokens,
		"completion_tokens", result.Usage.CompletionTokens,
		"total_tokens", result.Usage.TotalTokens,
		"latency_ms", elapsed.Milliseconds(),
	)

	if err := proxy.WriteJSONResponse(w, http.StatusOK, types.NewCompletionResponse(result)); err != nil {
		slog.ErrorContext(ctx, "failed to write response", "error", err)
	}
}

// record never fails the request; a full or closed ledger only logs.
func (h *CompletionHandler) record(r *http.Request, req providers.CompletionRequest, provider string, result *providers.CompletionResult, ce *providers.ClassifiedError, d time.Duration) {
	if h.Recorder == nil {
		return
	}
	if err := h.Recorder.RecordCompletion(r.Context(), req, provider, result, ce, d); err != nil {
		slog.DebugContext(r.Context(), "completion not recorded", "error", err)
	}
}

func (h *CompletionHandler) writeError(w http.ResponseWriter, r *http.Request, errResp *types.ErrorResponse) {
	if err := proxy.WriteErrorResponse(w, errResp); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", "error", err)
	}
}
