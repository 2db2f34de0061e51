package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront-be/internal/logger"
	"storefront-be/internal/order"
	"storefront-be/internal/ratelimit"
	"storefront-be/internal/validation"

	"go.uber.org/zap"
)

// Handler serves the two checkout endpoints.
type Handler struct {
	svc order.Service
	dev bool
}

func NewHandler(svc order.Service, dev bool) *Handler {
	return &Handler{svc: svc, dev: dev}
}

// SubmitOrder handles POST /api/orders.
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.decode(w, r)
	if !ok {
		return
	}

	receipt, err := h.svc.SubmitOrder(r.Context(), ratelimit.ClientID(r), sub)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, orderResponse{
		Success: true,
		OrderID: receipt.OrderNumber,
		Message: "Order received.",
	})
}

// ConfirmPayment handles POST /api/orders/confirm.
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.decode(w, r)
	if !ok {
		return
	}

	receipt, err := h.svc.ConfirmPayment(r.Context(), ratelimit.ClientID(r), sub)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, orderResponse{
		Success:         true,
		OrderID:         receipt.OrderNumber,
		PaymentVerified: boolPtr(receipt.PaymentVerified),
		Message:         "Order received.",
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (validation.CheckoutSubmission, bool) {
	var sub validation.CheckoutSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		logger.FromCtx(r.Context()).Info("malformed checkout payload", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, orderResponse{
			Success: false,
			Message: genericMessage("validation"),
		})
		return sub, false
	}
	return sub, true
}

// writeFailure maps pipeline errors onto the response taxonomy: 429 for the
// limiter, 400 with field errors for validation, 500 for everything else.
// Internal detail is echoed only in development mode.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var rle *order.RateLimitError
	if errors.As(err, &rle) {
		writeJSON(w, http.StatusTooManyRequests, orderResponse{
			Success:           false,
			Message:           "Too many requests. Please try again later.",
			RemainingAttempts: intPtr(rle.Remaining),
		})
		return
	}

	var ve *order.ValidationError
	if errors.As(err, &ve) {
		fields := ve.Fields
		if !h.dev {
			fields = maskFieldErrors(fields)
		}
		writeJSON(w, http.StatusBadRequest, orderResponse{
			Success: false,
			Message: genericMessage("validation"),
			Errors:  fields,
		})
		return
	}

	logger.FromCtx(r.Context()).Error("order persistence failed", zap.Error(err))

	resp := orderResponse{
		Success: false,
		Message: genericMessage("database"),
	}
	if h.dev {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}
