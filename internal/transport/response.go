package transport

import (
	"encoding/json"
	"net/http"

	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

// orderResponse is the uniform envelope both checkout endpoints return.
type orderResponse struct {
	Success           bool                `json:"success"`
	OrderID           string              `json:"orderId,omitempty"`
	PaymentVerified   *bool               `json:"paymentVerified,omitempty"`
	Message           string              `json:"message"`
	Errors            map[string][]string `json:"errors,omitempty"`
	RemainingAttempts *int                `json:"remainingAttempts,omitempty"`
	Error             string              `json:"error,omitempty"`
}

// genericMessages replaces internal error detail outside development mode,
// one message per failure context.
var genericMessages = map[string]string{
	"validation": "The submitted order data is not valid.",
	"payment":    "Payment verification could not be completed.",
	"database":   "The order could not be saved. Please try again later.",
	"email":      "The confirmation email could not be sent.",
	"general":    "An unexpected error occurred. Please try again later.",
}

func genericMessage(context string) string {
	if msg, ok := genericMessages[context]; ok {
		return msg
	}
	return genericMessages["general"]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L().Error("failed to encode response", zap.Error(err))
	}
}

// maskFieldErrors keeps the field attribution but strips message detail, so
// production responses reveal which fields failed without echoing analysis
// of the payload back to a probing client.
func maskFieldErrors(fields map[string][]string) map[string][]string {
	masked := make(map[string][]string, len(fields))
	for field := range fields {
		masked[field] = []string{"invalid value"}
	}
	return masked
}

func intPtr(n int) *int    { return &n }
func boolPtr(b bool) *bool { return &b }
