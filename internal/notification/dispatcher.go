package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"storefront-be/internal/logger"
	"storefront-be/internal/order"

	"go.uber.org/zap"
)

// Dispatcher posts order confirmations to the notification endpoint. It is
// strictly best effort: every failure is logged and swallowed, so sending a
// confirmation can never change the outcome of an already accepted order.
type Dispatcher struct {
	endpoint   string
	httpClient *http.Client
}

func NewDispatcher(endpoint string) *Dispatcher {
	if endpoint == "" {
		logger.L().Warn("notification endpoint not configured, confirmations disabled")
	}

	return &Dispatcher{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type confirmationPayload struct {
	OrderNumber   string  `json:"orderNumber"`
	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
	TotalAmount   float64 `json:"totalAmount"`
	ItemCount     int     `json:"itemCount"`
	PaymentStatus string  `json:"paymentStatus"`
}

func (d *Dispatcher) SendOrderConfirmation(ctx context.Context, o *order.Order) {
	if d.endpoint == "" {
		return
	}

	log := logger.FromCtx(ctx).With(
		zap.String("order_number", o.OrderNumber),
		zap.String("endpoint", d.endpoint),
	)

	payload := confirmationPayload{
		OrderNumber:   o.OrderNumber,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		TotalAmount:   o.TotalAmount,
		ItemCount:     len(o.Items),
		PaymentStatus: string(o.PaymentStatus),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Error("failed to encode confirmation payload", zap.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		log.Error("failed to build confirmation request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		log.Warn("order confirmation delivery failed", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn("notification endpoint rejected confirmation",
			zap.Int("status", resp.StatusCode),
		)
		return
	}

	log.Info("order confirmation sent")
}
