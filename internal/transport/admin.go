package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront-be/internal/config"
	"storefront-be/internal/logger"
	"storefront-be/internal/middleware"
	"storefront-be/internal/order"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminHandler serves the back-office endpoints: token issuing, order
// listing and status updates.
type AdminHandler struct {
	svc order.Service
	cfg *config.Config
}

func NewAdminHandler(svc order.Service, cfg *config.Config) *AdminHandler {
	return &AdminHandler{svc: svc, cfg: cfg}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login handles POST /api/admin/login.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if h.cfg.AdminEmail == "" || h.cfg.AdminPasswordHash == "" || h.cfg.JWTSecret == "" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "admin access not configured"})
		return
	}

	if req.Email != h.cfg.AdminEmail ||
		bcrypt.CompareHashAndPassword([]byte(h.cfg.AdminPasswordHash), []byte(req.Password)) != nil {
		logger.FromCtx(r.Context()).Warn("admin login rejected", zap.String("email", req.Email))
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	token, err := middleware.IssueAdminToken([]byte(h.cfg.JWTSecret), req.Email)
	if err != nil {
		logger.FromCtx(r.Context()).Error("failed to sign admin token", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": genericMessage("general")})
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

type adminOrder struct {
	OrderNumber   string    `json:"orderNumber"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	TotalAmount   float64   `json:"totalAmount"`
	PaymentStatus string    `json:"paymentStatus"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ListOrders handles GET /api/admin/orders.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	orders, err := h.svc.ListOrders(r.Context(), limit, offset)
	if err != nil {
		logger.FromCtx(r.Context()).Error("failed to list orders", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": genericMessage("database")})
		return
	}

	out := make([]adminOrder, 0, len(orders))
	for _, o := range orders {
		out = append(out, adminOrder{
			OrderNumber:   o.OrderNumber,
			CustomerName:  o.CustomerName,
			CustomerEmail: o.CustomerEmail,
			TotalAmount:   o.TotalAmount,
			PaymentStatus: string(o.PaymentStatus),
			Status:        string(o.Status),
			CreatedAt:     o.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": out})
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /api/admin/orders/{orderNumber}/status.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")

	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	err := h.svc.UpdateStatus(r.Context(), orderNumber, order.Status(req.Status))
	switch {
	case errors.Is(err, order.ErrInvalidStatus):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown order status"})
	case errors.Is(err, order.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
	case err != nil:
		logger.FromCtx(r.Context()).Error("failed to update order status", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": genericMessage("database")})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"orderNumber": orderNumber, "status": req.Status})
	}
}
