package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"storefront-be/internal/logger"
	"storefront-be/internal/validation"

	"go.uber.org/zap"
)

// CreateOutcome tags the result of persisting an order with its items, so
// callers can tell a fully persisted order from one whose line items were
// lost.
type CreateOutcome int

const (
	CreateFailed CreateOutcome = iota
	Created
	CreatedWithItemErrors
)

// CreateResult is the granular outcome of CreateWithItems. Err is set only
// when the outcome is CreateFailed; ItemErrors only when it is
// CreatedWithItemErrors.
type CreateResult struct {
	Outcome    CreateOutcome
	Order      *Order
	Err        error
	ItemErrors []error
}

type Repository interface {
	CreateOrder(ctx context.Context, o *Order) (*Order, error)
	CreateItems(ctx context.Context, orderID int64, items []Item) []error
	CreateWithItems(ctx context.Context, o *Order) CreateResult
	GetByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)
	ListOrders(ctx context.Context, limit, offset int) ([]*Order, error)
	UpdateStatus(ctx context.Context, orderNumber string, status Status) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// CreateOrder inserts the parent order row. A failure here is fatal to the
// request: nothing has been persisted and the caller must report failure.
func (r *repository) CreateOrder(ctx context.Context, o *Order) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrder"),
		zap.String("order_number", o.OrderNumber),
	)

	query := `
		INSERT INTO orders (
			order_number, customer_name, customer_email, customer_phone,
			billing_address, shipping_address, company_name, company_oib,
			needs_invoice, notes, total_amount, tax_amount, shipping_cost,
			discount, payment_method, payment_status, status, payment_intent_id
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		o.OrderNumber,
		o.CustomerName,
		o.CustomerEmail,
		o.CustomerPhone,
		o.BillingAddress,
		o.ShippingAddress,
		o.CompanyName,
		o.CompanyOIB,
		o.NeedsInvoice,
		o.Notes,
		o.TotalAmount,
		o.TaxAmount,
		o.ShippingCost,
		o.Discount,
		o.PaymentMethod,
		o.PaymentStatus,
		o.Status,
		o.PaymentIntentID,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)

	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	log.Info("order inserted", zap.Int64("order_id", o.ID))
	return o, nil
}

// CreateItems inserts the line items for an already persisted order. Each
// failure is collected and logged but none is fatal: the parent order
// exists and the customer must not be told otherwise. Subtotals are
// recomputed here from the sanitized quantity and unit price regardless of
// anything the client submitted.
func (r *repository) CreateItems(ctx context.Context, orderID int64, items []Item) []error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateItems"),
		zap.Int64("order_id", orderID),
	)

	query := `
		INSERT INTO order_items (
			order_id, product_id, product_name, quantity,
			unit_price, subtotal, width, height, options
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`

	var itemErrs []error
	for i := range items {
		item := &items[i]
		item.OrderID = orderID
		item.Subtotal = validation.Round2(item.UnitPrice * float64(item.Quantity))

		options, err := marshalOptions(item.Options)
		if err != nil {
			log.Error("failed to encode item options",
				zap.Int("item_index", i),
				zap.Error(err),
			)
			itemErrs = append(itemErrs, fmt.Errorf("item %d: %w", i, err))
			continue
		}

		_, err = r.db.ExecContext(ctx, query,
			orderID,
			item.ProductID,
			item.ProductName,
			item.Quantity,
			item.UnitPrice,
			item.Subtotal,
			item.Width,
			item.Height,
			options,
		)
		if err != nil {
			log.Error("failed to insert order item",
				zap.Int("item_index", i),
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
			itemErrs = append(itemErrs, fmt.Errorf("item %d: %w", i, err))
		}
	}

	return itemErrs
}

// CreateWithItems persists the order row and then its items, applying the
// per-stage failure policy: order failure is fatal, item failures degrade
// the result to CreatedWithItemErrors without failing the request.
func (r *repository) CreateWithItems(ctx context.Context, o *Order) CreateResult {
	created, err := r.CreateOrder(ctx, o)
	if err != nil {
		return CreateResult{Outcome: CreateFailed, Err: err}
	}

	itemErrs := r.CreateItems(ctx, created.ID, created.Items)
	if len(itemErrs) > 0 {
		logger.FromCtx(ctx).Warn("order persisted without some line items",
			zap.Int64("order_id", created.ID),
			zap.String("order_number", created.OrderNumber),
			zap.Int("failed_items", len(itemErrs)),
		)
		return CreateResult{Outcome: CreatedWithItemErrors, Order: created, ItemErrors: itemErrs}
	}

	return CreateResult{Outcome: Created, Order: created}
}

func (r *repository) GetByOrderNumber(ctx context.Context, orderNumber string) (*Order, error) {
	query := `
		SELECT id, order_number, customer_name, customer_email, customer_phone,
		       billing_address, shipping_address, notes, total_amount, tax_amount,
		       shipping_cost, discount, payment_method, payment_status, status,
		       payment_intent_id, created_at, updated_at
		FROM orders
		WHERE order_number = $1
	`

	var o Order
	err := r.db.QueryRowContext(ctx, query, orderNumber).Scan(
		&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.BillingAddress, &o.ShippingAddress, &o.Notes, &o.TotalAmount, &o.TaxAmount,
		&o.ShippingCost, &o.Discount, &o.PaymentMethod, &o.PaymentStatus, &o.Status,
		&o.PaymentIntentID, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, product_name, quantity, unit_price, subtotal
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPrice, &item.Subtotal); err != nil {
			return nil, err
		}
		item.OrderID = o.ID
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &o, nil
}

func (r *repository) ListOrders(ctx context.Context, limit, offset int) ([]*Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_number, customer_name, customer_email, total_amount,
		       payment_status, status, created_at, updated_at
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerEmail,
			&o.TotalAmount, &o.PaymentStatus, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *repository) UpdateStatus(ctx context.Context, orderNumber string, status Status) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW() WHERE order_number = $2
	`, status, orderNumber)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func marshalOptions(opts map[string]string) ([]byte, error) {
	if len(opts) == 0 {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}
	return data, nil
}
