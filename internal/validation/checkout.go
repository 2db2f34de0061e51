package validation

import (
	"fmt"
	"strings"
)

// CheckoutSubmission is the untrusted payload a storefront client posts at
// checkout. Field names follow the public JSON contract.
type CheckoutSubmission struct {
	Customer        Customer   `json:"customer"`
	Items           []LineItem `json:"items"`
	Notes           string     `json:"notes,omitempty"`
	TotalAmount     float64    `json:"totalAmount"`
	TaxAmount       float64    `json:"taxAmount,omitempty"`
	ShippingCost    float64    `json:"shippingCost,omitempty"`
	Discount        float64    `json:"discount,omitempty"`
	PaymentIntentID string     `json:"paymentIntentId,omitempty"`
}

type Customer struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	ShippingAddress string `json:"shippingAddress,omitempty"`
	CompanyName     string `json:"companyName,omitempty"`
	CompanyOIB      string `json:"companyOib,omitempty"`
	NeedsInvoice    bool   `json:"needsInvoice,omitempty"`
}

type LineItem struct {
	ProductID   string            `json:"productId"`
	ProductName string            `json:"productName"`
	Quantity    int               `json:"quantity"`
	Price       float64           `json:"price"`
	Subtotal    float64           `json:"subtotal,omitempty"` // ignored; recomputed server-side
	Width       float64           `json:"width,omitempty"`
	Height      float64           `json:"height,omitempty"`
	Options     map[string]string `json:"options,omitempty"`
}

// CleanOrder carries the sanitized checkout data under the names the order
// repository persists, so it can be consumed without re-mapping.
type CleanOrder struct {
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	BillingAddress  string
	ShippingAddress string
	CompanyName     string
	CompanyOIB      string
	NeedsInvoice    bool
	Notes           string
	TotalAmount     float64
	TaxAmount       float64
	ShippingCost    float64
	Discount        float64
	Items           []CleanItem
}

type CleanItem struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   float64
	Width       float64
	Height      float64
	Options     map[string]string
}

// Result aggregates every field validation over one checkout payload.
// Valid is true exactly when Errors is empty; Order is non-nil only then.
type Result struct {
	Valid  bool
	Errors map[string][]string
	Order  *CleanOrder
}

func (r *Result) addErrors(field string, errs []string) {
	if len(errs) == 0 {
		return
	}
	r.Errors[field] = append(r.Errors[field], errs...)
}

// ValidateCheckout validates and sanitizes a full checkout submission.
// This is the single hard-fail gate of the intake pipeline: when the result
// is invalid nothing downstream (gateway, datastore) may be touched.
func ValidateCheckout(sub CheckoutSubmission) Result {
	res := Result{Errors: map[string][]string{}}
	clean := CleanOrder{}

	name := ValidateName(sub.Customer.FullName)
	res.addErrors("customer_name", name.Errors)
	clean.CustomerName = name.Sanitized

	email := ValidateEmail(sub.Customer.Email)
	res.addErrors("customer_email", email.Errors)
	clean.CustomerEmail = email.Sanitized

	phone := ValidatePhone(sub.Customer.Phone)
	res.addErrors("customer_phone", phone.Errors)
	clean.CustomerPhone = phone.Sanitized

	billing := ValidateAddress(sub.Customer.Address)
	res.addErrors("billing_address", billing.Errors)
	clean.BillingAddress = billing.Sanitized

	// Shipping address is validated only when it is present and differs
	// from billing; otherwise the sanitized billing address is reused.
	shippingRaw := strings.TrimSpace(sub.Customer.ShippingAddress)
	if shippingRaw == "" || shippingRaw == strings.TrimSpace(sub.Customer.Address) {
		clean.ShippingAddress = billing.Sanitized
	} else {
		shipping := ValidateAddress(sub.Customer.ShippingAddress)
		res.addErrors("shipping_address", shipping.Errors)
		clean.ShippingAddress = shipping.Sanitized
	}

	// Company block matters only for invoiced orders.
	clean.NeedsInvoice = sub.Customer.NeedsInvoice
	if sub.Customer.NeedsInvoice {
		company := ValidateCompanyName(sub.Customer.CompanyName)
		res.addErrors("company_name", company.Errors)
		clean.CompanyName = company.Sanitized

		oib := ValidateOIB(sub.Customer.CompanyOIB)
		res.addErrors("company_oib", oib.Errors)
		clean.CompanyOIB = oib.Sanitized
	}

	total := ValidateAmount(sub.TotalAmount, MinAmount, MaxAmount)
	res.addErrors("total_amount", total.Errors)
	clean.TotalAmount = total.Sanitized

	if sub.TaxAmount != 0 {
		tax := ValidateAmount(sub.TaxAmount, 0, MaxAmount)
		res.addErrors("tax_amount", tax.Errors)
		clean.TaxAmount = tax.Sanitized
	}
	if sub.ShippingCost != 0 {
		shipping := ValidateAmount(sub.ShippingCost, 0, MaxAmount)
		res.addErrors("shipping_cost", shipping.Errors)
		clean.ShippingCost = shipping.Sanitized
	}
	if sub.Discount != 0 {
		discount := ValidateAmount(sub.Discount, 0, MaxAmount)
		res.addErrors("discount", discount.Errors)
		clean.Discount = discount.Sanitized
	}

	notes := ValidateNotes(sub.Notes)
	res.addErrors("notes", notes.Errors)
	clean.Notes = notes.Sanitized

	if len(sub.Items) == 0 {
		res.addErrors("items", []string{"order must contain at least one item"})
	}

	for i, item := range sub.Items {
		prefix := fmt.Sprintf("items[%d]", i)

		name := ValidateProductName(item.ProductName)
		res.addErrors(prefix+".product_name", name.Errors)

		qty := ValidateQuantity(item.Quantity)
		res.addErrors(prefix+".quantity", qty.Errors)

		price := ValidateAmount(item.Price, MinAmount, MaxAmount)
		res.addErrors(prefix+".unit_price", price.Errors)

		clean.Items = append(clean.Items, CleanItem{
			ProductID:   Sanitize(item.ProductID),
			ProductName: name.Sanitized,
			Quantity:    item.Quantity,
			UnitPrice:   price.Sanitized,
			Width:       item.Width,
			Height:      item.Height,
			Options:     sanitizeOptions(item.Options),
		})
	}

	res.Valid = len(res.Errors) == 0
	if res.Valid {
		res.Order = &clean
	}
	return res
}

func sanitizeOptions(opts map[string]string) map[string]string {
	if len(opts) == 0 {
		return nil
	}
	out := make(map[string]string, len(opts))
	for k, v := range opts {
		out[Sanitize(k)] = Sanitize(v)
	}
	return out
}
