package checkout

import (
	"epdq-gateway/internal/signature"

	"github.com/shopspring/decimal"
)

type Money struct {
	Number       decimal.Decimal `json:"number"`
	CurrencyCode string          `json:"currency_code"`
}

type Address struct {
	GivenName      string `json:"given_name"`
	AdditionalName string `json:"additional_name,omitempty"`
	FamilyName     string `json:"family_name"`
	AddressLine1   string `json:"address_line1"`
	AddressLine2   string `json:"address_line2,omitempty"`
	Locality       string `json:"locality"`
	PostalCode     string `json:"postal_code"`
	CountryCode    string `json:"country_code"`
}

// Order is the read-only view of the host platform's order.
type Order interface {
	OrderID() string
	OrderTotal() Money
	BillingAddress() Address
	StoreName() string
	CustomerEmail() string
}

// Payment is the amount being charged for an order.
type Payment struct {
	Amount Money
}

// ReturnURLs are the caller's fallback accept and cancel targets.
type ReturnURLs struct {
	Return string
	Cancel string
}

// RedirectRequest is the signed form the shopper's browser posts to URL.
type RedirectRequest struct {
	URL    string
	Params signature.Params
}

// OrderSnapshot is a plain Order built from request data.
type OrderSnapshot struct {
	ID      string  `json:"order_id"`
	Total   Money   `json:"total"`
	Billing Address `json:"billing_address"`
	Store   string  `json:"store_name"`
	Email   string  `json:"email"`
}

func (o OrderSnapshot) OrderID() string         { return o.ID }
func (o OrderSnapshot) OrderTotal() Money       { return o.Total }
func (o OrderSnapshot) BillingAddress() Address { return o.Billing }
func (o OrderSnapshot) StoreName() string       { return o.Store }
func (o OrderSnapshot) CustomerEmail() string   { return o.Email }
