package domain

import (
	"strings"
	"time"
)

type Order struct {
	ID              string         `json:"id"`
	UserID          string         `json:"userId"`
	Items           []OrderItem    `json:"items"`
	ShippingAddress Address        `json:"shippingAddress"`
	PaymentMethod   PaymentMethod  `json:"paymentMethod"`
	ItemsCents      int64          `json:"itemsCents"`
	TaxCents        int64          `json:"taxCents"`
	ShippingCents   int64          `json:"shippingCents"`
	TotalCents      int64          `json:"totalCents"`
	Currency        string         `json:"currency"`
	IsPaid          bool           `json:"isPaid"`
	PaidAt          *time.Time     `json:"paidAt,omitempty"`
	IsDelivered     bool           `json:"isDelivered"`
	DeliveredAt     *time.Time     `json:"deliveredAt,omitempty"`
	PaymentResult   *PaymentResult `json:"paymentResult,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// OrderItem fields are copied by value from the snapshot at creation time so
// the order stays a durable receipt regardless of later catalog edits.
type OrderItem struct {
	ID             string `json:"id"`
	OrderID        string `json:"orderId"`
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	Image          string `json:"image,omitempty"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Validate reports ErrInvalidAddress when any field is empty.
func (a Address) Validate() error {
	for _, f := range []string{a.Street, a.City, a.PostalCode, a.Country} {
		if strings.TrimSpace(f) == "" {
			return ErrInvalidAddress
		}
	}
	return nil
}

type PaymentMethod string

const (
	PaymentMethodStripe         PaymentMethod = "stripe"
	PaymentMethodPayPal         PaymentMethod = "paypal"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodStripe, PaymentMethodPayPal, PaymentMethodCashOnDelivery:
		return true
	}
	return false
}

// PaymentResult records the gateway callback that settled an order.
type PaymentResult struct {
	TransactionID string     `json:"transactionId"`
	Status        string     `json:"status"`
	SettledAt     *time.Time `json:"settledAt,omitempty"`
	PayerEmail    string     `json:"payerEmail,omitempty"`
}
