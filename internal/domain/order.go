package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCreated   OrderStatus = "created"
	OrderStatusCanceled  OrderStatus = "canceled"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusFulfilled OrderStatus = "fulfilled"
	OrderStatusReturned  OrderStatus = "returned"
)

type PurchaseOrder struct {
	ID               string           `json:"id"`
	MerchantID       string           `json:"-"`
	ProductID        string           `json:"productId"`
	Remote           RemoteLink       `json:"remoteId"`
	Status           OrderStatus      `json:"status"`
	ShippingMethodID string           `json:"shippingMethodId,omitempty"`
	TaxCents         int64            `json:"taxCents"`
	CreatedAt        time.Time        `json:"createdAt"`
	Errors           ValidationErrors `json:"errors,omitempty"`
}

// Shipping is the recipient block sent with a remote order.
type Shipping struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone,omitempty"`
	Address Address `json:"address"`
}
