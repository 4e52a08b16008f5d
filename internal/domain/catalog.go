package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CatalogItem struct {
	ID         string           `json:"id"`
	MerchantID string           `json:"-"`
	Name       string           `json:"name"`
	Images     []string         `json:"images,omitempty"`
	Attributes []string         `json:"attributes,omitempty"`
	Published  bool             `json:"published"`
	Remote     RemoteLink       `json:"remoteId"`
	CreatedAt  time.Time        `json:"createdAt"`
	Errors     ValidationErrors `json:"errors,omitempty"`
}

// VariantSpec is the desired state of one variant. An empty RemoteID marks a new variant.
type VariantSpec struct {
	RemoteID   string            `json:"remoteId,omitempty"`
	Price      decimal.Decimal   `json:"price"`
	Quantity   int               `json:"quantity"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// CatalogItemSpec carries the mutable fields pushed to the provider on create and update.
type CatalogItemSpec struct {
	Name       string        `json:"name"`
	Images     []string      `json:"images,omitempty"`
	Attributes []string      `json:"attributes,omitempty"`
	Published  bool          `json:"published"`
	Variants   []VariantSpec `json:"variants"`
}
