// Package gateway describes the remote commerce and tax providers as the sync
// core consumes them: capability interfaces per resource kind, the provider-side
// mirror types, sub-account scoping and the provider error hierarchy.
package gateway

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Scope routes a call to a connected merchant's sub-account. The zero value targets the platform account.
type Scope struct {
	SubAccount string
}

// ScopeFor returns the scope for a merchant sub-account id, which may be empty.
func ScopeFor(subAccount string) Scope {
	return Scope{SubAccount: subAccount}
}

func (s Scope) Platform() bool {
	return s.SubAccount == ""
}

const (
	InventoryFinite = "finite"
	ItemTypeSKU     = "sku"
	StatusAll       = "all"
)

type Inventory struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
}

type Variant struct {
	ID          string            `json:"id"`
	CatalogItem string            `json:"product"`
	Price       int64             `json:"price"`
	Currency    string            `json:"currency"`
	Attributes  map[string]string `json:"attributes"`
	Inventory   Inventory         `json:"inventory"`
	Active      bool              `json:"active"`
}

type VariantParams struct {
	CatalogItem string
	Price       int64
	Currency    string
	Attributes  map[string]string
	Inventory   Inventory
}

type CatalogItem struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Images     []string          `json:"images"`
	Shippable  bool              `json:"shippable"`
	Attributes []string          `json:"attributes"`
	Metadata   map[string]string `json:"metadata"`
	Variants   []Variant         `json:"skus"`
}

type CatalogItemParams struct {
	Name       string
	Images     []string
	Shippable  bool
	Attributes []string
	Metadata   map[string]string
}

type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type Shipping struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone,omitempty"`
	Address Address `json:"address"`
}

type OrderItem struct {
	Type        string `json:"type"`
	Parent      string `json:"parent"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
}

type PurchaseOrder struct {
	ID                     string            `json:"id"`
	Status                 string            `json:"status"`
	Currency               string            `json:"currency"`
	Email                  string            `json:"email"`
	Amount                 int64             `json:"amount"`
	Shipping               Shipping          `json:"shipping"`
	Items                  []OrderItem       `json:"items"`
	SelectedShippingMethod string            `json:"selected_shipping_method"`
	Metadata               map[string]string `json:"metadata"`
}

type PurchaseOrderParams struct {
	Currency string
	Email    string
	Shipping Shipping
	Items    []OrderItem
	Metadata map[string]string
}

type Subscription struct {
	ID                string `json:"id"`
	Customer          string `json:"customer"`
	Plan              string `json:"plan"`
	Status            string `json:"status"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
}

type Customer struct {
	ID            string         `json:"id"`
	Email         string         `json:"email"`
	Subscriptions []Subscription `json:"subscriptions"`
}

type CustomerParams struct {
	Source string
	Plan   string
	Email  string
	Coupon string
}

type SubscriptionFilter struct {
	Customer string
	Status   string
}

type TaxAddress struct {
	Street  string
	City    string
	State   string
	Zip     string
	Country string
}

type TaxQuoteRequest struct {
	From     TaxAddress
	To       TaxAddress
	Amount   decimal.Decimal
	Shipping decimal.Decimal
}

type TaxQuote struct {
	AmountToCollect decimal.Decimal
}

type VariantGateway interface {
	CreateVariant(ctx context.Context, params VariantParams, scope Scope) (*Variant, error)
	RetrieveVariant(ctx context.Context, id string, scope Scope) (*Variant, error)
	UpdateVariant(ctx context.Context, v *Variant, scope Scope) (*Variant, error)
	DeleteVariant(ctx context.Context, id string, scope Scope) error
}

type CatalogItemGateway interface {
	CreateCatalogItem(ctx context.Context, params CatalogItemParams, scope Scope) (*CatalogItem, error)
	RetrieveCatalogItem(ctx context.Context, id string, scope Scope) (*CatalogItem, error)
	UpdateCatalogItem(ctx context.Context, item *CatalogItem, scope Scope) (*CatalogItem, error)
	DeleteCatalogItem(ctx context.Context, id string, scope Scope) error
	ListCatalogItems(ctx context.Context, ids []string, scope Scope) ([]CatalogItem, error)
}

type PurchaseOrderGateway interface {
	CreatePurchaseOrder(ctx context.Context, params PurchaseOrderParams, scope Scope) (*PurchaseOrder, error)
	RetrievePurchaseOrder(ctx context.Context, id string, scope Scope) (*PurchaseOrder, error)
	UpdatePurchaseOrder(ctx context.Context, order *PurchaseOrder, scope Scope) (*PurchaseOrder, error)
	PayPurchaseOrder(ctx context.Context, id, source string, scope Scope) (*PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context, ids []string, scope Scope) ([]PurchaseOrder, error)
}

type SubscriptionGateway interface {
	CreateCustomer(ctx context.Context, params CustomerParams) (*Customer, error)
	ListSubscriptions(ctx context.Context, filter SubscriptionFilter) ([]Subscription, error)
	CancelSubscription(ctx context.Context, id string, atPeriodEnd bool) (*Subscription, error)
	UpdateSubscription(ctx context.Context, sub *Subscription) (*Subscription, error)
}

type TaxGateway interface {
	TaxForOrder(ctx context.Context, req TaxQuoteRequest) (*TaxQuote, error)
}

// Commerce is the full commerce provider surface.
type Commerce interface {
	VariantGateway
	CatalogItemGateway
	PurchaseOrderGateway
	SubscriptionGateway
}

// AttributeString renders the variant's attribute values separated by single
// spaces: keys listed in order come first, the remaining keys follow sorted.
func (v Variant) AttributeString(order []string) string {
	seen := make(map[string]bool, len(order))
	values := make([]string, 0, len(v.Attributes))
	for _, k := range order {
		seen[k] = true
		if val := strings.TrimSpace(v.Attributes[k]); val != "" {
			values = append(values, val)
		}
	}
	rest := make([]string, 0, len(v.Attributes))
	for k := range v.Attributes {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		if val := strings.TrimSpace(v.Attributes[k]); val != "" {
			values = append(values, val)
		}
	}
	return strings.Join(values, " ")
}
