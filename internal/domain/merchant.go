package domain

import "time"

// Address is a postal address used for shipping and tax origin/destination.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Merchant owns catalog items and orders. An empty SubAccountID routes remote calls to the platform account.
type Merchant struct {
	ID           string    `json:"id"`
	Key          string    `json:"key"`
	Name         string    `json:"name"`
	SubAccountID string    `json:"subAccountId,omitempty"`
	Address      Address   `json:"address"`
	CreatedAt    time.Time `json:"createdAt"`
}
