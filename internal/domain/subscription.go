package domain

import "time"

const (
	PlanPro     = "pro"
	PlanCompany = "company"
)

type Subscription struct {
	ID               string           `json:"id"`
	UserEmail        string           `json:"userEmail"`
	BillingToken     string           `json:"-"`
	Plan             string           `json:"plan"`
	PromoCode        string           `json:"promoCode,omitempty"`
	Remote           RemoteLink       `json:"remoteId"`
	RemoteCustomerID string           `json:"remoteCustomerId,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	Errors           ValidationErrors `json:"errors,omitempty"`
}

// Relink points the subscription at a replacement remote subscription.
func (s *Subscription) Relink(customerID, subscriptionID string) {
	s.RemoteCustomerID = customerID
	s.Remote = LinkedTo(subscriptionID)
}
