// Package seed loads demo data for manual testing.
package seed

import (
	"context"
	"fmt"

	"commerce-sync/internal/domain"
)

type MerchantWriter interface {
	Upsert(ctx context.Context, m domain.Merchant) (*domain.Merchant, error)
}

// DemoMerchants are written by Apply. The second one sells through the
// platform account and so has no remote catalog of its own.
var DemoMerchants = []domain.Merchant{
	{
		Key:          "demo",
		Name:         "Demo Store",
		SubAccountID: "acct_demo",
		Address: domain.Address{
			Line1:      "9500 Gilman Dr",
			City:       "La Jolla",
			State:      "CA",
			PostalCode: "92093",
			Country:    "US",
		},
	},
	{
		Key:  "platform",
		Name: "Platform Store",
		Address: domain.Address{
			Line1:      "1 Market St",
			City:       "San Francisco",
			State:      "CA",
			PostalCode: "94105",
			Country:    "US",
		},
	},
}

// Apply upserts the demo merchants. It is idempotent.
func Apply(ctx context.Context, merchants MerchantWriter) ([]domain.Merchant, error) {
	out := make([]domain.Merchant, 0, len(DemoMerchants))
	for _, m := range DemoMerchants {
		saved, err := merchants.Upsert(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("upsert merchant %s: %w", m.Key, err)
		}
		out = append(out, *saved)
	}
	return out, nil
}
