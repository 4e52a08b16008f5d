// Package tax quotes sales tax for purchase orders through the tax provider.
package tax

import (
	"context"
	"fmt"
	"io"
	"log"

	"commerce-sync/internal/domain"
	"commerce-sync/internal/gateway"
	"commerce-sync/internal/money"
	"github.com/shopspring/decimal"
)

var fieldLabels = []gateway.Rewrite{
	{Find: "to_zip", Replace: "Zip"},
	{Find: "to_state", Replace: "state"},
}

type Adapter struct {
	quoter gateway.TaxGateway
	logger *log.Logger
}

func NewAdapter(quoter gateway.TaxGateway, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Adapter{quoter: quoter, logger: logger}
}

// Quote sets order.TaxCents from a provider quote for shipping taxableCents
// from the merchant's address to the customer. On a provider error the
// message is recorded on the order and TaxCents is left untouched.
func (a *Adapter) Quote(ctx context.Context, order *domain.PurchaseOrder, merchant *domain.Merchant, taxableCents int64, to domain.Address) (*domain.PurchaseOrder, error) {
	quote, err := a.quoter.TaxForOrder(ctx, gateway.TaxQuoteRequest{
		From:     taxAddress(merchant.Address),
		To:       taxAddress(to),
		Amount:   money.FromMinor(taxableCents),
		Shipping: decimal.Zero,
	})
	if err != nil {
		if _, ok := gateway.AsError(err); !ok {
			a.logger.Printf("tax quote: order=%s error=%v", order.ID, err)
			return order, err
		}
		msg := gateway.Humanize(err, fieldLabels...)
		order.Errors.Add(msg)
		a.logger.Printf("tax quote: order=%s rejected: %s", order.ID, msg)
		return order, fmt.Errorf("%w: %s", domain.ErrRejected, msg)
	}
	order.TaxCents = money.ToMinor(quote.AmountToCollect)
	a.logger.Printf("tax quote: order=%s taxable=%d tax=%d", order.ID, taxableCents, order.TaxCents)
	return order, nil
}

func taxAddress(a domain.Address) gateway.TaxAddress {
	return gateway.TaxAddress{
		Street:  a.Line1,
		City:    a.City,
		State:   a.State,
		Zip:     a.PostalCode,
		Country: a.Country,
	}
}
