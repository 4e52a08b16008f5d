package order

import (
	"context"
	"errors"
	"io"
	"log"

	"commerce-sync/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const columns = `id::text, merchant_id::text, product_id::text, remote_id, status, shipping_method_id, tax_cents, errors, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) ListByMerchant(ctx context.Context, merchantID string) ([]domain.PurchaseOrder, error) {
	q := `SELECT ` + columns + ` FROM purchase_orders WHERE merchant_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, merchantID)
	if err != nil {
		r.logger.Printf("order repo: list merchant_id=%s error=%v", merchantID, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.PurchaseOrder
	for rows.Next() {
		o, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("order repo: list rows merchant_id=%s error=%v", merchantID, err)
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, merchantID, id string) (*domain.PurchaseOrder, error) {
	q := `SELECT ` + columns + ` FROM purchase_orders WHERE merchant_id = $1 AND id = $2`
	o, err := scan(r.pool.QueryRow(ctx, q, merchantID, id))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.logger.Printf("order repo: get merchant_id=%s id=%s error=%v", merchantID, id, err)
		}
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) Create(ctx context.Context, order domain.PurchaseOrder) (*domain.PurchaseOrder, error) {
	status := order.Status
	if status == "" {
		status = domain.OrderStatusPending
	}
	q := `
INSERT INTO purchase_orders (merchant_id, product_id, remote_id, status, shipping_method_id, tax_cents, errors)
VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, '{}'::text[]))
RETURNING ` + columns
	out, err := scan(r.pool.QueryRow(ctx, q,
		order.MerchantID,
		order.ProductID,
		order.Remote.Nullable(),
		string(status),
		order.ShippingMethodID,
		order.TaxCents,
		[]string(order.Errors),
	))
	if err != nil {
		r.logger.Printf("order repo: create merchant_id=%s product_id=%s error=%v", order.MerchantID, order.ProductID, err)
		return nil, err
	}
	r.logger.Printf("order repo: created merchant_id=%s id=%s", out.MerchantID, out.ID)
	return out, nil
}

func (r *postgresRepo) SaveOrder(ctx context.Context, order *domain.PurchaseOrder) error {
	const q = `
UPDATE purchase_orders
SET remote_id = $3,
    status = $4,
    shipping_method_id = $5,
    tax_cents = $6,
    errors = COALESCE($7, '{}'::text[])
WHERE merchant_id = $1 AND id = $2
`
	tag, err := r.pool.Exec(ctx, q,
		order.MerchantID,
		order.ID,
		order.Remote.Nullable(),
		string(order.Status),
		order.ShippingMethodID,
		order.TaxCents,
		[]string(order.Errors),
	)
	if err != nil {
		r.logger.Printf("order repo: save id=%s error=%v", order.ID, err)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("order repo: saved id=%s status=%s remote=%s", order.ID, order.Status, order.Remote.ID())
	return nil
}

// SaveErrors writes only the error list, leaving status and links as stored.
func (r *postgresRepo) SaveErrors(ctx context.Context, order *domain.PurchaseOrder) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE purchase_orders SET errors = COALESCE($3, '{}'::text[]) WHERE merchant_id = $1 AND id = $2`,
		order.MerchantID, order.ID, []string(order.Errors))
	if err != nil {
		r.logger.Printf("order repo: save errors id=%s error=%v", order.ID, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scan(row pgx.Row) (*domain.PurchaseOrder, error) {
	var (
		o      domain.PurchaseOrder
		remote *string
		status string
		errs   []string
	)
	err := row.Scan(
		&o.ID,
		&o.MerchantID,
		&o.ProductID,
		&remote,
		&status,
		&o.ShippingMethodID,
		&o.TaxCents,
		&errs,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	o.Remote = domain.LinkFromNullable(remote)
	o.Status = domain.OrderStatus(status)
	o.Errors = errs
	return &o, nil
}
