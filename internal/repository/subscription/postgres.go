package subscription

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"commerce-sync/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const columns = `id::text, user_email, plan, promo_code, remote_id, remote_customer_id, errors, created_at`

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

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Subscription, error) {
	q := `SELECT ` + columns + ` FROM subscriptions WHERE id = $1`
	return r.get(ctx, "id="+id, q, id)
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.Subscription, error) {
	q := `SELECT ` + columns + ` FROM subscriptions WHERE lower(user_email) = lower($1) LIMIT 1`
	return r.get(ctx, "email="+email, q, email)
}

func (r *postgresRepo) get(ctx context.Context, key, q string, arg string) (*domain.Subscription, error) {
	s, err := scan(r.pool.QueryRow(ctx, q, arg))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.logger.Printf("subscription repo: get %s error=%v", key, err)
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresRepo) Create(ctx context.Context, sub domain.Subscription) (*domain.Subscription, error) {
	q := `
INSERT INTO subscriptions (user_email, plan, promo_code, remote_id, remote_customer_id, errors)
VALUES ($1, $2, $3, $4, $5, COALESCE($6, '{}'::text[]))
RETURNING ` + columns
	out, err := scan(r.pool.QueryRow(ctx, q,
		strings.ToLower(sub.UserEmail),
		sub.Plan,
		sub.PromoCode,
		sub.Remote.Nullable(),
		sub.RemoteCustomerID,
		[]string(sub.Errors),
	))
	if err != nil {
		if !errors.Is(err, domain.ErrAlreadyExists) {
			r.logger.Printf("subscription repo: create email=%s error=%v", sub.UserEmail, err)
		}
		return nil, err
	}
	out.BillingToken = sub.BillingToken
	r.logger.Printf("subscription repo: created id=%s plan=%s", out.ID, out.Plan)
	return out, nil
}

func (r *postgresRepo) SaveSubscription(ctx context.Context, sub *domain.Subscription) error {
	const q = `
UPDATE subscriptions
SET plan = $2,
    promo_code = $3,
    remote_id = $4,
    remote_customer_id = $5,
    errors = COALESCE($6, '{}'::text[])
WHERE id = $1
`
	tag, err := r.pool.Exec(ctx, q,
		sub.ID,
		sub.Plan,
		sub.PromoCode,
		sub.Remote.Nullable(),
		sub.RemoteCustomerID,
		[]string(sub.Errors),
	)
	if err != nil {
		r.logger.Printf("subscription repo: save id=%s error=%v", sub.ID, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("subscription repo: saved id=%s remote=%s", sub.ID, sub.Remote.ID())
	return nil
}

// SaveErrors writes only the error list, so a rejected plan or promo code is not stored.
func (r *postgresRepo) SaveErrors(ctx context.Context, sub *domain.Subscription) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE subscriptions SET errors = COALESCE($2, '{}'::text[]) WHERE id = $1`,
		sub.ID, []string(sub.Errors))
	if err != nil {
		r.logger.Printf("subscription repo: save errors id=%s error=%v", sub.ID, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scan(row pgx.Row) (*domain.Subscription, error) {
	var (
		s      domain.Subscription
		remote *string
		errs   []string
	)
	err := row.Scan(&s.ID, &s.UserEmail, &s.Plan, &s.PromoCode, &remote, &s.RemoteCustomerID, &errs, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	s.Remote = domain.LinkFromNullable(remote)
	s.Errors = errs
	return &s, nil
}
