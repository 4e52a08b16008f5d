package merchant

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

const columns = `id::text, key, name, sub_account_id, address_line1, address_line2, city, state, postal_code, country, created_at`

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

func (r *postgresRepo) GetByKey(ctx context.Context, key string) (*domain.Merchant, error) {
	q := `SELECT ` + columns + ` FROM merchants WHERE key = $1`
	m, err := r.scan(r.pool.QueryRow(ctx, q, key))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.logger.Printf("merchant repo: get key=%s error=%v", key, err)
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Merchant, error) {
	q := `SELECT ` + columns + ` FROM merchants WHERE id = $1`
	m, err := r.scan(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.logger.Printf("merchant repo: get id=%s error=%v", id, err)
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresRepo) Create(ctx context.Context, m domain.Merchant) (*domain.Merchant, error) {
	q := `
INSERT INTO merchants (key, name, sub_account_id, address_line1, address_line2, city, state, postal_code, country)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9)
RETURNING ` + columns
	out, err := r.scan(r.pool.QueryRow(ctx, q, args(m)...))
	if err != nil {
		r.logger.Printf("merchant repo: create key=%s error=%v", m.Key, err)
		return nil, err
	}
	r.logger.Printf("merchant repo: created key=%s id=%s", out.Key, out.ID)
	return out, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, m domain.Merchant) (*domain.Merchant, error) {
	q := `
INSERT INTO merchants (key, name, sub_account_id, address_line1, address_line2, city, state, postal_code, country)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9)
ON CONFLICT (key) DO UPDATE SET
    name = EXCLUDED.name,
    sub_account_id = EXCLUDED.sub_account_id,
    address_line1 = EXCLUDED.address_line1,
    address_line2 = EXCLUDED.address_line2,
    city = EXCLUDED.city,
    state = EXCLUDED.state,
    postal_code = EXCLUDED.postal_code,
    country = EXCLUDED.country
RETURNING ` + columns
	out, err := r.scan(r.pool.QueryRow(ctx, q, args(m)...))
	if err != nil {
		r.logger.Printf("merchant repo: upsert key=%s error=%v", m.Key, err)
		return nil, err
	}
	r.logger.Printf("merchant repo: upserted key=%s id=%s", out.Key, out.ID)
	return out, nil
}

func args(m domain.Merchant) []any {
	return []any{
		m.Key,
		m.Name,
		m.SubAccountID,
		m.Address.Line1,
		m.Address.Line2,
		m.Address.City,
		m.Address.State,
		m.Address.PostalCode,
		m.Address.Country,
	}
}

func (r *postgresRepo) scan(row pgx.Row) (*domain.Merchant, error) {
	var (
		m          domain.Merchant
		subAccount *string
	)
	err := row.Scan(
		&m.ID,
		&m.Key,
		&m.Name,
		&subAccount,
		&m.Address.Line1,
		&m.Address.Line2,
		&m.Address.City,
		&m.Address.State,
		&m.Address.PostalCode,
		&m.Address.Country,
		&m.CreatedAt,
	)
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
	if subAccount != nil {
		m.SubAccountID = *subAccount
	}
	return &m, nil
}
