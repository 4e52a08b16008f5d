package catalogitem

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

const columns = `id::text, merchant_id::text, name, images, display_attributes, published, remote_id, errors, created_at`

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

func (r *postgresRepo) ListByMerchant(ctx context.Context, merchantID string) ([]domain.CatalogItem, error) {
	q := `SELECT ` + columns + ` FROM catalog_items WHERE merchant_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, merchantID)
	if err != nil {
		r.logger.Printf("catalog item repo: list merchant_id=%s error=%v", merchantID, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.CatalogItem
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("catalog item repo: list rows merchant_id=%s error=%v", merchantID, err)
		return nil, err
	}
	r.logger.Printf("catalog item repo: list merchant_id=%s count=%d", merchantID, len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, merchantID, id string) (*domain.CatalogItem, error) {
	q := `SELECT ` + columns + ` FROM catalog_items WHERE merchant_id = $1 AND id = $2`
	item, err := scan(r.pool.QueryRow(ctx, q, merchantID, id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Printf("catalog item repo: get merchant_id=%s id=%s not found", merchantID, id)
			return nil, err
		}
		r.logger.Printf("catalog item repo: get merchant_id=%s id=%s error=%v", merchantID, id, err)
		return nil, err
	}
	return item, nil
}

func (r *postgresRepo) Create(ctx context.Context, item domain.CatalogItem) (*domain.CatalogItem, error) {
	q := `
INSERT INTO catalog_items (merchant_id, name, images, display_attributes, published, remote_id, errors)
VALUES ($1, $2, COALESCE($3, '{}'::text[]), COALESCE($4, '{}'::text[]), $5, $6, COALESCE($7, '{}'::text[]))
RETURNING ` + columns
	out, err := scan(r.pool.QueryRow(ctx, q,
		item.MerchantID,
		item.Name,
		item.Images,
		item.Attributes,
		item.Published,
		item.Remote.Nullable(),
		[]string(item.Errors),
	))
	if err != nil {
		r.logger.Printf("catalog item repo: create merchant_id=%s name=%q error=%v", item.MerchantID, item.Name, err)
		return nil, err
	}
	r.logger.Printf("catalog item repo: created merchant_id=%s id=%s", out.MerchantID, out.ID)
	return out, nil
}

func (r *postgresRepo) SaveCatalogItem(ctx context.Context, item *domain.CatalogItem) error {
	const q = `
UPDATE catalog_items
SET name = $3,
    images = COALESCE($4, '{}'::text[]),
    display_attributes = COALESCE($5, '{}'::text[]),
    published = $6,
    remote_id = $7,
    errors = COALESCE($8, '{}'::text[])
WHERE merchant_id = $1 AND id = $2
`
	tag, err := r.pool.Exec(ctx, q,
		item.MerchantID,
		item.ID,
		item.Name,
		item.Images,
		item.Attributes,
		item.Published,
		item.Remote.Nullable(),
		[]string(item.Errors),
	)
	if err != nil {
		r.logger.Printf("catalog item repo: save id=%s error=%v", item.ID, err)
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("catalog item repo: saved id=%s remote=%s", item.ID, item.Remote.ID())
	return nil
}

// SaveErrors writes only the error list.
func (r *postgresRepo) SaveErrors(ctx context.Context, item *domain.CatalogItem) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE catalog_items SET errors = COALESCE($3, '{}'::text[]) WHERE merchant_id = $1 AND id = $2`,
		item.MerchantID, item.ID, []string(item.Errors))
	if err != nil {
		r.logger.Printf("catalog item repo: save errors id=%s error=%v", item.ID, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, merchantID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM catalog_items WHERE merchant_id = $1 AND id = $2`, merchantID, id)
	if err != nil {
		r.logger.Printf("catalog item repo: delete id=%s error=%v", id, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("catalog item repo: deleted merchant_id=%s id=%s", merchantID, id)
	return nil
}

func scan(row pgx.Row) (*domain.CatalogItem, error) {
	var (
		item   domain.CatalogItem
		remote *string
		errs   []string
	)
	err := row.Scan(
		&item.ID,
		&item.MerchantID,
		&item.Name,
		&item.Images,
		&item.Attributes,
		&item.Published,
		&remote,
		&errs,
		&item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	item.Remote = domain.LinkFromNullable(remote)
	item.Errors = errs
	return &item, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
