package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/lib/pq"
)

// PostgresProductStore keeps the catalog in the products table.
type PostgresProductStore struct {
	db *sql.DB
}

func NewPostgresProductStore(db *sql.DB) *PostgresProductStore {
	return &PostgresProductStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*product.Product, error) {
	var (
		p             product.Product
		category      string
		originalPrice sql.NullFloat64
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &originalPrice, &category, &p.Subcategory, &p.Brand,
		pq.Array(&p.Images), &p.Stock, &p.Rating.Average, &p.Rating.Count, pq.Array(&p.Features),
		&p.IsFeatured, &p.IsActive, pq.Array(&p.Tags), &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Category = product.Category(category)
	if originalPrice.Valid {
		v := originalPrice.Float64
		p.OriginalPrice = &v
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return &p, nil
}

func (s *PostgresProductStore) GetByID(ctx context.Context, id string) (*product.Product, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, product.ErrProductNotFound
	}
	if err != nil {
		return nil, unavailable("get product", err)
	}
	return p, nil
}

func (s *PostgresProductStore) GetByIDs(ctx context.Context, ids []string) (map[string]*product.Product, error) {
	result := make(map[string]*product.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return nil, unavailable("get products", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, unavailable("scan product", err)
		}
		result[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("get products", err)
	}
	return result, nil
}

func (s *PostgresProductStore) Find(ctx context.Context, filter ProductFilter, sort Sort, offset, limit int) ([]*product.Product, int, error) {
	pageSQL, countSQL, pageArgs, countArgs := buildFindQuery(filter, sort, offset, limit)

	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, unavailable("count products", err)
	}

	rows, err := s.db.QueryContext(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, unavailable("find products", err)
	}
	defer rows.Close()

	products := make([]*product.Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, unavailable("scan product", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, unavailable("find products", err)
	}
	return products, total, nil
}

// InsertMany writes all products in one transaction, in slice order.
func (s *PostgresProductStore) InsertMany(ctx context.Context, products []*product.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin insert", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO products (
		id, name, description, price, original_price, category, subcategory, brand,
		images, stock, rating_average, rating_count, features, is_featured, is_active, tags, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`)
	if err != nil {
		return unavailable("prepare insert", err)
	}
	defer stmt.Close()

	for _, p := range products {
		var originalPrice sql.NullFloat64
		if p.OriginalPrice != nil {
			originalPrice = sql.NullFloat64{Float64: *p.OriginalPrice, Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			p.ID, p.Name, p.Description, p.Price, originalPrice, string(p.Category), p.Subcategory, p.Brand,
			pq.Array(nonNil(p.Images)), p.Stock, p.Rating.Average, p.Rating.Count, pq.Array(nonNil(p.Features)),
			p.IsFeatured, p.IsActive, pq.Array(nonNil(p.Tags)), p.CreatedAt,
		)
		if err != nil {
			return unavailable("insert product "+p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return unavailable("commit insert", err)
	}
	return nil
}

func (s *PostgresProductStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM products"); err != nil {
		return unavailable("delete products", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
