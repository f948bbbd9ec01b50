package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iamasit07/4-in-a-row/arena/internal/domain"
)

type VariantRepo struct {
	DB *sql.DB
}

func NewVariantRepo(db *sql.DB) *VariantRepo {
	return &VariantRepo{DB: db}
}

func (r *VariantRepo) CreateVariant(ctx context.Context, v domain.Variant) error {
	query := `INSERT INTO variants (name, columns, rows, connect) VALUES ($1, $2, $3, $4);`
	if _, err := r.DB.ExecContext(ctx, query, v.Name, v.Columns, v.Rows, v.Connect); err != nil {
		return fmt.Errorf("failed to create variant: %w", translate(err))
	}
	return nil
}

func (r *VariantRepo) GetVariant(ctx context.Context, name string) (domain.Variant, error) {
	query := `SELECT name, columns, rows, connect FROM variants WHERE name = $1;`
	var v domain.Variant
	err := r.DB.QueryRowContext(ctx, query, name).Scan(&v.Name, &v.Columns, &v.Rows, &v.Connect)
	if err != nil {
		return domain.Variant{}, fmt.Errorf("failed to get variant %q: %w", name, translate(err))
	}
	return v, nil
}

func (r *VariantRepo) ListVariants(ctx context.Context) ([]domain.Variant, error) {
	query := `SELECT name, columns, rows, connect FROM variants ORDER BY name;`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}
	defer rows.Close()

	variants := []domain.Variant{}
	for rows.Next() {
		var v domain.Variant
		if err := rows.Scan(&v.Name, &v.Columns, &v.Rows, &v.Connect); err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}
