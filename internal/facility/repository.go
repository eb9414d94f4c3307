package facility

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, f *Facility) error
	GetByID(ctx context.Context, id string) (*Facility, error)
	List(ctx context.Context, filter Filter) ([]*Facility, error)
	Update(ctx context.Context, f *Facility) error

	// ListWithCoordinates returns facilities that have both latitude and
	// longitude set, optionally filtered by category.
	ListWithCoordinates(ctx context.Context, category string) ([]*Facility, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const facilityColumns = `id, name, category, description, building, floor, campus,
	latitude, longitude, hours, image_url, max_capacity, created_at, updated_at`

func scanFacility(row pgx.Row) (*Facility, error) {
	var f Facility
	if err := row.Scan(
		&f.ID, &f.Name, &f.Category, &f.Description, &f.Building, &f.Floor, &f.Campus,
		&f.Latitude, &f.Longitude, &f.Hours, &f.ImageURL, &f.MaxCapacity,
		&f.CreatedAt, &f.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *pgxRepository) Create(ctx context.Context, f *Facility) error {
	const query = `
		INSERT INTO public.facilities
			(name, category, description, building, floor, campus,
			 latitude, longitude, hours, image_url, max_capacity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		f.Name, f.Category, f.Description, f.Building, f.Floor, f.Campus,
		f.Latitude, f.Longitude, f.Hours, f.ImageURL, f.MaxCapacity,
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create facility failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Facility, error) {
	query := fmt.Sprintf(`SELECT %s FROM public.facilities WHERE id = $1`, facilityColumns)

	f, err := scanFacility(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get facility failed: %w", err)
	}
	return f, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Facility, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(facilityColumns).From("public.facilities")

	if filter.Category != "" {
		query = query.Where(squirrel.Eq{"category": filter.Category})
	}
	if filter.Campus != "" {
		query = query.Where(squirrel.Eq{"campus": filter.Campus})
	}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"name": term},
			squirrel.ILike{"building": term},
			squirrel.ILike{"description": term},
		})
	}

	query = query.OrderBy("campus", "category", "name")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list facilities query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list facilities failed: %w", err)
	}
	defer rows.Close()

	return collectFacilities(rows)
}

func (r *pgxRepository) Update(ctx context.Context, f *Facility) error {
	const query = `
		UPDATE public.facilities
		SET name = $1, description = $2, building = $3, floor = $4,
		    hours = $5, image_url = $6, max_capacity = $7, updated_at = now()
		WHERE id = $8
	`
	ct, err := r.pool.Exec(ctx, query,
		f.Name, f.Description, f.Building, f.Floor,
		f.Hours, f.ImageURL, f.MaxCapacity, f.ID,
	)
	if err != nil {
		return fmt.Errorf("update facility failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ListWithCoordinates(ctx context.Context, category string) ([]*Facility, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(facilityColumns).
		From("public.facilities").
		Where("latitude IS NOT NULL").
		Where("longitude IS NOT NULL")

	if category != "" {
		query = query.Where(squirrel.Eq{"category": category})
	}

	query = query.OrderBy("name")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build facility coordinates query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list facilities with coordinates failed: %w", err)
	}
	defer rows.Close()

	return collectFacilities(rows)
}

func collectFacilities(rows pgx.Rows) ([]*Facility, error) {
	var result []*Facility
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, fmt.Errorf("scan facility failed: %w", err)
		}
		result = append(result, f)
	}
	return result, rows.Err()
}
