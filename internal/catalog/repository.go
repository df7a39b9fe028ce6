// Package catalog is the read side of the storefront: products, salon
// services and stylists.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("catalog item not found")

// Catalog is what the storefront reads prices and stylists from.
type Catalog interface {
	ListProducts(ctx context.Context, category domain.ProductCategory) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListServices(ctx context.Context, category domain.ServiceCategory) ([]domain.Service, error)
	GetService(ctx context.Context, id string) (*domain.Service, error)
	ListStylists(ctx context.Context) ([]domain.Stylist, error)
	GetStylist(ctx context.Context, id string) (*domain.Stylist, error)
}

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection so that ":memory:" is a single database
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (r *Repository) ListProducts(ctx context.Context, category domain.ProductCategory) ([]domain.Product, error) {
	query := `
		SELECT id, name, description, price, image_url, category, brand, in_stock
		FROM products
		WHERE ? = '' OR category = ?
		ORDER BY category, name
	`

	rows, err := r.db.QueryContext(ctx, query, string(category), string(category))
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

func (r *Repository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT id, name, description, price, image_url, category, brand, in_stock
		FROM products
		WHERE id = ?
	`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *Repository) ListServices(ctx context.Context, category domain.ServiceCategory) ([]domain.Service, error) {
	query := `
		SELECT id, name, description, duration_minutes, price, category, image_url
		FROM services
		WHERE ? = '' OR category = ?
		ORDER BY category, name
	`

	rows, err := r.db.QueryContext(ctx, query, string(category), string(category))
	if err != nil {
		return nil, fmt.Errorf("failed to query services: %w", err)
	}
	defer rows.Close()

	services := []domain.Service{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return services, nil
}

func (r *Repository) GetService(ctx context.Context, id string) (*domain.Service, error) {
	query := `
		SELECT id, name, description, duration_minutes, price, category, image_url
		FROM services
		WHERE id = ?
	`

	s, err := scanService(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

func (r *Repository) ListStylists(ctx context.Context) ([]domain.Stylist, error) {
	query := `
		SELECT id, name, bio, image_url, specialties, rating, years_experience
		FROM stylists
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stylists: %w", err)
	}
	defer rows.Close()

	stylists := []domain.Stylist{}
	for rows.Next() {
		s, err := scanStylist(rows)
		if err != nil {
			return nil, err
		}
		stylists = append(stylists, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return stylists, nil
}

func (r *Repository) GetStylist(ctx context.Context, id string) (*domain.Stylist, error) {
	query := `
		SELECT id, name, bio, image_url, specialties, rating, years_experience
		FROM stylists
		WHERE id = ?
	`

	s, err := scanStylist(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

func (r *Repository) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (*domain.Product, error) {
	p := &domain.Product{}
	var category string
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &category, &p.Brand, &p.InStock)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	p.Category = domain.ProductCategory(category)
	return p, nil
}

func scanService(row scanner) (*domain.Service, error) {
	s := &domain.Service{}
	var category string
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.DurationMinutes, &s.Price, &category, &s.Image)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan service: %w", err)
	}
	s.Category = domain.ServiceCategory(category)
	return s, nil
}

func scanStylist(row scanner) (*domain.Stylist, error) {
	s := &domain.Stylist{}
	var specialties string
	err := row.Scan(&s.ID, &s.Name, &s.Bio, &s.Image, &specialties, &s.Rating, &s.YearsExperience)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan stylist: %w", err)
	}
	if err := json.Unmarshal([]byte(specialties), &s.Specialties); err != nil {
		return nil, fmt.Errorf("failed to decode specialties of %s: %w", s.ID, err)
	}
	return s, nil
}
