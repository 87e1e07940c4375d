package catalog

import (
	"context"
	"errors"
	"fmt"

	"home-kitchen-market/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface is the read-only view of the menu/vendor catalog this
// service consumes. Menu price, vendor identity and dietary flags are read
// at order-placement time; catalog data is never mutated from here.
type RepositoryInterface interface {
	GetMenu(ctx context.Context, menuID string) (*models.Menu, error)
	GetVendor(ctx context.Context, vendorID string) (*models.Vendor, error)
}

// Repository is a PostgreSQL implementation of RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new catalog repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

// GetMenu returns the current catalog entry for a menu.
func (r *Repository) GetMenu(ctx context.Context, menuID string) (*models.Menu, error) {
	query := `
		SELECT id, vendor_id, name, price, is_vegetarian, spice_level, is_available, updated_at
		FROM menus
		WHERE id = $1`

	menu := &models.Menu{}
	err := r.db.QueryRow(ctx, query, menuID).Scan(
		&menu.ID, &menu.VendorID, &menu.Name, &menu.Price,
		&menu.IsVegetarian, &menu.SpiceLevel, &menu.IsAvailable, &menu.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repo.GetMenu: %w", err)
	}
	return menu, nil
}

// GetVendor returns a home kitchen's identity.
func (r *Repository) GetVendor(ctx context.Context, vendorID string) (*models.Vendor, error) {
	query := `
		SELECT id, kitchen_name, is_active, created_at
		FROM vendors
		WHERE id = $1`

	vendor := &models.Vendor{}
	err := r.db.QueryRow(ctx, query, vendorID).Scan(
		&vendor.ID, &vendor.KitchenName, &vendor.IsActive, &vendor.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repo.GetVendor: %w", err)
	}
	return vendor, nil
}
