package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"home-kitchen-market/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines methods for profile and address storage.
// Identities are created by the auth system; this service only reads and
// lets users maintain their own profile and address book.
type RepositoryInterface interface {
	FindByID(ctx context.Context, userID string) (*models.User, error)
	Update(ctx context.Context, userID string, data models.UserUpdateData) (*models.User, error)

	ListAddresses(ctx context.Context, userID string) ([]models.Address, error)
	GetAddress(ctx context.Context, addressID, userID string) (*models.Address, error)
	AddAddress(ctx context.Context, userID string, req models.AddAddressRequest) (*models.Address, error)
	UpdateAddress(ctx context.Context, userID, addressID string, req models.UpdateAddressRequest) (*models.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID string) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

func (r *Repository) FindByID(ctx context.Context, userID string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, nickname, email, phone, role, is_active, created_at, updated_at FROM users WHERE id = $1`
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&user.ID, &user.Nickname, &user.Email, &user.Phone, &user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return user, nil
}

func (r *Repository) Update(ctx context.Context, userID string, data models.UserUpdateData) (*models.User, error) {
	var setClauses []string
	var args []interface{}
	argIdx := 1

	if data.Nickname != nil {
		setClauses = append(setClauses, fmt.Sprintf("nickname = $%d", argIdx))
		args = append(args, *data.Nickname)
		argIdx++
	}
	if data.Phone != nil {
		setClauses = append(setClauses, fmt.Sprintf("phone = $%d", argIdx))
		args = append(args, *data.Phone)
		argIdx++
	}

	if len(setClauses) == 0 {
		return r.FindByID(ctx, userID)
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argIdx))
	args = append(args, time.Now())
	argIdx++

	args = append(args, userID)

	query := fmt.Sprintf(`
		UPDATE users SET %s
		WHERE id = $%d
		RETURNING id, nickname, email, phone, role, is_active, created_at, updated_at`,
		strings.Join(setClauses, ", "), argIdx)

	user := &models.User{}
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&user.ID, &user.Nickname, &user.Email, &user.Phone, &user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.UpdateUser: %w", err)
	}
	return user, nil
}

const addressColumns = `id, user_id, label, street_address, is_default, created_at, updated_at`

func scanAddress(row pgx.Row) (*models.Address, error) {
	addr := &models.Address{}
	err := row.Scan(&addr.ID, &addr.UserID, &addr.Label, &addr.StreetAddress, &addr.IsDefault, &addr.CreatedAt, &addr.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan address: %w", err)
	}
	return addr, nil
}

func (r *Repository) ListAddresses(ctx context.Context, userID string) ([]models.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListAddresses: %w", err)
	}
	defer rows.Close()

	var addrs []models.Address
	for rows.Next() {
		addr, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.ListAddresses.Scan: %w", err)
		}
		addrs = append(addrs, *addr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListAddresses.Rows: %w", err)
	}
	return addrs, nil
}

// GetAddress fetches an address only when the given user owns it.
func (r *Repository) GetAddress(ctx context.Context, addressID, userID string) (*models.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1 AND user_id = $2`
	addr, err := scanAddress(r.db.QueryRow(ctx, query, addressID, userID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.GetAddress: %w", err)
	}
	return addr, nil
}

func (r *Repository) AddAddress(ctx context.Context, userID string, req models.AddAddressRequest) (*models.Address, error) {
	query := `
		INSERT INTO addresses (id, user_id, label, street_address, is_default)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + addressColumns

	addr, err := scanAddress(r.db.QueryRow(ctx, query, uuid.New().String(), userID, req.Label, req.StreetAddress, req.IsDefault))
	if err != nil {
		return nil, fmt.Errorf("repository.AddAddress: %w", err)
	}
	return addr, nil
}

func (r *Repository) UpdateAddress(ctx context.Context, userID, addressID string, req models.UpdateAddressRequest) (*models.Address, error) {
	var setClauses []string
	var args []interface{}
	argIdx := 1

	if req.Label != "" {
		setClauses = append(setClauses, fmt.Sprintf("label = $%d", argIdx))
		args = append(args, req.Label)
		argIdx++
	}
	if req.StreetAddress != "" {
		setClauses = append(setClauses, fmt.Sprintf("street_address = $%d", argIdx))
		args = append(args, req.StreetAddress)
		argIdx++
	}
	if req.IsDefault != nil {
		setClauses = append(setClauses, fmt.Sprintf("is_default = $%d", argIdx))
		args = append(args, *req.IsDefault)
		argIdx++
	}

	if len(setClauses) == 0 {
		return r.GetAddress(ctx, addressID, userID)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, addressID, userID)

	query := fmt.Sprintf(`
		UPDATE addresses SET %s
		WHERE id = $%d AND user_id = $%d
		RETURNING `+addressColumns,
		strings.Join(setClauses, ", "), argIdx, argIdx+1)

	addr, err := scanAddress(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.UpdateAddress: %w", err)
	}
	return addr, nil
}

func (r *Repository) DeleteAddress(ctx context.Context, userID, addressID string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2`, addressID, userID)
	if err != nil {
		return fmt.Errorf("repository.DeleteAddress: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
