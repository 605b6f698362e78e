package repository

import (
	"context"
	"fmt"

	"shopfront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const addressColumns = `id, user_id, recipient, phone, line1, line2, city, region, postal_code, country, is_default, created_at, updated_at`

// addressRepository implements the AddressRepository interface using PostgreSQL.
type addressRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAddressRepository creates a new PostgreSQL-backed address repository.
func NewAddressRepository(pool *pgxpool.Pool, logger zerolog.Logger) AddressRepository {
	return &addressRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "address").Logger(),
	}
}

func scanAddress(row pgx.Row) (*model.Address, error) {
	var a model.Address
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Recipient,
		&a.Phone,
		&a.Line1,
		&a.Line2,
		&a.City,
		&a.Region,
		&a.PostalCode,
		&a.Country,
		&a.IsDefault,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns the user's addresses, default first, then newest.
func (r *addressRepository) List(ctx context.Context, userID string) ([]model.Address, error) {
	query := `SELECT ` + addressColumns + `
		FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC, id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query addresses")
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	defer rows.Close()

	addresses := []model.Address{}
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan address row")
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating addresses: %w", err)
	}

	return addresses, nil
}

// GetByID returns the address if it belongs to userID.
func (r *addressRepository) GetByID(ctx context.Context, userID string, id uuid.UUID) (*model.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1 AND user_id = $2`

	a, err := scanAddress(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("address_id", id.String()).Msg("failed to query address")
		return nil, fmt.Errorf("failed to query address: %w", err)
	}
	return a, nil
}

// lockUser serialises default-address changes for one user until tx ends.
func lockUser(ctx context.Context, tx pgx.Tx, userID string) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		return fmt.Errorf("failed to lock address book: %w", err)
	}
	return nil
}

// clearDefault unsets the user's current default, except for keep.
func clearDefault(ctx context.Context, tx pgx.Tx, userID string, keep uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE addresses
		SET is_default = FALSE, updated_at = NOW()
		WHERE user_id = $1 AND is_default AND id <> $2`, userID, keep)
	if err != nil {
		return fmt.Errorf("failed to clear default address: %w", err)
	}
	return nil
}

// Create inserts an address. The user's first address always becomes the default.
func (r *addressRepository) Create(ctx context.Context, address *model.Address) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := lockUser(ctx, tx, address.UserID); err != nil {
		return err
	}

	var existing int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM addresses WHERE user_id = $1`, address.UserID).Scan(&existing); err != nil {
		return fmt.Errorf("failed to count addresses: %w", err)
	}
	if existing == 0 {
		address.IsDefault = true
	}

	if address.IsDefault {
		if err := clearDefault(ctx, tx, address.UserID, address.ID); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO addresses (id, user_id, recipient, phone, line1, line2, city, region, postal_code, country, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err = tx.QueryRow(ctx, query,
		address.ID,
		address.UserID,
		address.Recipient,
		address.Phone,
		address.Line1,
		address.Line2,
		address.City,
		address.Region,
		address.PostalCode,
		address.Country,
		address.IsDefault,
	).Scan(&address.CreatedAt, &address.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", address.UserID).Msg("failed to create address")
		return fmt.Errorf("failed to create address: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit address: %w", err)
	}

	r.logger.Debug().
		Str("address_id", address.ID.String()).
		Bool("is_default", address.IsDefault).
		Msg("address created")
	return nil
}

// Update replaces an owned address.
func (r *addressRepository) Update(ctx context.Context, address *model.Address) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := lockUser(ctx, tx, address.UserID); err != nil {
		return false, err
	}

	if address.IsDefault {
		if err := clearDefault(ctx, tx, address.UserID, address.ID); err != nil {
			return false, err
		}
	}

	query := `
		UPDATE addresses SET
			recipient = $3, phone = $4, line1 = $5, line2 = $6, city = $7,
			region = $8, postal_code = $9, country = $10, is_default = $11,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING created_at, updated_at`

	err = tx.QueryRow(ctx, query,
		address.ID,
		address.UserID,
		address.Recipient,
		address.Phone,
		address.Line1,
		address.Line2,
		address.City,
		address.Region,
		address.PostalCode,
		address.Country,
		address.IsDefault,
	).Scan(&address.CreatedAt, &address.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		r.logger.Error().Err(err).Str("address_id", address.ID.String()).Msg("failed to update address")
		return false, fmt.Errorf("failed to update address: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit address: %w", err)
	}

	r.logger.Debug().Str("address_id", address.ID.String()).Msg("address updated")
	return true, nil
}

// Delete removes an owned address. Orders keep their dangling address_id.
func (r *addressRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("address_id", id.String()).Msg("failed to delete address")
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return nil
}
