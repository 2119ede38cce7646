package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opentally/bookkeeping_app/internal/apperrors"
	"github.com/opentally/bookkeeping_app/internal/core/domain"
	portsrepo "github.com/opentally/bookkeeping_app/internal/core/ports/repositories"
	"github.com/opentally/bookkeeping_app/internal/models"
	"github.com/opentally/bookkeeping_app/internal/utils/mapping"
)

type PgxUserRepository struct {
	BaseRepository
}

// newPgxUserRepository creates a new repository for user data.
func newPgxUserRepository(pool *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

const userColumns = `user_id, name, role, password_hash,
	created_at, created_by, last_updated_at, last_updated_by, deleted_at`

func scanUser(row pgx.Row) (models.User, error) {
	var m models.User
	err := row.Scan(
		&m.UserID,
		&m.Name,
		&m.Role,
		&m.PasswordHash,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.DeletedAt,
	)
	return m, err
}

// SaveUser persists a new user. A duplicate login name fails with ErrDuplicate.
func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	modelUser := mapping.ToModelUser(user)
	query := `
		INSERT INTO users (user_id, name, role, password_hash, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelUser.UserID,
		modelUser.Name,
		modelUser.Role,
		modelUser.PasswordHash,
		modelUser.CreatedAt,
		modelUser.CreatedBy,
		modelUser.LastUpdatedAt,
		modelUser.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: user named %s already exists", apperrors.ErrDuplicate, modelUser.Name)
		}
		return apperrors.NewAppError(500, "failed to insert user "+modelUser.UserID, err)
	}
	return nil
}

// UpdateUser persists changes to an existing user.
func (r *PgxUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	modelUser := mapping.ToModelUser(user)
	query := `
		UPDATE users
		SET name = $1, role = $2, password_hash = $3, last_updated_at = $4, last_updated_by = $5
		WHERE user_id = $6 AND deleted_at IS NULL;
	`
	tag, err := r.Pool.Exec(ctx, query,
		modelUser.Name,
		modelUser.Role,
		modelUser.PasswordHash,
		modelUser.LastUpdatedAt,
		modelUser.LastUpdatedBy,
		modelUser.UserID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update user "+modelUser.UserID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", apperrors.ErrNotFound, modelUser.UserID)
	}
	return nil
}

// DeleteUser marks a user as deleted (soft delete).
func (r *PgxUserRepository) DeleteUser(ctx context.Context, userID string, deletedBy string) error {
	now := time.Now().UTC()
	query := `
		UPDATE users
		SET deleted_at = $1, last_updated_at = $1, last_updated_by = $2
		WHERE user_id = $3 AND deleted_at IS NULL;
	`
	tag, err := r.Pool.Exec(ctx, query, now, deletedBy, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete user "+userID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", apperrors.ErrNotFound, userID)
	}
	return nil
}

// FindUserByID retrieves a user by their unique identifier.
func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE user_id = $1 AND deleted_at IS NULL;
	`
	m, err := scanUser(r.Pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, userID)
		}
		return nil, apperrors.NewAppError(500, "failed to find user by ID "+userID, err)
	}
	user := mapping.ToDomainUser(m)
	return &user, nil
}

// FindUserByName retrieves a user by their login name.
func (r *PgxUserRepository) FindUserByName(ctx context.Context, name string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE name = $1 AND deleted_at IS NULL;
	`
	m, err := scanUser(r.Pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user named %s", apperrors.ErrNotFound, name)
		}
		return nil, apperrors.NewAppError(500, "failed to find user by name "+name, err)
	}
	user := mapping.ToDomainUser(m)
	return &user, nil
}

// ListUsers retrieves a page of users ordered by creation time.
func (r *PgxUserRepository) ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE deleted_at IS NULL
		ORDER BY created_at, user_id
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query users", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		m, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan user row", err)
		}
		users = append(users, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating user rows", err)
	}
	return mapping.ToDomainUserSlice(users), nil
}
