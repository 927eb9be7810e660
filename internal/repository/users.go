package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/communitysquad/eventhub/internal/model"
)

// UserRepository handles persistence for users and their sign-up bootstrap.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// CreateWithRole inserts a new user together with its initial Active role
// assignment in one transaction, so a failure cannot leave a user without a
// role. The user's ID and timestamps are filled in on success.
func (r *UserRepository) CreateWithRole(ctx context.Context, user *model.User, roleID int64) (*model.UserRole, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	user.ID = uuid.New().String()
	user.Status = model.StatusActive
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, email, user_name, name, password_hash, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Email, user.UserName, user.Name, user.PasswordHash,
		user.Status, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	assignment := &model.UserRole{
		UserID:    user.ID,
		RoleID:    roleID,
		Status:    model.StatusActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.CreatedAt,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO user_roles (user_id, role_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		assignment.UserID, assignment.RoleID, assignment.Status,
		assignment.CreatedAt, assignment.UpdatedAt,
	).Scan(&assignment.ID)
	if err != nil {
		return nil, fmt.Errorf("insert role assignment: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return assignment, nil
}

// GetByID returns a user by primary key or ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getBy(ctx, "id = $1", id)
}

// GetByEmail returns a user by email, including the password hash, or
// ErrNotFound.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getBy(ctx, "email = $1", email)
}

func (r *UserRepository) getBy(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User
	err := r.db.QueryRow(ctx,
		`SELECT id, email, user_name, name, password_hash, status, created_at, updated_at
		 FROM users WHERE `+where,
		arg,
	).Scan(&u.ID, &u.Email, &u.UserName, &u.Name, &u.PasswordHash,
		&u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// CountActiveByUserName reports how many active users already hold the given
// derived user name.
func (r *UserRepository) CountActiveByUserName(ctx context.Context, userName string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE user_name = $1 AND status = $2`,
		userName, model.StatusActive,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count users by user name: %w", err)
	}
	return n, nil
}

// ListActiveWithRoles returns active users with their Active role
// assignments, restricted to the fields the admin user listing exposes.
func (r *UserRepository) ListActiveWithRoles(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT u.id, u.name, u.status, ur.id, ur.status, ro.title
		 FROM users u
		 JOIN user_roles ur ON ur.user_id = u.id AND ur.status = $1
		 JOIN roles ro ON ro.id = ur.role_id
		 WHERE u.status = $1
		 ORDER BY u.id, ur.id`,
		model.StatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	index := make(map[string]int)
	for rows.Next() {
		var (
			u  model.User
			ur model.UserRole
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Status, &ur.ID, &ur.Status, &ur.RoleTitle); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		i, ok := index[u.ID]
		if !ok {
			users = append(users, u)
			i = len(users) - 1
			index[u.ID] = i
		}
		users[i].Roles = append(users[i].Roles, ur)
	}
	return users, rows.Err()
}
