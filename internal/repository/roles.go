package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/communitysquad/eventhub/internal/model"
)

// RoleRepository handles the role registry and user↔role assignments.
type RoleRepository struct {
	db *pgxpool.Pool
}

// NewRoleRepository constructs a RoleRepository.
func NewRoleRepository(db *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{db: db}
}

// GetByID returns a role by primary key or ErrNotFound.
func (r *RoleRepository) GetByID(ctx context.Context, id int64) (*model.Role, error) {
	return r.getBy(ctx, "id = $1", id)
}

// GetByTitle returns a role by its unique title or ErrNotFound.
func (r *RoleRepository) GetByTitle(ctx context.Context, title string) (*model.Role, error) {
	return r.getBy(ctx, "title = $1", title)
}

func (r *RoleRepository) getBy(ctx context.Context, where string, arg any) (*model.Role, error) {
	var role model.Role
	err := r.db.QueryRow(ctx,
		`SELECT id, title, description, status FROM roles WHERE `+where,
		arg,
	).Scan(&role.ID, &role.Title, &role.Description, &role.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return &role, nil
}

// ActiveTitlesForUser returns the titles of the user's Active role
// assignments, the caller's active role set.
func (r *RoleRepository) ActiveTitlesForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT ro.title
		 FROM user_roles ur
		 JOIN roles ro ON ro.id = ur.role_id
		 WHERE ur.user_id = $1 AND ur.status = $2
		 ORDER BY ro.title`,
		userID, model.StatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("list active roles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan role title: %w", err)
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

// AssignmentsForUser returns all of the user's role assignments regardless
// of status, with role titles resolved.
func (r *RoleRepository) AssignmentsForUser(ctx context.Context, userID string) ([]model.UserRole, error) {
	rows, err := r.db.Query(ctx,
		`SELECT ur.id, ur.user_id, ur.role_id, ro.title, ur.status, ur.created_at, ur.updated_at
		 FROM user_roles ur
		 JOIN roles ro ON ro.id = ur.role_id
		 WHERE ur.user_id = $1
		 ORDER BY ur.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list role assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.UserRole
	for rows.Next() {
		var a model.UserRole
		if err := rows.Scan(&a.ID, &a.UserID, &a.RoleID, &a.RoleTitle,
			&a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan role assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// CreateAssignment inserts a new assignment row. A concurrent duplicate is
// reported as ErrDuplicate via the (user_id, role_id) unique constraint.
func (r *RoleRepository) CreateAssignment(ctx context.Context, a *model.UserRole) error {
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	err := r.db.QueryRow(ctx,
		`INSERT INTO user_roles (user_id, role_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		a.UserID, a.RoleID, a.Status, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert role assignment: %w", err)
	}
	return nil
}

// SaveAssignment persists a status change on an existing assignment row.
func (r *RoleRepository) SaveAssignment(ctx context.Context, a *model.UserRole) error {
	a.UpdatedAt = time.Now().UTC()
	tag, err := r.db.Exec(ctx,
		`UPDATE user_roles SET status = $1, updated_at = $2 WHERE id = $3`,
		a.Status, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return fmt.Errorf("update role assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
