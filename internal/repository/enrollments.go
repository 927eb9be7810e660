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

// EnrollmentRepository handles persistence for user↔event enrollments.
type EnrollmentRepository struct {
	db *pgxpool.Pool
}

// NewEnrollmentRepository constructs an EnrollmentRepository.
func NewEnrollmentRepository(db *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Get returns the single enrollment row for (event, user) regardless of
// status, or ErrNotFound.
func (r *EnrollmentRepository) Get(ctx context.Context, eventID int64, userID string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, event_id, status, attended, notes, created_at, updated_at
		 FROM user_events
		 WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	).Scan(&e.ID, &e.UserID, &e.EventID, &e.Status, &e.Attended, &e.Notes,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	return &e, nil
}

// Create inserts a new enrollment row. A concurrent duplicate registration
// is reported as ErrDuplicate via the (user_id, event_id) unique constraint.
func (r *EnrollmentRepository) Create(ctx context.Context, e *model.Enrollment) error {
	e.CreatedAt = time.Now().UTC()
	e.UpdatedAt = e.CreatedAt
	err := r.db.QueryRow(ctx,
		`INSERT INTO user_events (user_id, event_id, status, attended, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		e.UserID, e.EventID, e.Status, e.Attended, e.Notes, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

// Save persists status, attended and notes on an existing enrollment row.
func (r *EnrollmentRepository) Save(ctx context.Context, e *model.Enrollment) error {
	e.UpdatedAt = time.Now().UTC()
	tag, err := r.db.Exec(ctx,
		`UPDATE user_events SET status = $1, attended = $2, notes = $3, updated_at = $4 WHERE id = $5`,
		e.Status, e.Attended, e.Notes, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountActiveByEvents returns, per event id, the number of Active
// enrollments. Events with no enrollments are simply absent from the map.
func (r *EnrollmentRepository) CountActiveByEvents(ctx context.Context, eventIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT event_id, COUNT(*)
		 FROM user_events
		 WHERE event_id = ANY($1) AND status = $2
		 GROUP BY event_id`,
		eventIDs, model.StatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("count enrollments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id int64
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan enrollment count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// ActiveEventIDsForUser returns the subset of eventIDs the user holds an
// Active enrollment in.
func (r *EnrollmentRepository) ActiveEventIDsForUser(ctx context.Context, userID string, eventIDs []int64) (map[int64]bool, error) {
	enrolled := make(map[int64]bool, len(eventIDs))
	if len(eventIDs) == 0 {
		return enrolled, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT event_id
		 FROM user_events
		 WHERE user_id = $1 AND event_id = ANY($2) AND status = $3`,
		userID, eventIDs, model.StatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("list user enrollments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan enrolled event id: %w", err)
		}
		enrolled[id] = true
	}
	return enrolled, rows.Err()
}

// ListActiveUsers returns the minimal identity of every user with an Active
// enrollment in the event, in enrollment order.
func (r *EnrollmentRepository) ListActiveUsers(ctx context.Context, eventID int64) ([]model.EnrolledUser, error) {
	rows, err := r.db.Query(ctx,
		`SELECT u.id, u.name
		 FROM user_events ue
		 JOIN users u ON u.id = ue.user_id
		 WHERE ue.event_id = $1 AND ue.status = $2
		 ORDER BY ue.id`,
		eventID, model.StatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("list enrolled users: %w", err)
	}
	defer rows.Close()

	var users []model.EnrolledUser
	for rows.Next() {
		var u model.EnrolledUser
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, fmt.Errorf("scan enrolled user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListAttendedEvents returns the events behind the user's Active, attended
// enrollments whose date is on or before asOf. Used by the hours accrual.
func (r *EnrollmentRepository) ListAttendedEvents(ctx context.Context, userID string, asOf time.Time) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT e.id, e.title, e.date, e.duration, e.all_day
		 FROM user_events ue
		 JOIN events e ON e.id = ue.event_id
		 WHERE ue.user_id = $1 AND ue.status = $2 AND ue.attended = TRUE AND e.date <= $3
		 ORDER BY e.date`,
		userID, model.StatusActive, asOf,
	)
	if err != nil {
		return nil, fmt.Errorf("list attended events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Date, &e.Duration, &e.AllDay); err != nil {
			return nil, fmt.Errorf("scan attended event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
