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

// EventRepository handles persistence for events and, because the event is
// the aggregate root of its gallery, the document writes that belong to the
// same unit of work.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts an event and its initial documents in one transaction.
func (r *EventRepository) Create(ctx context.Context, event *model.Event, docs []model.EventDocument) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	event.Status = model.StatusActive
	event.CreatedAt = time.Now().UTC()
	event.UpdatedAt = event.CreatedAt

	err = tx.QueryRow(ctx,
		`INSERT INTO events (title, main_image, description, instructions, category_id, owner_id,
		                     date, time, duration, all_day, quota, location, published, status,
		                     created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING id`,
		event.Title, event.MainImage, event.Description, event.Instructions,
		event.CategoryID, event.OwnerID, event.Date, event.Time, event.Duration,
		event.AllDay, event.Quota, event.Location, event.Published, event.Status,
		event.CreatedAt, event.UpdatedAt,
	).Scan(&event.ID)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	if err = insertDocuments(ctx, tx, event.ID, docs); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID returns an event by primary key or ErrNotFound, regardless of
// soft status. Visibility rules live in the service layer.
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*model.Event, error) {
	var e model.Event
	err := r.db.QueryRow(ctx,
		`SELECT id, title, main_image, description, instructions, category_id, owner_id,
		        date, time, duration, all_day, quota, location, published, status,
		        created_at, updated_at
		 FROM events WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.Title, &e.MainImage, &e.Description, &e.Instructions,
		&e.CategoryID, &e.OwnerID, &e.Date, &e.Time, &e.Duration, &e.AllDay,
		&e.Quota, &e.Location, &e.Published, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

// Save persists all mutable event fields.
func (r *EventRepository) Save(ctx context.Context, event *model.Event) error {
	event.UpdatedAt = time.Now().UTC()
	tag, err := r.db.Exec(ctx, saveEventSQL, saveEventArgs(event)...)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveWithDocuments persists an event edit together with its gallery
// replacement in one transaction: active documents whose name is not in
// retainedNames are retired, then the new documents are inserted.
func (r *EventRepository) SaveWithDocuments(ctx context.Context, event *model.Event, retainedNames []string, docs []model.EventDocument) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	event.UpdatedAt = time.Now().UTC()
	tag, err := tx.Exec(ctx, saveEventSQL, saveEventArgs(event)...)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = ErrNotFound
		return err
	}

	if retainedNames == nil {
		retainedNames = []string{}
	}
	_, err = tx.Exec(ctx,
		`UPDATE event_documents
		 SET status = $1, updated_at = $2
		 WHERE event_id = $3 AND status = $4 AND NOT (document_name = ANY($5))`,
		model.StatusInactive, event.UpdatedAt, event.ID, model.StatusActive, retainedNames,
	)
	if err != nil {
		return fmt.Errorf("retire event documents: %w", err)
	}

	if err = insertDocuments(ctx, tx, event.ID, docs); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const saveEventSQL = `UPDATE events
	 SET title = $1, main_image = $2, description = $3, instructions = $4,
	     category_id = $5, owner_id = $6, date = $7, time = $8, duration = $9,
	     all_day = $10, quota = $11, location = $12, published = $13,
	     status = $14, updated_at = $15
	 WHERE id = $16`

func saveEventArgs(e *model.Event) []any {
	return []any{
		e.Title, e.MainImage, e.Description, e.Instructions, e.CategoryID,
		e.OwnerID, e.Date, e.Time, e.Duration, e.AllDay, e.Quota, e.Location,
		e.Published, e.Status, e.UpdatedAt, e.ID,
	}
}

func insertDocuments(ctx context.Context, tx pgx.Tx, eventID int64, docs []model.EventDocument) error {
	now := time.Now().UTC()
	for i := range docs {
		docs[i].EventID = eventID
		docs[i].Status = model.StatusActive
		docs[i].CreatedAt = now
		docs[i].UpdatedAt = now
		err := tx.QueryRow(ctx,
			`INSERT INTO event_documents (event_id, user_id, document_name, document_url, status, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id`,
			docs[i].EventID, docs[i].UserID, docs[i].DocumentName,
			docs[i].DocumentURL, docs[i].Status, docs[i].CreatedAt, docs[i].UpdatedAt,
		).Scan(&docs[i].ID)
		if err != nil {
			return fmt.Errorf("insert event document: %w", err)
		}
	}
	return nil
}

// List returns events in Active soft status ordered by descending id, with
// an optional published constraint and limit/offset pagination.
func (r *EventRepository) List(ctx context.Context, published *bool, limit, offset int) ([]model.Event, error) {
	query := `SELECT id, title, main_image, description, instructions, category_id, owner_id,
	                 date, time, duration, all_day, quota, location, published, status,
	                 created_at, updated_at
	          FROM events
	          WHERE status = $1`
	args := []any{model.StatusActive}

	if published != nil {
		args = append(args, *published)
		query += fmt.Sprintf(" AND published = $%d", len(args))
	}

	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.MainImage, &e.Description, &e.Instructions,
			&e.CategoryID, &e.OwnerID, &e.Date, &e.Time, &e.Duration, &e.AllDay,
			&e.Quota, &e.Location, &e.Published, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
