package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/communitysquad/eventhub/internal/model"
)

// DocumentRepository reads event gallery documents. Writes happen through
// EventRepository, inside the event's own unit of work.
type DocumentRepository struct {
	db *pgxpool.Pool
}

// NewDocumentRepository constructs a DocumentRepository.
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// ListActiveByEvent returns the event's Active documents in insertion order.
func (r *DocumentRepository) ListActiveByEvent(ctx context.Context, eventID int64) ([]model.EventDocument, error) {
	byEvent, err := r.ListActiveByEvents(ctx, []int64{eventID})
	if err != nil {
		return nil, err
	}
	return byEvent[eventID], nil
}

// ListActiveByEvents returns Active documents grouped by event id.
func (r *DocumentRepository) ListActiveByEvents(ctx context.Context, eventIDs []int64) (map[int64][]model.EventDocument, error) {
	byEvent := make(map[int64][]model.EventDocument, len(eventIDs))
	if len(eventIDs) == 0 {
		return byEvent, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, event_id, user_id, document_name, document_url, status, created_at, updated_at
		 FROM event_documents
		 WHERE event_id = ANY($1) AND status = $2
		 ORDER BY id`,
		eventIDs, model.StatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("list event documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d model.EventDocument
		if err := rows.Scan(&d.ID, &d.EventID, &d.UserID, &d.DocumentName,
			&d.DocumentURL, &d.Status, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan event document: %w", err)
		}
		byEvent[d.EventID] = append(byEvent[d.EventID], d)
	}
	return byEvent, rows.Err()
}
