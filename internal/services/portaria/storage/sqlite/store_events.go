package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/diariourbano/portaria/internal/services/portaria/domain"
)

// AppendActivityEvent appends one audit record outside a lifecycle transition.
// Lifecycle transitions append their own events inside the same transaction.
func (s *Store) AppendActivityEvent(ctx context.Context, event domain.ActivityEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(event.OrdinanceID) == "" {
		return fmt.Errorf("ordinance id is required")
	}
	if event.EventType == "" {
		return fmt.Errorf("event type is required")
	}

	metadata, err := marshalMetadata(event.Metadata)
	if err != nil {
		return err
	}
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	if _, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO activity_events (ordinance_id, event_type, message, actor_id, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		event.OrdinanceID,
		string(event.EventType),
		event.Message,
		event.ActorID,
		metadata,
		toMillis(createdAt),
	); err != nil {
		return fmt.Errorf("append activity event: %w", err)
	}
	return nil
}

// ListActivityEvents returns an ordinance's timeline in append order.
func (s *Store) ListActivityEvents(ctx context.Context, ordinanceID string) ([]domain.ActivityEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	ordinanceID = strings.TrimSpace(ordinanceID)
	if ordinanceID == "" {
		return nil, fmt.Errorf("ordinance id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT seq, ordinance_id, event_type, message, actor_id, metadata, created_at
		 FROM activity_events WHERE ordinance_id = ? ORDER BY seq`,
		ordinanceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list activity events: %w", err)
	}
	defer rows.Close()

	var out []domain.ActivityEvent
	for rows.Next() {
		var event domain.ActivityEvent
		var eventType string
		var metadata string
		var createdAt int64
		if err := rows.Scan(
			&event.Seq,
			&event.OrdinanceID,
			&eventType,
			&event.Message,
			&event.ActorID,
			&metadata,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("list activity events: %w", err)
		}
		event.EventType = domain.EventType(eventType)
		event.Metadata, err = unmarshalMetadata(metadata)
		if err != nil {
			return nil, err
		}
		event.CreatedAt = fromMillis(createdAt)
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list activity events: %w", err)
	}
	return out, nil
}
