package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/diariourbano/portaria/internal/services/portaria/domain"
	"github.com/diariourbano/portaria/internal/services/portaria/storage"
)

// PublishWithNumber executes the numbering critical section.
//
// The transaction begins immediate, so the sequence book row is held under
// SQLite's single-writer lock for the whole read-format-append-advance unit:
// no two concurrent callers can observe the same next_number. The cursor
// advance, the allocation log append, the ordinance update, and the activity
// events commit together or not at all.
//
// An ordinance that already carries an official number is finalized to
// PUBLISHED without touching the book cursor, which keeps a retried publish
// at-most-once per ordinance.
func (s *Store) PublishWithNumber(ctx context.Context, ordinanceID, approverID, originIP string) (storage.PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return storage.PublishResult{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.PublishResult{}, fmt.Errorf("storage is not configured")
	}
	ordinanceID = strings.TrimSpace(ordinanceID)
	if ordinanceID == "" {
		return storage.PublishResult{}, fmt.Errorf("ordinance id is required")
	}

	tx, err := s.beginTx(ctx)
	if err != nil {
		return storage.PublishResult{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := s.now()
	ordinance, err := getOrdinance(ctx, tx, ordinanceID)
	if err != nil {
		return storage.PublishResult{}, err
	}

	if ordinance.Numbered() {
		// A number was assigned by an earlier attempt; finish the publish
		// without re-running numbering.
		if ordinance.Status != domain.StatusPublished {
			if _, err := tx.ExecContext(
				ctx,
				`UPDATE ordinances SET status = ?, failure_detail = '', updated_at = ? WHERE id = ?`,
				string(domain.StatusPublished),
				toMillis(now),
				ordinanceID,
			); err != nil {
				return storage.PublishResult{}, fmt.Errorf("finalize publish: %w", err)
			}
			if err := appendActivityEventTx(ctx, tx, domain.ActivityEvent{
				OrdinanceID: ordinanceID,
				EventType:   domain.EventPublished,
				Message:     fmt.Sprintf("published as %s", ordinance.OfficialNumber),
				ActorID:     approverID,
				Metadata:    map[string]string{"official_number": ordinance.OfficialNumber},
			}, now); err != nil {
				return storage.PublishResult{}, err
			}
			ordinance.Status = domain.StatusPublished
			ordinance.FailureDetail = ""
			ordinance.UpdatedAt = now
		}
		if err := tx.Commit(); err != nil {
			if isBusyError(err) {
				return storage.PublishResult{}, storage.ErrBusy
			}
			return storage.PublishResult{}, fmt.Errorf("commit publish: %w", err)
		}
		return storage.PublishResult{Ordinance: ordinance, Allocated: false}, nil
	}

	if _, ok := domain.NextStatus(ordinance.Status, domain.TransitionPublish); !ok {
		return storage.PublishResult{}, storage.ErrStateConflict
	}

	book, err := ensureActiveBookTx(ctx, tx, now)
	if err != nil {
		return storage.PublishResult{}, err
	}

	number := book.NextNumber
	formatted := domain.FormatNumber(book.NumberFormat, number)

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO allocation_log (book_id, formatted_number, padded_number, raw_number, ordinance_id, approver_id, origin_ip, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		formatted,
		domain.PadNumber(number),
		number,
		ordinanceID,
		approverID,
		originIP,
		toMillis(now),
	); err != nil {
		return storage.PublishResult{}, fmt.Errorf("append allocation log: %w", err)
	}

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE sequence_books SET next_number = ?, updated_at = ? WHERE id = ?`,
		number+1,
		toMillis(now),
		book.ID,
	); err != nil {
		return storage.PublishResult{}, fmt.Errorf("advance book cursor: %w", err)
	}

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE ordinances SET status = ?, official_number = ?, failure_detail = '', updated_at = ?
		 WHERE id = ? AND official_number = ''`,
		string(domain.StatusPublished),
		formatted,
		toMillis(now),
		ordinanceID,
	); err != nil {
		return storage.PublishResult{}, fmt.Errorf("store official number: %w", err)
	}

	allocationEvent := domain.ActivityEvent{
		OrdinanceID: ordinanceID,
		EventType:   domain.EventNumberAllocated,
		Message:     fmt.Sprintf("allocated official number %s", formatted),
		ActorID:     approverID,
		Metadata: map[string]string{
			"book_id":         book.ID,
			"official_number": formatted,
			"raw_number":      domain.PadNumber(number),
			"origin_ip":       originIP,
		},
	}
	publishedEvent := domain.ActivityEvent{
		OrdinanceID: ordinanceID,
		EventType:   domain.EventPublished,
		Message:     fmt.Sprintf("published as %s", formatted),
		ActorID:     approverID,
		Metadata:    map[string]string{"official_number": formatted},
	}
	if err := appendActivityEventTx(ctx, tx, allocationEvent, now); err != nil {
		return storage.PublishResult{}, err
	}
	if err := appendActivityEventTx(ctx, tx, publishedEvent, now); err != nil {
		return storage.PublishResult{}, err
	}

	updated, err := getOrdinance(ctx, tx, ordinanceID)
	if err != nil {
		return storage.PublishResult{}, err
	}

	if err := tx.Commit(); err != nil {
		if isBusyError(err) {
			return storage.PublishResult{}, storage.ErrBusy
		}
		return storage.PublishResult{}, fmt.Errorf("commit publish: %w", err)
	}
	return storage.PublishResult{Ordinance: updated, Allocated: true}, nil
}
