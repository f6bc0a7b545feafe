package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diariourbano/portaria/internal/services/portaria/domain"
	"github.com/diariourbano/portaria/internal/services/portaria/storage"
)

const ordinanceColumns = `id, title, content_ref, status, official_number, integrity_hash,
	signature_status, signature_justification, attachment_ref, reviewer_id, author_id,
	rejection_reason, failure_detail, created_at, updated_at`

// querier abstracts *sql.DB and *sql.Tx for shared row readers.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanOrdinance(row *sql.Row) (domain.Ordinance, error) {
	var o domain.Ordinance
	var status string
	var signatureStatus string
	var createdAt int64
	var updatedAt int64
	err := row.Scan(
		&o.ID,
		&o.Title,
		&o.ContentRef,
		&status,
		&o.OfficialNumber,
		&o.IntegrityHash,
		&signatureStatus,
		&o.SignatureJustification,
		&o.AttachmentRef,
		&o.ReviewerID,
		&o.AuthorID,
		&o.RejectionReason,
		&o.FailureDetail,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Ordinance{}, storage.ErrNotFound
		}
		return domain.Ordinance{}, fmt.Errorf("scan ordinance: %w", err)
	}
	o.Status = domain.Status(status)
	o.SignatureStatus = domain.SignatureStatus(signatureStatus)
	o.CreatedAt = fromMillis(createdAt)
	o.UpdatedAt = fromMillis(updatedAt)
	return o, nil
}

func getOrdinance(ctx context.Context, q querier, ordinanceID string) (domain.Ordinance, error) {
	row := q.QueryRowContext(
		ctx,
		`SELECT `+ordinanceColumns+` FROM ordinances WHERE id = ?`,
		ordinanceID,
	)
	return scanOrdinance(row)
}

func appendActivityEventTx(ctx context.Context, tx *sql.Tx, event domain.ActivityEvent, now time.Time) error {
	metadata, err := marshalMetadata(event.Metadata)
	if err != nil {
		return err
	}
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	if _, err := tx.ExecContext(
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

// CreateOrdinance inserts a new draft together with its creation event.
func (s *Store) CreateOrdinance(ctx context.Context, ordinance domain.Ordinance, event domain.ActivityEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(ordinance.ID) == "" {
		return fmt.Errorf("ordinance id is required")
	}

	tx, err := s.beginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := s.now()
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO ordinances (
		   id, title, content_ref, status, official_number, integrity_hash,
		   signature_status, signature_justification, attachment_ref, reviewer_id,
		   author_id, rejection_reason, failure_detail, created_at, updated_at
		 ) VALUES (?, ?, ?, ?, '', '', ?, '', '', '', ?, '', '', ?, ?)`,
		ordinance.ID,
		ordinance.Title,
		ordinance.ContentRef,
		string(ordinance.Status),
		string(ordinance.SignatureStatus),
		ordinance.AuthorID,
		toMillis(ordinance.CreatedAt),
		toMillis(ordinance.UpdatedAt),
	); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("ordinance %s already exists", ordinance.ID)
		}
		return fmt.Errorf("create ordinance: %w", err)
	}

	event.OrdinanceID = ordinance.ID
	if err := appendActivityEventTx(ctx, tx, event, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ordinance: %w", err)
	}
	return nil
}

// GetOrdinance fetches one ordinance by ID.
func (s *Store) GetOrdinance(ctx context.Context, ordinanceID string) (domain.Ordinance, error) {
	if err := ctx.Err(); err != nil {
		return domain.Ordinance{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Ordinance{}, fmt.Errorf("storage is not configured")
	}
	ordinanceID = strings.TrimSpace(ordinanceID)
	if ordinanceID == "" {
		return domain.Ordinance{}, fmt.Errorf("ordinance id is required")
	}
	return getOrdinance(ctx, s.sqlDB, ordinanceID)
}

// ListOrdinances pages ordinances in creation order, optionally by status.
func (s *Store) ListOrdinances(ctx context.Context, query storage.ListQuery) ([]domain.Ordinance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	pageSize := query.PageSize
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}

	var (
		conditions []string
		args       []any
	)
	if query.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(query.Status))
	}
	if query.AfterID != "" {
		conditions = append(conditions,
			"(created_at, id) > (SELECT created_at, id FROM ordinances WHERE id = ?)")
		args = append(args, query.AfterID)
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, pageSize)

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+ordinanceColumns+` FROM ordinances`+where+` ORDER BY created_at, id LIMIT ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list ordinances: %w", err)
	}
	defer rows.Close()

	var out []domain.Ordinance
	for rows.Next() {
		var o domain.Ordinance
		var status string
		var signatureStatus string
		var createdAt int64
		var updatedAt int64
		if err := rows.Scan(
			&o.ID,
			&o.Title,
			&o.ContentRef,
			&status,
			&o.OfficialNumber,
			&o.IntegrityHash,
			&signatureStatus,
			&o.SignatureJustification,
			&o.AttachmentRef,
			&o.ReviewerID,
			&o.AuthorID,
			&o.RejectionReason,
			&o.FailureDetail,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("list ordinances: %w", err)
		}
		o.Status = domain.Status(status)
		o.SignatureStatus = domain.SignatureStatus(signatureStatus)
		o.CreatedAt = fromMillis(createdAt)
		o.UpdatedAt = fromMillis(updatedAt)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ordinances: %w", err)
	}
	return out, nil
}

// UpdateDraft edits title and content while the ordinance is editable.
func (s *Store) UpdateDraft(ctx context.Context, ordinanceID, title, contentRef string, event domain.ActivityEvent) (domain.Ordinance, error) {
	return s.transition(ctx, ordinanceID, event, transitionSpec{
		query: `UPDATE ordinances SET title = ?, content_ref = ?, updated_at = ?
		        WHERE id = ? AND status IN (?, ?)`,
		args: func(now time.Time) []any {
			return []any{
				title, contentRef, toMillis(now),
				ordinanceID, string(domain.StatusDraft), string(domain.StatusNeedsCorrection),
			}
		},
	})
}

// SubmitForReview moves a draft (or corrected draft) into the review queue.
func (s *Store) SubmitForReview(ctx context.Context, ordinanceID string, event domain.ActivityEvent) (domain.Ordinance, error) {
	return s.transition(ctx, ordinanceID, event, transitionSpec{
		query: `UPDATE ordinances SET status = ?, rejection_reason = '', updated_at = ?
		        WHERE id = ? AND status IN (?, ?)`,
		args: func(now time.Time) []any {
			return []any{
				string(domain.StatusReviewOpen), toMillis(now),
				ordinanceID, string(domain.StatusDraft), string(domain.StatusNeedsCorrection),
			}
		},
	})
}

// ClaimReview assigns the review to one reviewer. The status and reviewer
// preconditions live in the same conditional write, so a concurrent claim
// loses cleanly instead of racing a read-then-write.
func (s *Store) ClaimReview(ctx context.Context, ordinanceID, reviewerID string, event domain.ActivityEvent) (domain.Ordinance, error) {
	return s.transition(ctx, ordinanceID, event, transitionSpec{
		query: `UPDATE ordinances SET status = ?, reviewer_id = ?, updated_at = ?
		        WHERE id = ? AND status = ? AND reviewer_id = ''`,
		args: func(now time.Time) []any {
			return []any{
				string(domain.StatusReviewAssigned), reviewerID, toMillis(now),
				ordinanceID, string(domain.StatusReviewOpen),
			}
		},
		classify: func(current domain.Ordinance) error {
			if current.Status == domain.StatusReviewAssigned {
				return storage.ErrAlreadyClaimed
			}
			return storage.ErrStateConflict
		},
	})
}

// ApproveReview passes review; only the assigned reviewer matches the write.
func (s *Store) ApproveReview(ctx context.Context, ordinanceID, reviewerID string, event domain.ActivityEvent) (domain.Ordinance, error) {
	return s.transition(ctx, ordinanceID, event, transitionSpec{
		query: `UPDATE ordinances SET status = ?, reviewer_id = '', updated_at = ?
		        WHERE id = ? AND status = ? AND reviewer_id = ?`,
		args: func(now time.Time) []any {
			return []any{
				string(domain.StatusApprovedPendingSignature), toMillis(now),
				ordinanceID, string(domain.StatusReviewAssigned), reviewerID,
			}
		},
		classify: func(current domain.Ordinance) error {
			if current.Status == domain.StatusReviewAssigned && current.ReviewerID != reviewerID {
				return storage.ErrReviewerMismatch
			}
			return storage.ErrStateConflict
		},
	})
}

// RejectReview returns the ordinance to its author. The previously rendered
// output is invalidated by clearing the content reference.
func (s *Store) RejectReview(ctx context.Context, ordinanceID, reviewerID, reason string, event domain.ActivityEvent) (domain.Ordinance, error) {
	return s.transition(ctx, ordinanceID, event, transitionSpec{
		query: `UPDATE ordinances SET status = ?, reviewer_id = '', rejection_reason = ?, content_ref = '', updated_at = ?
		        WHERE id = ? AND status = ? AND reviewer_id = ?`,
		args: func(now time.Time) []any {
			return []any{
				string(domain.StatusNeedsCorrection), reason, toMillis(now),
				ordinanceID, string(domain.StatusReviewAssigned), reviewerID,
			}
		},
		classify: func(current domain.Ordinance) error {
			if current.Status == domain.StatusReviewAssigned && current.ReviewerID != reviewerID {
				return storage.ErrReviewerMismatch
			}
			return storage.ErrStateConflict
		},
	})
}

// RecordSignature stores the signature outcome and the integrity hash. The
// hash is written exactly once; the conditional write refuses a second pass.
func (s *Store) RecordSignature(ctx context.Context, ordinanceID string, signature storage.SignatureRecord, event domain.ActivityEvent) (domain.Ordinance, error) {
	return s.transition(ctx, ordinanceID, event, transitionSpec{
		query: `UPDATE ordinances SET status = ?, signature_status = ?, signature_justification = ?,
		        attachment_ref = ?, content_ref = ?, integrity_hash = ?, updated_at = ?
		        WHERE id = ? AND status = ? AND integrity_hash = ''`,
		args: func(now time.Time) []any {
			return []any{
				string(domain.StatusSignedPendingPublication),
				string(signature.Mode),
				signature.Justification,
				signature.AttachmentRef,
				signature.ContentRef,
				signature.IntegrityHash,
				toMillis(now),
				ordinanceID, string(domain.StatusApprovedPendingSignature),
			}
		},
	})
}

// MarkProcessingFailed records a failed rendering round trip from any
// non-terminal state. It never touches numbering.
func (s *Store) MarkProcessingFailed(ctx context.Context, ordinanceID, detail string, event domain.ActivityEvent) (domain.Ordinance, error) {
	return s.transition(ctx, ordinanceID, event, transitionSpec{
		query: `UPDATE ordinances SET status = ?, failure_detail = ?, updated_at = ?
		        WHERE id = ? AND status != ?`,
		args: func(now time.Time) []any {
			return []any{
				string(domain.StatusProcessingFailed), detail, toMillis(now),
				ordinanceID, string(domain.StatusPublished),
			}
		},
	})
}

// MarkProcessing re-enters processing from a failed attempt.
func (s *Store) MarkProcessing(ctx context.Context, ordinanceID string, event domain.ActivityEvent) (domain.Ordinance, error) {
	return s.transition(ctx, ordinanceID, event, transitionSpec{
		query: `UPDATE ordinances SET status = ?, failure_detail = '', updated_at = ?
		        WHERE id = ? AND status = ?`,
		args: func(now time.Time) []any {
			return []any{
				string(domain.StatusProcessing), toMillis(now),
				ordinanceID, string(domain.StatusProcessingFailed),
			}
		},
	})
}

// transitionSpec describes one conditional lifecycle write.
type transitionSpec struct {
	query string
	args  func(now time.Time) []any
	// classify refines the zero-rows case; defaults to ErrStateConflict.
	classify func(current domain.Ordinance) error
}

// transition applies a conditional write and its activity event atomically.
// Zero affected rows roll back and classify as not-found or a state conflict.
func (s *Store) transition(ctx context.Context, ordinanceID string, event domain.ActivityEvent, spec transitionSpec) (domain.Ordinance, error) {
	if err := ctx.Err(); err != nil {
		return domain.Ordinance{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Ordinance{}, fmt.Errorf("storage is not configured")
	}
	ordinanceID = strings.TrimSpace(ordinanceID)
	if ordinanceID == "" {
		return domain.Ordinance{}, fmt.Errorf("ordinance id is required")
	}

	tx, err := s.beginTx(ctx)
	if err != nil {
		return domain.Ordinance{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := s.now()
	res, err := tx.ExecContext(ctx, spec.query, spec.args(now)...)
	if err != nil {
		if isBusyError(err) {
			return domain.Ordinance{}, storage.ErrBusy
		}
		return domain.Ordinance{}, fmt.Errorf("apply transition: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Ordinance{}, fmt.Errorf("apply transition: %w", err)
	}
	if affected == 0 {
		current, getErr := getOrdinance(ctx, tx, ordinanceID)
		if getErr != nil {
			return domain.Ordinance{}, getErr
		}
		if spec.classify != nil {
			return domain.Ordinance{}, spec.classify(current)
		}
		return domain.Ordinance{}, storage.ErrStateConflict
	}

	event.OrdinanceID = ordinanceID
	if err := appendActivityEventTx(ctx, tx, event, now); err != nil {
		return domain.Ordinance{}, err
	}

	updated, err := getOrdinance(ctx, tx, ordinanceID)
	if err != nil {
		return domain.Ordinance{}, err
	}

	if err := tx.Commit(); err != nil {
		if isBusyError(err) {
			return domain.Ordinance{}, storage.ErrBusy
		}
		return domain.Ordinance{}, fmt.Errorf("commit transition: %w", err)
	}
	return updated, nil
}
