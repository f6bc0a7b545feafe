// Package storage defines persistence contracts for ordinance service state.
package storage

import (
	"context"
	"errors"

	"github.com/diariourbano/portaria/internal/services/portaria/domain"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrStateConflict indicates a conditional transition matched no row
	// because the ordinance is in a different lifecycle state.
	ErrStateConflict = errors.New("ordinance state does not allow transition")
	// ErrAlreadyClaimed indicates another reviewer holds the review.
	ErrAlreadyClaimed = errors.New("review already claimed")
	// ErrReviewerMismatch indicates the caller is not the assigned reviewer.
	ErrReviewerMismatch = errors.New("caller is not the assigned reviewer")
	// ErrBusy indicates the write lock was not acquired within the bounded
	// wait. Nothing was committed; the operation is safe to retry.
	ErrBusy = errors.New("store is busy")
)

// ListQuery selects and pages ordinances for listing.
type ListQuery struct {
	Status   domain.Status // zero value lists all states
	PageSize int
	// AfterID resumes after the given ordinance ID in creation order.
	AfterID string
}

// SignatureRecord carries the persisted outcome of a sign transition.
type SignatureRecord struct {
	SignerID      string
	Mode          domain.SignatureStatus
	Justification string
	AttachmentRef string
	ContentRef    string
	IntegrityHash string
}

// PublishResult reports what the publish transaction did.
type PublishResult struct {
	Ordinance domain.Ordinance
	// Allocated is false when the ordinance already carried a number and the
	// book cursor was left untouched.
	Allocated bool
}

// OrdinanceStore persists ordinance records and applies lifecycle transitions.
// Every transition method performs its status precondition check and the
// activity feed append inside one transaction.
type OrdinanceStore interface {
	CreateOrdinance(ctx context.Context, ordinance domain.Ordinance, event domain.ActivityEvent) error
	GetOrdinance(ctx context.Context, ordinanceID string) (domain.Ordinance, error)
	ListOrdinances(ctx context.Context, query ListQuery) ([]domain.Ordinance, error)
	UpdateDraft(ctx context.Context, ordinanceID, title, contentRef string, event domain.ActivityEvent) (domain.Ordinance, error)

	SubmitForReview(ctx context.Context, ordinanceID string, event domain.ActivityEvent) (domain.Ordinance, error)
	ClaimReview(ctx context.Context, ordinanceID, reviewerID string, event domain.ActivityEvent) (domain.Ordinance, error)
	ApproveReview(ctx context.Context, ordinanceID, reviewerID string, event domain.ActivityEvent) (domain.Ordinance, error)
	RejectReview(ctx context.Context, ordinanceID, reviewerID, reason string, event domain.ActivityEvent) (domain.Ordinance, error)
	RecordSignature(ctx context.Context, ordinanceID string, signature SignatureRecord, event domain.ActivityEvent) (domain.Ordinance, error)
	MarkProcessingFailed(ctx context.Context, ordinanceID, detail string, event domain.ActivityEvent) (domain.Ordinance, error)
	MarkProcessing(ctx context.Context, ordinanceID string, event domain.ActivityEvent) (domain.Ordinance, error)

	// PublishWithNumber executes the numbering critical section: it locks the
	// active sequence book (creating the default book if none exists), assigns
	// the next number, appends the allocation log entry, moves the ordinance
	// to PUBLISHED, and appends the activity events, all in one transaction.
	// An ordinance that already carries a number is finalized without touching
	// the book cursor.
	PublishWithNumber(ctx context.Context, ordinanceID, approverID, originIP string) (PublishResult, error)
}

// SequenceBookStore persists numbering books and their allocation history.
type SequenceBookStore interface {
	ActiveBook(ctx context.Context) (domain.SequenceBook, error)
	GetBook(ctx context.Context, bookID string) (domain.SequenceBook, error)
	UpdateBookFormat(ctx context.Context, bookID, numberFormat string) (domain.SequenceBook, error)
	ListAllocations(ctx context.Context, bookID string) ([]domain.AllocationLogEntry, error)
}

// ActivityStore reads and appends the per-ordinance audit trail.
type ActivityStore interface {
	AppendActivityEvent(ctx context.Context, event domain.ActivityEvent) error
	ListActivityEvents(ctx context.Context, ordinanceID string) ([]domain.ActivityEvent, error)
}

// Store aggregates every persistence contract the service depends on.
type Store interface {
	OrdinanceStore
	SequenceBookStore
	ActivityStore
}
