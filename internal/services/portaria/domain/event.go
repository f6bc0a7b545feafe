package domain

import "time"

// EventType labels one entry in an ordinance's activity feed.
type EventType string

const (
	// EventOrdinanceCreated records the opening of a new draft.
	EventOrdinanceCreated EventType = "ordinance.created"
	// EventDraftUpdated records an edit to a draft or returned ordinance.
	EventDraftUpdated EventType = "draft.updated"
	// EventSubmitted records submission for review.
	EventSubmitted EventType = "ordinance.submitted"
	// EventReviewClaimed records a reviewer taking the review.
	EventReviewClaimed EventType = "review.claimed"
	// EventReviewApproved records review approval.
	EventReviewApproved EventType = "review.approved"
	// EventReviewRejected records a rejection; metadata carries the reason.
	EventReviewRejected EventType = "review.rejected"
	// EventSigned records the signature; metadata carries mode and hash.
	EventSigned EventType = "ordinance.signed"
	// EventNumberAllocated records the official number issuance.
	EventNumberAllocated EventType = "number.allocated"
	// EventPublished records publication.
	EventPublished EventType = "ordinance.published"
	// EventProcessingFailed records a failed rendering round trip.
	EventProcessingFailed EventType = "processing.failed"
	// EventProcessingRetried records a retry after failure.
	EventProcessingRetried EventType = "processing.retried"
	// EventIntegrityViolation flags a hash mismatch found during validation.
	EventIntegrityViolation EventType = "integrity.violation"
)

// ActivityEvent is one append-only audit record on an ordinance's timeline.
type ActivityEvent struct {
	Seq         int64
	OrdinanceID string
	EventType   EventType
	Message     string
	ActorID     string
	Metadata    map[string]string
	CreatedAt   time.Time
}

// AllocationLogEntry is one append-only issuance record owned by a book.
// The set of entries for a book is exactly the set of numbers it ever issued,
// in issuance order.
type AllocationLogEntry struct {
	Seq             int64
	BookID          string
	FormattedNumber string
	PaddedNumber    string
	RawNumber       uint64
	OrdinanceID     string
	ApproverID      string
	OriginIP        string
	CreatedAt       time.Time
}
