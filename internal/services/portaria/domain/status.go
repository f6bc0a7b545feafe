package domain

// Status tracks an ordinance through its lifecycle. The persisted value is
// the string form so the stored record stays legible for audits.
type Status string

const (
	// StatusDraft is the initial state; the author is still editing.
	StatusDraft Status = "DRAFT"
	// StatusReviewOpen means the ordinance awaits a reviewer.
	StatusReviewOpen Status = "REVIEW_OPEN"
	// StatusReviewAssigned means exactly one reviewer holds the review.
	StatusReviewAssigned Status = "REVIEW_ASSIGNED"
	// StatusNeedsCorrection means review rejected the ordinance back to its author.
	StatusNeedsCorrection Status = "NEEDS_CORRECTION"
	// StatusApprovedPendingSignature means review passed and a signature is due.
	StatusApprovedPendingSignature Status = "APPROVED_PENDING_SIGNATURE"
	// StatusSignedPendingPublication means the ordinance is signed and awaits numbering.
	StatusSignedPendingPublication Status = "SIGNED_PENDING_PUBLICATION"
	// StatusProcessing means a document-rendering round trip is in flight.
	StatusProcessing Status = "PROCESSING"
	// StatusProcessingFailed means the rendering round trip failed; retry is allowed.
	StatusProcessingFailed Status = "PROCESSING_FAILED"
	// StatusPublished is terminal; the record is immutable thereafter.
	StatusPublished Status = "PUBLISHED"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusReviewOpen, StatusReviewAssigned, StatusNeedsCorrection,
		StatusApprovedPendingSignature, StatusSignedPendingPublication,
		StatusProcessing, StatusProcessingFailed, StatusPublished:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusPublished
}

// Transition names a lifecycle event that moves an ordinance between states.
type Transition string

const (
	// TransitionSubmit sends a draft (or corrected draft) to review.
	TransitionSubmit Transition = "submit"
	// TransitionClaim assigns the review to one reviewer.
	TransitionClaim Transition = "claim"
	// TransitionApprove passes review and queues the signature.
	TransitionApprove Transition = "approve"
	// TransitionReject returns the ordinance to its author for correction.
	TransitionReject Transition = "reject"
	// TransitionSign records the signature and integrity hash.
	TransitionSign Transition = "sign"
	// TransitionPublish allocates the official number and publishes.
	TransitionPublish Transition = "publish"
	// TransitionProcessingFail records a failed rendering round trip.
	TransitionProcessingFail Transition = "processing_fail"
	// TransitionRetry re-enters processing after a failure.
	TransitionRetry Transition = "retry"
)

// transitions is the single authoritative table of legal lifecycle moves.
// Everything outside this table is a state error.
var transitions = map[Transition]map[Status]Status{
	TransitionSubmit: {
		StatusDraft:           StatusReviewOpen,
		StatusNeedsCorrection: StatusReviewOpen,
	},
	TransitionClaim: {
		StatusReviewOpen: StatusReviewAssigned,
	},
	TransitionApprove: {
		StatusReviewAssigned: StatusApprovedPendingSignature,
	},
	TransitionReject: {
		StatusReviewAssigned: StatusNeedsCorrection,
	},
	TransitionSign: {
		StatusApprovedPendingSignature: StatusSignedPendingPublication,
	},
	TransitionPublish: {
		StatusSignedPendingPublication: StatusPublished,
		StatusProcessing:               StatusPublished,
	},
	TransitionRetry: {
		StatusProcessingFailed: StatusProcessing,
	},
}

// NextStatus resolves the target state for a transition from the given state.
// The bool is false when the transition is not legal from that state.
func NextStatus(from Status, transition Transition) (Status, bool) {
	if transition == TransitionProcessingFail {
		// A failed processing attempt is reachable from any non-terminal state.
		if from.Terminal() {
			return "", false
		}
		return StatusProcessingFailed, true
	}
	targets, ok := transitions[transition]
	if !ok {
		return "", false
	}
	to, ok := targets[from]
	return to, ok
}
