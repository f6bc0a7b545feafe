package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Ordinance validation errors
	CodeOrdinanceTitleRequired    Code = "ORDINANCE_TITLE_REQUIRED"
	CodeOrdinanceContentRequired  Code = "ORDINANCE_CONTENT_REQUIRED"
	CodeOrdinanceAuthorRequired   Code = "ORDINANCE_AUTHOR_REQUIRED"
	CodeRejectionReasonRequired   Code = "REJECTION_REASON_REQUIRED"
	CodeSignatureModeInvalid      Code = "SIGNATURE_MODE_INVALID"
	CodeSignatureReasonRequired   Code = "SIGNATURE_JUSTIFICATION_REQUIRED"
	CodeSignatureAttachmentNeeded Code = "SIGNATURE_ATTACHMENT_REQUIRED"
	CodeActorRequired             Code = "ACTOR_REQUIRED"
	CodeRequestInvalid            Code = "REQUEST_INVALID"

	// Sequence book validation errors
	CodeBookFormatInvalid Code = "BOOK_FORMAT_INVALID"

	// Lifecycle state errors
	CodeInvalidStatusTransition Code = "ORDINANCE_INVALID_STATUS_TRANSITION"
	CodeStatusDisallowsEdit     Code = "ORDINANCE_STATUS_DISALLOWS_EDIT"
	CodeReviewAlreadyClaimed    Code = "REVIEW_ALREADY_CLAIMED"
	CodeReviewerMismatch        Code = "REVIEWER_MISMATCH"

	// Authorization errors
	CodeNotAuthorized Code = "NOT_AUTHORIZED"

	// Storage errors
	CodeNotFound       Code = "NOT_FOUND"
	CodeStorageFailure Code = "STORAGE_FAILURE"

	// Numbering errors
	CodeAllocationContention Code = "ALLOCATION_CONTENTION"

	// Integrity errors
	CodeIntegrityViolation Code = "INTEGRITY_VIOLATION"

	// Document processing errors
	CodeRenderFailure Code = "RENDER_FAILURE"
)

// Kind groups error codes into the caller-facing taxonomy.
type Kind int

const (
	// KindUnknown is an unclassified failure.
	KindUnknown Kind = iota
	// KindValidation is malformed input; nothing was mutated.
	KindValidation
	// KindState is a transition rejected by the current lifecycle state.
	KindState
	// KindAuthorization is a denial from the authorization collaborator.
	KindAuthorization
	// KindNotFound is a missing record.
	KindNotFound
	// KindContention is a bounded lock wait that expired; safe to retry.
	KindContention
	// KindIntegrity is a content hash mismatch; never auto-corrected.
	KindIntegrity
	// KindInfrastructure is a store or collaborator failure; fully rolled back.
	KindInfrastructure
)

// Kind classifies the code into the error taxonomy.
func (c Code) Kind() Kind {
	switch c {
	case CodeOrdinanceTitleRequired,
		CodeOrdinanceContentRequired,
		CodeOrdinanceAuthorRequired,
		CodeRejectionReasonRequired,
		CodeSignatureModeInvalid,
		CodeSignatureReasonRequired,
		CodeSignatureAttachmentNeeded,
		CodeActorRequired,
		CodeRequestInvalid,
		CodeBookFormatInvalid:
		return KindValidation

	case CodeInvalidStatusTransition,
		CodeStatusDisallowsEdit,
		CodeReviewAlreadyClaimed,
		CodeReviewerMismatch:
		return KindState

	case CodeNotAuthorized:
		return KindAuthorization

	case CodeNotFound:
		return KindNotFound

	case CodeAllocationContention:
		return KindContention

	case CodeIntegrityViolation:
		return KindIntegrity

	case CodeStorageFailure, CodeRenderFailure:
		return KindInfrastructure

	default:
		return KindUnknown
	}
}

// HTTPStatus maps the code to the HTTP status the API surface responds with.
func (c Code) HTTPStatus() int {
	switch c.Kind() {
	case KindValidation:
		return http.StatusBadRequest
	case KindState, KindIntegrity:
		return http.StatusConflict
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindContention:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
