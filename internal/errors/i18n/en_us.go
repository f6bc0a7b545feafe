package i18n

// Error codes must match the codes defined in internal/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown                   = "UNKNOWN"
	CodeOrdinanceTitleRequired    = "ORDINANCE_TITLE_REQUIRED"
	CodeOrdinanceContentRequired  = "ORDINANCE_CONTENT_REQUIRED"
	CodeOrdinanceAuthorRequired   = "ORDINANCE_AUTHOR_REQUIRED"
	CodeRejectionReasonRequired   = "REJECTION_REASON_REQUIRED"
	CodeSignatureModeInvalid      = "SIGNATURE_MODE_INVALID"
	CodeSignatureReasonRequired   = "SIGNATURE_JUSTIFICATION_REQUIRED"
	CodeSignatureAttachmentNeeded = "SIGNATURE_ATTACHMENT_REQUIRED"
	CodeActorRequired             = "ACTOR_REQUIRED"
	CodeRequestInvalid            = "REQUEST_INVALID"
	CodeBookFormatInvalid         = "BOOK_FORMAT_INVALID"
	CodeInvalidStatusTransition   = "ORDINANCE_INVALID_STATUS_TRANSITION"
	CodeStatusDisallowsEdit       = "ORDINANCE_STATUS_DISALLOWS_EDIT"
	CodeReviewAlreadyClaimed      = "REVIEW_ALREADY_CLAIMED"
	CodeReviewerMismatch          = "REVIEWER_MISMATCH"
	CodeNotAuthorized             = "NOT_AUTHORIZED"
	CodeNotFound                  = "NOT_FOUND"
	CodeStorageFailure            = "STORAGE_FAILURE"
	CodeAllocationContention      = "ALLOCATION_CONTENTION"
	CodeIntegrityViolation        = "INTEGRITY_VIOLATION"
	CodeRenderFailure             = "RENDER_FAILURE"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		CodeUnknown: "An unexpected error occurred",

		// Validation
		CodeOrdinanceTitleRequired:    "Ordinance title cannot be empty",
		CodeOrdinanceContentRequired:  "Ordinance content cannot be empty",
		CodeOrdinanceAuthorRequired:   "Ordinance author is required",
		CodeRejectionReasonRequired:   "A rejection reason is required",
		CodeSignatureModeInvalid:      "Exactly one signature mode must be selected",
		CodeSignatureReasonRequired:   "Non-digital signatures require a justification",
		CodeSignatureAttachmentNeeded: "Manual signatures require a scanned attachment",
		CodeActorRequired:             "Acting user is required",
		CodeRequestInvalid:            "Request is malformed",
		CodeBookFormatInvalid:         "Number format must contain exactly one {N} placeholder",

		// Lifecycle state
		CodeInvalidStatusTransition: "Cannot move ordinance from {{.FromStatus}} to {{.ToStatus}}",
		CodeStatusDisallowsEdit:     "Ordinance status {{.Status}} does not allow editing",
		CodeReviewAlreadyClaimed:    "Another reviewer already claimed this ordinance",
		CodeReviewerMismatch:        "Only the assigned reviewer can perform this action",

		// Authorization
		CodeNotAuthorized: "You are not permitted to perform this action",

		// Storage
		CodeNotFound:       "Record not found",
		CodeStorageFailure: "The operation could not be completed; please try again",

		// Numbering
		CodeAllocationContention: "The numbering book is busy; please try again",

		// Integrity
		CodeIntegrityViolation: "Document content does not match its signed hash",

		// Processing
		CodeRenderFailure: "Document rendering failed; the ordinance was not published",
	},
}
