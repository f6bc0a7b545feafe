// Package domain holds the ordinance lifecycle model: the record types, the
// transition table, and the sequence book that issues official numbers.
package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/diariourbano/portaria/internal/errors"
	"github.com/diariourbano/portaria/internal/platform/id"
)

// SignatureStatus describes how a published ordinance was signed.
type SignatureStatus string

const (
	// SignatureUnsigned means no signature was recorded yet.
	SignatureUnsigned SignatureStatus = "UNSIGNED"
	// SignatureDigital means a digital signature was applied.
	SignatureDigital SignatureStatus = "DIGITAL"
	// SignatureManual means a wet signature with a scanned attachment.
	SignatureManual SignatureStatus = "MANUAL_WITH_ATTACHMENT"
	// SignatureWaived means signing was waived with a recorded justification.
	SignatureWaived SignatureStatus = "WAIVED_WITH_JUSTIFICATION"
)

// Ordinance is one government ordinance tracked through the lifecycle.
// Records are never deleted; publication makes them immutable.
type Ordinance struct {
	ID                     string
	Title                  string
	ContentRef             string
	Status                 Status
	OfficialNumber         string // empty until the allocator assigns it, immutable after
	IntegrityHash          string // set once at signature time
	SignatureStatus        SignatureStatus
	SignatureJustification string
	AttachmentRef          string
	ReviewerID             string // set while a reviewer holds the review
	AuthorID               string
	RejectionReason        string
	FailureDetail          string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Numbered reports whether the allocator already assigned an official number.
func (o Ordinance) Numbered() bool {
	return o.OfficialNumber != ""
}

// CreateOrdinanceInput describes the data needed to open a new draft.
type CreateOrdinanceInput struct {
	Title      string
	ContentRef string
	AuthorID   string
}

// CreateOrdinance creates a new draft ordinance with a generated ID and timestamps.
func CreateOrdinance(input CreateOrdinanceInput, now func() time.Time, idGenerator func() (string, error)) (Ordinance, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateOrdinanceInput(input)
	if err != nil {
		return Ordinance{}, err
	}

	ordinanceID, err := idGenerator()
	if err != nil {
		return Ordinance{}, fmt.Errorf("generate ordinance id: %w", err)
	}

	createdAt := now().UTC()
	return Ordinance{
		ID:              ordinanceID,
		Title:           normalized.Title,
		ContentRef:      normalized.ContentRef,
		Status:          StatusDraft,
		SignatureStatus: SignatureUnsigned,
		AuthorID:        normalized.AuthorID,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}, nil
}

// NormalizeCreateOrdinanceInput trims and validates draft input.
func NormalizeCreateOrdinanceInput(input CreateOrdinanceInput) (CreateOrdinanceInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.ContentRef = strings.TrimSpace(input.ContentRef)
	input.AuthorID = strings.TrimSpace(input.AuthorID)
	if input.Title == "" {
		return CreateOrdinanceInput{}, apperrors.New(apperrors.CodeOrdinanceTitleRequired, "ordinance title is required")
	}
	if input.AuthorID == "" {
		return CreateOrdinanceInput{}, apperrors.New(apperrors.CodeOrdinanceAuthorRequired, "ordinance author is required")
	}
	return input, nil
}

// SignatureRequest carries the inputs for the sign transition.
type SignatureRequest struct {
	Mode          SignatureStatus
	Justification string
	AttachmentRef string
}

// NormalizeSignatureRequest validates that exactly one signature mode is
// selected and that non-digital modes carry the required evidence.
func NormalizeSignatureRequest(req SignatureRequest) (SignatureRequest, error) {
	req.Justification = strings.TrimSpace(req.Justification)
	req.AttachmentRef = strings.TrimSpace(req.AttachmentRef)

	switch req.Mode {
	case SignatureDigital:
		return req, nil
	case SignatureManual:
		if req.Justification == "" {
			return SignatureRequest{}, apperrors.New(apperrors.CodeSignatureReasonRequired, "manual signature requires a justification")
		}
		if req.AttachmentRef == "" {
			return SignatureRequest{}, apperrors.New(apperrors.CodeSignatureAttachmentNeeded, "manual signature requires an attachment")
		}
		return req, nil
	case SignatureWaived:
		if req.Justification == "" {
			return SignatureRequest{}, apperrors.New(apperrors.CodeSignatureReasonRequired, "waived signature requires a justification")
		}
		return req, nil
	default:
		return SignatureRequest{}, apperrors.New(apperrors.CodeSignatureModeInvalid, "signature mode is required")
	}
}

// ReadyForReview reports whether a draft carries the fields review requires.
func (o Ordinance) ReadyForReview() error {
	if strings.TrimSpace(o.Title) == "" {
		return apperrors.New(apperrors.CodeOrdinanceTitleRequired, "ordinance title is required")
	}
	if strings.TrimSpace(o.ContentRef) == "" {
		return apperrors.New(apperrors.CodeOrdinanceContentRequired, "ordinance content is required")
	}
	return nil
}
