package httpapi

import (
	"time"

	"github.com/diariourbano/portaria/internal/services/portaria/domain"
)

type createOrdinanceRequest struct {
	Title      string `json:"title"`
	ContentRef string `json:"content_ref"`
}

type updateDraftRequest struct {
	Title      string `json:"title"`
	ContentRef string `json:"content_ref"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type signRequest struct {
	Mode          string `json:"mode"`
	Justification string `json:"justification,omitempty"`
	AttachmentRef string `json:"attachment_ref,omitempty"`
}

type updateBookRequest struct {
	NumberFormat string `json:"number_format"`
}

type ordinanceResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	ContentRef      string    `json:"content_ref,omitempty"`
	Status          string    `json:"status"`
	OfficialNumber  string    `json:"official_number,omitempty"`
	IntegrityHash   string    `json:"integrity_hash,omitempty"`
	SignatureStatus string    `json:"signature_status"`
	ReviewerID      string    `json:"reviewer_id,omitempty"`
	AuthorID        string    `json:"author_id"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	FailureDetail   string    `json:"failure_detail,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type ordinanceListResponse struct {
	Ordinances []ordinanceResponse `json:"ordinances"`
	NextAfter  string              `json:"next_after,omitempty"`
}

type timelineResponse struct {
	Events []eventResponse `json:"events"`
}

type eventResponse struct {
	Seq       int64             `json:"seq"`
	EventType string            `json:"event_type"`
	Message   string            `json:"message"`
	ActorID   string            `json:"actor_id,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type integrityResponse struct {
	OrdinanceID string `json:"ordinance_id"`
	Valid       bool   `json:"valid"`
}

type bookResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	NumberFormat   string    `json:"number_format"`
	StartingNumber uint64    `json:"starting_number"`
	NextNumber     uint64    `json:"next_number"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type allocationListResponse struct {
	Allocations []allocationResponse `json:"allocations"`
}

type allocationResponse struct {
	Seq             int64     `json:"seq"`
	BookID          string    `json:"book_id"`
	FormattedNumber string    `json:"formatted_number"`
	PaddedNumber    string    `json:"padded_number"`
	RawNumber       uint64    `json:"raw_number"`
	OrdinanceID     string    `json:"ordinance_id"`
	ApproverID      string    `json:"approver_id"`
	OriginIP        string    `json:"origin_ip,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func toOrdinanceResponse(o domain.Ordinance) ordinanceResponse {
	return ordinanceResponse{
		ID:              o.ID,
		Title:           o.Title,
		ContentRef:      o.ContentRef,
		Status:          string(o.Status),
		OfficialNumber:  o.OfficialNumber,
		IntegrityHash:   o.IntegrityHash,
		SignatureStatus: string(o.SignatureStatus),
		ReviewerID:      o.ReviewerID,
		AuthorID:        o.AuthorID,
		RejectionReason: o.RejectionReason,
		FailureDetail:   o.FailureDetail,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toEventResponse(e domain.ActivityEvent) eventResponse {
	return eventResponse{
		Seq:       e.Seq,
		EventType: string(e.EventType),
		Message:   e.Message,
		ActorID:   e.ActorID,
		Metadata:  e.Metadata,
		CreatedAt: e.CreatedAt,
	}
}

func toBookResponse(b domain.SequenceBook) bookResponse {
	return bookResponse{
		ID:             b.ID,
		Name:           b.Name,
		NumberFormat:   b.NumberFormat,
		StartingNumber: b.StartingNumber,
		NextNumber:     b.NextNumber,
		Active:         b.Active,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

func toAllocationResponse(a domain.AllocationLogEntry) allocationResponse {
	return allocationResponse{
		Seq:             a.Seq,
		BookID:          a.BookID,
		FormattedNumber: a.FormattedNumber,
		PaddedNumber:    a.PaddedNumber,
		RawNumber:       a.RawNumber,
		OrdinanceID:     a.OrdinanceID,
		ApproverID:      a.ApproverID,
		OriginIP:        a.OriginIP,
		CreatedAt:       a.CreatedAt,
	}
}
