package app

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/diariourbano/portaria/internal/errors"
	"github.com/diariourbano/portaria/internal/services/portaria/auth"
	"github.com/diariourbano/portaria/internal/services/portaria/domain"
)

// CreateDraft opens a new ordinance in DRAFT.
func (s *Service) CreateDraft(ctx context.Context, input domain.CreateOrdinanceInput) (domain.Ordinance, error) {
	ctx, span := s.tracer.Start(ctx, "portaria.CreateDraft")
	defer span.End()

	ordinance, err := domain.CreateOrdinance(input, s.now, s.newID)
	if err != nil {
		return domain.Ordinance{}, err
	}

	event := domain.ActivityEvent{
		EventType: domain.EventOrdinanceCreated,
		Message:   fmt.Sprintf("draft %q created", ordinance.Title),
		ActorID:   ordinance.AuthorID,
	}
	if err := s.store.CreateOrdinance(ctx, ordinance, event); err != nil {
		return domain.Ordinance{}, apperrors.Wrap(apperrors.CodeStorageFailure, "storage operation failed", err)
	}
	return ordinance, nil
}

// UpdateDraft edits title and content while the ordinance is still editable.
func (s *Service) UpdateDraft(ctx context.Context, ordinanceID, actorID, title, contentRef string) (domain.Ordinance, error) {
	ctx, span := s.tracer.Start(ctx, "portaria.UpdateDraft")
	defer span.End()

	actorID, err := requireActor(actorID)
	if err != nil {
		return domain.Ordinance{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Ordinance{}, apperrors.New(apperrors.CodeOrdinanceTitleRequired, "ordinance title is required")
	}

	ordinance, err := s.GetOrdinance(ctx, ordinanceID)
	if err != nil {
		return domain.Ordinance{}, err
	}
	if err := s.authorize(ctx, actorID, auth.ActionEdit, ordinance); err != nil {
		return domain.Ordinance{}, err
	}
	if ordinance.Status != domain.StatusDraft && ordinance.Status != domain.StatusNeedsCorrection {
		return domain.Ordinance{}, apperrors.WithMetadata(
			apperrors.CodeStatusDisallowsEdit,
			"ordinance status does not allow editing",
			map[string]string{"Status": string(ordinance.Status)},
		)
	}

	event := domain.ActivityEvent{
		EventType: domain.EventDraftUpdated,
		Message:   "draft updated",
		ActorID:   actorID,
	}
	updated, err := s.store.UpdateDraft(ctx, ordinanceID, title, strings.TrimSpace(contentRef), event)
	if err != nil {
		return domain.Ordinance{}, s.mapStoreError(err, ordinance.Status, domain.TransitionSubmit)
	}
	return updated, nil
}

// SubmitForReview moves a draft (or corrected draft) into the review queue.
func (s *Service) SubmitForReview(ctx context.Context, ordinanceID, actorID string) (domain.Ordinance, error) {
	ctx, span := s.tracer.Start(ctx, "portaria.SubmitForReview")
	defer span.End()

	actorID, err := requireActor(actorID)
	if err != nil {
		return domain.Ordinance{}, err
	}
	ordinance, err := s.GetOrdinance(ctx, ordinanceID)
	if err != nil {
		return domain.Ordinance{}, err
	}
	if err := s.authorize(ctx, actorID, auth.ActionSubmit, ordinance); err != nil {
		return domain.Ordinance{}, err
	}
	if _, ok := domain.NextStatus(ordinance.Status, domain.TransitionSubmit); !ok {
		return domain.Ordinance{}, stateError(ordinance.Status, domain.TransitionSubmit)
	}
	if err := ordinance.ReadyForReview(); err != nil {
		return domain.Ordinance{}, err
	}

	event := domain.ActivityEvent{
		EventType: domain.EventSubmitted,
		Message:   "submitted for review",
		ActorID:   actorID,
	}
	updated, err := s.store.SubmitForReview(ctx, ordinanceID, event)
	if err != nil {
		return domain.Ordinance{}, s.mapStoreError(err, ordinance.Status, domain.TransitionSubmit)
	}
	return updated, nil
}

// ClaimReview assigns the open review to the calling reviewer. Exactly one
// concurrent claimer wins; the others receive a state error.
func (s *Service) ClaimReview(ctx context.Context, ordinanceID, actorID string) (domain.Ordinance, error) {
	ctx, span := s.tracer.Start(ctx, "portaria.ClaimReview")
	defer span.End()

	actorID, err := requireActor(actorID)
	if err != nil {
		return domain.Ordinance{}, err
	}
	ordinance, err := s.GetOrdinance(ctx, ordinanceID)
	if err != nil {
		return domain.Ordinance{}, err
	}
	if err := s.authorize(ctx, actorID, auth.ActionClaim, ordinance); err != nil {
		return domain.Ordinance{}, err
	}
	if _, ok := domain.NextStatus(ordinance.Status, domain.TransitionClaim); !ok {
		if ordinance.Status == domain.StatusReviewAssigned {
			return domain.Ordinance{}, apperrors.New(apperrors.CodeReviewAlreadyClaimed, "review already claimed")
		}
		return domain.Ordinance{}, stateError(ordinance.Status, domain.TransitionClaim)
	}

	event := domain.ActivityEvent{
		EventType: domain.EventReviewClaimed,
		Message:   "review claimed",
		ActorID:   actorID,
	}
	updated, err := s.store.ClaimReview(ctx, ordinanceID, actorID, event)
	if err != nil {
		return domain.Ordinance{}, s.mapStoreError(err, ordinance.Status, domain.TransitionClaim)
	}
	return updated, nil
}

// ApproveReview passes review and queues the signature. Only the assigned
// reviewer may approve.
func (s *Service) ApproveReview(ctx context.Context, ordinanceID, actorID string) (domain.Ordinance, error) {
	ctx, span := s.tracer.Start(ctx, "portaria.ApproveReview")
	defer span.End()

	actorID, err := requireActor(actorID)
	if err != nil {
		return domain.Ordinance{}, err
	}
	ordinance, err := s.GetOrdinance(ctx, ordinanceID)
	if err != nil {
		return domain.Ordinance{}, err
	}
	if err := s.authorize(ctx, actorID, auth.ActionApprove, ordinance); err != nil {
		return domain.Ordinance{}, err
	}
	if _, ok := domain.NextStatus(ordinance.Status, domain.TransitionApprove); !ok {
		return domain.Ordinance{}, stateError(ordinance.Status, domain.TransitionApprove)
	}

	event := domain.ActivityEvent{
		EventType: domain.EventReviewApproved,
		Message:   "review approved",
		ActorID:   actorID,
	}
	updated, err := s.store.ApproveReview(ctx, ordinanceID, actorID, event)
	if err != nil {
		return domain.Ordinance{}, s.mapStoreError(err, ordinance.Status, domain.TransitionApprove)
	}
	return updated, nil
}

// RejectReview returns the ordinance to its author with a mandatory reason.
func (s *Service) RejectReview(ctx context.Context, ordinanceID, actorID, reason string) (domain.Ordinance, error) {
	ctx, span := s.tracer.Start(ctx, "portaria.RejectReview")
	defer span.End()

	actorID, err := requireActor(actorID)
	if err != nil {
		return domain.Ordinance{}, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.Ordinance{}, apperrors.New(apperrors.CodeRejectionReasonRequired, "rejection reason is required")
	}

	ordinance, err := s.GetOrdinance(ctx, ordinanceID)
	if err != nil {
		return domain.Ordinance{}, err
	}
	if err := s.authorize(ctx, actorID, auth.ActionReject, ordinance); err != nil {
		return domain.Ordinance{}, err
	}
	if _, ok := domain.NextStatus(ordinance.Status, domain.TransitionReject); !ok {
		return domain.Ordinance{}, stateError(ordinance.Status, domain.TransitionReject)
	}

	event := domain.ActivityEvent{
		EventType: domain.EventReviewRejected,
		Message:   fmt.Sprintf("returned to author: %s", reason),
		ActorID:   actorID,
		Metadata:  map[string]string{"reason": reason},
	}
	updated, err := s.store.RejectReview(ctx, ordinanceID, actorID, reason, event)
	if err != nil {
		return domain.Ordinance{}, s.mapStoreError(err, ordinance.Status, domain.TransitionReject)
	}
	return updated, nil
}
