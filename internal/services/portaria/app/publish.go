package app

import (
	"context"

	apperrors "github.com/diariourbano/portaria/internal/errors"
	"github.com/diariourbano/portaria/internal/services/portaria/auth"
	"github.com/diariourbano/portaria/internal/services/portaria/domain"
)

// NumberAndPublish renders the final document and then runs the numbering
// critical section: allocate the next number from the active book, record it
// in the allocation log, and move the ordinance to PUBLISHED. The rendering
// round trip happens before the store's write lock is taken, so a slow or
// failing renderer never holds up other allocations.
//
// Calling this on an already published ordinance returns the existing record
// unchanged; the book cursor is never advanced twice for the same ordinance.
func (s *Service) NumberAndPublish(ctx context.Context, ordinanceID, actorID, originIP string) (domain.Ordinance, error) {
	ctx, span := s.tracer.Start(ctx, "portaria.NumberAndPublish")
	defer span.End()

	actorID, err := requireActor(actorID)
	if err != nil {
		return domain.Ordinance{}, err
	}
	ordinance, err := s.GetOrdinance(ctx, ordinanceID)
	if err != nil {
		return domain.Ordinance{}, err
	}
	if err := s.authorize(ctx, actorID, auth.ActionPublish, ordinance); err != nil {
		return domain.Ordinance{}, err
	}
	if ordinance.Status == domain.StatusPublished {
		return ordinance, nil
	}
	if _, ok := domain.NextStatus(ordinance.Status, domain.TransitionPublish); !ok {
		return domain.Ordinance{}, stateError(ordinance.Status, domain.TransitionPublish)
	}

	if err := s.renderFinalDocument(ctx, ordinanceID, actorID); err != nil {
		return domain.Ordinance{}, err
	}

	result, err := s.store.PublishWithNumber(ctx, ordinanceID, actorID, originIP)
	if err != nil {
		return domain.Ordinance{}, s.mapStoreError(err, ordinance.Status, domain.TransitionPublish)
	}
	return result.Ordinance, nil
}

// RetryProcessing re-runs the rendering round trip after a processing failure
// and publishes on success. An ordinance that was numbered before the failure
// keeps its number.
func (s *Service) RetryProcessing(ctx context.Context, ordinanceID, actorID, originIP string) (domain.Ordinance, error) {
	ctx, span := s.tracer.Start(ctx, "portaria.RetryProcessing")
	defer span.End()

	actorID, err := requireActor(actorID)
	if err != nil {
		return domain.Ordinance{}, err
	}
	ordinance, err := s.GetOrdinance(ctx, ordinanceID)
	if err != nil {
		return domain.Ordinance{}, err
	}
	if err := s.authorize(ctx, actorID, auth.ActionPublish, ordinance); err != nil {
		return domain.Ordinance{}, err
	}
	if _, ok := domain.NextStatus(ordinance.Status, domain.TransitionRetry); !ok {
		return domain.Ordinance{}, stateError(ordinance.Status, domain.TransitionRetry)
	}

	event := domain.ActivityEvent{
		EventType: domain.EventProcessingRetried,
		Message:   "processing retried",
		ActorID:   actorID,
	}
	current, err := s.store.MarkProcessing(ctx, ordinanceID, event)
	if err != nil {
		return domain.Ordinance{}, s.mapStoreError(err, ordinance.Status, domain.TransitionRetry)
	}

	if err := s.renderFinalDocument(ctx, ordinanceID, actorID); err != nil {
		return domain.Ordinance{}, err
	}

	result, err := s.store.PublishWithNumber(ctx, ordinanceID, actorID, originIP)
	if err != nil {
		return domain.Ordinance{}, s.mapStoreError(err, current.Status, domain.TransitionPublish)
	}
	return result.Ordinance, nil
}

// renderFinalDocument runs the rendering round trip and, on failure, parks the
// ordinance in PROCESSING_FAILED so an operator can retry later.
func (s *Service) renderFinalDocument(ctx context.Context, ordinanceID, actorID string) error {
	if _, err := s.renderer.RenderDocument(ctx, ordinanceID); err != nil {
		event := domain.ActivityEvent{
			EventType: domain.EventProcessingFailed,
			Message:   "document rendering failed",
			ActorID:   actorID,
			Metadata:  map[string]string{"error": err.Error()},
		}
		if _, markErr := s.store.MarkProcessingFailed(ctx, ordinanceID, err.Error(), event); markErr != nil {
			return apperrors.Wrap(apperrors.CodeStorageFailure, "storage operation failed", markErr)
		}
		return apperrors.Wrap(apperrors.CodeRenderFailure, "document rendering failed", err)
	}
	return nil
}
