package app

import (
	"context"

	apperrors "github.com/diariourbano/portaria/internal/errors"
	"github.com/diariourbano/portaria/internal/services/portaria/auth"
	"github.com/diariourbano/portaria/internal/services/portaria/domain"
	"github.com/diariourbano/portaria/internal/services/portaria/storage"
)

// Sign records the signature and freezes the integrity hash over the signed
// content. After this point a content mismatch is an integrity violation.
func (s *Service) Sign(ctx context.Context, ordinanceID, actorID string, req domain.SignatureRequest) (domain.Ordinance, error) {
	ctx, span := s.tracer.Start(ctx, "portaria.Sign")
	defer span.End()

	actorID, err := requireActor(actorID)
	if err != nil {
		return domain.Ordinance{}, err
	}
	req, err = domain.NormalizeSignatureRequest(req)
	if err != nil {
		return domain.Ordinance{}, err
	}

	ordinance, err := s.GetOrdinance(ctx, ordinanceID)
	if err != nil {
		return domain.Ordinance{}, err
	}
	if err := s.authorize(ctx, actorID, auth.ActionSign, ordinance); err != nil {
		return domain.Ordinance{}, err
	}
	if _, ok := domain.NextStatus(ordinance.Status, domain.TransitionSign); !ok {
		return domain.Ordinance{}, stateError(ordinance.Status, domain.TransitionSign)
	}

	hash := s.hasher.ComputeHash(ordinance.ContentRef)
	record := storage.SignatureRecord{
		SignerID:      actorID,
		Mode:          req.Mode,
		Justification: req.Justification,
		AttachmentRef: req.AttachmentRef,
		ContentRef:    ordinance.ContentRef,
		IntegrityHash: hash,
	}
	event := domain.ActivityEvent{
		EventType: domain.EventSigned,
		Message:   "ordinance signed",
		ActorID:   actorID,
		Metadata: map[string]string{
			"mode": string(req.Mode),
			"hash": hash,
		},
	}
	updated, err := s.store.RecordSignature(ctx, ordinanceID, record, event)
	if err != nil {
		return domain.Ordinance{}, s.mapStoreError(err, ordinance.Status, domain.TransitionSign)
	}
	return updated, nil
}

// ValidateIntegrity recomputes the content hash and compares it with the one
// frozen at signature time. A mismatch is recorded on the timeline and
// reported to the caller, never silently repaired.
func (s *Service) ValidateIntegrity(ctx context.Context, ordinanceID string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "portaria.ValidateIntegrity")
	defer span.End()

	ordinance, err := s.GetOrdinance(ctx, ordinanceID)
	if err != nil {
		return false, err
	}
	if ordinance.IntegrityHash == "" {
		return false, apperrors.New(apperrors.CodeInvalidStatusTransition, "ordinance has no recorded integrity hash")
	}

	computed := s.hasher.ComputeHash(ordinance.ContentRef)
	if computed == ordinance.IntegrityHash {
		return true, nil
	}

	event := domain.ActivityEvent{
		OrdinanceID: ordinanceID,
		EventType:   domain.EventIntegrityViolation,
		Message:     "content hash does not match the hash recorded at signature time",
		Metadata: map[string]string{
			"expected": ordinance.IntegrityHash,
			"computed": computed,
		},
	}
	if err := s.store.AppendActivityEvent(ctx, event); err != nil {
		return false, apperrors.Wrap(apperrors.CodeStorageFailure, "storage operation failed", err)
	}
	return false, nil
}
