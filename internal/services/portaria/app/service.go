// Package app implements the ordinance lifecycle service: the transition
// operations, their authorization checks, and the numbering hand-off.
package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/diariourbano/portaria/internal/errors"
	"github.com/diariourbano/portaria/internal/platform/id"
	"github.com/diariourbano/portaria/internal/services/portaria/auth"
	"github.com/diariourbano/portaria/internal/services/portaria/domain"
	"github.com/diariourbano/portaria/internal/services/portaria/render"
	"github.com/diariourbano/portaria/internal/services/portaria/storage"
)

// tracerName scopes the service spans.
const tracerName = "github.com/diariourbano/portaria/internal/services/portaria/app"

// Service drives ordinances through the lifecycle state machine.
type Service struct {
	store      storage.Store
	authorizer auth.Authorizer
	renderer   render.Renderer
	hasher     render.Hasher
	tracer     trace.Tracer
	now        func() time.Time
	newID      func() (string, error)
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithAuthorizer overrides the authorization collaborator.
func WithAuthorizer(authorizer auth.Authorizer) Option {
	return func(s *Service) {
		if authorizer != nil {
			s.authorizer = authorizer
		}
	}
}

// WithRenderer overrides the document rendering collaborator.
func WithRenderer(renderer render.Renderer) Option {
	return func(s *Service) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

// WithHasher overrides the content hashing collaborator.
func WithHasher(hasher render.Hasher) Option {
	return func(s *Service) {
		if hasher != nil {
			s.hasher = hasher
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the identifier source, for tests.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewService creates a lifecycle service over the provided store.
func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:      store,
		authorizer: auth.NewStaticRoles(""),
		hasher:     render.SHA256Hasher{},
		tracer:     otel.Tracer(tracerName),
		now:        time.Now,
		newID:      id.NewID,
	}
	s.renderer = render.PassthroughRenderer{
		Resolve: func(ctx context.Context, ordinanceID string) (string, error) {
			ordinance, err := store.GetOrdinance(ctx, ordinanceID)
			if err != nil {
				return "", err
			}
			return ordinance.ContentRef, nil
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func requireActor(actorID string) (string, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return "", apperrors.New(apperrors.CodeActorRequired, "actor id is required")
	}
	return actorID, nil
}

// authorize surfaces a denial as a distinct error from precondition failures,
// so callers can render "forbidden" and "invalid state" differently.
func (s *Service) authorize(ctx context.Context, actorID string, action auth.Action, ordinance domain.Ordinance) error {
	if s.authorizer == nil {
		return nil
	}
	if !s.authorizer.CanPerform(ctx, actorID, action, ordinance) {
		return apperrors.WithMetadata(apperrors.CodeNotAuthorized, "actor is not authorized",
			map[string]string{"action": string(action)})
	}
	return nil
}

func stateError(from domain.Status, transition domain.Transition) error {
	to := "?"
	if target, ok := domain.NextStatus(from, transition); ok {
		to = string(target)
	}
	return apperrors.WithMetadata(
		apperrors.CodeInvalidStatusTransition,
		"transition not allowed from current status",
		map[string]string{"FromStatus": string(from), "ToStatus": to, "Transition": string(transition)},
	)
}

// mapStoreError translates storage sentinels into the caller-facing taxonomy.
func (s *Service) mapStoreError(err error, current domain.Status, transition domain.Transition) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.Wrap(apperrors.CodeNotFound, "ordinance not found", err)
	case errors.Is(err, storage.ErrAlreadyClaimed):
		return apperrors.Wrap(apperrors.CodeReviewAlreadyClaimed, "review already claimed", err)
	case errors.Is(err, storage.ErrReviewerMismatch):
		return apperrors.Wrap(apperrors.CodeReviewerMismatch, "caller is not the assigned reviewer", err)
	case errors.Is(err, storage.ErrStateConflict):
		return stateError(current, transition)
	case errors.Is(err, storage.ErrBusy):
		return apperrors.Wrap(apperrors.CodeAllocationContention, "store write lock wait expired", err)
	default:
		return apperrors.Wrap(apperrors.CodeStorageFailure, "storage operation failed", err)
	}
}

// GetOrdinance fetches one ordinance.
func (s *Service) GetOrdinance(ctx context.Context, ordinanceID string) (domain.Ordinance, error) {
	ordinance, err := s.store.GetOrdinance(ctx, ordinanceID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Ordinance{}, apperrors.Wrap(apperrors.CodeNotFound, "ordinance not found", err)
		}
		return domain.Ordinance{}, apperrors.Wrap(apperrors.CodeStorageFailure, "storage operation failed", err)
	}
	return ordinance, nil
}

// ListOrdinances pages ordinances in creation order.
func (s *Service) ListOrdinances(ctx context.Context, query storage.ListQuery) ([]domain.Ordinance, error) {
	out, err := s.store.ListOrdinances(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageFailure, "storage operation failed", err)
	}
	return out, nil
}

// GetTimeline returns the ordinance's append-only activity feed.
func (s *Service) GetTimeline(ctx context.Context, ordinanceID string) ([]domain.ActivityEvent, error) {
	ctx, span := s.tracer.Start(ctx, "portaria.GetTimeline")
	defer span.End()

	if _, err := s.GetOrdinance(ctx, ordinanceID); err != nil {
		return nil, err
	}
	events, err := s.store.ListActivityEvents(ctx, ordinanceID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageFailure, "storage operation failed", err)
	}
	return events, nil
}
