package app

import (
	"context"
	"errors"

	apperrors "github.com/diariourbano/portaria/internal/errors"
	"github.com/diariourbano/portaria/internal/services/portaria/auth"
	"github.com/diariourbano/portaria/internal/services/portaria/domain"
	"github.com/diariourbano/portaria/internal/services/portaria/storage"
)

// ActiveBook returns the book numbers are currently issued from, creating the
// default book when none was configured yet.
func (s *Service) ActiveBook(ctx context.Context) (domain.SequenceBook, error) {
	book, err := s.store.ActiveBook(ctx)
	if err != nil {
		return domain.SequenceBook{}, apperrors.Wrap(apperrors.CodeStorageFailure, "storage operation failed", err)
	}
	return book, nil
}

// UpdateBookFormat changes how future numbers render. Numbers already issued
// keep the format they were rendered with.
func (s *Service) UpdateBookFormat(ctx context.Context, bookID, actorID, numberFormat string) (domain.SequenceBook, error) {
	ctx, span := s.tracer.Start(ctx, "portaria.UpdateBookFormat")
	defer span.End()

	actorID, err := requireActor(actorID)
	if err != nil {
		return domain.SequenceBook{}, err
	}
	if err := s.authorize(ctx, actorID, auth.ActionManageBooks, domain.Ordinance{}); err != nil {
		return domain.SequenceBook{}, err
	}
	if err := domain.ValidateNumberFormat(numberFormat); err != nil {
		return domain.SequenceBook{}, err
	}

	book, err := s.store.UpdateBookFormat(ctx, bookID, numberFormat)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.SequenceBook{}, apperrors.Wrap(apperrors.CodeNotFound, "sequence book not found", err)
		}
		return domain.SequenceBook{}, apperrors.Wrap(apperrors.CodeStorageFailure, "storage operation failed", err)
	}
	return book, nil
}

// ListAllocations returns a book's issuance history in allocation order.
func (s *Service) ListAllocations(ctx context.Context, bookID string) ([]domain.AllocationLogEntry, error) {
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.Wrap(apperrors.CodeNotFound, "sequence book not found", err)
		}
		return nil, apperrors.Wrap(apperrors.CodeStorageFailure, "storage operation failed", err)
	}
	entries, err := s.store.ListAllocations(ctx, bookID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageFailure, "storage operation failed", err)
	}
	return entries, nil
}
