package services

import (
	"context"
	"fmt"

	"photo-rating-backend/internal/models"
	"photo-rating-backend/internal/repository"
	"photo-rating-backend/internal/storage"
)

// FeedService lists photos a user can evaluate
type FeedService struct {
	store   repository.Store
	storage storage.Storage
}

// NewFeedService creates a new feed service
func NewFeedService(store repository.Store, storage storage.Storage) *FeedService {
	return &FeedService{store: store, storage: storage}
}

// ListCandidates returns active photos of other users that raterID has not rated yet,
// narrowed by filter, in storage order.
func (s *FeedService) ListCandidates(ctx context.Context, raterID string, filter models.CandidateFilter) ([]*models.Candidate, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	candidates, err := s.store.Photos().ListCandidates(ctx, raterID, filter)
	if err != nil {
		return nil, err
	}
	if candidates == nil {
		candidates = []*models.Candidate{}
	}
	for _, c := range candidates {
		c.URL = s.storage.URL(c.FilePath)
	}
	return candidates, nil
}

func validateFilter(f models.CandidateFilter) error {
	if f.Gender != nil && !models.ValidGender(*f.Gender) {
		return fmt.Errorf("%w: unknown gender %q", ErrInvalidInput, *f.Gender)
	}
	if f.MinAge != nil && *f.MinAge < 0 {
		return fmt.Errorf("%w: minAge must not be negative", ErrInvalidInput)
	}
	if f.MaxAge != nil && *f.MaxAge < 0 {
		return fmt.Errorf("%w: maxAge must not be negative", ErrInvalidInput)
	}
	if f.MinAge != nil && f.MaxAge != nil && *f.MinAge > *f.MaxAge {
		return fmt.Errorf("%w: minAge is greater than maxAge", ErrInvalidInput)
	}
	return nil
}
