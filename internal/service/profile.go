package service

import (
	"context"
	"fmt"

	"github.com/afrodite-backend/corectl/internal/cache"
	"github.com/afrodite-backend/corectl/internal/geoindex"
	"github.com/afrodite-backend/corectl/internal/model"
	"github.com/afrodite-backend/corectl/internal/moderation"
)

// ProfileStore is the general CRUD surface ProfileService needs from
// store.Repository.
type ProfileStore interface {
	GetProfile(ctx context.Context, owner model.AccountIdInternal) (model.Profile, bool, error)
	UpsertProfile(ctx context.Context, p model.Profile) (model.Profile, error)
	BumpSyncVersion(ctx context.Context, owner model.AccountIdInternal, category model.DataCategory) (model.SyncVersion, error)
	EnqueueProfileStringModeration(ctx context.Context, owner model.AccountIdInternal, contentType moderation.ContentType, text string) error
}

// ProfileService implements profile get/update, keeping the spatial index
// and the moderation queue consistent with whatever the durable store ends
// up holding (spec.md §4.C, §4.D "profile strings").
type ProfileService struct {
	store ProfileStore
	index *geoindex.Index
	cache *cache.Cache
}

// NewProfileService wires the store, the process-wide spatial index, and
// the cache (used only to resolve owner's external AccountId for the
// index's ProfileLink — the index is keyed externally, everything else
// internally).
func NewProfileService(store ProfileStore, index *geoindex.Index, c *cache.Cache) *ProfileService {
	return &ProfileService{store: store, index: index, cache: c}
}

// Get returns owner's profile, or false if none has been created yet.
func (s *ProfileService) Get(ctx context.Context, owner model.AccountIdInternal) (model.Profile, bool, error) {
	return s.store.GetProfile(ctx, owner)
}

// Update validates and persists next, moving owner's cell in the spatial
// index and re-queueing name/text for moderation when either changed.
// Applying an update that changes nothing (model.Profile.Equal) still
// round-trips the store but leaves the version, and therefore the sync
// category, untouched (spec.md §8 invariant).
func (s *ProfileService) Update(ctx context.Context, owner model.AccountIdInternal, next model.Profile) (model.Profile, error) {
	next.AccountID = owner
	if err := validateProfile(next); err != nil {
		return model.Profile{}, err
	}

	previous, existed, err := s.store.GetProfile(ctx, owner)
	if err != nil {
		return model.Profile{}, fmt.Errorf("service: load previous profile: %w", err)
	}
	if existed && previous.Equal(next) {
		return previous, nil
	}

	saved, err := s.store.UpsertProfile(ctx, next)
	if err != nil {
		return model.Profile{}, fmt.Errorf("service: upsert profile: %w", err)
	}

	s.reindex(owner, existed, previous, saved)

	if !existed || previous.Name != saved.Name {
		if err := s.store.EnqueueProfileStringModeration(ctx, owner, moderation.ContentTypeProfileName, saved.Name); err != nil {
			return model.Profile{}, fmt.Errorf("service: enqueue name moderation: %w", err)
		}
	}
	if !existed || previous.Text != saved.Text {
		if err := s.store.EnqueueProfileStringModeration(ctx, owner, moderation.ContentTypeProfileText, saved.Text); err != nil {
			return model.Profile{}, fmt.Errorf("service: enqueue text moderation: %w", err)
		}
	}

	if _, err := s.store.BumpSyncVersion(ctx, owner, model.CategoryProfile); err != nil {
		return model.Profile{}, fmt.Errorf("service: bump profile sync version: %w", err)
	}
	return saved, nil
}

func (s *ProfileService) reindex(owner model.AccountIdInternal, existed bool, previous, saved model.Profile) {
	entry, ok := s.cache.LookupInternal(owner)
	if !ok {
		return
	}
	link := geoindex.ProfileLink{AccountID: entry.AccountID(), Age: saved.Age}
	newCell := s.index.CellFor(saved.Location)
	if !existed {
		s.index.Upsert(nil, newCell, link)
		return
	}
	oldCell := s.index.CellFor(previous.Location)
	s.index.Upsert(&oldCell, newCell, link)
}

// validateProfile applies the field-level constraints spec.md §3 lists for
// Profile: age range and coordinate bounds.
func validateProfile(p model.Profile) error {
	if p.Age < 18 || p.Age > 120 {
		return NewValidationError("age", "must be between 18 and 120")
	}
	if p.Location.Latitude < -90 || p.Location.Latitude > 90 {
		return NewValidationError("location.latitude", "must be between -90 and 90")
	}
	if p.Location.Longitude < -180 || p.Location.Longitude > 180 {
		return NewValidationError("location.longitude", "must be between -180 and 180")
	}
	if len(p.Name) == 0 || len(p.Name) > 64 {
		return NewValidationError("name", "must be 1-64 characters")
	}
	if len(p.Text) > 2000 {
		return NewValidationError("text", "must be at most 2000 characters")
	}
	return nil
}
