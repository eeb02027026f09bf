package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/afrodite-backend/corectl/internal/content"
	"github.com/afrodite-backend/corectl/internal/model"
)

// MediaStore is the general CRUD surface MediaService needs from
// store.Repository, distinct from content.Store (the pipeline's own
// narrower write path).
type MediaStore interface {
	ListMedia(ctx context.Context, owner model.AccountIdInternal) ([]model.MediaContent, error)
	GetMedia(ctx context.Context, owner model.AccountIdInternal, contentID uuid.UUID) (model.MediaContent, error)
	DeleteMedia(ctx context.Context, owner model.AccountIdInternal, contentID uuid.UUID) error
	SetMediaReference(ctx context.Context, owner model.AccountIdInternal, contentID uuid.UUID, profileRef, securityRef *bool) error
	BumpSyncVersion(ctx context.Context, owner model.AccountIdInternal, category model.DataCategory) (model.SyncVersion, error)
}

// MediaService implements content upload bookkeeping and the listing/
// deletion/reference endpoints over it (spec.md §4.D).
type MediaService struct {
	store    MediaStore
	pipeline *content.Pipeline
	tmpDir   string
}

// NewMediaService wires a pipeline already running its own worker loop
// (internal/appstate starts Pipeline.Run) and the directory raw uploads are
// staged under before Pipeline.Enqueue picks them up.
func NewMediaService(store MediaStore, pipeline *content.Pipeline, tmpDir string) *MediaService {
	return &MediaService{store: store, pipeline: pipeline, tmpDir: tmpDir}
}

// Upload stages raw JPEG bytes for slot and hands them to the content
// pipeline, returning its initial in-queue processing state. Re-uploading
// to a slot already in flight abandons the prior upload (spec.md §4.D
// "Slot model").
func (s *MediaService) Upload(owner model.AccountIdInternal, slot model.ContentSlot, raw []byte, runFaceDetect bool) (content.ProcessingState, error) {
	if !model.ValidSlot(int(slot)) {
		return content.ProcessingState{}, NewValidationError("slot", "must be in 0..6")
	}

	dir := filepath.Join(s.tmpDir, fmt.Sprintf("%d", owner))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return content.ProcessingState{}, fmt.Errorf("service: stage upload dir: %w", err)
	}
	rawPath := filepath.Join(dir, fmt.Sprintf("slot-%d-%s.raw", slot, uuid.NewString()))
	if err := os.WriteFile(rawPath, raw, 0o644); err != nil {
		return content.ProcessingState{}, fmt.Errorf("service: stage upload: %w", err)
	}

	key := content.ProcessingKey{Owner: owner, Slot: slot}
	params := content.DefaultTranscodeParams(runFaceDetect)
	return s.pipeline.Enqueue(key, rawPath, params), nil
}

// List returns every media-content row owned by owner.
func (s *MediaService) List(ctx context.Context, owner model.AccountIdInternal) ([]model.MediaContent, error) {
	return s.store.ListMedia(ctx, owner)
}

// Delete removes contentID, rejecting the request if it is currently
// referenced as profile or security content (spec.md §8 invariant 5).
func (s *MediaService) Delete(ctx context.Context, owner model.AccountIdInternal, contentID uuid.UUID) error {
	media, err := s.store.GetMedia(ctx, owner, contentID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if !media.Deletable() {
		return fmt.Errorf("%w: content is referenced", ErrStateNotAcceptable)
	}
	if err := s.store.DeleteMedia(ctx, owner, contentID); err != nil {
		return fmt.Errorf("service: delete media: %w", err)
	}
	// Media content has no sync category of its own; clients learn about it
	// through profile syncing since media only ever shows up there.
	_, err = s.store.BumpSyncVersion(ctx, owner, model.CategoryProfile)
	return err
}

// SetProfileReference selects (or clears) contentID as the account's
// profile-picture content.
func (s *MediaService) SetProfileReference(ctx context.Context, owner model.AccountIdInternal, contentID uuid.UUID, referenced bool) error {
	if err := s.store.SetMediaReference(ctx, owner, contentID, &referenced, nil); err != nil {
		return fmt.Errorf("service: set profile reference: %w", err)
	}
	_, err := s.store.BumpSyncVersion(ctx, owner, model.CategoryProfile)
	return err
}
