package service

import (
	"context"
	"fmt"

	"github.com/afrodite-backend/corectl/internal/cache"
	"github.com/afrodite-backend/corectl/internal/eventbus"
	"github.com/afrodite-backend/corectl/internal/model"
)

// Notifier is the narrow eventbus.Bus surface NewsService needs to wake
// every connected session once an announcement publishes.
type Notifier interface {
	SendConnectedEvent(accountID model.AccountIdInternal, kind string, payload any, flag model.NotificationFlag)
}

// NewsService implements admin-authored announcements: a publish fans the
// FlagNewsChanged pending flag out to every cached account, live sessions
// getting it immediately and offline ones on their next push wake-up
// (spec.md §4.H "best-effort, non-blocking").
type NewsService struct {
	store    NewsStore
	cache    *cache.Cache
	notifier Notifier
}

// NewsStore is the general CRUD surface NewsService needs from
// store.Repository.
type NewsStore interface {
	CreateNews(ctx context.Context, title, body string) (int, error)
}

// NewNewsService wires the store, cache, and event bus.
func NewNewsService(store NewsStore, c *cache.Cache, notifier Notifier) *NewsService {
	return &NewsService{store: store, cache: c, notifier: notifier}
}

// Publish creates a new announcement and notifies every cached account.
func (s *NewsService) Publish(ctx context.Context, title, body string) error {
	if title == "" {
		return NewValidationError("title", "must not be empty")
	}
	id, err := s.store.CreateNews(ctx, title, body)
	if err != nil {
		return fmt.Errorf("service: create news: %w", err)
	}
	payload := newsPayload{ID: id, Title: title, Body: body}
	s.cache.ForEach(func(e *cache.Entry) {
		s.notifier.SendConnectedEvent(e.AccountIdInternal(), eventbus.KindNewsChanged, payload, model.FlagNewsChanged)
	})
	return nil
}

type newsPayload struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}
