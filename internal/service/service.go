// Package service implements the item operations on top of a store.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/five82/jotter/internal/item"
	"github.com/five82/jotter/internal/store"
)

// Service validates requests and delegates to the store. It keeps no state of
// its own, so concurrent calls are only as ordered as the store makes them.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

// New builds a Service. A nil logger discards output.
func New(s store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{store: s, logger: logger}
}

// List returns every item, newest first.
func (s *Service) List(ctx context.Context) ([]item.Item, error) {
	items, err := s.store.FindAll(ctx)
	if err != nil {
		s.logger.Warn("list items failed", "error", err)
		return nil, err
	}
	s.logger.Debug("listed items", "count", len(items))
	return items, nil
}

// Get returns a single item.
func (s *Service) Get(ctx context.Context, id string) (item.Item, error) {
	it, err := s.store.Find(ctx, id)
	if err != nil {
		s.logFailure(ctx, "get item failed", id, err)
		return item.Item{}, err
	}
	return it, nil
}

// Create validates the input and inserts a new item.
func (s *Service) Create(ctx context.Context, in item.Input) (item.Item, error) {
	in = in.Normalized()
	if err := in.Validate(); err != nil {
		s.logFailure(ctx, "create item rejected", "", err)
		return item.Item{}, err
	}
	it, err := s.store.Insert(ctx, in)
	if err != nil {
		s.logger.Warn("create item failed", "error", err)
		return item.Item{}, err
	}
	s.logger.Debug("created item", "id", it.ID)
	return it, nil
}

// Update applies the present patch fields to an existing item. An unknown id
// is reported as not found before the patch is looked at; an empty patch only
// refreshes updatedAt.
func (s *Service) Update(ctx context.Context, id string, patch item.Patch) (item.Item, error) {
	if _, err := s.store.Find(ctx, id); err != nil {
		s.logFailure(ctx, "update item failed", id, err)
		return item.Item{}, err
	}
	patch = patch.Normalized()
	if err := patch.Validate(); err != nil {
		s.logFailure(ctx, "update item rejected", id, err)
		return item.Item{}, err
	}
	it, err := s.store.Update(ctx, id, patch)
	if err != nil {
		s.logFailure(ctx, "update item failed", id, err)
		return item.Item{}, err
	}
	s.logger.Debug("updated item", "id", id)
	return it, nil
}

// Delete removes an item.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		s.logFailure(ctx, "delete item failed", id, err)
		return err
	}
	s.logger.Debug("deleted item", "id", id)
	return nil
}

// logFailure logs caller mistakes at info and everything else at warn.
func (s *Service) logFailure(ctx context.Context, msg, id string, err error) {
	level := slog.LevelWarn
	if errors.Is(err, item.ErrValidation) || errors.Is(err, item.ErrNotFound) {
		level = slog.LevelInfo
	}
	attrs := []any{"error", err}
	if id != "" {
		attrs = append(attrs, "id", id)
	}
	s.logger.Log(ctx, level, msg, attrs...)
}
