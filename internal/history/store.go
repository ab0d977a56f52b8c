package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"mentorchat/internal/blob"
	"mentorchat/internal/models"
)

// Store keeps one JSON object per user id under a fixed prefix. Save always
// replaces the whole history: there is deliberately no append primitive, so
// callers can never assume incremental semantics that would silently lose
// turns. Concurrent writers for the same user are last-write-wins.
type Store struct {
	store  blob.Store
	prefix string
}

func NewStore(store blob.Store, prefix string) *Store {
	if prefix == "" {
		prefix = "chat_histories"
	}
	return &Store{store: store, prefix: prefix}
}

func (s *Store) key(userID string) string {
	return path.Join(s.prefix, userID+".json")
}

// Load returns the user's ordered turn list. A user with no stored history
// gets an empty list, not an error.
func (s *Store) Load(ctx context.Context, userID string) ([]models.Turn, error) {
	data, err := s.store.Download(ctx, s.key(userID))
	if errors.Is(err, blob.ErrNotFound) {
		return []models.Turn{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load history for user %s: %w", userID, err)
	}
	var turns []models.Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("parse history for user %s: %w", userID, err)
	}
	return turns, nil
}

// Save replaces the user's stored history with the given complete sequence.
func (s *Store) Save(ctx context.Context, userID string, turns []models.Turn) error {
	data, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("encode history for user %s: %w", userID, err)
	}
	if err := s.store.Upload(ctx, s.key(userID), data, "application/json"); err != nil {
		return fmt.Errorf("save history for user %s: %w", userID, err)
	}
	return nil
}

// Clear deletes the stored history. Clearing a user that has none is a no-op.
func (s *Store) Clear(ctx context.Context, userID string) error {
	err := s.store.Delete(ctx, s.key(userID))
	if errors.Is(err, blob.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("clear history for user %s: %w", userID, err)
	}
	return nil
}
