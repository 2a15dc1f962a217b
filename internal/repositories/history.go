package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/swipebeats/internal/models"
	"github.com/desertthunder/swipebeats/internal/shared"
)

const (
	// HistoryKey is the settings key holding recent searches.
	HistoryKey = "explore.recent_searches"
	// HistoryLimit caps the number of remembered searches.
	HistoryLimit = 8
)

// KeyValueStore is the subset of [SettingsRepository] the history store needs.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// HistoryStore persists recent searches as a JSON array of {term, mode} objects under [HistoryKey].
type HistoryStore struct {
	kv     KeyValueStore
	logger *log.Logger
}

// NewHistoryStore creates a HistoryStore over kv.
func NewHistoryStore(kv KeyValueStore, logger *log.Logger) *HistoryStore {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &HistoryStore{kv: kv, logger: logger}
}

// Load returns the stored entries, most recent first.
//
// A missing key yields an empty list. A corrupt value is logged and treated as empty so one bad
// write never locks the user out of search.
func (h *HistoryStore) Load(ctx context.Context) ([]models.HistoryEntry, error) {
	raw, err := h.kv.Get(ctx, HistoryKey)
	if errors.Is(err, shared.ErrSettingAbsent) {
		return []models.HistoryEntry{}, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []models.HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		h.logger.Warn("discarding unreadable search history", "error", err)
		return []models.HistoryEntry{}, nil
	}

	valid := entries[:0]
	for _, e := range entries {
		if shared.NormalizeTerm(e.Term) == "" {
			continue
		}
		if mode, err := models.ParseSearchMode(string(e.Mode)); err == nil {
			e.Mode = mode
		} else {
			e.Mode = models.ModeKeyword
		}
		valid = append(valid, e)
	}

	if len(valid) > HistoryLimit {
		valid = valid[:HistoryLimit]
	}
	return valid, nil
}

// Save replaces the stored entries. Entries beyond [HistoryLimit] are dropped.
func (h *HistoryStore) Save(ctx context.Context, entries []models.HistoryEntry) error {
	if len(entries) > HistoryLimit {
		entries = entries[:HistoryLimit]
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode search history: %w", err)
	}
	return h.kv.Set(ctx, HistoryKey, string(data))
}

// Clear removes the stored history.
func (h *HistoryStore) Clear(ctx context.Context) error {
	return h.kv.Delete(ctx, HistoryKey)
}
