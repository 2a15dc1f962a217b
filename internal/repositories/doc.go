// Package repositories implements SQLite persistence for liked tracks and UI settings.
//
// Key Implementations:
//   - [LikeRepository] : liked_tracks rows, one per catalog track id
//   - [SettingsRepository] : generic key-value settings table
//   - [HistoryStore] : recent searches stored as JSON under a single settings key
//
// Likes are hard-deleted on unlike; a failed unlike is compensated with [LikeRepository.Restore],
// which reinserts the original row including its id, sequence and created_at.
//
// Sequence numbers come from a dedicated liked_tracks_sequence table and are allocated in the same
// transaction as the insert.
package repositories
