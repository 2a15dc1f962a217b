package models

import (
	"errors"
	"time"
)

// LikeRecord is a persisted like: the catalog track id plus denormalized display fields.
//
// Records are created on like and deleted on unlike; they are never updated in place.
type LikeRecord struct {
	id                string
	sequence          int
	trackID           int64
	trackName         string
	artistName        string
	artworkURL        string
	previewURL        string
	collectionViewURL string
	primaryGenreName  string
	createdAt         time.Time
}

var _ Model = (*LikeRecord)(nil)

// NewLikeRecord creates an unsaved record for track, stamped with the current time.
func NewLikeRecord(track Track) *LikeRecord {
	return &LikeRecord{
		trackID:           track.ID,
		trackName:         track.TrackName,
		artistName:        track.ArtistName,
		artworkURL:        track.ArtworkURL,
		previewURL:        track.PreviewURL,
		collectionViewURL: track.CollectionViewURL,
		primaryGenreName:  track.PrimaryGenreName,
		createdAt:         time.Now(),
	}
}

// RestoreLikeRecord rebuilds a record read back from storage.
func RestoreLikeRecord(id string, sequence int, track Track, createdAt time.Time) *LikeRecord {
	r := NewLikeRecord(track)
	r.id = id
	r.sequence = sequence
	r.createdAt = createdAt
	return r
}

func (r *LikeRecord) ID() string                { return r.id }
func (r *LikeRecord) SetID(id string)           { r.id = id }
func (r *LikeRecord) Sequence() int             { return r.sequence }
func (r *LikeRecord) SetSequence(seq int)       { r.sequence = seq }
func (r *LikeRecord) TrackID() int64            { return r.trackID }
func (r *LikeRecord) TrackName() string         { return r.trackName }
func (r *LikeRecord) ArtistName() string        { return r.artistName }
func (r *LikeRecord) ArtworkURL() string        { return r.artworkURL }
func (r *LikeRecord) PreviewURL() string        { return r.previewURL }
func (r *LikeRecord) CollectionViewURL() string { return r.collectionViewURL }
func (r *LikeRecord) PrimaryGenreName() string  { return r.primaryGenreName }
func (r *LikeRecord) CreatedAt() time.Time      { return r.createdAt }

// Validate checks that the record identifies a track and carries both display names.
func (r *LikeRecord) Validate() error {
	if r.trackID == 0 {
		return errors.New("track id is required")
	}
	if r.trackName == "" {
		return errors.New("track name is required")
	}
	if r.artistName == "" {
		return errors.New("artist name is required")
	}
	return nil
}

// Track converts the record back into a [Track] for playback and detail views.
func (r *LikeRecord) Track() Track {
	return Track{
		ID:                r.trackID,
		ArtistName:        r.artistName,
		TrackName:         r.trackName,
		ArtworkURL:        r.artworkURL,
		PreviewURL:        r.previewURL,
		CollectionViewURL: r.collectionViewURL,
		PrimaryGenreName:  r.primaryGenreName,
	}
}
