package models

// Track is a normalized catalog track.
//
// Tracks are values: sessions copy them freely and never mutate them after normalization.
// Optional URLs are empty when the catalog did not provide a usable value.
type Track struct {
	ID                int64  `json:"id"`
	ArtistName        string `json:"artist_name"`
	TrackName         string `json:"track_name"`
	ArtworkURL        string `json:"artwork_url,omitempty"`
	PreviewURL        string `json:"preview_url,omitempty"`
	CollectionViewURL string `json:"collection_view_url,omitempty"`
	PrimaryGenreName  string `json:"primary_genre_name,omitempty"`
}

// HasPreview reports whether the track carries an audio preview URL.
func (t Track) HasPreview() bool { return t.PreviewURL != "" }

// DisplayTitle is the primary line shown for the track.
func (t Track) DisplayTitle() string { return t.TrackName }

// DisplaySubtitle is the secondary line shown for the track.
func (t Track) DisplaySubtitle() string { return t.ArtistName }
