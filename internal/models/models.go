package models

import "time"

// Track is the playable unit consumed by the playback controller.
//
// Duration is in seconds and stays 0 until known (remote catalog value or
// local probe result). PreviewURL is the playable source: a streaming URL
// for remote tracks, a durable storage URI for local ones.
type Track struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Album      string  `json:"album"`
	Duration   float64 `json:"duration"`
	ImageURL   string  `json:"imageUrl"`
	PreviewURL string  `json:"previewUrl"`
	SpotifyID  string  `json:"spotifyId"`
	Liked      bool    `json:"liked"`
	IsLocal    bool    `json:"isLocal"`
	LocalPath  string  `json:"localPath,omitempty"`
}

// Playable reports whether the track has a source a backend can load.
func (t Track) Playable() bool {
	return t.PreviewURL != ""
}

// Playlist is a named, ordered collection of tracks.
// UpdatedAt changes on rename only.
type Playlist struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PlaylistEntry links a track into a playlist at a position.
//
// Positions are dense-assigned on append and never renumbered on delete, so
// gaps are permitted; ordering is always by position ascending.
type PlaylistEntry struct {
	PlaylistID int64  `json:"playlistId"`
	TrackID    string `json:"trackId"`
	Position   int    `json:"position"`
}

// LikedEntry marks a track as liked. Its existence and Track.Liked are kept
// mutually consistent by every like/unlike operation.
type LikedEntry struct {
	TrackID string    `json:"trackId"`
	LikedAt time.Time `json:"likedAt"`
}

// DownloadedEntry records where an imported local file lives.
//
// FilePath is the normalized relative path under the music namespace and is
// the durable recovery key; FileURI is the platform URI form, stored
// redundantly because URI schemes are not always stable across sessions.
type DownloadedEntry struct {
	TrackID      string    `json:"trackId"`
	FileURI      string    `json:"fileUri"`
	FilePath     string    `json:"filePath"`
	DownloadedAt time.Time `json:"downloadedAt"`
}
