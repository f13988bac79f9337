// Package models defines the domain entities for the playback and library engine.
//
// The package contains two categories of types:
//
// 1. The playable unit:
//   - [Track] : song metadata plus the URI a playback backend loads to produce
//     sound. Tracks come from two origins, remote catalog previews and
//     user-imported local files, distinguished by the IsLocal flag.
//
// 2. Persisted library rows:
//   - [Playlist] : named collection of tracks with rename-tracked timestamps
//   - [PlaylistEntry] : membership join row ordered by position
//   - [LikedEntry] : like marker with timestamp
//   - [DownloadedEntry] : durable-storage record for an imported local file
//
// Local tracks always carry a non-empty PreviewURL pointing at durable
// storage. Remote tracks may have an empty PreviewURL until the catalog
// resolves a playable preview.
package models
