// Package library implements the persistence layer for the playback engine.
//
// [Store] provides durable CRUD over tracks, playlists, playlist membership,
// likes, downloaded-file records, and a generic JSON key-value settings
// table, all backed by a single SQLite database.
//
// Initialization is lazy, idempotent, and single-shot: the first caller
// triggers database open and schema migration; concurrent callers wait on
// the same initialization rather than racing to open the store twice. Every
// public method awaits initialization transparently, so callers never
// sequence "init then query" themselves.
package library
