// Package repositories implements SQLite persistence for watch progress and folder navigation.
//
// Key Implementations:
//   - [ProgressRepository] : Per-video position, duration, watch count and notes, keyed by file path
//   - [FolderRepository] : Folder history ordered by last access
//   - [SettingsRepository] : Key/value settings such as the last opened folder
//
// Repositories take timestamps from an injectable clock so ordering can be tested deterministically.
// Lookups that find nothing return [ErrNotFound].
package repositories
