// Package models defines the domain entities shared by the watchmark server and client.
//
// The package contains two categories of types:
//
// 1. Library entities, built per folder scan:
//   - [Video] : A playable file with its display name, notes and progress
//   - [Progress] : Saved position and duration in milliseconds with derived percent
//
// 2. Navigation entities:
//   - [Folder] : An entry of the folder history
//   - [BrowseItem] : A directory entry shown while picking a folder
//
// [CompletedPercent] is the single watched-through threshold. Resume suppression, the
// list renderer and clear-completed all compare the one-decimal percent from
// [PercentTenths] against it.
package models
