// Package tasks runs long library operations with progress reporting.
//
// # Bulk Export
//
// [Exporter.BulkExport] writes one export file per folder:
//
//  1. A producer fetches each folder's videos through a [Source], paced by a rate limiter
//     so a batch does not trip the server's own limit.
//  2. A pool of workers renders each folder with the formatter package and writes it to the
//     output directory.
//  3. Once every folder is done a manifest (export_manifest.json) summarizes the run.
//
// A folder that cannot be fetched or written is recorded as failed; the others still export.
//
// # Progress Reporting
//
// Operations accept an optional channel of [ProgressUpdate]. Sends never block: when the
// channel is full the update is dropped.
package tasks
