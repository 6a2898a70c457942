// Package services implements the HTTP clients the terminal player uses to reach the library server.
//
// # API Service
//
// [APIService] wraps an [http.Client] and a base URL. It returns raw [APIResponse] values;
// [APIResponse.Err] converts non-2xx responses carrying an {"error": "..."} body into an [*APIError]
// that matches [shared.ErrAPIRequest].
//
// # Progress Client
//
// [ProgressClient] reads and writes per-video progress and notes. Reads fail soft: a transport
// error yields "no saved progress" and is logged. Writes are logged on failure and never retried;
// progress is re-sent periodically so a dropped write is harmless.
//
// # Folder Client
//
// [FolderClient] browses directories, selects the active folder, restores the last folder and
// manages the folder history. Selection errors are returned so they can be shown to the user.
package services
