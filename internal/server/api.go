package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchmark/internal/library"
	"github.com/desertthunder/watchmark/internal/models"
	"github.com/desertthunder/watchmark/internal/repositories"
	"github.com/desertthunder/watchmark/internal/shared"
)

// API serves the library endpoints: folder selection & history, browsing, video listing,
// streaming, progress and notes.
//
// The selected folder is process-wide state for the single local user.
type API struct {
	progress *repositories.ProgressRepository
	folders  *repositories.FolderRepository
	settings *repositories.SettingsRepository
	scanner  *library.Scanner
	home     string
	limit    int
	logger   *log.Logger
	mux      *http.ServeMux

	mu       sync.Mutex
	selected string
}

// APIOpts contains the dependencies of an [API].
type APIOpts struct {
	DB      *sql.DB
	Library shared.LibraryConfig
	Logger  *log.Logger
}

// NewAPI creates the library API handler.
func NewAPI(opts APIOpts) *API {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	home := opts.Library.BrowseRoot
	if home == "" {
		home = library.HomeDir()
	}

	a := &API{
		progress: repositories.NewProgressRepository(opts.DB),
		folders:  repositories.NewFolderRepository(opts.DB),
		settings: repositories.NewSettingsRepository(opts.DB),
		scanner:  library.NewScanner(opts.Library.Extensions),
		home:     home,
		limit:    opts.Library.HistoryLimit,
		logger:   opts.Logger,
		mux:      http.NewServeMux(),
	}

	a.mux.HandleFunc("GET /api/folder-history", a.folderHistory)
	a.mux.HandleFunc("DELETE /api/folder-history/{path...}", a.removeFolderHistory)
	a.mux.HandleFunc("POST /api/select-folder", a.selectFolder)
	a.mux.HandleFunc("GET /api/last-folder", a.lastFolder)
	a.mux.HandleFunc("GET /api/folder", a.folder)
	a.mux.HandleFunc("GET /api/browse", a.browse)
	a.mux.HandleFunc("GET /api/videos", a.videos)
	a.mux.HandleFunc("GET /api/video/{path...}", a.streamVideo)
	a.mux.HandleFunc("GET /api/progress", a.getProgress)
	a.mux.HandleFunc("POST /api/progress", a.saveProgress)
	a.mux.HandleFunc("GET /api/remarks", a.getRemark)
	a.mux.HandleFunc("POST /api/remarks", a.saveRemark)
	a.mux.HandleFunc("POST /api/clear-completed", a.clearCompleted)
	return a
}

// Routes returns the patterns served by the API.
func (a *API) Routes() []string {
	return []string{
		"GET /api/folder-history",
		"DELETE /api/folder-history/{path...}",
		"POST /api/select-folder",
		"GET /api/last-folder",
		"GET /api/folder",
		"GET /api/browse",
		"GET /api/videos",
		"GET /api/video/{path...}",
		"GET /api/progress",
		"POST /api/progress",
		"GET /api/remarks",
		"POST /api/remarks",
		"POST /api/clear-completed",
	}
}

// ServeHTTP dispatches to the endpoint handlers.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Selected returns the currently selected folder, or "".
func (a *API) Selected() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selected
}

func (a *API) setSelected(path string) {
	a.mu.Lock()
	a.selected = path
	a.mu.Unlock()
}

func (a *API) folderHistory(w http.ResponseWriter, r *http.Request) {
	folders, err := a.folders.List(a.limit)
	if err != nil {
		a.logger.Error("failed to list folder history", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load folder history")
		return
	}

	existing := make([]models.Folder, 0, len(folders))
	for _, f := range folders {
		if library.Exists(f.Path) {
			existing = append(existing, f)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"folders": existing})
}

func (a *API) removeFolderHistory(w http.ResponseWriter, r *http.Request) {
	path := "/" + r.PathValue("path")

	if _, err := a.folders.Remove(path); err != nil {
		a.logger.Error("failed to remove folder from history", "path", path, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to remove folder")
		return
	}
	writeSuccess(w)
}

type selectFolderRequest struct {
	FolderPath string `json:"folder_path"`
}

func (a *API) selectFolder(w http.ResponseWriter, r *http.Request) {
	var req selectFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid folder path")
		return
	}

	if err := library.CheckFolder(req.FolderPath); err != nil {
		if errors.Is(err, shared.ErrNotADirectory) {
			writeError(w, http.StatusBadRequest, "Path is not a directory")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid folder path")
		return
	}

	if err := a.settings.SetLastFolder(req.FolderPath); err != nil {
		a.logger.Warn("failed to save last folder", "path", req.FolderPath, "error", err)
	}
	if err := a.folders.Add(req.FolderPath); err != nil {
		a.logger.Warn("failed to add folder to history", "path", req.FolderPath, "error", err)
	}

	a.setSelected(req.FolderPath)

	selection, err := a.selection(req.FolderPath)
	if err != nil {
		a.logger.Error("failed to scan folder", "path", req.FolderPath, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to scan folder")
		return
	}
	writeJSON(w, http.StatusOK, selection)
}

func (a *API) lastFolder(w http.ResponseWriter, r *http.Request) {
	folder, err := a.settings.LastFolder()
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		a.logger.Warn("failed to load last folder", "error", err)
	}

	if folder == "" || !library.Exists(folder) {
		writeJSON(w, http.StatusOK, map[string]any{"folder": nil})
		return
	}

	a.setSelected(folder)

	selection, err := a.selection(folder)
	if err != nil {
		a.logger.Error("failed to scan folder", "path", folder, "error", err)
		writeJSON(w, http.StatusOK, map[string]any{"folder": nil})
		return
	}
	writeJSON(w, http.StatusOK, selection)
}

// folder lists a folder's videos without selecting it or touching the history.
func (a *API) folder(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if err := library.CheckFolder(path); err != nil {
		if errors.Is(err, shared.ErrNotADirectory) {
			writeError(w, http.StatusBadRequest, "Path is not a directory")
			return
		}
		writeError(w, http.StatusNotFound, "Folder not found")
		return
	}

	selection, err := a.selection(path)
	if err != nil {
		a.logger.Error("failed to scan folder", "path", path, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to scan folder")
		return
	}
	writeJSON(w, http.StatusOK, selection)
}

func (a *API) browse(w http.ResponseWriter, r *http.Request) {
	listing, err := library.Browse(r.URL.Query().Get("path"), a.home)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, listing)
	case errors.Is(err, shared.ErrPermission):
		writeError(w, http.StatusForbidden, "Permission denied")
	case errors.Is(err, shared.ErrNotADirectory):
		writeError(w, http.StatusBadRequest, "Path is not a directory")
	default:
		a.logger.Error("failed to browse", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (a *API) videos(w http.ResponseWriter, r *http.Request) {
	folder := a.Selected()
	if folder == "" {
		writeError(w, http.StatusBadRequest, "No folder selected")
		return
	}

	videos, err := a.scan(folder)
	if err != nil {
		a.logger.Error("failed to scan folder", "path", folder, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to scan folder")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"videos": videos})
}

func (a *API) streamVideo(w http.ResponseWriter, r *http.Request) {
	path := "/" + r.PathValue("path")

	if !a.scanner.IsVideo(path) {
		writeError(w, http.StatusNotFound, "Video not found")
		return
	}

	f, err := os.Open(path)
	if err != nil {
		writeError(w, http.StatusNotFound, "Video not found")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "Video not found")
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "video/mp4"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Accept-Ranges", "bytes")

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

type progressResponse struct {
	Position int64   `json:"position"`
	Duration *int64  `json:"duration"`
	Remarks  *string `json:"remarks"`
}

func (a *API) getProgress(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("video_path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "No video path provided")
		return
	}

	rec, err := a.progress.Get(path)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			a.logger.Error("failed to load progress", "path", path, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to load progress")
			return
		}
		writeJSON(w, http.StatusOK, progressResponse{})
		return
	}

	resp := progressResponse{Position: rec.Position, Remarks: rec.Remarks}
	if rec.Duration > 0 {
		resp.Duration = &rec.Duration
	}
	writeJSON(w, http.StatusOK, resp)
}

type saveProgressRequest struct {
	VideoPath string   `json:"video_path"`
	Position  *float64 `json:"position"`
	Duration  *float64 `json:"duration"`
}

func (a *API) saveProgress(w http.ResponseWriter, r *http.Request) {
	var req saveProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VideoPath == "" || req.Position == nil {
		writeError(w, http.StatusBadRequest, "Invalid data")
		return
	}

	var duration int64
	if req.Duration != nil {
		duration = int64(*req.Duration)
	}

	if err := a.progress.Save(req.VideoPath, int64(*req.Position), duration); err != nil {
		a.logger.Error("failed to save progress", "path", req.VideoPath, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save progress")
		return
	}
	writeSuccess(w)
}

func (a *API) getRemark(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("video_path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "No video path provided")
		return
	}

	remark, err := a.progress.GetRemark(path)
	if err != nil {
		a.logger.Error("failed to load remark", "path", path, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load remark")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"remark": remark})
}

type saveRemarkRequest struct {
	VideoPath string `json:"video_path"`
	Remark    string `json:"remark"`
}

func (a *API) saveRemark(w http.ResponseWriter, r *http.Request) {
	var req saveRemarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VideoPath == "" {
		writeError(w, http.StatusBadRequest, "No video path provided")
		return
	}

	if err := a.progress.SaveRemark(req.VideoPath, req.Remark); err != nil {
		a.logger.Error("failed to save remark", "path", req.VideoPath, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save remark")
		return
	}
	writeSuccess(w)
}

func (a *API) clearCompleted(w http.ResponseWriter, r *http.Request) {
	n, err := a.progress.ClearCompleted()
	if err != nil {
		a.logger.Error("failed to clear completed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to clear completed")
		return
	}

	a.logger.Info("cleared completed videos", "count", n)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "removed": n})
}

func (a *API) selection(folder string) (models.Selection, error) {
	videos, err := a.scan(folder)
	if err != nil {
		return models.Selection{}, err
	}

	return models.Selection{
		Folder:     folder,
		FolderName: filepath.Base(folder),
		Videos:     videos,
		Count:      len(videos),
	}, nil
}

func (a *API) scan(folder string) ([]models.Video, error) {
	paths, err := a.scanner.FindVideos(folder)
	if err != nil {
		return nil, err
	}
	return library.BuildVideos(folder, paths, a.lookup), nil
}

// lookup merges saved progress and notes into scanned videos; read failures leave the video blank.
func (a *API) lookup(path string) (*models.Progress, *string) {
	rec, err := a.progress.Get(path)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			a.logger.Warn("failed to load progress", "path", path, "error", err)
		}
		return nil, nil
	}
	return rec.Progress(), rec.Remarks
}
