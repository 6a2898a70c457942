package session

import (
	"context"
	"math"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchmark/internal/models"
	"github.com/desertthunder/watchmark/internal/shared"
)

// Controller owns the playback session.
//
// It is not safe for concurrent use: every method, and every callback handed to the
// [Scheduler], must run on the same event loop.
type Controller struct {
	store   ProgressStore
	folders FolderBrowser
	player  Player
	sched   Scheduler
	locate  Locator
	logger  *log.Logger
	ctx     context.Context

	// OnChange is called after every transition that affects what is shown.
	OnChange func()

	playlist []models.Video
	index    int
	path     string
	folder   models.Folder
	history  []models.Folder

	saveTimer   Timer
	pendingSeek *float64
	loadID      int64

	remarkTimers map[string]Timer
	remarkDrafts map[string]string
}

// Opts contains the collaborators of a [Controller].
type Opts struct {
	Store    ProgressStore
	Folders  FolderBrowser
	Player   Player
	Schedule Scheduler
	Locate   Locator
	Logger   *log.Logger
	Context  context.Context
	OnChange func()
}

// New creates a Controller with no folder selected and no video loaded.
func New(opts Opts) *Controller {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Locate == nil {
		opts.Locate = func(path string) string { return path }
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}

	return &Controller{
		store:        opts.Store,
		folders:      opts.Folders,
		player:       opts.Player,
		sched:        opts.Schedule,
		locate:       opts.Locate,
		logger:       opts.Logger,
		ctx:          opts.Context,
		OnChange:     opts.OnChange,
		index:        -1,
		remarkTimers: make(map[string]Timer),
		remarkDrafts: make(map[string]string),
	}
}

// State returns a snapshot of the session.
func (c *Controller) State() State {
	return State{
		Playlist: slices.Clone(c.playlist),
		Index:    c.index,
		Path:     c.path,
		Folder:   c.folder,
		History:  slices.Clone(c.history),
	}
}

// Index returns the index of the active video, or -1.
func (c *Controller) Index() int {
	return c.index
}

// Path returns the path of the active video, or "".
func (c *Controller) Path() string {
	return c.path
}

// PendingResume returns the position in seconds that will be applied once metadata loads.
func (c *Controller) PendingResume() (float64, bool) {
	if c.pendingSeek == nil {
		return 0, false
	}
	return *c.pendingSeek, true
}

// LoadVideo makes the video at index active and starts playing it.
//
// Out of range indexes are ignored. A saved position below the completion threshold is
// resumed once the player reports metadata.
func (c *Controller) LoadVideo(index int) {
	if index < 0 || index >= len(c.playlist) {
		return
	}

	if c.index >= 0 {
		c.persist()
	}
	c.stopSaveTimer()
	c.pendingSeek = nil

	video := c.playlist[index]
	c.index = index
	c.path = video.Path

	ctx, cancel := c.call()
	defer cancel()

	id, err := c.player.Load(ctx, c.locate(video.Path))
	if err != nil {
		c.logger.Warn("failed to load video", "path", video.Path, "error", err)
	}
	c.loadID = id

	saved := c.store.GetProgress(ctx, video.Path)
	if saved.Position > 0 && saved.Duration > 0 && !models.IsCompleted(saved.Position, saved.Duration) {
		seek := float64(saved.Position) / 1000
		c.pendingSeek = &seek
	}

	if err := c.player.Play(ctx); err != nil {
		c.logger.Warn("failed to start playback", "path", video.Path, "error", err)
	}

	c.changed()
	c.saveTimer = c.sched.Every(SaveInterval, c.saveTick)
}

// Next loads the following video. It does nothing at the end of the playlist.
func (c *Controller) Next() {
	if c.index+1 < len(c.playlist) {
		c.LoadVideo(c.index + 1)
	}
}

// Previous loads the preceding video. It does nothing at the start of the playlist.
func (c *Controller) Previous() {
	if c.index-1 >= 0 {
		c.LoadVideo(c.index - 1)
	}
}

// OnEnded handles natural completion of the active video.
func (c *Controller) OnEnded() {
	c.Next()
}

// OnMetadataLoaded applies the pending resume position, once.
//
// load identifies the load the metadata belongs to. Metadata from an earlier load is
// ignored so it cannot consume the resume of the current one. A zero id on either side
// is accepted.
func (c *Controller) OnMetadataLoaded(load int64) {
	if c.pendingSeek == nil {
		return
	}
	if load != 0 && c.loadID != 0 && load != c.loadID {
		c.logger.Debug("ignoring metadata from superseded load", "load", load, "current", c.loadID)
		return
	}
	seek := *c.pendingSeek
	c.pendingSeek = nil

	ctx, cancel := c.call()
	defer cancel()
	if err := c.player.Seek(ctx, seek); err != nil {
		c.logger.Warn("failed to resume", "path", c.path, "position", seek, "error", err)
	}
}

// EditRemark records a note edit for the active video. The note is saved once edits
// pause for [RemarkDebounce].
//
// The edit is bound to the video's path, so it lands on the right video even if the
// playlist changes or another video starts before it is saved.
func (c *Controller) EditRemark(text string) {
	if c.index < 0 {
		return
	}

	path := c.path
	if t, ok := c.remarkTimers[path]; ok {
		t.Stop()
	}
	c.remarkDrafts[path] = text
	c.remarkTimers[path] = c.sched.After(RemarkDebounce, func() { c.commitRemark(path) })
}

// Close ends the session: it saves the current position and any pending notes, then stops the timers.
func (c *Controller) Close() {
	for path, t := range c.remarkTimers {
		t.Stop()
		c.commitRemark(path)
	}

	if c.index >= 0 {
		c.persist()
	}
	c.stopSaveTimer()
	c.pendingSeek = nil
}

// Init restores the last selected folder and loads the folder history.
func (c *Controller) Init() {
	ctx, cancel := c.call()
	defer cancel()

	sel, err := c.folders.LastFolder(ctx)
	if err != nil {
		c.logger.Warn("failed to restore last folder", "error", err)
	} else if sel != nil {
		c.apply(sel)
	}

	c.history = c.folders.ListHistory(ctx)
	c.changed()
}

// SelectFolder makes path the active folder. On error the playlist and active video are unchanged.
func (c *Controller) SelectFolder(path string) error {
	ctx, cancel := c.call()
	defer cancel()

	sel, err := c.folders.SelectFolder(ctx, path)
	if err != nil {
		c.logger.Warn("folder selection rejected", "path", path, "error", err)
		return err
	}

	c.apply(sel)
	c.history = c.folders.ListHistory(ctx)
	c.changed()
	return nil
}

// Browse lists the directories under path for the folder picker.
func (c *Controller) Browse(path string) (models.Listing, error) {
	ctx, cancel := c.call()
	defer cancel()
	return c.folders.Browse(ctx, path)
}

// Refresh re-lists the active folder, keeping the active video when it is still present.
func (c *Controller) Refresh() error {
	ctx, cancel := c.call()
	defer cancel()

	videos, err := c.folders.Videos(ctx)
	if err != nil {
		c.logger.Warn("failed to refresh videos", "error", err)
		return err
	}

	c.replace(videos)
	c.changed()
	return nil
}

// ClearCompleted forgets the progress of finished videos and refreshes the playlist.
func (c *Controller) ClearCompleted() (int64, error) {
	ctx, cancel := c.call()
	n, err := c.store.ClearCompleted(ctx)
	cancel()
	if err != nil {
		return 0, err
	}

	if c.folder.Path == "" {
		return n, nil
	}
	return n, c.Refresh()
}

// LoadHistory reloads the folder history. Failures leave it empty.
func (c *Controller) LoadHistory() {
	ctx, cancel := c.call()
	defer cancel()

	c.history = c.folders.ListHistory(ctx)
	c.changed()
}

// RemoveFromHistory deletes path from the folder history. The active folder and playlist are kept.
func (c *Controller) RemoveFromHistory(path string) error {
	ctx, cancel := c.call()
	defer cancel()

	if err := c.folders.RemoveFromHistory(ctx, path); err != nil {
		c.logger.Warn("failed to remove folder from history", "path", path, "error", err)
		return err
	}

	c.history = c.folders.ListHistory(ctx)
	c.changed()
	return nil
}

// TogglePause pauses or resumes the active video.
func (c *Controller) TogglePause() {
	c.withPlayer("toggle pause", c.player.TogglePause)
}

// SeekBy moves the playback position of the active video by delta seconds.
func (c *Controller) SeekBy(delta float64) {
	c.withPlayer("seek", func(ctx context.Context) error { return c.player.SeekBy(ctx, delta) })
}

// CycleSpeed steps the playback rate.
func (c *Controller) CycleSpeed() {
	c.withPlayer("cycle speed", c.player.CycleSpeed)
}

// ToggleMute mutes or unmutes audio.
func (c *Controller) ToggleMute() {
	c.withPlayer("toggle mute", c.player.ToggleMute)
}

func (c *Controller) withPlayer(action string, fn func(context.Context) error) {
	if c.index < 0 {
		return
	}
	ctx, cancel := c.call()
	defer cancel()
	if err := fn(ctx); err != nil {
		c.logger.Warn("player command failed", "action", action, "error", err)
	}
}

// apply installs a folder selection as the playlist source.
func (c *Controller) apply(sel *models.Selection) {
	c.folder = models.Folder{Path: sel.Folder, Name: sel.FolderName}
	c.replace(sel.Videos)
}

// replace swaps the playlist and re-resolves the active video by path.
// When the active video is no longer listed the session ends.
func (c *Controller) replace(videos []models.Video) {
	c.playlist = videos
	if c.index < 0 {
		return
	}

	if i := c.find(c.path); i >= 0 {
		c.index = i
		return
	}
	c.end()
}

// end saves and unloads the active video.
func (c *Controller) end() {
	c.persist()
	c.stopSaveTimer()
	c.pendingSeek = nil

	ctx, cancel := c.call()
	defer cancel()
	if err := c.player.Stop(ctx); err != nil {
		c.logger.Warn("failed to stop player", "error", err)
	}

	c.index = -1
	c.path = ""
}

func (c *Controller) saveTick() {
	if c.index < 0 {
		return
	}
	c.persist()
}

// persist saves the player's position for the active video when playback has started,
// then merges it into the playlist.
func (c *Controller) persist() {
	ctx, cancel := c.call()
	defer cancel()

	pos, err := c.player.Position(ctx)
	if err != nil || !(pos > 0) || math.IsInf(pos, 0) {
		return
	}
	dur, err := c.player.Duration(ctx)
	if err != nil || math.IsNaN(dur) || math.IsInf(dur, 0) {
		dur = 0
	}

	path := c.path
	position, duration := millis(pos), millis(dur)
	if err := c.store.SaveProgress(ctx, path, position, duration); err != nil {
		return
	}

	if i := c.find(path); i >= 0 {
		if p := models.NewProgress(position, duration); p != nil {
			c.playlist[i].Progress = p
			c.changed()
		}
	}
}

func (c *Controller) commitRemark(path string) {
	text, ok := c.remarkDrafts[path]
	delete(c.remarkDrafts, path)
	delete(c.remarkTimers, path)
	if !ok {
		return
	}

	ctx, cancel := c.call()
	defer cancel()
	if err := c.store.SaveRemark(ctx, path, text); err != nil {
		return
	}

	if i := c.find(path); i >= 0 {
		c.playlist[i].Remarks = &text
		c.changed()
	}
}

func (c *Controller) stopSaveTimer() {
	if c.saveTimer != nil {
		c.saveTimer.Stop()
		c.saveTimer = nil
	}
}

func (c *Controller) find(path string) int {
	return slices.IndexFunc(c.playlist, func(v models.Video) bool { return v.Path == path })
}

func (c *Controller) call() (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.ctx, callTimeout)
}

func (c *Controller) changed() {
	if c.OnChange != nil {
		c.OnChange()
	}
}

// millis converts seconds to whole milliseconds, rounding down.
func millis(seconds float64) int64 {
	return int64(math.Floor(seconds * 1000))
}
