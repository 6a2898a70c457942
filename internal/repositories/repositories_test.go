package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/watchmark/internal/models"
	"github.com/desertthunder/watchmark/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// stepClock returns a clock advancing one second per call, starting at a fixed instant.
func stepClock() clock {
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func TestProgressRepository(t *testing.T) {
	t.Run("Save And Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewProgressRepository(db)
		if err := repo.Save("/videos/a.mp4", 12_000, 60_000); err != nil {
			t.Fatalf("failed to save progress: %v", err)
		}

		rec, err := repo.Get("/videos/a.mp4")
		if err != nil {
			t.Fatalf("failed to get progress: %v", err)
		}

		if rec.Position != 12_000 || rec.Duration != 60_000 {
			t.Errorf("expected 12000/60000, got %d/%d", rec.Position, rec.Duration)
		}
		if rec.WatchCount != 1 {
			t.Errorf("expected watch count 1, got %d", rec.WatchCount)
		}
		if rec.Remarks != nil {
			t.Errorf("expected no remarks, got %q", *rec.Remarks)
		}
		if p := rec.Progress(); p == nil || p.Percent != 20 {
			t.Errorf("expected 20%% progress, got %+v", p)
		}
	})

	t.Run("Save Keeps Duration When Unknown", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewProgressRepository(db)
		if err := repo.Save("/videos/a.mp4", 1_000, 60_000); err != nil {
			t.Fatalf("failed to save progress: %v", err)
		}
		if err := repo.Save("/videos/a.mp4", 2_000, 0); err != nil {
			t.Fatalf("failed to save progress: %v", err)
		}

		rec, err := repo.Get("/videos/a.mp4")
		if err != nil {
			t.Fatalf("failed to get progress: %v", err)
		}

		if rec.Position != 2_000 {
			t.Errorf("expected position 2000, got %d", rec.Position)
		}
		if rec.Duration != 60_000 {
			t.Errorf("expected duration to be kept at 60000, got %d", rec.Duration)
		}
		if rec.WatchCount != 2 {
			t.Errorf("expected watch count 2, got %d", rec.WatchCount)
		}
	})

	t.Run("Get Missing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		_, err := NewProgressRepository(db).Get("/nope.mp4")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Remarks", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewProgressRepository(db)

		if err := repo.SaveRemark("/videos/b.mp4", "first"); err != nil {
			t.Fatalf("failed to save remark: %v", err)
		}

		rec, err := repo.Get("/videos/b.mp4")
		if err != nil {
			t.Fatalf("remark should create a record: %v", err)
		}
		if rec.Position != 0 || rec.Duration != 0 {
			t.Errorf("expected empty progress, got %d/%d", rec.Position, rec.Duration)
		}

		if err := repo.Save("/videos/b.mp4", 5_000, 10_000); err != nil {
			t.Fatalf("failed to save progress: %v", err)
		}
		if err := repo.SaveRemark("/videos/b.mp4", "second"); err != nil {
			t.Fatalf("failed to update remark: %v", err)
		}

		remark, err := repo.GetRemark("/videos/b.mp4")
		if err != nil {
			t.Fatalf("failed to get remark: %v", err)
		}
		if remark != "second" {
			t.Errorf("expected remark second, got %q", remark)
		}

		rec, _ = repo.Get("/videos/b.mp4")
		if rec.Position != 5_000 {
			t.Errorf("remark update must not touch position, got %d", rec.Position)
		}

		remark, err = repo.GetRemark("/videos/none.mp4")
		if err != nil || remark != "" {
			t.Errorf("expected empty remark without error, got %q, %v", remark, err)
		}
	})

	t.Run("ClearCompleted", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewProgressRepository(db)
		fixtures := []struct {
			path     string
			position int64
			duration int64
		}{
			{"/v/done.mp4", 95_000, 100_000},
			{"/v/finished.mp4", 100_000, 100_000},
			{"/v/rounds-up.mp4", 9_496, 10_000},
			{"/v/almost.mp4", 94_940, 100_000},
			{"/v/unknown.mp4", 50_000, 0},
		}
		for _, f := range fixtures {
			if err := repo.Save(f.path, f.position, f.duration); err != nil {
				t.Fatalf("failed to save %s: %v", f.path, err)
			}
		}

		n, err := repo.ClearCompleted()
		if err != nil {
			t.Fatalf("failed to clear completed: %v", err)
		}
		if n != 3 {
			t.Errorf("expected 3 rows removed, got %d", n)
		}

		records, err := repo.List()
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 remaining records, got %d", len(records))
		}
		for _, rec := range records {
			if p := rec.Progress(); p != nil && (p.Completed() || p.Percent >= models.CompletedPercent) {
				t.Errorf("completed record %s survived at %v%%", rec.Path, p.Percent)
			}
		}
	})

	t.Run("List Orders By Last Watched", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewProgressRepository(db)
		repo.now = stepClock()

		for _, p := range []string{"/v/1.mp4", "/v/2.mp4", "/v/3.mp4"} {
			if err := repo.Save(p, 1, 10); err != nil {
				t.Fatalf("failed to save: %v", err)
			}
		}
		if err := repo.Save("/v/1.mp4", 2, 10); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		records, err := repo.List()
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if records[0].Path != "/v/1.mp4" {
			t.Errorf("expected most recent first, got %s", records[0].Path)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewProgressRepository(db)
		repo.Save("/v/x.mp4", 1, 10)

		if err := repo.Delete("/v/x.mp4"); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if _, err := repo.Get("/v/x.mp4"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})
}

func TestFolderRepository(t *testing.T) {
	t.Run("Add And List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewFolderRepository(db)
		repo.now = stepClock()

		for _, p := range []string{"/media/shows", "/media/movies", "/media/shows"} {
			if err := repo.Add(p); err != nil {
				t.Fatalf("failed to add %s: %v", p, err)
			}
		}

		folders, err := repo.List(20)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(folders) != 2 {
			t.Fatalf("expected 2 folders, got %d", len(folders))
		}
		if folders[0].Path != "/media/shows" {
			t.Errorf("expected re-accessed folder first, got %s", folders[0].Path)
		}
		if folders[0].Name != "shows" {
			t.Errorf("expected name shows, got %s", folders[0].Name)
		}
		if folders[0].AccessCount != 2 {
			t.Errorf("expected access count 2, got %d", folders[0].AccessCount)
		}
	})

	t.Run("List Limit", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewFolderRepository(db)
		repo.now = stepClock()
		for _, p := range []string{"/a", "/b", "/c"} {
			repo.Add(p)
		}

		folders, err := repo.List(2)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(folders) != 2 || folders[0].Path != "/c" {
			t.Errorf("expected [/c /b], got %+v", folders)
		}

		all, _ := repo.List(0)
		if len(all) != 3 {
			t.Errorf("expected all 3 folders with no limit, got %d", len(all))
		}
	})

	t.Run("Remove", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewFolderRepository(db)
		repo.Add("/a")

		removed, err := repo.Remove("/a")
		if err != nil || !removed {
			t.Fatalf("expected removal, got %v, %v", removed, err)
		}

		removed, err = repo.Remove("/a")
		if err != nil || removed {
			t.Errorf("expected no-op second removal, got %v, %v", removed, err)
		}
	})

	t.Run("Add Empty Path", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if err := NewFolderRepository(db).Add(""); err == nil {
			t.Error("expected error for empty path")
		}
	})
}

func TestSettingsRepository(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewSettingsRepository(db)

	if _, err := repo.LastFolder(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound before any folder, got %v", err)
	}

	if err := repo.SetLastFolder("/media/one"); err != nil {
		t.Fatalf("failed to set last folder: %v", err)
	}
	if err := repo.SetLastFolder("/media/two"); err != nil {
		t.Fatalf("failed to replace last folder: %v", err)
	}

	got, err := repo.LastFolder()
	if err != nil {
		t.Fatalf("failed to get last folder: %v", err)
	}
	if got != "/media/two" {
		t.Errorf("expected /media/two, got %s", got)
	}
}
