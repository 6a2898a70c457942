package repositories

import (
	"testing"
)

func TestRepositoryErrors(t *testing.T) {
	t.Run("Closed Database", func(t *testing.T) {
		db := setupTestDB(t)
		db.Close()

		progress := NewProgressRepository(db)
		if err := progress.Save("/a.mp4", 1, 2); err == nil {
			t.Error("expected error saving progress on closed database")
		}
		if _, err := progress.Get("/a.mp4"); err == nil {
			t.Error("expected error getting progress on closed database")
		}
		if _, err := progress.ClearCompleted(); err == nil {
			t.Error("expected error clearing on closed database")
		}
		if _, err := progress.List(); err == nil {
			t.Error("expected error listing on closed database")
		}

		folders := NewFolderRepository(db)
		if err := folders.Add("/a"); err == nil {
			t.Error("expected error adding folder on closed database")
		}
		if _, err := folders.List(10); err == nil {
			t.Error("expected error listing folders on closed database")
		}

		settings := NewSettingsRepository(db)
		if err := settings.SetLastFolder("/a"); err == nil {
			t.Error("expected error saving setting on closed database")
		}
	})

	t.Run("Empty Paths", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		progress := NewProgressRepository(db)
		if err := progress.Save("", 1, 2); err == nil {
			t.Error("expected error saving progress without path")
		}
		if err := progress.SaveRemark("", "note"); err == nil {
			t.Error("expected error saving remark without path")
		}
	})

	t.Run("Missing Schema", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if _, err := db.Exec("DROP TABLE folder_history"); err != nil {
			t.Fatalf("failed to drop table: %v", err)
		}

		if _, err := NewFolderRepository(db).Remove("/a"); err == nil {
			t.Error("expected error removing from missing table")
		}
	})
}
