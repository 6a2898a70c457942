package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Phase identifies the stage of an operation.
type Phase int

const (
	FetchFolder Phase = iota
	ExportFolder
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchFolder:
		return "fetch_folder"
	case ExportFolder:
		return "export_folder"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func fetchFolderUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFolder,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching %s", path),
	}
}

func exportCompletedUpdate(step, total int, res FolderExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportFolder,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("✓ Exported %s (%d videos)", res.Name, res.Videos),
		Data:    res,
	}
}

func exportFailedUpdate(step, total int, res FolderExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportFolder,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("✗ Failed to export %s: %v", res.Name, res.Error),
		Data:    res,
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing manifest %s", path),
	}
}
