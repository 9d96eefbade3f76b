package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	FetchLibrary Phase = iota
	NormalizeLibrary
	RestoreBatches
)

func (p Phase) String() string {
	switch p {
	case FetchLibrary:
		return "fetch_library"
	case NormalizeLibrary:
		return "normalize_library"
	case RestoreBatches:
		return "restore_batches"
	default:
		return ""
	}
}

func fetchLibraryUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLibrary,
		Step:    1,
		Total:   1,
		Message: "Fetching library from Stremio...",
	}
}

func normalizeUpdate(fetched int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   NormalizeLibrary,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Categorizing %d library items...", fetched),
	}
}

func batchRestoredUpdate(start, end, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RestoreBatches,
		Step:    end,
		Total:   total,
		Message: fmt.Sprintf("Restored items %d-%d of %d", start+1, end, total),
	}
}

func batchFailedUpdate(start, total int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RestoreBatches,
		Step:    start,
		Total:   total,
		Message: fmt.Sprintf("Batch starting at index %d failed: %v", start, err),
	}
}
