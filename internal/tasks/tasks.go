// package tasks implements the library export and restore operations.
//
// The core abstraction is LibraryEngine, which orchestrates datastore
// reads and batched writes. Operations emit progress updates via
// channels for non-blocking status reporting to the CLI layer.
package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/djib1010/stremio-library-exporter/internal/library"
	"github.com/djib1010/stremio-library-exporter/internal/shared"
	"github.com/djib1010/stremio-library-exporter/internal/stremio"
	"golang.org/x/time/rate"
)

// BatchSize is the datastore write limit per call.
const BatchSize = 50

// DatastoreClient defines the slice of the Stremio API the engine needs.
// This abstraction allows for easier testing and decoupling from the
// concrete implementation.
type DatastoreClient interface {
	FetchLibrary(ctx context.Context, authKey string) (*stremio.LibraryResponse, error)
	PutChanges(ctx context.Context, authKey string, changes []stremio.LibraryItem) error
}

// ExportResult contains all data from an export operation.
type ExportResult struct {
	Response *stremio.LibraryResponse // Raw API response (backup artifact)
	Bundle   library.Bundle           // Normalized watched/watchlist partitions
	Fetched  int                      // Items returned by the API
	Dropped  int                      // Items skipped during normalization
}

// BatchResult is the outcome of one restore batch.
type BatchResult struct {
	Index int   // Batch number, zero-based
	Start int   // Index of the batch's first item
	Size  int   // Items submitted in this batch
	OK    bool  // Whether the API acknowledged the write
	Err   error // Failure detail when OK is false
}

// RestoreResult is the aggregate restoration tally.
type RestoreResult struct {
	Succeeded int           // Items in acknowledged batches
	Total     int           // Items submitted overall
	Batches   []BatchResult // Per-batch outcomes, in order
}

// Partial reports whether some but not all items were restored.
func (r *RestoreResult) Partial() bool {
	return r.Succeeded < r.Total
}

// LibraryEngine performs export and restore operations against a
// datastore client. Restore batches are issued strictly sequentially;
// the API's behavior under concurrent writes to one collection is
// unspecified.
type LibraryEngine struct {
	client  DatastoreClient
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewLibraryEngine creates an engine. requestsPerSecond bounds the
// restore write rate; values <= 0 default to 2.
func NewLibraryEngine(client DatastoreClient, requestsPerSecond float64, logger *log.Logger) *LibraryEngine {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2.0
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &LibraryEngine{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:  logger,
	}
}

func (e *LibraryEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress != nil {
		progress <- update
	}
}

// Export fetches the full library and normalizes it into watched and
// watchlist partitions. The raw response is retained on the result as
// the durable backup artifact.
func (e *LibraryEngine) Export(ctx context.Context, progress chan<- ProgressUpdate, authKey string) (*ExportResult, error) {
	if e.client == nil {
		return nil, fmt.Errorf("%w: datastore client not initialized", shared.ErrAPIRequest)
	}

	e.sendProgress(progress, fetchLibraryUpdate())
	response, err := e.client.FetchLibrary(ctx, authKey)
	if err != nil {
		return nil, fmt.Errorf("library fetch failed: %w", err)
	}

	e.sendProgress(progress, normalizeUpdate(len(response.Result)))
	bundle := library.Normalize(response.Result)

	result := &ExportResult{
		Response: response,
		Bundle:   bundle,
		Fetched:  len(response.Result),
		Dropped:  len(response.Result) - bundle.Total(),
	}

	e.logger.Info("library categorized",
		"watched", len(bundle.Watched),
		"watchlist", len(bundle.Watchlist),
		"dropped", result.Dropped)
	return result, nil
}

// Restore replays items into the datastore in fixed-size batches in
// index order. A failed batch is logged and skipped, never fatal: the
// engine reports a partial tally instead of aborting, and does not retry
// failed batches itself.
func (e *LibraryEngine) Restore(ctx context.Context, progress chan<- ProgressUpdate, authKey string, items []stremio.LibraryItem) (*RestoreResult, error) {
	if e.client == nil {
		return nil, fmt.Errorf("%w: datastore client not initialized", shared.ErrAPIRequest)
	}

	total := len(items)
	result := &RestoreResult{Total: total}

	e.logger.Info("starting restore", "items", total, "batch_size", BatchSize)

	for start := 0; start < total; start += BatchSize {
		if err := e.limiter.Wait(ctx); err != nil {
			return result, fmt.Errorf("restore interrupted: %w", err)
		}

		end := start + BatchSize
		if end > total {
			end = total
		}
		batch := items[start:end]

		outcome := BatchResult{
			Index: start / BatchSize,
			Start: start,
			Size:  len(batch),
		}

		if err := e.client.PutChanges(ctx, authKey, batch); err != nil {
			outcome.Err = err
			e.logger.Error("failed to restore batch", "start_index", start, "err", err)
			e.sendProgress(progress, batchFailedUpdate(start, total, err))
		} else {
			outcome.OK = true
			result.Succeeded += len(batch)
			e.logger.Info("restored batch", "items", fmt.Sprintf("%d-%d/%d", start+1, end, total))
			e.sendProgress(progress, batchRestoredUpdate(start, end, total))
		}

		result.Batches = append(result.Batches, outcome)
	}

	return result, nil
}
