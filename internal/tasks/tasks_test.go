package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/djib1010/stremio-library-exporter/internal/stremio"
)

// mockDatastore is a test double for [DatastoreClient].
type mockDatastore struct {
	response   *stremio.LibraryResponse
	fetchErr   error
	putErr     error
	putErrAt   int // batch index to fail, -1 for never
	putCalls   [][]stremio.LibraryItem
	putCallNum int
}

func newMockDatastore() *mockDatastore {
	return &mockDatastore{putErrAt: -1}
}

func (m *mockDatastore) FetchLibrary(ctx context.Context, authKey string) (*stremio.LibraryResponse, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.response, nil
}

func (m *mockDatastore) PutChanges(ctx context.Context, authKey string, changes []stremio.LibraryItem) error {
	call := m.putCallNum
	m.putCallNum++
	m.putCalls = append(m.putCalls, changes)
	if m.putErr != nil && (m.putErrAt == -1 || m.putErrAt == call) {
		return m.putErr
	}
	return nil
}

func makeItems(t *testing.T, n int) []stremio.LibraryItem {
	t.Helper()
	payload := "["
	for i := 0; i < n; i++ {
		if i > 0 {
			payload += ","
		}
		payload += fmt.Sprintf(`{"_id":"tt%03d","name":"Item %d"}`, i, i)
	}
	payload += "]"

	var items []stremio.LibraryItem
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		t.Fatalf("failed to build items: %v", err)
	}
	return items
}

func TestLibraryEngine_Export(t *testing.T) {
	t.Run("fetches and categorizes", func(t *testing.T) {
		raw := []byte(`{"result":[{"_id":"tt001","name":"A","state":{"timesWatched":2}},{"_id":"tt002","name":"B"},{"_id":"","name":"dropped"}]}`)
		var response stremio.LibraryResponse
		if err := json.Unmarshal(raw, &response); err != nil {
			t.Fatalf("fixture decode failed: %v", err)
		}
		response.Raw = raw

		client := newMockDatastore()
		client.response = &response

		engine := NewLibraryEngine(client, 100, nil)
		result, err := engine.Export(context.Background(), nil, "key")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Fetched != 3 {
			t.Errorf("expected 3 fetched, got %d", result.Fetched)
		}
		if result.Dropped != 1 {
			t.Errorf("expected 1 dropped, got %d", result.Dropped)
		}
		if len(result.Bundle.Watched) != 1 || len(result.Bundle.Watchlist) != 1 {
			t.Errorf("unexpected partitions: %+v", result.Bundle)
		}
		if string(result.Response.Raw) != string(raw) {
			t.Error("raw response not retained")
		}
	})

	t.Run("propagates fetch failure", func(t *testing.T) {
		client := newMockDatastore()
		client.fetchErr = errors.New("boom")

		engine := NewLibraryEngine(client, 100, nil)
		if _, err := engine.Export(context.Background(), nil, "key"); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("emits progress updates", func(t *testing.T) {
		client := newMockDatastore()
		client.response = &stremio.LibraryResponse{}

		progressCh := make(chan ProgressUpdate, 10)
		engine := NewLibraryEngine(client, 100, nil)
		if _, err := engine.Export(context.Background(), progressCh, "key"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		close(progressCh)

		phases := map[Phase]bool{}
		for update := range progressCh {
			phases[update.Phase] = true
		}
		if !phases[FetchLibrary] || !phases[NormalizeLibrary] {
			t.Errorf("missing expected phases: %v", phases)
		}
	})
}

func TestLibraryEngine_Restore(t *testing.T) {
	t.Run("chunks into batches of 50 in order", func(t *testing.T) {
		tests := []struct {
			n           int
			wantBatches int
		}{
			{0, 0},
			{1, 1},
			{50, 1},
			{51, 2},
			{120, 3},
		}

		for _, tt := range tests {
			t.Run(fmt.Sprintf("%d items", tt.n), func(t *testing.T) {
				client := newMockDatastore()
				items := makeItems(t, tt.n)

				engine := NewLibraryEngine(client, 1000, nil)
				result, err := engine.Restore(context.Background(), nil, "key", items)
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}

				if len(client.putCalls) != tt.wantBatches {
					t.Errorf("expected %d write calls, got %d", tt.wantBatches, len(client.putCalls))
				}
				if result.Succeeded != tt.n || result.Total != tt.n {
					t.Errorf("expected %d/%d, got %d/%d", tt.n, tt.n, result.Succeeded, result.Total)
				}

				// Every item covered exactly once, in original order.
				var replayed []stremio.LibraryItem
				for _, batch := range client.putCalls {
					if len(batch) > BatchSize {
						t.Errorf("batch exceeds limit: %d", len(batch))
					}
					replayed = append(replayed, batch...)
				}
				if len(replayed) != tt.n {
					t.Fatalf("expected %d replayed items, got %d", tt.n, len(replayed))
				}
				for i, item := range replayed {
					if want := fmt.Sprintf("tt%03d", i); item.ID != want {
						t.Fatalf("order broken at %d: got %s", i, item.ID)
					}
				}
			})
		}
	})

	t.Run("partial failure is not fatal", func(t *testing.T) {
		client := newMockDatastore()
		client.putErr = errors.New("write refused")
		client.putErrAt = 1 // second of three batches

		items := makeItems(t, 120)
		engine := NewLibraryEngine(client, 1000, nil)
		result, err := engine.Restore(context.Background(), nil, "key", items)
		if err != nil {
			t.Fatalf("expected no fatal error, got %v", err)
		}

		if len(client.putCalls) != 3 {
			t.Errorf("expected all 3 batches attempted, got %d", len(client.putCalls))
		}
		if result.Succeeded != 70 { // 50 + 20, middle batch of 50 lost
			t.Errorf("expected 70 succeeded, got %d", result.Succeeded)
		}
		if result.Total != 120 {
			t.Errorf("expected 120 total, got %d", result.Total)
		}
		if !result.Partial() {
			t.Error("expected partial result")
		}

		var failed []BatchResult
		for _, batch := range result.Batches {
			if !batch.OK {
				failed = append(failed, batch)
			}
		}
		if len(failed) != 1 || failed[0].Start != 50 {
			t.Errorf("expected one failed batch starting at 50, got %+v", failed)
		}
	})

	t.Run("all batches fail", func(t *testing.T) {
		client := newMockDatastore()
		client.putErr = errors.New("down")

		items := makeItems(t, 60)
		engine := NewLibraryEngine(client, 1000, nil)
		result, err := engine.Restore(context.Background(), nil, "key", items)
		if err != nil {
			t.Fatalf("expected no fatal error, got %v", err)
		}
		if result.Succeeded != 0 || result.Total != 60 {
			t.Errorf("expected 0/60, got %d/%d", result.Succeeded, result.Total)
		}
	})

	t.Run("cancellation stops between batches", func(t *testing.T) {
		client := newMockDatastore()
		items := makeItems(t, 120)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		engine := NewLibraryEngine(client, 1000, nil)
		result, err := engine.Restore(ctx, nil, "key", items)
		if err == nil {
			t.Error("expected error from cancelled context")
		}
		if result == nil {
			t.Fatal("expected partial result alongside error")
		}
	})

	t.Run("reports batch progress", func(t *testing.T) {
		client := newMockDatastore()
		client.putErr = errors.New("write refused")
		client.putErrAt = 0

		items := makeItems(t, 60)
		progressCh := make(chan ProgressUpdate, 10)

		engine := NewLibraryEngine(client, 1000, nil)
		if _, err := engine.Restore(context.Background(), progressCh, "key", items); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		close(progressCh)

		var updates []ProgressUpdate
		for update := range progressCh {
			updates = append(updates, update)
		}
		if len(updates) != 2 {
			t.Fatalf("expected 2 updates, got %d", len(updates))
		}
		if updates[0].Phase != RestoreBatches || updates[1].Phase != RestoreBatches {
			t.Errorf("unexpected phases: %+v", updates)
		}
	})
}
