package stremio

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/djib1010/stremio-library-exporter/internal/shared"
)

func TestFetchLibrary(t *testing.T) {
	t.Run("successful fetch", func(t *testing.T) {
		var gotBody map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.URL.Path != "/api/datastoreGet" {
				t.Errorf("unexpected path %s", req.URL.Path)
			}
			body, _ := io.ReadAll(req.Body)
			if err := json.Unmarshal(body, &gotBody); err != nil {
				t.Errorf("request body is not JSON: %v", err)
			}
			w.Write([]byte(`{"result":[{"_id":"tt001","name":"A","state":{"timesWatched":1}},{"_id":"tt002","name":"B"}]}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, nil, nil)
		response, err := client.FetchLibrary(context.Background(), "key123")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if gotBody["all"] != true {
			t.Error("expected all=true in request")
		}
		if gotBody["authKey"] != "key123" {
			t.Errorf("expected authKey key123, got %v", gotBody["authKey"])
		}
		if gotBody["collection"] != "libraryItem" {
			t.Errorf("expected collection libraryItem, got %v", gotBody["collection"])
		}

		if len(response.Result) != 2 {
			t.Fatalf("expected 2 items, got %d", len(response.Result))
		}
		if response.Result[0].ID != "tt001" || response.Result[0].State.TimesWatched != 1 {
			t.Errorf("unexpected first item: %+v", response.Result[0])
		}
		if len(response.Raw) == 0 {
			t.Error("expected verbatim body retained on response")
		}
	})

	t.Run("non-success status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		client := NewClient(server.URL, nil, nil)
		_, err := client.FetchLibrary(context.Background(), "key123")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()

		client := NewClient(server.URL, nil, nil)
		_, err := client.FetchLibrary(context.Background(), "key123")
		if !errors.Is(err, shared.ErrParseResponse) {
			t.Errorf("expected ErrParseResponse, got %v", err)
		}
	})
}

func TestPutChanges(t *testing.T) {
	items := []LibraryItem{{ID: "tt001", Name: "A"}}

	t.Run("accepts result ok", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.URL.Path != "/api/datastorePut" {
				t.Errorf("unexpected path %s", req.URL.Path)
			}
			w.Write([]byte(`{"result":"ok"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, nil, nil)
		if err := client.PutChanges(context.Background(), "key123", items); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("accepts success true", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Write([]byte(`{"success":true}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, nil, nil)
		if err := client.PutChanges(context.Background(), "key123", items); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("rejects unacknowledged response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Write([]byte(`{"result":"error","success":false}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, nil, nil)
		err := client.PutChanges(context.Background(), "key123", items)
		if !errors.Is(err, shared.ErrWriteRejected) {
			t.Errorf("expected ErrWriteRejected, got %v", err)
		}
	})

	t.Run("sends changes payload", func(t *testing.T) {
		var got struct {
			AuthKey    string            `json:"authKey"`
			Collection string            `json:"collection"`
			Changes    []json.RawMessage `json:"changes"`
		}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			body, _ := io.ReadAll(req.Body)
			if err := json.Unmarshal(body, &got); err != nil {
				t.Errorf("bad request body: %v", err)
			}
			w.Write([]byte(`{"result":"ok"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, nil, nil)
		if err := client.PutChanges(context.Background(), "key123", items); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if got.AuthKey != "key123" || got.Collection != "libraryItem" {
			t.Errorf("unexpected envelope: %+v", got)
		}
		if len(got.Changes) != 1 {
			t.Errorf("expected 1 change, got %d", len(got.Changes))
		}
	})
}

func TestLibraryItemRoundTrip(t *testing.T) {
	// Fields the exporter does not model must survive re-encoding.
	raw := `{"_id":"tt001","name":"A","removed":false,"temp":{"x":1},"state":{"timesWatched":3,"lastWatched":"2024-01-01"}}`

	var item LibraryItem
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	out, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var got, want map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("re-decode failed: %v", err)
	}
	if err := json.Unmarshal([]byte(raw), &want); err != nil {
		t.Fatalf("fixture decode failed: %v", err)
	}

	if got["removed"] != want["removed"] {
		t.Error("unmodeled field 'removed' lost in round trip")
	}
	state, ok := got["state"].(map[string]any)
	if !ok || state["lastWatched"] != "2024-01-01" {
		t.Error("nested unmodeled field lost in round trip")
	}
}

func TestYearDecoding(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"numeric", `{"_id":"a","name":"A","year":2020}`, "2020"},
		{"string", `{"_id":"a","name":"A","year":"2020"}`, "2020"},
		{"null", `{"_id":"a","name":"A","year":null}`, ""},
		{"absent", `{"_id":"a","name":"A"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var item LibraryItem
			if err := json.Unmarshal([]byte(tt.payload), &item); err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if item.Year.String() != tt.want {
				t.Errorf("expected year %q, got %q", tt.want, item.Year.String())
			}
		})
	}
}
