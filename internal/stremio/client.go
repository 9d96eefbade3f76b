// package stremio implements a client for the Stremio datastore API.
package stremio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/djib1010/stremio-library-exporter/internal/shared"
)

const (
	// DefaultBaseURL is the production Stremio API host.
	DefaultBaseURL = "https://api.strem.io"

	datastoreGetPath = "/api/datastoreGet"
	datastorePutPath = "/api/datastorePut"

	collectionLibraryItem = "libraryItem"

	requestTimeout = 30 * time.Second

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Client issues requests against the Stremio datastore endpoints using a
// previously extracted auth key.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient creates a datastore client. baseURL defaults to
// [DefaultBaseURL] and the HTTP client defaults to one with a 30s
// request timeout.
func NewClient(baseURL string, httpClient *http.Client, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

type datastoreGetRequest struct {
	All        bool   `json:"all"`
	AuthKey    string `json:"authKey"`
	Collection string `json:"collection"`
}

type datastorePutRequest struct {
	AuthKey    string        `json:"authKey"`
	Collection string        `json:"collection"`
	Changes    []LibraryItem `json:"changes"`
}

// putResponse recognizes both acknowledgement dialects the server has
// used across versions.
type putResponse struct {
	Result  any  `json:"result"`
	Success bool `json:"success"`
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	return respBody, resp.StatusCode, nil
}

// FetchLibrary retrieves the full library collection in a single request.
//
// The `all` flag is trusted to return the complete collection; the API
// exposes no pagination for this call.
func (c *Client) FetchLibrary(ctx context.Context, authKey string) (*LibraryResponse, error) {
	payload := datastoreGetRequest{
		All:        true,
		AuthKey:    authKey,
		Collection: collectionLibraryItem,
	}

	c.logger.Info("fetching library from Stremio datastore")
	body, status, err := c.post(ctx, datastoreGetPath, payload)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: datastoreGet returned status %d", shared.ErrAPIRequest, status)
	}

	var response LibraryResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrParseResponse, err)
	}
	response.Raw = body

	c.logger.Info("library fetched", "items", len(response.Result))
	return &response, nil
}

// PutChanges writes a batch of library records to the datastore. Callers
// are responsible for keeping batches within the API's size limit.
func (c *Client) PutChanges(ctx context.Context, authKey string, changes []LibraryItem) error {
	payload := datastorePutRequest{
		AuthKey:    authKey,
		Collection: collectionLibraryItem,
		Changes:    changes,
	}

	body, status, err := c.post(ctx, datastorePutPath, payload)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("%w: datastorePut returned status %d", shared.ErrAPIRequest, status)
	}

	var ack putResponse
	if err := json.Unmarshal(body, &ack); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrParseResponse, err)
	}

	if result, ok := ack.Result.(string); (ok && result == "ok") || ack.Success {
		return nil
	}
	return fmt.Errorf("%w: %s", shared.ErrWriteRejected, string(body))
}
