package resumepdf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBlobEndpoint is the object registration endpoint used when none is configured.
const DefaultBlobEndpoint = "https://api.vercel.com/v1/blob"

// maxResponseBody caps how much of a remote response is read.
const maxResponseBody = 1 << 20

// BlobConfig configures a BlobStore.
type BlobConfig struct {
	Endpoint string // registration endpoint (default DefaultBlobEndpoint)
	Token    string // bearer token; a per-call token takes precedence
	Client   *http.Client
}

// BlobStore uploads in two steps: register the object's metadata to obtain
// an upload target, then PUT the bytes to that target.
type BlobStore struct {
	endpoint string
	token    string
	client   *http.Client
}

// blobCreateRequest is the registration payload.
type blobCreateRequest struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// blobCreateResponse carries the upload target and the final public URL.
type blobCreateResponse struct {
	UploadURL string `json:"uploadURL"`
	URL       string `json:"url"`
}

// NewBlobStore creates a BlobStore.
func NewBlobStore(cfg BlobConfig) *BlobStore {
	s := &BlobStore{
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		client:   cfg.Client,
	}
	if s.endpoint == "" {
		s.endpoint = DefaultBlobEndpoint
	}
	if s.client == nil {
		s.client = &http.Client{Timeout: 30 * time.Second}
	}
	return s
}

func (s *BlobStore) Name() string { return "blob" }

// Active reports whether a token is available.
func (s *BlobStore) Active(token string) bool {
	return token != "" || s.token != ""
}

// Put registers obj and uploads its bytes.
func (s *BlobStore) Put(ctx context.Context, obj Object) (string, error) {
	token := obj.Token
	if token == "" {
		token = s.token
	}

	created, err := s.create(ctx, obj, token)
	if err != nil {
		return "", err
	}
	if err := s.upload(ctx, created.UploadURL, obj.Data); err != nil {
		return "", err
	}
	return created.URL, nil
}

func (s *BlobStore) create(ctx context.Context, obj Object, token string) (*blobCreateResponse, error) {
	payload, err := json.Marshal(blobCreateRequest{Name: obj.Name, Size: len(obj.Data)})
	if err != nil {
		return nil, fmt.Errorf("encoding blob metadata: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("creating blob: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("reading create response: %w", err)
	}
	if !isSuccess(resp.StatusCode) {
		return nil, fmt.Errorf("%w: create blob returned %d: %s", ErrRemoteStatus, resp.StatusCode, snippet(body))
	}

	var created blobCreateResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("%w: decoding create response: %v", ErrRemoteResponse, err)
	}
	if created.UploadURL == "" || created.URL == "" {
		return nil, fmt.Errorf("%w: create response missing uploadURL or url: %s", ErrRemoteResponse, snippet(body))
	}
	return &created, nil
}

func (s *BlobStore) upload(ctx context.Context, target string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")
	req.ContentLength = int64(len(data))

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("uploading blob: %w", err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		return fmt.Errorf("%w: upload returned %d: %s", ErrRemoteStatus, resp.StatusCode, snippet(body))
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
	return nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// snippet trims a response body for error messages.
func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
