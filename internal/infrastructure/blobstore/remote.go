package blobstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const remotePrefix = "uploads/"

// RemoteStore uploads files to an object store over HTTP PUT and serves them
// from the store's public base URL
type RemoteStore struct {
	httpClient *http.Client
	endpoint   string
	publicURL  string
	token      string
}

// NewRemoteStore creates a store writing to endpoint. publicURL is the base
// the stored keys are appended to when rendering URLs.
func NewRemoteStore(endpoint, publicURL, token string, timeout time.Duration) *RemoteStore {
	if !strings.HasSuffix(publicURL, "/") {
		publicURL += "/"
	}
	return &RemoteStore{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{MaxIdleConnsPerHost: 10},
		},
		endpoint:  strings.TrimRight(endpoint, "/"),
		publicURL: publicURL,
		token:     token,
	}
}

// Save uploads r under "uploads/<name>_<id><ext>" and returns that key
func (s *RemoteStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	key := remotePrefix + storageName(name)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.endpoint+"/"+key, r)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	status, err := s.do(req)
	if err != nil {
		return "", fmt.Errorf("upload to %s: %w", s.endpoint, err)
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("upload to %s: unexpected status %d", s.endpoint, status)
	}
	return key, nil
}

// Delete removes the object stored under key. 404 counts as deleted.
func (s *RemoteStore) Delete(ctx context.Context, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.endpoint+"/"+strings.TrimPrefix(key, "/"), nil)
	if err != nil {
		return fmt.Errorf("failed to build delete request: %w", err)
	}

	status, err := s.do(req)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", s.endpoint, err)
	}
	if status == http.StatusNotFound || (status >= 200 && status < 300) {
		return nil
	}
	return fmt.Errorf("delete from %s: unexpected status %d", s.endpoint, status)
}

// do sends req with the bearer token and drains the response
func (s *RemoteStore) do(req *http.Request) (int, error) {
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// ResolveURL appends the key to the public base URL. origin is unused: the
// object store serves its own files.
func (s *RemoteStore) ResolveURL(locator, origin string) string {
	return s.publicURL + strings.TrimPrefix(locator, "/")
}
