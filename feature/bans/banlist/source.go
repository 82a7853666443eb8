package banlist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"banledger/core/storage"

	"github.com/minio/minio-go/v7"
)

// Source fetches the raw ban list bytes from wherever the game server
// publishes them. Fetching always happens before the reconciliation
// transaction opens, so a slow source can never hold the store.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// NewSource builds a Source from the configuration: an HTTP(S) URL when
// one is set, otherwise an object-storage key in the configured bucket.
func NewSource(cfg Config, client storage.Client, bucket string) (Source, error) {
	switch {
	case cfg.URL != "":
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		return &HTTPSource{
			URL:    cfg.URL,
			Client: &http.Client{Timeout: timeout},
		}, nil
	case cfg.Object != "":
		if client == nil {
			return nil, errors.New("banlist object configured but storage is disabled")
		}
		return &ObjectSource{Client: client, Bucket: bucket, Object: cfg.Object}, nil
	default:
		return nil, errors.New("no ban list source configured: set banlist.url or banlist.object")
	}
}

// HTTPSource downloads the ban list from a plain URL.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download ban list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ban list download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// ObjectSource downloads the ban list from the object-storage bucket.
type ObjectSource struct {
	Client storage.Client
	Bucket string
	Object string
}

func (s *ObjectSource) Fetch(ctx context.Context) ([]byte, error) {
	obj, err := s.Client.GetObject(ctx, s.Bucket, s.Object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ban list object: %w", err)
	}
	defer obj.Close()
	return io.ReadAll(obj)
}
