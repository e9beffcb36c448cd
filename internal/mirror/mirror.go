// Package mirror copies externally-hosted submission assets into
// system-controlled object storage so downstream consumers never depend on
// third-party URLs that may expire.
package mirror

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/onboardhq/intake/internal/logging"
	"github.com/onboardhq/intake/internal/metrics"
)

// maxAssetSize caps a single fetched asset at 25 MiB.
const maxAssetSize = 25 << 20

// Uploader is the slice of the storage client the mirror needs.
type Uploader interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	ObjectURL(path string) string
}

type Mirror struct {
	uploader Uploader
	fetcher  *http.Client
	logger   *logging.Logger
}

func New(uploader Uploader, fetchTimeout time.Duration, logger *logging.Logger) *Mirror {
	if logger == nil {
		logger = logging.Default()
	}
	return &Mirror{
		uploader: uploader,
		fetcher: &http.Client{
			Timeout: fetchTimeout,
		},
		logger: logger,
	}
}

// MirrorAll copies each source URL into storage under
// clients/<clientID>/<category>/<filename> and returns the durable URLs of
// the copies in input order. A file that fails to fetch or upload is logged
// and omitted; one bad asset never aborts the rest.
func (m *Mirror) MirrorAll(ctx context.Context, clientID int64, category string, sourceURLs []string) []string {
	var mirrored []string
	for _, src := range sourceURLs {
		durable, err := m.mirrorOne(ctx, clientID, category, src)
		if err != nil {
			metrics.AssetErrors.WithLabelValues(category).Inc()
			m.logger.WarnContext(ctx, "Skipping asset",
				"category", category,
				"source_url", src,
				"error", err.Error(),
			)
			continue
		}
		metrics.AssetsMirroredTotal.WithLabelValues(category).Inc()
		mirrored = append(mirrored, durable)
	}
	return mirrored
}

func (m *Mirror) mirrorOne(ctx context.Context, clientID int64, category, src string) (string, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := m.fetcher.Do(request)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	objectPath := fmt.Sprintf("clients/%d/%s/%s", clientID, category, filenameFor(src))
	if err := m.uploader.Upload(ctx, objectPath, data, resp.Header.Get("Content-Type")); err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}

	return m.uploader.ObjectURL(objectPath), nil
}

// filenameFor derives a storage filename from the source URL's path,
// URL-decoded. URLs without a parseable filename get a timestamped name so
// the upload still lands somewhere unique.
func filenameFor(src string) string {
	fallback := func() string {
		return fmt.Sprintf("asset-%d-%s", time.Now().Unix(), uuid.New().String()[:8])
	}

	parsed, err := url.Parse(src)
	if err != nil {
		return fallback()
	}

	name := path.Base(parsed.Path)
	if name == "." || name == "/" || name == "" {
		return fallback()
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	// Slashes smuggled in via encoding would change the storage prefix.
	name = strings.ReplaceAll(name, "/", "_")
	return name
}
