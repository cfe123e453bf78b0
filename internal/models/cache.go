package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"subburn/internal/domain"
)

const downloadTimeout = 45 * time.Minute

// diskSpaceHeadroom is the slack required beyond the advertised model size.
const diskSpaceHeadroom = 1.2

// DownloadError reports a failed model download after cleanup.
type DownloadError struct {
	ModelID string
	Err     error
}

// Error formats the download failure with its model identifier.
func (e *DownloadError) Error() string {
	return fmt.Sprintf("download model %s: %v", e.ModelID, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *DownloadError) Unwrap() error { return e.Err }

// Cache resolves catalog models against a local directory. Presence on
// disk is the sole source of truth; no state is held between calls.
type Cache struct {
	dir    string
	client *http.Client
	logger *slog.Logger
}

// NewCache creates a cache rooted at dir.
func NewCache(dir string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		dir:    dir,
		client: &http.Client{},
		logger: logger,
	}
}

// Dir returns the cache root directory.
func (c *Cache) Dir() string { return c.dir }

// Asset reports the local state of one catalog model.
func (c *Cache) Asset(modelID string) (domain.ModelAsset, error) {
	model, err := ByID(modelID)
	if err != nil {
		return domain.ModelAsset{}, err
	}

	asset := domain.ModelAsset{ID: model.ID, SizeBytes: model.SizeBytes}
	path := filepath.Join(c.dir, model.FileName)
	info, statErr := os.Stat(path)
	if statErr == nil && !info.IsDir() {
		asset.Present = true
		asset.LocalPath = path
		asset.SizeBytes = info.Size()
	}
	return asset, nil
}

// IsPresent reports whether the model file already exists locally.
func (c *Cache) IsPresent(modelID string) bool {
	asset, err := c.Asset(modelID)
	return err == nil && asset.Present
}

// Assets reports the local state of every catalog model.
func (c *Cache) Assets() []domain.ModelAsset {
	out := make([]domain.ModelAsset, 0, len(catalog))
	for _, model := range catalog {
		asset, err := c.Asset(model.ID)
		if err != nil {
			continue
		}
		out = append(out, asset)
	}
	return out
}

// EnsureDownloaded downloads the model if it is not already present,
// reporting byte progress through onProgress as a fraction in [0,1]. A
// file lock serializes concurrent downloads of the same cache directory so
// two callers cannot double-download a model. On failure no partial file
// is left behind.
func (c *Cache) EnsureDownloaded(ctx context.Context, modelID string, onProgress func(fraction float64)) (domain.ModelAsset, error) {
	model, err := ByID(modelID)
	if err != nil {
		return domain.ModelAsset{}, err
	}

	if asset, assetErr := c.Asset(modelID); assetErr == nil && asset.Present {
		return asset, nil
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return domain.ModelAsset{}, &DownloadError{ModelID: modelID, Err: fmt.Errorf("prepare cache directory: %w", err)}
	}

	lock := flock.New(filepath.Join(c.dir, ".download.lock"))
	locked, err := lock.TryLockContext(ctx, 250*time.Millisecond)
	if err != nil {
		return domain.ModelAsset{}, &DownloadError{ModelID: modelID, Err: fmt.Errorf("acquire download lock: %w", err)}
	}
	if !locked {
		return domain.ModelAsset{}, &DownloadError{ModelID: modelID, Err: errors.New("download lock unavailable")}
	}
	defer func() {
		_ = lock.Unlock()
	}()

	// Another process may have finished the download while we waited.
	if asset, assetErr := c.Asset(modelID); assetErr == nil && asset.Present {
		return asset, nil
	}

	free, err := freeDiskBytes(c.dir)
	if err == nil && float64(free) < float64(model.SizeBytes)*diskSpaceHeadroom {
		return domain.ModelAsset{}, &DownloadError{
			ModelID: modelID,
			Err:     fmt.Errorf("insufficient disk space: need %d bytes, %d free", model.SizeBytes, free),
		}
	}

	target := filepath.Join(c.dir, model.FileName)
	c.logger.Info("downloading model", "model", model.ID, "url", model.URL, "target", target)
	if err := c.downloadToFile(ctx, target, model.URL, model.SizeBytes, onProgress); err != nil {
		return domain.ModelAsset{}, &DownloadError{ModelID: modelID, Err: err}
	}

	if onProgress != nil {
		onProgress(1)
	}
	return c.Asset(modelID)
}

// downloadToFile streams the URL into a temp file and renames it into
// place, removing the temp file on any failure.
func (c *Cache) downloadToFile(ctx context.Context, target, url string, expectedSize int64, onProgress func(float64)) error {
	tmpPath := target + ".download"
	if err := os.Remove(tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale temp file: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "subburn")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected HTTP status: %s", resp.Status)
	}

	total := resp.ContentLength
	if total <= 0 {
		total = expectedSize
	}

	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}

	writer := &progressWriter{dst: file, total: total, onProgress: onProgress}
	_, copyErr := io.Copy(writer, resp.Body)
	closeErr := file.Close()
	if copyErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write model file: %w", copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close model file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("move model into place: %w", err)
	}
	return nil
}

// progressWriter forwards a monotonic completion fraction as bytes arrive.
type progressWriter struct {
	dst        io.Writer
	total      int64
	written    int64
	last       float64
	onProgress func(float64)
}

// Write counts bytes and emits progress capped just below completion.
func (w *progressWriter) Write(p []byte) (int, error) {
	n, err := w.dst.Write(p)
	w.written += int64(n)
	if err == nil && w.onProgress != nil && w.total > 0 {
		fraction := float64(w.written) / float64(w.total)
		if fraction > 0.99 {
			fraction = 0.99
		}
		if fraction > w.last {
			w.last = fraction
			w.onProgress(fraction)
		}
	}
	return n, err
}
