// Package downloader fetches model weights over HTTP into the local model
// directory.
package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Downloader fetches remote files. Partial downloads never appear at the
// destination path.
type Downloader struct {
	client   *http.Client
	logger   *zap.Logger
	progress *ProgressManager
}

// New creates a downloader. client defaults to http.DefaultClient; progress may be nil.
func New(client *http.Client, logger *zap.Logger, progress *ProgressManager) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Downloader{client: client, logger: logger, progress: progress}
}

// Download writes url to dest via dest.tmp and a rename, and returns the
// number of bytes written.
func (d *Downloader) Download(ctx context.Context, url, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	d.logger.Info("Downloading file", zap.String("url", url), zap.String("dest", dest))

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, fmt.Errorf("create directory for %s: %w", dest, err)
	}

	tmp := dest + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", tmp, err)
	}

	var body io.Reader = resp.Body
	bar := d.progress.CreateBytesBar(resp.ContentLength, filepath.Base(dest))
	body = bar.ProxyReader(body)

	written, err := io.Copy(f, body)
	if err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && resp.ContentLength > 0 && written != resp.ContentLength {
		err = fmt.Errorf("short body: got %d of %d bytes", written, resp.ContentLength)
	}
	if err != nil {
		bar.Abort()
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("write %s: %w", dest, err)
	}
	bar.Complete()

	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("rename %s: %w", tmp, err)
	}

	d.logger.Info("Download complete", zap.String("dest", dest), zap.Int64("bytes", written))
	return written, nil
}

// IsUpToDate reports whether dest exists with the same size as the remote
// file. A remote that does not report a length is treated as changed.
func (d *Downloader) IsUpToDate(ctx context.Context, url, dest string) (bool, error) {
	info, err := os.Stat(dest)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("head %s: %w", url, err)
	}
	defer resp.Body.Close()

	remoteSize := resp.ContentLength
	if remoteSize < 0 {
		return false, nil
	}

	if info.Size() != remoteSize {
		d.logger.Info("Local file size differs from remote",
			zap.String("dest", dest),
			zap.Int64("local", info.Size()),
			zap.Int64("remote", remoteSize),
		)
		return false, nil
	}
	return true, nil
}
