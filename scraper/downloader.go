// scraper/downloader.go
package scraper

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
)

// DownloadResult describes a completed download.
type DownloadResult struct {
	Path   string
	Bytes  int64
	SHA256 string
}

// DownloadFile downloads url into localSavePath. The body is written to a temporary file in the
// same directory and renamed into place, so readers of localSavePath never see a partial file.
func DownloadFile(ctx context.Context, client *http.Client, url, localSavePath string) (*DownloadResult, error) {
	log.Printf("Scraper: Attempting to download file from URL: %s to local path: %s\n", url, localSavePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make GET request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file from %s: received status code %d", url, resp.StatusCode)
	}

	dir := filepath.Dir(localSavePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(localSavePath)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	hash := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, hash), resp.Body)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to copy downloaded content to %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, localSavePath); err != nil {
		return nil, fmt.Errorf("failed to move download into %s: %w", localSavePath, err)
	}

	log.Printf("Scraper: Successfully downloaded %s to %s (%d bytes)\n", url, localSavePath, n)
	return &DownloadResult{
		Path:   localSavePath,
		Bytes:  n,
		SHA256: hex.EncodeToString(hash.Sum(nil)),
	}, nil
}
