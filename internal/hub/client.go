package hub

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Client talks to a dataset/model hub. Identifiers are opaque
// "owner/name" strings resolved against the hub base URL.
type Client struct {
	baseURL string
	token   string
	http    *retryablehttp.Client
}

func NewClient(baseURL, token string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 10 * time.Minute
	rc.Logger = nil

	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    rc,
	}
}

// DatasetURL resolves a dataset repo id and filename to a download URL.
func (c *Client) DatasetURL(repoID, filename string) string {
	return fmt.Sprintf("%s/datasets/%s/resolve/main/%s", c.baseURL, repoID, filename)
}

// EnsureLocal downloads url to path only when the file is missing.
func (c *Client) EnsureLocal(url, path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	slog.Info("File not found locally, downloading", "url", url, "path", path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := c.Download(url, path); err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}

	slog.Info("Download finished", "path", path)
	return nil
}

// Download fetches url into path with periodic progress logging.
func (c *Client) Download(url, path string) error {
	req, err := retryablehttp.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	size := resp.ContentLength
	sizeMB := float64(size) / 1024 / 1024

	if size > 0 {
		slog.Info("Starting download",
			"size_mb", fmt.Sprintf("%.1f", sizeMB),
			"file", path)
	} else {
		slog.Info("Starting download (unknown size)", "file", path)
	}

	start := time.Now()
	var downloaded int64

	reportProgress := func() {
		elapsed := time.Since(start)
		downloadedMB := float64(downloaded) / 1024 / 1024
		speed := downloadedMB / elapsed.Seconds()

		if size > 0 {
			progress := float64(downloaded) / float64(size) * 100
			slog.Info("Download progress",
				"progress_percent", fmt.Sprintf("%.1f", progress),
				"downloaded_mb", fmt.Sprintf("%.1f", downloadedMB),
				"total_mb", fmt.Sprintf("%.1f", sizeMB),
				"speed_mbps", fmt.Sprintf("%.2f", speed),
				"file", path)
		} else {
			slog.Info("Download progress",
				"downloaded_mb", fmt.Sprintf("%.1f", downloadedMB),
				"speed_mbps", fmt.Sprintf("%.2f", speed),
				"file", path)
		}
	}

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	done := make(chan bool)
	go func() {
		for {
			select {
			case <-ticker.C:
				reportProgress()
			case <-done:
				return
			}
		}
	}()
	defer close(done)

	buf := make([]byte, 32*1024)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			downloaded += int64(n)
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return writeErr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}

	elapsed := time.Since(start)
	downloadedMB := float64(downloaded) / 1024 / 1024

	slog.Info("Download completed",
		"final_size_mb", fmt.Sprintf("%.1f", downloadedMB),
		"duration", elapsed.Round(time.Second).String(),
		"file", path)

	return nil
}

// PushDataset uploads one split file to a hub dataset repo.
func (c *Client) PushDataset(repoID, filename string, content []byte) error {
	if c.token == "" {
		return fmt.Errorf("hub push requires a token")
	}

	url := fmt.Sprintf("%s/api/datasets/%s/upload/main/%s", c.baseURL, repoID, filename)
	req, err := retryablehttp.NewRequest(http.MethodPost, url, bytes.NewReader(content))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("hub push failed: %s: %s", resp.Status, string(body))
	}

	slog.Info("Pushed dataset split", "repo", repoID, "file", filename, "bytes", len(content))
	return nil
}
