package hub

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// downloadConcurrency bounds parallel file downloads within one snapshot.
const downloadConcurrency = 4

// treeEntry is one file in a dataset revision.
type treeEntry struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// DownloadSnapshot fetches every file of namespace@revision into destDir.
// With force set, destDir is removed first so the snapshot is clean.
// Failures are returned to the caller, who decides whether the run can
// proceed without fresh data.
func (c *Client) DownloadSnapshot(ctx context.Context, namespace, revision, destDir string, force bool) error {
	if !filepath.IsAbs(destDir) {
		abs, err := filepath.Abs(destDir)
		if err != nil {
			return &Error{Message: fmt.Sprintf("failed to resolve destination %s", destDir), Cause: err}
		}
		destDir = abs
	}

	if force {
		if err := os.RemoveAll(destDir); err != nil {
			return &Error{Message: fmt.Sprintf("failed to clean destination %s", destDir), Cause: err}
		}
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return &Error{Message: fmt.Sprintf("failed to create destination %s", destDir), Cause: err}
	}

	var entries []treeEntry
	treePath := fmt.Sprintf("/api/datasets/%s/tree/%s", namespace, url.PathEscape(revision))
	if err := c.getJSON(ctx, treePath, &entries); err != nil {
		return err
	}
	if len(entries) == 0 {
		return &Error{URL: c.baseURL + treePath, Message: "snapshot has no files"}
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(downloadConcurrency)
	for _, entry := range entries {
		entry := entry
		g.Go(func() error {
			return c.downloadFile(gCtx, namespace, revision, entry.Path, destDir)
		})
	}
	return g.Wait()
}

// downloadFile fetches one snapshot file and writes it under destDir,
// preserving any subdirectory structure.
func (c *Client) downloadFile(ctx context.Context, namespace, revision, filePath, destDir string) error {
	resolve := fmt.Sprintf("/datasets/%s/resolve/%s/%s", namespace, url.PathEscape(revision), filePath)
	body, err := c.getBytes(ctx, resolve)
	if err != nil {
		return err
	}

	target := filepath.Join(destDir, filepath.FromSlash(filePath))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return &Error{Message: fmt.Sprintf("failed to create directory for %s", target), Cause: err}
	}
	if err := os.WriteFile(target, body, 0o644); err != nil {
		return &Error{Message: fmt.Sprintf("failed to write %s", target), Cause: err}
	}
	return nil
}
