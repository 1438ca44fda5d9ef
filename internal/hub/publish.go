package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// Publish uploads a local file to the given hub repository and returns the
// commit reference the hub assigned. A failed publish is fatal to the
// caller's cycle; nothing here retries.
func (c *Client) Publish(ctx context.Context, repo, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", &Error{Message: fmt.Sprintf("failed to open %s", localPath), Cause: err}
	}
	defer func() { _ = f.Close() }()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(localPath))
	if err != nil {
		return "", &Error{Message: "failed to build upload form", Cause: err}
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", &Error{Message: fmt.Sprintf("failed to read %s", localPath), Cause: err}
	}
	if err := mw.Close(); err != nil {
		return "", &Error{Message: "failed to finalize upload form", Cause: err}
	}

	path := fmt.Sprintf("/api/repos/%s/upload", repo)
	req, err := c.newRequest(ctx, http.MethodPost, path, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{URL: c.baseURL + path, Message: "upload request failed", Cause: err, Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{URL: c.baseURL + path, Message: "failed to read upload response", Cause: err}
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", &Error{
			URL:       c.baseURL + path,
			Message:   fmt.Sprintf("HTTP status %d", resp.StatusCode),
			Retryable: resp.StatusCode >= 500,
		}
	}

	var parsed struct {
		CommitRef string `json:"commit_ref"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &Error{URL: c.baseURL + path, Message: "failed to decode upload response", Cause: err}
	}
	if parsed.CommitRef == "" {
		return "", &Error{URL: c.baseURL + path, Message: "upload response missing commit_ref"}
	}
	return parsed.CommitRef, nil
}
