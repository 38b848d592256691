package taskapi

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
	"strings"
)

// GenerateTask uploads a captured voice note and returns the server's task
// draft. The audio travels as the single multipart field "file"; all speech
// recognition happens server-side.
func (c *Client) GenerateTask(ctx context.Context, audioPath string) (AITask, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return AITask{}, fmt.Errorf("open capture: %w", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	field, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return AITask{}, fmt.Errorf("create file field: %w", err)
	}
	if _, err := io.Copy(field, file); err != nil {
		return AITask{}, fmt.Errorf("copy audio: %w", err)
	}
	if err := writer.Close(); err != nil {
		return AITask{}, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tasks/ai-generate", body)
	if err != nil {
		return AITask{}, fmt.Errorf("build ai-generate request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return AITask{}, fmt.Errorf("%w: upload voice note: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return AITask{}, fmt.Errorf("ai-generate: %w", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(detail))})
	}

	var draft AITask
	if err := json.NewDecoder(resp.Body).Decode(&draft); err != nil {
		return AITask{}, fmt.Errorf("decode ai-generate response: %w", err)
	}
	return draft, nil
}
