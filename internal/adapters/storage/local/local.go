package local

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"multipart-upload/internal/config"
	"multipart-upload/internal/core/domain"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

type appendRequest struct {
	Data      string `json:"data"`
	FileName  string `json:"file_name"`
	PartIndex int    `json:"part_index"`
}

type deleteRequest struct {
	FileName string `json:"file_name"`
}

type statusResponse struct {
	Data struct {
		Status bool `json:"status"`
	} `json:"data"`
}

// Adapter is an upload backend that appends parts to a file through the
// local append endpoint. It has no server side session: parts are written as
// they arrive and completion needs no call.
type Adapter struct {
	httpClient *retryablehttp.Client
	baseURL    string
	logger     *slog.Logger
}

// NewAdapter returns Adapter. Retries are off unless cfg.RetryMax is set.
func NewAdapter(cfg config.LocalConfig, logger *slog.Logger) *Adapter {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.Logger = logger

	return &Adapter{
		httpClient: client,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		logger:     logger,
	}
}

func (a *Adapter) Name() string {
	return config.BackendLocal
}

// Initiate registers nothing, the file is created by the first part
func (a *Adapter) Initiate(_ context.Context, _ domain.ObjectTarget) (string, error) {
	return domain.LocalSessionID, nil
}

// UploadPart posts the chunk as a base64 data URL
func (a *Adapter) UploadPart(ctx context.Context, target domain.ObjectTarget, _ string, partIndex int, chunk []byte) (domain.PartAck, error) {
	body, err := json.Marshal(appendRequest{
		Data:      domain.EncodeDataURL(chunk),
		FileName:  target.Name,
		PartIndex: partIndex,
	})
	if err != nil {
		return domain.PartAck{}, err
	}

	resp, err := a.send(ctx, http.MethodPost, "/local-upload", body)
	if err != nil {
		return domain.PartAck{}, fmt.Errorf("failed to send part %d: %w", partIndex, err)
	}
	defer a.closeBody(resp.Body)

	var response statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return domain.PartAck{}, fmt.Errorf("failed to decode part %d response (status %d): %w", partIndex, resp.StatusCode, err)
	}
	if !response.Data.Status {
		return domain.PartAck{}, fmt.Errorf("%w: part %d", domain.ErrPartRejected, partIndex)
	}

	return domain.PartAck{PartIndex: partIndex}, nil
}

// Complete makes no call, every acknowledged part is already in the file
func (a *Adapter) Complete(_ context.Context, target domain.ObjectTarget, _ string, _ []domain.PartAck) (string, error) {
	return target.Location(), nil
}

// Abort asks the endpoint to delete the partial file
func (a *Adapter) Abort(ctx context.Context, target domain.ObjectTarget, _ string) error {
	body, err := json.Marshal(deleteRequest{FileName: target.Name})
	if err != nil {
		return err
	}

	resp, err := a.send(ctx, http.MethodDelete, "/local-delete", body)
	if err != nil {
		return fmt.Errorf("failed to delete partial file: %w", err)
	}
	defer a.closeBody(resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("failed to delete partial file: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (a *Adapter) send(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, method, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return a.httpClient.Do(req)
}

func (a *Adapter) closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		a.logger.Warn("failed to close response body", "error", err)
	}
}
