package analyzer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"behavior-backend/internal/imaging"
)

// Client talks JSON over HTTP to the Python analysis engine. The engine is
// its own process and handles concurrent requests itself, so Client imposes
// no serialization; it is safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		timeout: timeout,
		logger:  logger,
	}
}

type processRequest struct {
	Image  string `json:"image"` // base64 of the raw BGR pixel buffer
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ProcessFrame submits one frame and decodes the engine's result record.
// The per-call timeout maps transport stalls onto the caller's 500 path.
func (c *Client) ProcessFrame(ctx context.Context, frame *imaging.Frame) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(processRequest{
		Image:  base64.StdEncoding.EncodeToString(frame.Pix),
		Width:  frame.Width,
		Height: frame.Height,
	})
	if err != nil {
		return nil, fmt.Errorf("could not encode frame: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("could not build analyzer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analyzer unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("analyzer returned status %d: %s", resp.StatusCode, string(body))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("could not decode analyzer result: %w", err)
	}
	return &result, nil
}

// Ready probes the engine's health endpoint.
func (c *Client) Ready() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Debug("analyzer health probe failed", "err", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
