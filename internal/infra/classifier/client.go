package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hungwahenry/cheevo-sub000/internal/infra/httpclient"
)

const defaultTimeout = 5 * time.Second

// Result is the classifier's verdict for one text. Raw keeps the
// unparsed response body for the audit log.
type Result struct {
	Flagged        bool               `json:"flagged"`
	CategoryScores map[string]float64 `json:"category_scores"`
	Raw            json.RawMessage    `json:"-"`
}

type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		httpClient: httpclient.New(timeout),
	}
}

// Classify posts the text and returns the per-category scores. Any
// transport error, timeout or non-2xx status is returned as an error;
// the caller decides the fail-safe behavior.
func (c *Client) Classify(ctx context.Context, text string) (Result, error) {
	if c.endpoint == "" {
		return Result{}, fmt.Errorf("classifier endpoint is not configured")
	}
	if text == "" {
		return Result{}, fmt.Errorf("classifier input text is empty")
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return Result{}, fmt.Errorf("marshal classifier request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("build classifier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("call classifier: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read classifier response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return Result{}, fmt.Errorf("decode classifier response: %w", err)
	}
	result.Raw = body

	return result, nil
}
