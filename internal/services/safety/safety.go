// Package safety screens submissions against a content-safety service.
// Checker failures are treated as fail-closed by the pipeline.
package safety

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"refile/internal/config"
	"refile/internal/services"
)

// Checker decides whether a submission may be processed.
type Checker interface {
	// IsUnsafe reports a positive content detection. An error means the
	// verdict is unknown; callers must treat that as unsafe.
	IsUnsafe(ctx context.Context, filename, caption string) (bool, error)
}

// Permissive is the checker used when no endpoint is configured. It never
// rejects.
type Permissive struct{}

func (Permissive) IsUnsafe(context.Context, string, string) (bool, error) {
	return false, nil
}

// HTTPChecker posts submissions to an external screening endpoint.
type HTTPChecker struct {
	endpoint string
	client   *http.Client
}

// NewHTTP constructs a checker against the given endpoint.
func NewHTTP(endpoint string, timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPChecker{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// NewFromConfig returns an HTTP checker when an endpoint is configured and
// the permissive checker otherwise.
func NewFromConfig(cfg *config.Config) Checker {
	if cfg == nil || cfg.Safety.Endpoint == "" {
		return Permissive{}
	}
	return NewHTTP(cfg.Safety.Endpoint, time.Duration(cfg.Safety.TimeoutSeconds)*time.Second)
}

type checkRequest struct {
	Filename string `json:"filename"`
	Caption  string `json:"caption,omitempty"`
}

type checkResponse struct {
	Unsafe bool `json:"unsafe"`
}

// IsUnsafe posts the filename and caption for screening.
func (c *HTTPChecker) IsUnsafe(ctx context.Context, filename, caption string) (bool, error) {
	payload, err := json.Marshal(checkRequest{Filename: filename, Caption: caption})
	if err != nil {
		return false, services.Wrap(services.ErrTransient, "safety", "check", "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return false, services.Wrap(services.ErrConfiguration, "safety", "check", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, services.Wrap(services.ErrTransient, "safety", "check", "post submission", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, services.Wrap(services.ErrTransient, "safety", "check",
			fmt.Sprintf("endpoint returned %d: %s", resp.StatusCode, bytes.TrimSpace(body)), nil)
	}

	var verdict checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return false, services.Wrap(services.ErrTransient, "safety", "check", "decode verdict", err)
	}
	return verdict.Unsafe, nil
}
