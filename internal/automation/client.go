package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

// InvokeRequest is the envelope accepted by the backend delivery procedure.
// The procedure performs the outbound HTTP delivery to the workflow engine
// and writes the durable integration log row; this client does neither.
type InvokeRequest struct {
	CompanyID    string `json:"companyId"`
	EventType    string `json:"eventType"`
	ResourceType string `json:"resourceType"`
	ResourceID   string `json:"resourceId"`
	Payload      any    `json:"payload"`
}

// Client invokes the remote delivery procedure.
type Client interface {
	Invoke(ctx context.Context, req InvokeRequest) error
}

type httpClient struct {
	url    string
	apiKey string
	http   *http.Client
	logger *zap.Logger
}

// NewHTTPClient builds a client for the automation RPC endpoint, or nil when
// no endpoint is configured so callers can treat dispatch as disabled.
func NewHTTPClient(cfg config.AutomationConfig, logger *zap.Logger) Client {
	if cfg.RPCURL == "" {
		logger.Warn("AUTOMATION_RPC_URL not provided; outbound events disabled")
		return nil
	}
	return &httpClient{
		url:    cfg.RPCURL,
		apiKey: cfg.APIKey,
		http:   &http.Client{Timeout: cfg.Timeout()},
		logger: logger,
	}
}

func (c *httpClient) Invoke(ctx context.Context, req InvokeRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode invoke request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build invoke request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("invoke automation rpc: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("automation rpc returned status %d", resp.StatusCode)
	}

	c.logger.Debug("automation rpc invoked",
		zap.String("event_type", req.EventType),
		zap.String("resource_id", req.ResourceID),
		zap.Duration("duration", time.Since(start)))
	return nil
}
