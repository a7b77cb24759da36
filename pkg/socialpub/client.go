package socialpub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmcorrales/brandpulse-backend/pkg/config"
	"github.com/dmcorrales/brandpulse-backend/pkg/enums"
	pkgerrors "github.com/dmcorrales/brandpulse-backend/pkg/errors"
	"github.com/dmcorrales/brandpulse-backend/pkg/logger"
)

const defaultTimeout = 30 * time.Second

var (
	errBaseURLRequired = errors.New("social publish base url is required")
	errLoggerRequired  = errors.New("social publish logger is required")
)

// Publisher is the delivery surface consumed by the job processor.
type Publisher interface {
	Publish(ctx context.Context, params PublishParams) (*PublishResult, error)
}

// PublishParams carries everything the external service needs for one delivery.
type PublishParams struct {
	Platform          enums.Platform
	ExternalAccountID string
	AccessToken       string
	Caption           string
	MediaURLs         []string
}

// PublishResult is the external service's acknowledgment of a delivery.
type PublishResult struct {
	ExternalID string `json:"externalId"`
}

// Client calls the external social publishing service over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *logger.Logger
}

// NewClient initializes the publish wrapper and validates its configuration.
func NewClient(ctx context.Context, cfg config.SocialPublishConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		http:    &http.Client{Timeout: timeout},
		logger:  logg,
	}

	logg.Info(ctx, "social publish client initialized")
	return c, nil
}

type publishRequest struct {
	Platform  string   `json:"platform"`
	AccountID string   `json:"accountId"`
	Token     string   `json:"token"`
	Caption   string   `json:"caption"`
	MediaURLs []string `json:"mediaUrls,omitempty"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Publish delivers one post to one platform and returns the platform's post id.
func (c *Client) Publish(ctx context.Context, params PublishParams) (*PublishResult, error) {
	if !params.Platform.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported platform %q", params.Platform))
	}

	payload := publishRequest{
		Platform:  params.Platform.String(),
		AccountID: params.ExternalAccountID,
		Token:     params.AccessToken,
		Caption:   params.Caption,
		MediaURLs: params.MediaURLs,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode publish request")
	}

	url := fmt.Sprintf("%s/v1/publish", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build publish request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.log(ctx, "request", params.Platform, nil)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log(ctx, "error", params.Platform, err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("publish to %s failed", params.Platform))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read publish response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := c.errorFromResponse(resp.StatusCode, raw)
		c.log(ctx, "error", params.Platform, err)
		return nil, err
	}

	var result PublishResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode publish response")
	}
	if result.ExternalID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "publish response missing external id")
	}

	ctxWithID := c.logger.WithField(ctx, "external_id", result.ExternalID)
	c.log(ctxWithID, "response", params.Platform, nil)
	return &result, nil
}

// errorFromResponse surfaces the service's message field verbatim so the
// processor can persist it into the job's error column.
func (c *Client) errorFromResponse(status int, raw []byte) error {
	message := strings.TrimSpace(string(raw))
	var parsed errorResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Message != "" {
		message = parsed.Message
	}
	if message == "" {
		message = fmt.Sprintf("publish service returned status %d", status)
	}
	code := pkgerrors.CodeDependency
	if status >= 400 && status < 500 {
		code = pkgerrors.CodeValidation
	}
	return pkgerrors.New(code, message)
}

func (c *Client) log(ctx context.Context, phase string, platform enums.Platform, err error) {
	if c == nil || c.logger == nil {
		return
	}
	ctx = c.logger.WithFields(ctx, map[string]any{
		"operation": "publish",
		"phase":     phase,
		"platform":  platform.String(),
	})
	if phase == "error" {
		c.logger.Error(ctx, "social publish error", err)
		return
	}
	c.logger.Info(ctx, fmt.Sprintf("social publish %s", phase))
}
