// Package transport implements the single configured HTTP client every
// backend interaction goes through. It attaches bearer credentials,
// normalizes failures into the apierr taxonomy, and coordinates
// refresh-and-retry when the backend rejects a token.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dairyerp/dairyclient/internal/apierr"
)

// CredentialSource is the contract the transport consults when attaching a
// token and when recovering from an authorization failure. The session
// manager is the production implementation.
type CredentialSource interface {
	// Token returns the bearer token for the active session, if any.
	Token(ctx context.Context) (string, bool)
	// Refresh attempts to recover a usable session. It must be
	// side-effect-idempotent; when it returns false the session state has
	// been cleared and the caller must re-authenticate.
	Refresh(ctx context.Context) (string, bool)
}

// Config carries the construction-time transport options.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is a resty-backed transport with a fixed base URL and timeout.
// Safe for concurrent use.
type Client struct {
	http    *resty.Client
	creds   CredentialSource
	refresh singleflight.Group
	logger  *zap.Logger
}

// New builds a transport client. Credentials are attached separately via
// SetCredentials because the session manager itself needs the transport to
// perform logins.
func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(timeout)

	return &Client{
		http:   restyClient,
		logger: logger,
	}
}

// SetCredentials wires the session authority consulted for tokens and
// refresh. Requests sent before this is called go out unauthenticated.
func (c *Client) SetCredentials(src CredentialSource) {
	c.creds = src
}

// call describes one backend request.
type call struct {
	method string
	path   string
	query  map[string]string
	body   any
	// multipart file payload; when set, content negotiation is left to
	// resty so the multipart boundary header is generated.
	fileField string
	fileName  string
	fileData  []byte
}

// Get issues a GET and decodes the JSON response into out (when non-nil).
func (c *Client) Get(ctx context.Context, path string, query map[string]string, out any) error {
	_, err := c.execute(ctx, call{method: http.MethodGet, path: path, query: query}, out)
	return err
}

// Post issues a POST with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	_, err := c.execute(ctx, call{method: http.MethodPost, path: path, body: body}, out)
	return err
}

// Put issues a PUT with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	_, err := c.execute(ctx, call{method: http.MethodPut, path: path, body: body}, out)
	return err
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.execute(ctx, call{method: http.MethodDelete, path: path}, nil)
	return err
}

// Download issues a GET and returns the raw response body. The payload is
// opaque (receipts, spreadsheet exports) and is never decoded.
func (c *Client) Download(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	return c.execute(ctx, call{method: http.MethodGet, path: path, query: query}, nil)
}

// Upload posts a multipart file. The reader is drained up front so the
// request can be replayed by the recovery protocol.
func (c *Client) Upload(ctx context.Context, path, field, filename string, r io.Reader, out any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return &apierr.NetworkError{Err: err}
	}
	_, err = c.execute(ctx, call{
		method:    http.MethodPost,
		path:      path,
		fileField: field,
		fileName:  filename,
		fileData:  data,
	}, out)
	return err
}

// Ping probes backend reachability.
func (c *Client) Ping(ctx context.Context) error {
	return c.Get(ctx, "/test", nil, nil)
}

// execute runs one call through the recovery protocol: at most one refresh
// and one retry per originating request.
func (c *Client) execute(ctx context.Context, req call, out any) ([]byte, error) {
	requestID := uuid.NewString()

	token, hasToken := c.token(ctx)
	resp, err := c.dispatch(ctx, req, token)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("request_id", requestID),
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Error(err))
		return nil, &apierr.NetworkError{Err: err}
	}

	if resp.StatusCode() == http.StatusUnauthorized && hasToken {
		c.logger.Info("authorization rejected, attempting session refresh",
			zap.String("request_id", requestID),
			zap.String("path", req.path))

		newToken, ok := c.refreshToken(ctx, token)
		if !ok {
			return nil, apierr.ErrSessionExpired
		}

		resp, err = c.dispatch(ctx, req, newToken)
		if err != nil {
			return nil, &apierr.NetworkError{Err: err}
		}
		if resp.StatusCode() == http.StatusUnauthorized {
			return nil, apierr.ErrSessionExpired
		}
	}

	if resp.IsError() {
		httpErr := &apierr.HTTPError{
			Status:  resp.StatusCode(),
			Message: apierr.ExtractMessage(resp.Body()),
		}
		c.logger.Warn("backend returned error",
			zap.String("request_id", requestID),
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Int("status", httpErr.Status),
			zap.String("message", httpErr.Message))
		return nil, httpErr
	}

	c.logger.Debug("request completed",
		zap.String("request_id", requestID),
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", resp.StatusCode()))

	body := resp.Body()
	if out != nil && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return nil, &apierr.HTTPError{
				Status:  resp.StatusCode(),
				Message: "unexpected response format",
			}
		}
	}
	return body, nil
}

// dispatch sends a single attempt with the given token.
func (c *Client) dispatch(ctx context.Context, req call, token string) (*resty.Response, error) {
	r := c.http.R().SetContext(ctx)

	if token != "" {
		r.SetHeader("Authorization", "Bearer "+token)
	}

	if len(req.query) > 0 {
		r.SetQueryParams(req.query)
	}

	switch {
	case req.fileField != "":
		r.SetFileReader(req.fileField, req.fileName, bytes.NewReader(req.fileData))
	case req.body != nil:
		r.SetHeader("Content-Type", "application/json")
		r.SetBody(req.body)
	}

	return r.Execute(req.method, req.path)
}

func (c *Client) token(ctx context.Context) (string, bool) {
	if c.creds == nil {
		return "", false
	}
	return c.creds.Token(ctx)
}

// refreshToken runs the single-flight refresh: concurrent 401s against the
// same token share one Refresh call and all observe its outcome.
func (c *Client) refreshToken(ctx context.Context, failedToken string) (string, bool) {
	if c.creds == nil {
		return "", false
	}

	value, _, _ := c.refresh.Do(failedToken, func() (any, error) {
		token, ok := c.creds.Refresh(ctx)
		if !ok {
			return "", nil
		}
		return token, nil
	})

	token, _ := value.(string)
	return token, token != ""
}
