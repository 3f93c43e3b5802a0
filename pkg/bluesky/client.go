package bluesky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	apperrors "bskyscraper/pkg/errors"
	"bskyscraper/pkg/logger"
)

const userAgent = "bskyscraper/1.0"

// Client talks to a Bluesky PDS over XRPC
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     logger.Logger
}

// NewClient creates a new XRPC client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     log,
	}
}

// SetHTTPClient replaces the underlying HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// CreateSession exchanges an identifier and app password for a session
func (c *Client) CreateSession(ctx context.Context, identifier, password string) (*Session, error) {
	var session Session
	body := createSessionRequest{Identifier: identifier, Password: password}
	if err := c.postJSON(ctx, CreateSessionMethod, body, &session); err != nil {
		return nil, err
	}

	if session.AccessJwt == "" {
		return nil, apperrors.New(apperrors.ErrorTypeAuth, "createSession returned no access token")
	}

	c.logger.InfoWithFields("Session created", map[string]interface{}{
		"handle": session.Handle,
		"did":    session.DID,
	})
	return &session, nil
}

// LookupDID resolves a handle to its DID
func (c *Client) LookupDID(ctx context.Context, token, handle string) (string, error) {
	params := url.Values{}
	params.Set("handle", handle)

	var out resolveHandleResponse
	if err := c.getJSON(ctx, ResolveHandleMethod, params, token, &out); err != nil {
		return "", err
	}
	if out.DID == "" {
		return "", apperrors.New(apperrors.ErrorTypeParsing, "resolveHandle response has no did")
	}
	return out.DID, nil
}

// ResolveHandle returns the DID for handle, or handle itself when it is
// already a DID or cannot be resolved.
func (c *Client) ResolveHandle(ctx context.Context, token, handle string) string {
	if handle == "" || IsDID(handle) {
		return handle
	}

	did, err := c.LookupDID(ctx, token, handle)
	if err != nil {
		c.logger.WithError(err).WarnWithFields("Error resolving handle, using it unchanged", map[string]interface{}{
			"handle": handle,
		})
		return handle
	}
	return did
}

// PrepareQuery normalizes params for searchPosts: mentions and author are
// resolved to DIDs and the limit is clamped.
func (c *Client) PrepareQuery(ctx context.Context, token string, params QueryParams) QueryParams {
	params.Mentions = c.ResolveHandle(ctx, token, params.Mentions)
	params.Author = c.ResolveHandle(ctx, token, params.Author)
	params.Limit = ClampLimit(params.Limit)

	c.logger.DebugWithFields("Generated query parameters", params.Fields())
	return params
}

// SearchPosts fetches one page of search results
func (c *Client) SearchPosts(ctx context.Context, token string, params QueryParams) (*SearchResponse, error) {
	var resp SearchResponse
	if err := c.getJSON(ctx, SearchPostsMethod, params.Values(), token, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) getJSON(ctx context.Context, method string, params url.Values, token string, target interface{}) error {
	endpoint := XRPCURL(c.baseURL, method)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeUnknown, "failed to create request", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.do(req, method, target)
}

func (c *Client) postJSON(ctx context.Context, method string, body, target interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeUnknown, "failed to encode request body", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, XRPCURL(c.baseURL, method), bytes.NewReader(payload))
	if err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeUnknown, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, method, target)
}

// do sends req, checks the status and decodes the JSON body into target
func (c *Client) do(req *http.Request, method string, target interface{}) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).ErrorWithFields("XRPC request failed", map[string]interface{}{
			"method":   method,
			"duration": time.Since(start),
		})
		return apperrors.Wrap(apperrors.ErrorTypeNetwork, fmt.Sprintf("%s request failed", method), err)
	}
	defer resp.Body.Close()

	logger.LogRequest(c.logger, req.Method, method, resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeNetwork, "failed to read response body", err)
	}

	if err := checkResponseStatus(resp.StatusCode, body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, target); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"method":       method,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return &apperrors.Error{
			Type:    apperrors.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse %s response", method),
			Code:    resp.StatusCode,
			Cause:   err,
		}
	}

	return nil
}

// checkResponseStatus turns a non-2xx response into a typed error, using the
// XRPC error body for the message when present.
func checkResponseStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	msg := http.StatusText(statusCode)
	var xe xrpcError
	if json.Unmarshal(body, &xe) == nil && xe.Error != "" {
		msg = xe.Error
		if xe.Message != "" {
			msg += ": " + xe.Message
		}
	}
	return apperrors.FromStatus(statusCode, msg)
}
