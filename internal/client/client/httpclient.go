package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/ulak/internal/client/models"
	"github.com/dmitrijs2005/ulak/internal/common"
)

// TokenSource yields the current bearer credential; "" means none.
type TokenSource interface {
	Token() string
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func() string

func (f TokenSourceFunc) Token() string { return f() }

// bearerTransport attaches the stored credential to every outgoing request.
type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := ""
	if t.tokens != nil {
		token = t.tokens.Token()
	}
	if token == "" {
		return t.base.RoundTrip(req)
	}

	r := req.Clone(req.Context())
	r.Header.Set(common.AuthorizationHeader, common.BearerScheme+" "+token)
	return t.base.RoundTrip(r)
}

// HTTPClient talks to the REST backend.
type HTTPClient struct {
	serverURL string
	apiURL    string
	http      *http.Client
}

// NewHTTPClient builds a client for serverURL (scheme and host, e.g.
// "http://localhost:8000") with every API route under apiPrefix ("/api").
// timeout bounds each request including reading its body; zero disables it.
func NewHTTPClient(serverURL, apiPrefix string, timeout time.Duration, tokens TokenSource) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", serverURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q: missing host", serverURL)
	}

	prefix := strings.Trim(apiPrefix, "/")
	api := u.String()
	if prefix != "" {
		api += "/" + prefix
	}

	return &HTTPClient{
		serverURL: u.String(),
		apiURL:    api,
		http: &http.Client{
			Timeout:   timeout,
			Transport: &bearerTransport{base: http.DefaultTransport, tokens: tokens},
		},
	}, nil
}

func (c *HTTPClient) newRequest(ctx context.Context, method, rawURL string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// send performs req and returns the response when it is 2xx. Transport
// failures map to common.ErrUnavailable, non-2xx responses to *APIError.
func (c *HTTPClient) send(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, newAPIError(resp)
	}
	return resp, nil
}

// do sends a JSON request to an API path and decodes the JSON response into
// out unless out is nil.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, c.apiURL+path, body)
	if err != nil {
		return err
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", common.ErrServer, err)
	}
	return nil
}

func sessionPath(id string, action string) string {
	p := "/transfers/sessions/" + url.PathEscape(id)
	if action != "" {
		p += "/" + action
	}
	return p
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", models.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: login response without access token", common.ErrServer)
	}
	return &resp, nil
}

func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/register", req, nil)
}

func (c *HTTPClient) ForgotQuestion(ctx context.Context, email string) (string, error) {
	var resp models.ForgotQuestionResponse
	if err := c.do(ctx, http.MethodPost, "/auth/forgot-password/question", models.ForgotQuestionRequest{Email: email}, &resp); err != nil {
		return "", err
	}
	return resp.SecurityQuestion, nil
}

func (c *HTTPClient) ForgotReset(ctx context.Context, email, securityAnswer string) (string, error) {
	var resp models.ForgotResetResponse
	req := models.ForgotResetRequest{Email: email, SecurityAnswer: securityAnswer}
	if err := c.do(ctx, http.MethodPost, "/auth/forgot-password/reset", req, &resp); err != nil {
		return "", err
	}
	return resp.NewPassword, nil
}

func (c *HTTPClient) ChangePassword(ctx context.Context, oldPassword, newPassword, newPasswordConfirm string) error {
	req := models.ChangePasswordRequest{
		OldPassword:        oldPassword,
		NewPassword:        newPassword,
		NewPasswordConfirm: newPasswordConfirm,
	}
	return c.do(ctx, http.MethodPost, "/auth/change-password", req, nil)
}

func (c *HTTPClient) ListSessions(ctx context.Context, limit, offset int) ([]models.TransferSession, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var items []models.TransferSession
	if err := c.do(ctx, http.MethodGet, "/transfers/sessions?"+q.Encode(), nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.TransferSession{}
	}
	return items, nil
}

func (c *HTTPClient) CreateSession(ctx context.Context, req models.CreateSessionRequest) (string, error) {
	var resp models.CreateSessionResponse
	if err := c.do(ctx, http.MethodPost, "/transfers/sessions", req, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("%w: transfer id missing", common.ErrServer)
	}
	return resp.ID, nil
}

// UploadFile streams content as the "file" part of a multipart form.
func (c *HTTPClient) UploadFile(ctx context.Context, sessionID, fileName string, content io.Reader) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	// bodyErr carries a failure reading content, which the transport would
	// otherwise report as an unreachable server.
	bodyErr := make(chan error, 1)
	go func() {
		part, err := mw.CreateFormFile("file", fileName)
		if err == nil {
			_, err = io.Copy(part, content)
			if err != nil && !errors.Is(err, io.ErrClosedPipe) {
				bodyErr <- err
			}
		}
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+sessionPath(sessionID, "upload"), pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.send(req)
	if err != nil {
		_ = pr.CloseWithError(err)
		select {
		case readErr := <-bodyErr:
			return fmt.Errorf("read %s: %w", fileName, readErr)
		default:
			return err
		}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *HTTPClient) Accept(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, sessionPath(sessionID, "accept"), nil, nil)
}

func (c *HTTPClient) Reject(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, sessionPath(sessionID, "reject"), nil, nil)
}

func (c *HTTPClient) Cancel(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, sessionPath(sessionID, "cancel"), nil, nil)
}

func (c *HTTPClient) Download(ctx context.Context, sessionID string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+sessionPath(sessionID, "download"), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Ping probes the backend health endpoint, which lives outside the API prefix.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, c.serverURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.send(req)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("%w: %v", common.ErrUnavailable, apiErr)
		}
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Close releases idle connections.
func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
