package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"storeadmin/internal/logging"
	"storeadmin/internal/models"
	"storeadmin/internal/repositories/credentials"
)

// HTTPClient talks JSON over REST to the storefront API.
//
// Credential handling: the access token lives in the credentials slot and is
// attached as "Authorization: Bearer <token>" to every authenticated call
// (an empty slot sends the request unauthenticated). The refresh token
// travels as an HTTP cookie set by /auth/login; the cookie jar carries it to
// /auth/refresh automatically.
//
// A 401 response triggers at most one refresh-and-retry per logical request.
// Concurrent 401s from independent requests share a single in-flight refresh
// through the singleflight group.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	creds   credentials.Repository
	refresh singleflight.Group
	log     logging.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, creds credentials.Repository, log logging.Logger) (*HTTPClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar error: %w", err)
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout, Jar: jar},
		creds:   creds,
		log:     log.With("component", "api"),
	}, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// --- wire shapes ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// authResponse is returned by /auth/login and /auth/refresh.
type authResponse struct {
	AccessToken string      `json:"accessToken"`
	User        models.User `json:"user"`
}

type userResponse struct {
	User models.User `json:"user"`
}

// apiError is the error body some endpoints return on validation failures.
type apiError struct {
	Errors []struct {
		Msg string `json:"msg"`
	} `json:"errors"`
}

// --- auth endpoints ---

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*models.User, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Username: username, Password: password}, &resp, false)
	if err != nil {
		return nil, err
	}
	if err := c.creds.Set(ctx, resp.AccessToken); err != nil {
		return nil, fmt.Errorf("credential saving error: %w", err)
	}
	return &resp.User, nil
}

func (c *HTTPClient) Register(ctx context.Context, username, email, password, avatarURL string) (*models.User, error) {
	var resp userResponse
	req := registerRequest{Username: username, Email: email, Password: password, AvatarURL: avatarURL}
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp, false); err != nil {
		return nil, err
	}
	if resp.User == (models.User{}) {
		// 201/204 without a body is also a success.
		return nil, nil
	}
	return &resp.User, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, true)
}

// Refresh re-establishes the session from the persisted refresh cookie and
// stores the rotated access token. Any failure surfaces as ErrSessionExpired.
func (c *HTTPClient) Refresh(ctx context.Context) (*models.User, error) {
	res, err := c.refreshSession(ctx)
	if err != nil {
		return nil, err
	}
	u := res.User
	return &u, nil
}

func (c *HTTPClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != "OK" {
		return ErrUnavailable
	}
	return nil
}

// --- catalog endpoints ---

func (c *HTTPClient) ListProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, http.MethodPost, "/products", p, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateProduct(ctx context.Context, p models.Product) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/products/%d", p.ID), p, nil, true)
}

func (c *HTTPClient) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, nil, true)
}

func (c *HTTPClient) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CreateCategory(ctx context.Context, cat models.Category) (*models.Category, error) {
	var out models.Category
	if err := c.do(ctx, http.MethodPost, "/categories", cat, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateCategory(ctx context.Context, cat models.Category) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/categories/%d", cat.ID), cat, nil, true)
}

func (c *HTTPClient) DeleteCategory(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/categories/%d", id), nil, nil, true)
}

// --- request plumbing ---

// do dispatches one logical request. For authenticated calls it attaches the
// stored bearer token, refreshing it up front when the JWT is already past
// its exp. A 401 response is retried exactly once after a refresh; whatever
// the retried request returns, success or a second failure, is returned
// as-is. The retry budget is a local variable, so concurrent requests each
// carry their own.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("request encoding error: %w", err)
		}
	}

	token := ""
	if authed {
		var err error
		if token, err = c.creds.Get(ctx); err != nil {
			return fmt.Errorf("credential loading error: %w", err)
		}
		if token != "" && tokenExpired(token) {
			// The token is provably stale; refresh now instead of
			// provoking a guaranteed 401 round trip.
			res, err := c.refreshSession(ctx)
			if err != nil {
				return err
			}
			token = res.AccessToken
		}
	}

	resp, err := c.send(ctx, method, path, payload, token)
	if err != nil {
		return err
	}

	if authed && resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		res, rerr := c.refreshSession(ctx)
		if rerr != nil {
			return rerr
		}
		c.log.Debug(ctx, "token refreshed, retrying request", "method", method, "path", path)
		if resp, err = c.send(ctx, method, path, payload, res.AccessToken); err != nil {
			return err
		}
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapStatus(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("response decoding error: %w", err)
	}
	return nil
}

func (c *HTTPClient) send(ctx context.Context, method, path string, payload []byte, token string) (*http.Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

// refreshSession calls /auth/refresh and persists the rotated access token.
// Concurrent callers are coalesced into one in-flight attempt; every waiter
// receives the same result.
func (c *HTTPClient) refreshSession(ctx context.Context) (*authResponse, error) {
	v, err, _ := c.refresh.Do("refresh", func() (any, error) {
		resp, err := c.send(ctx, http.MethodPost, "/auth/refresh", nil, "")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
		}
		defer drain(resp)

		if resp.StatusCode != http.StatusOK {
			return nil, ErrSessionExpired
		}

		var res authResponse
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
		}
		if err := c.creds.Set(ctx, res.AccessToken); err != nil {
			return nil, fmt.Errorf("credential saving error: %w", err)
		}
		return &res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*authResponse), nil
}

// mapStatus folds a non-2xx response into the package sentinels, keeping
// any server-provided validation reason.
func mapStatus(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrAlreadyExists
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		var ae apiError
		if json.Unmarshal(body, &ae) == nil && len(ae.Errors) > 0 && ae.Errors[0].Msg != "" {
			return fmt.Errorf("%w: %s", ErrValidation, ae.Errors[0].Msg)
		}
		return ErrValidation
	}
	if resp.StatusCode >= 500 {
		return ErrUnavailable
	}
	return fmt.Errorf("unexpected status: %s", resp.Status)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
