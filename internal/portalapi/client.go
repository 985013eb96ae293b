// Package portalapi is the REST client for the MemberHub backend. It owns
// the wire contract (paths, request/response shapes) and the mapping of
// transport failures onto the client error taxonomy. Bearer-token
// injection happens here, at the transport layer; callers never build
// Authorization headers themselves.
package portalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/memberhub/memberhub/internal/member"
)

// TokenSource yields the current session token, or "" when no session
// exists. Wired to the session store's persisted credential.
type TokenSource func() string

// Client talks to the MemberHub REST API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying http.Client, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a Client for the given base URL. tokens may be nil for a
// client that only ever logs in.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		tokens:  tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type loginResponse struct {
	Message      string `json:"message"`
	SessionToken string `json:"session_token"`
}

// ExchangeCredentials performs POST /login and returns the issued session
// token. A 2xx response without a session_token field is reported as
// ErrMalformedResponse.
func (c *Client) ExchangeCredentials(ctx context.Context, user, password string) (string, error) {
	body := map[string]string{"user": user, "password": password}
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/login", body, false, nil, &resp); err != nil {
		return "", err
	}
	if resp.SessionToken == "" {
		return "", fmt.Errorf("%w: login response missing session_token", ErrMalformedResponse)
	}
	return resp.SessionToken, nil
}

// FetchProfile performs GET /profile/me for the current session.
func (c *Client) FetchProfile(ctx context.Context) (member.Record, error) {
	var rec member.Record
	if err := c.do(ctx, http.MethodGet, "/profile/me", nil, true, nil, &rec); err != nil {
		return member.Record{}, err
	}
	return rec, nil
}

// GroupMembers performs GET /members/my_group and returns the ordered list.
func (c *Client) GroupMembers(ctx context.Context) ([]member.Record, error) {
	var records []member.Record
	if err := c.do(ctx, http.MethodGet, "/members/my_group", nil, true, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

type updateResponse struct {
	Member member.Record `json:"member"`
}

// UpdateMember performs PUT /admin/members/{id} with a partial record.
func (c *Client) UpdateMember(ctx context.Context, id int, patch member.Patch) (member.Record, error) {
	var resp updateResponse
	path := fmt.Sprintf("/admin/members/%d", id)
	if err := c.do(ctx, http.MethodPut, path, patch, true, nil, &resp); err != nil {
		return member.Record{}, err
	}
	if resp.Member.ID == 0 {
		return member.Record{}, fmt.Errorf("%w: update response missing member", ErrMalformedResponse)
	}
	return resp.Member, nil
}

type addMemberResponse struct {
	MemberID int `json:"member_id"`
}

// AddMember performs POST /admin/members. Each call carries a fresh
// Idempotency-Key so an accidental retry cannot create a duplicate.
func (c *Client) AddMember(ctx context.Context, name, email string) (int, error) {
	body := map[string]string{"name": name, "email": email}
	headers := map[string]string{"Idempotency-Key": uuid.NewString()}
	var resp addMemberResponse
	if err := c.do(ctx, http.MethodPost, "/admin/members", body, true, headers, &resp); err != nil {
		return 0, err
	}
	if resp.MemberID == 0 {
		return 0, fmt.Errorf("%w: add response missing member_id", ErrMalformedResponse)
	}
	return resp.MemberID, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

// do executes one request and decodes the response into out. Non-2xx
// statuses become *ServerRejectedError; request transport failures become
// ErrNetworkUnreachable.
func (c *Client) do(ctx context.Context, method, path string, body any, authed bool, headers map[string]string, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed && c.tokens != nil {
		if token := c.tokens(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var rejection errorResponse
		_ = json.Unmarshal(raw, &rejection)
		return &ServerRejectedError{Status: resp.StatusCode, Message: rejection.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
