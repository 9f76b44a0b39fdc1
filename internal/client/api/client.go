// Package api implements the HTTP client for the Postscript backend. It
// mirrors the server's JSON envelope and carries the session token and the
// caller's secret share as request headers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/postscript/internal/common"
)

type Client struct {
	baseURL    string
	httpClient *http.Client

	token string
	share string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetSession stores the bearer token used on authenticated calls.
func (c *Client) SetSession(token string) { c.token = token }

// SetShare stores the caller's secret share for payload calls. The share
// stays in memory only.
func (c *Client) SetShare(share string) { c.share = share }

// HasSession reports whether a session token is set.
func (c *Client) HasSession() bool { return c.token != "" }

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set(common.AuthHeaderName, "Bearer "+c.token)
	}
	if c.share != "" {
		req.Header.Set(common.ShareHeaderName, c.share)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	if !env.Success {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return common.ErrorUnauthorized
		case http.StatusNotFound:
			return common.ErrorNotFound
		default:
			return fmt.Errorf("server error: %s", env.Error)
		}
	}

	if out != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

// --- DTOs, mirroring the server API ---

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

type Session struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
	User      User   `json:"user"`
}

type Asset struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Name       string      `json:"name"`
	Data       string      `json:"data,omitempty"`
	Hint       *string     `json:"hint,omitempty"`
	Recipients []Recipient `json:"recipients,omitempty"`
	CreatedAt  string      `json:"createdAt"`
	UpdatedAt  string      `json:"updatedAt"`
}

type Recipient struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Relationship *string `json:"relationship,omitempty"`
}

type HeartbeatStatus struct {
	Status          string `json:"status"`
	LastHeartbeat   string `json:"lastHeartbeat"`
	RemainingDays   int    `json:"remainingDays"`
	NextDue         string `json:"nextDue"`
	FinalDeadline   string `json:"finalDeadline"`
	Frequency       string `json:"frequency"`
	GracePeriodDays int    `json:"gracePeriodDays"`
}

type HeartbeatConfig struct {
	Frequency       string `json:"frequency"`
	GracePeriodDays int    `json:"gracePeriodDays"`
}

// --- API calls ---

// CreateSession signs in (creating the account on first use) and stores the
// returned token on the client.
func (c *Client) CreateSession(ctx context.Context, email string) (*Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/api/auth/session", map[string]string{"email": email}, &s)
	if err != nil {
		return nil, err
	}
	c.token = s.Token
	return &s, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) CheckIn(ctx context.Context) (string, error) {
	var out struct {
		LastHeartbeat string `json:"lastHeartbeat"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/heartbeat", nil, &out); err != nil {
		return "", err
	}
	return out.LastHeartbeat, nil
}

func (c *Client) HeartbeatStatus(ctx context.Context) (*HeartbeatStatus, error) {
	var s HeartbeatStatus
	if err := c.do(ctx, http.MethodGet, "/api/heartbeat/status", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) UpdateHeartbeatConfig(ctx context.Context, frequency *string, gracePeriodDays *int) (*HeartbeatConfig, error) {
	body := map[string]any{}
	if frequency != nil {
		body["frequency"] = *frequency
	}
	if gracePeriodDays != nil {
		body["gracePeriodDays"] = *gracePeriodDays
	}

	var cfg HeartbeatConfig
	if err := c.do(ctx, http.MethodPut, "/api/heartbeat/config", body, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Client) CreateAsset(ctx context.Context, assetType, name, data string, hint *string, recipientIDs []string) (*Asset, error) {
	body := map[string]any{"type": assetType, "name": name, "data": data}
	if hint != nil {
		body["hint"] = *hint
	}
	if len(recipientIDs) > 0 {
		body["recipientIds"] = recipientIDs
	}

	var a Asset
	if err := c.do(ctx, http.MethodPost, "/api/assets", body, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) GetAsset(ctx context.Context, id string) (*Asset, error) {
	var a Asset
	if err := c.do(ctx, http.MethodGet, "/api/assets/"+id, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) ListAssets(ctx context.Context) ([]Asset, error) {
	var out []Asset
	if err := c.do(ctx, http.MethodGet, "/api/assets", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateRecipient(ctx context.Context, name, email string, relationship *string) (*Recipient, error) {
	body := map[string]any{"name": name, "email": email}
	if relationship != nil {
		body["relationship"] = *relationship
	}

	var r Recipient
	if err := c.do(ctx, http.MethodPost, "/api/recipients", body, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) ListRecipients(ctx context.Context) ([]Recipient, error) {
	var out []Recipient
	if err := c.do(ctx, http.MethodGet, "/api/recipients", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
