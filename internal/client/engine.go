// Package client implements the HTTP client for the remote audit engine.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"kpiauditor/internal/domain"
)

// Config holds configuration for the engine client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// EngineClient talks to the remote audit engine over HTTP.
type EngineClient struct {
	client  *resty.Client
	baseURL string
}

// NewEngineClient creates a new engine client.
// Parameters:
//   - cfg: client configuration; BaseURL is required.
// Returns:
//   - *EngineClient: initialized client.
func NewEngineClient(cfg *Config) *EngineClient {
	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	client.SetTimeout(timeout)

	return &EngineClient{
		client:  client,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
	}
}

type startRequest struct {
	CollegeName string `json:"college_name"`
}

type startResponse struct {
	AuditID string `json:"audit_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

type listResponse struct {
	Audits []domain.AuditListEntry `json:"audits"`
	Count  int                     `json:"count"`
}

// StartAudit submits a new audit for the given college.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - collegeName: trimmed subject name; must be non-empty.
// Returns:
//   - string: the engine-assigned audit id.
//   - error: ErrEmptyCollegeName or a *TransportError.
func (c *EngineClient) StartAudit(ctx context.Context, collegeName string) (string, error) {
	if strings.TrimSpace(collegeName) == "" {
		return "", ErrEmptyCollegeName
	}

	url := c.baseURL + "/api/audit/start"
	var result startResponse
	var apiErr errorResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(startRequest{CollegeName: collegeName}).
		SetResult(&result).
		SetError(&apiErr).
		Post(url)
	if err != nil {
		return "", &TransportError{Op: "start", URL: url, Err: err}
	}
	if resp.IsError() {
		return "", &TransportError{Op: "start", URL: url, Status: resp.StatusCode(), Err: apiError(&apiErr, resp)}
	}
	if result.AuditID == "" {
		return "", &TransportError{Op: "start", URL: url, Status: resp.StatusCode(), Err: errors.New("response missing audit_id")}
	}
	return result.AuditID, nil
}

// GetAudit fetches the full snapshot of an audit. Safe to call redundantly;
// the engine treats it as a pure read.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: the audit id.
// Returns:
//   - *domain.AuditJob: the current snapshot.
//   - error: a *TransportError on failure.
func (c *EngineClient) GetAudit(ctx context.Context, id string) (*domain.AuditJob, error) {
	url := c.baseURL + "/api/audit/" + id
	var job domain.AuditJob
	var apiErr errorResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&job).
		SetError(&apiErr).
		Get(url)
	if err != nil {
		return nil, &TransportError{Op: "status", URL: url, Err: err}
	}
	if resp.IsError() {
		return nil, &TransportError{Op: "status", URL: url, Status: resp.StatusCode(), Err: apiError(&apiErr, resp)}
	}
	return &job, nil
}

// CancelAudit asks the engine to stop an in-flight audit.
//
// An engine that already finalized the audit answers with a structured reason
// of "already_terminal"; that case comes back as ErrAlreadyTerminal so
// callers can treat the race as benign. The reason field is checked first and
// the 409 status only as a fallback for engines that predate it.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: the audit id.
// Returns:
//   - error: nil, ErrAlreadyTerminal, or a *TransportError.
func (c *EngineClient) CancelAudit(ctx context.Context, id string) error {
	url := c.baseURL + "/api/audit/" + id + "/cancel"
	var apiErr errorResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetError(&apiErr).
		Post(url)
	if err != nil {
		return &TransportError{Op: "cancel", URL: url, Err: err}
	}
	if resp.IsError() {
		if apiErr.Reason == "already_terminal" {
			return ErrAlreadyTerminal
		}
		// Reasonless 409s come from engines that predate the reason field.
		// A 409 carrying some other reason is a real failure.
		if apiErr.Reason == "" && resp.StatusCode() == http.StatusConflict {
			return ErrAlreadyTerminal
		}
		return &TransportError{Op: "cancel", URL: url, Status: resp.StatusCode(), Err: apiError(&apiErr, resp)}
	}
	return nil
}

// ListAudits fetches the most recent audits, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum entries to return; the engine defaults it when <= 0.
// Returns:
//   - []domain.AuditListEntry: the history entries.
//   - error: a *TransportError on failure.
func (c *EngineClient) ListAudits(ctx context.Context, limit int) ([]domain.AuditListEntry, error) {
	url := c.baseURL + "/api/audits"
	req := c.client.R().SetContext(ctx)
	if limit > 0 {
		req.SetQueryParam("limit", fmt.Sprintf("%d", limit))
	}
	var result listResponse
	var apiErr errorResponse
	resp, err := req.SetResult(&result).SetError(&apiErr).Get(url)
	if err != nil {
		return nil, &TransportError{Op: "list", URL: url, Err: err}
	}
	if resp.IsError() {
		return nil, &TransportError{Op: "list", URL: url, Status: resp.StatusCode(), Err: apiError(&apiErr, resp)}
	}
	return result.Audits, nil
}

// apiError turns an engine error payload into a readable cause, falling back
// to the raw body when the payload was not the expected shape.
func apiError(apiErr *errorResponse, resp *resty.Response) error {
	if apiErr != nil && apiErr.Error != "" {
		return errors.New(apiErr.Error)
	}
	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = resp.Status()
	}
	return errors.New(body)
}
