package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wallet_vote/internal/logger"

	"github.com/google/uuid"
)

const (
	pathCategories = "/vote/categories"
	pathCandidates = "/vote/candidates"
	pathCheck      = "/vote/check"
	pathSubmit     = "/vote/submit"

	maxErrorBody = 64 << 10
)

// ErrInvalidBaseURL indicates the configured backend URL cannot be used.
var ErrInvalidBaseURL = errors.New("invalid API base URL")

// Gateway is the typed boundary to the vote backend.
type Gateway interface {
	FetchCategories(ctx context.Context) ([]Category, error)
	FetchCandidates(ctx context.Context) ([]Candidate, error)
	FetchVotesForAddress(ctx context.Context, address string) ([]VoteRecord, error)
	SubmitVote(ctx context.Context, record VoteRecord) (bool, error)
}

// Client implements Gateway over HTTP. Nothing is cached: every call reaches
// the backend.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	log     logger.Logger
}

var _ Gateway = (*Client)(nil)

// NewClient creates a Client for baseURL. A positive timeout bounds each request.
func NewClient(baseURL string, timeout time.Duration, log logger.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: timeout,
		log:     log,
	}, nil
}

// FetchCategories returns the ordered category list.
func (c *Client) FetchCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.do(ctx, http.MethodGet, pathCategories, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Category{}
	}
	return out, nil
}

// FetchCandidates returns the ordered candidate list.
func (c *Client) FetchCandidates(ctx context.Context) ([]Candidate, error) {
	var out []Candidate
	if err := c.do(ctx, http.MethodGet, pathCandidates, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Candidate{}
	}
	return out, nil
}

// FetchVotesForAddress returns the votes the backend holds for address. An
// address without votes yields an empty slice.
func (c *Client) FetchVotesForAddress(ctx context.Context, address string) ([]VoteRecord, error) {
	var out VoteCheckResult
	path := pathCheck + "?address=" + url.QueryEscape(address)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out.Votes == nil {
		return []VoteRecord{}, nil
	}
	return out.Votes, nil
}

// SubmitVote posts record. A backend rejection returns false with a nil error;
// a request that produced no response at all returns false and the
// TransportError. Callers must treat both as "not accepted".
func (c *Client) SubmitVote(ctx context.Context, record VoteRecord) (bool, error) {
	c.log.Debug("Submitting vote", "module", "api", "address", record.Addr,
		"category", record.CategorySlug, "candidate", record.CandidateSlug)

	err := c.do(ctx, http.MethodPost, pathSubmit, record, nil)
	if err == nil {
		return true, nil
	}
	if IsNetworkFault(err) {
		return false, err
	}
	c.log.Warn("Vote rejected by backend", "module", "api", "error", err,
		"category", record.CategorySlug, "candidate", record.CandidateSlug)
	return false, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("API request failed", "module", "api", "method", method, "path", path,
			"request_id", requestID, "error", err)
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		te := &TransportError{Status: resp.StatusCode, Detail: decodeDetail(resp.Body)}
		c.log.Error("API error", "module", "api", "method", method, "path", path,
			"status", resp.StatusCode, "request_id", requestID, "detail", detailString(te.Detail))
		return te
	}

	if resp.StatusCode == http.StatusNoContent || out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &TransportError{Status: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// decodeDetail decodes an error body as JSON, returning nil when it is not.
// An object carrying a "detail" member yields that member, anything else the
// whole payload.
func decodeDetail(r io.Reader) any {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var detail any
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil
	}
	if obj, ok := detail.(map[string]any); ok {
		if d, ok := obj["detail"]; ok {
			return d
		}
	}
	return detail
}

func detailString(detail any) string {
	if detail == nil {
		return "null"
	}
	raw, err := json.Marshal(detail)
	if err != nil {
		return fmt.Sprint(detail)
	}
	return string(raw)
}
