// Package hh is the client for the HH job-board API. It owns per-request
// timeouts, retry on transport errors, and global request pacing; callers
// only see "succeeded" or "failed".
package hh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hhagent-engine/internal/domain"
)

const DefaultBaseURL = "https://api.hh.ru"

// StatusError wraps non-2xx answers so handlers can distinguish them from
// transport failures.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hh: status %d: %s", e.Code, e.Body)
}

type Config struct {
	BaseURL        string
	OAuthURL       string // token endpoint host, defaults to https://hh.ru
	ClientID       string
	ClientSecret   string
	UserAgent      string
	RetryCount     int
	RetryDelay     time.Duration
	RequestsPerSec float64
	Burst          int
	Timeout        time.Duration
}

type Client struct {
	cfg     Config
	hc      *http.Client
	limiter *rate.Limiter
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.OAuthURL == "" {
		cfg.OAuthURL = "https://hh.ru"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "hhagent-engine/1.0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(cfg.RequestsPerSec)
	}
	return &Client{
		cfg:     cfg,
		hc:      &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
	}
}

// do issues one request with pacing and retry. Transport errors (timeouts,
// connection resets) are retried with a linearly growing pause; HTTP status
// errors are not retried.
func (c *Client) do(ctx context.Context, method, rawURL, token string, form url.Values) ([]byte, int, error) {
	var lastErr error

	for attempt := 0; attempt <= c.cfg.RetryCount; attempt++ {
		if attempt > 0 {
			wait := c.cfg.RetryDelay * time.Duration(attempt)
			log.Printf("[hh] retrying %s in %s (attempt %d/%d)", rawURL, wait, attempt, c.cfg.RetryCount)
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(wait):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, err
		}

		var body io.Reader
		if form != nil {
			body = strings.NewReader(form.Encode())
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
		if err != nil {
			return nil, 0, err
		}
		req.Header.Set("User-Agent", c.cfg.UserAgent)
		if form != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		res, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			lastErr = err
			continue
		}

		b, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
		res.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return b, res.StatusCode, nil
	}

	return nil, 0, fmt.Errorf("hh: %s %s failed after %d retries: %w",
		method, rawURL, c.cfg.RetryCount, lastErr)
}

func (c *Client) getJSON(ctx context.Context, rawURL, token string, out any) error {
	b, code, err := c.do(ctx, http.MethodGet, rawURL, token, nil)
	if err != nil {
		return err
	}
	if code < 200 || code > 299 {
		return &StatusError{Code: code, Body: truncate(string(b), 256)}
	}
	if out != nil {
		if err := json.Unmarshal(b, out); err != nil {
			return fmt.Errorf("hh: decode %s: %w", rawURL, err)
		}
	}
	return nil
}

// Search runs a vacancy search. Failures here are fatal to the enclosing
// request; no partial result is returned.
func (c *Client) Search(ctx context.Context, token string, params url.Values) (domain.SearchPage, error) {
	if params == nil {
		params = url.Values{}
	}
	if params.Get("per_page") == "" {
		params.Set("per_page", "50")
	}
	if params.Get("page") == "" {
		params.Set("page", "0")
	}

	var resp searchResponse
	u := c.cfg.BaseURL + "/vacancies?" + params.Encode()
	if err := c.getJSON(ctx, u, token, &resp); err != nil {
		return domain.SearchPage{}, fmt.Errorf("search vacancies: %w", err)
	}
	log.Printf("[hh] search found=%d page=%d", resp.Found, resp.Page)
	return resp.toPage(), nil
}

// SearchByURL runs a saved-search URL as-is against the API.
func (c *Client) SearchByURL(ctx context.Context, token, searchURL string) (domain.SearchPage, error) {
	u, err := url.Parse(searchURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return domain.SearchPage{}, fmt.Errorf("search by url: bad url %q", searchURL)
	}
	var resp searchResponse
	if err := c.getJSON(ctx, searchURL, token, &resp); err != nil {
		return domain.SearchPage{}, fmt.Errorf("search by url: %w", err)
	}
	return resp.toPage(), nil
}

// Vacancy fetches full detail for one posting and maps it to the stored
// shape. Timestamps are left zero for the caller to fill.
func (c *Client) Vacancy(ctx context.Context, token, id string) (domain.VacancyRecord, error) {
	b, code, err := c.do(ctx, http.MethodGet, c.cfg.BaseURL+"/vacancies/"+url.PathEscape(id), token, nil)
	if err != nil {
		return domain.VacancyRecord{}, fmt.Errorf("get vacancy %s: %w", id, err)
	}
	if code < 200 || code > 299 {
		return domain.VacancyRecord{}, fmt.Errorf("get vacancy %s: %w", id,
			&StatusError{Code: code, Body: truncate(string(b), 256)})
	}

	var payload vacancyPayload
	if err := json.Unmarshal(b, &payload); err != nil {
		return domain.VacancyRecord{}, fmt.Errorf("get vacancy %s: decode: %w", id, err)
	}
	return payload.toRecord(b), nil
}

func (c *Client) Dictionaries(ctx context.Context) (json.RawMessage, error) {
	return c.rawGet(ctx, c.cfg.BaseURL+"/dictionaries", "")
}

func (c *Client) Areas(ctx context.Context) (json.RawMessage, error) {
	return c.rawGet(ctx, c.cfg.BaseURL+"/areas", "")
}

func (c *Client) SavedSearches(ctx context.Context, token string) (json.RawMessage, error) {
	return c.rawGet(ctx, c.cfg.BaseURL+"/saved_searches/vacancies?per_page=10", token)
}

func (c *Client) Resumes(ctx context.Context, token string) (json.RawMessage, error) {
	return c.rawGet(ctx, c.cfg.BaseURL+"/resumes/mine", token)
}

func (c *Client) rawGet(ctx context.Context, u, token string) (json.RawMessage, error) {
	b, code, err := c.do(ctx, http.MethodGet, u, token, nil)
	if err != nil {
		return nil, err
	}
	if code < 200 || code > 299 {
		return nil, &StatusError{Code: code, Body: truncate(string(b), 256)}
	}
	return json.RawMessage(b), nil
}

// ErrAlreadyApplied is returned when HH rejects the negotiation because an
// application already exists (or access is denied).
var ErrAlreadyApplied = errors.New("hh: already applied or access denied")

// Apply creates a negotiation for the vacancy with the given resume and
// cover message.
func (c *Client) Apply(ctx context.Context, token, vacancyID, resumeID, message string) error {
	form := url.Values{
		"vacancy_id": {vacancyID},
		"resume_id":  {resumeID},
		"message":    {message},
	}
	b, code, err := c.do(ctx, http.MethodPost, c.cfg.BaseURL+"/negotiations", token, form)
	if err != nil {
		return fmt.Errorf("apply to %s: %w", vacancyID, err)
	}
	switch {
	case code == http.StatusCreated || code == http.StatusNoContent:
		log.Printf("[hh] applied to vacancy %s", vacancyID)
		return nil
	case code == http.StatusForbidden:
		return ErrAlreadyApplied
	default:
		return fmt.Errorf("apply to %s: %w", vacancyID,
			&StatusError{Code: code, Body: truncate(string(b), 256)})
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
