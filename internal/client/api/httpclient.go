package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/dmitrijs2005/driverportal/internal/client/models"
	"github.com/dmitrijs2005/driverportal/internal/logging"
)

const (
	RequestIDHeader = "X-Request-ID"

	loginPath = "drivers/login/"
	shiftPath = "drivers/starting-shift/"

	// cap on error bodies we are willing to read
	maxErrorBody = 64 << 10
)

type HTTPClient struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	log     logging.Logger
}

// NewHTTPClient builds a client for the API rooted at baseURL. A timeout of
// zero disables the per-request deadline.
func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) (*HTTPClient, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid api base url %q: scheme must be http or https", baseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	return &HTTPClient{
		base:    base,
		http:    &http.Client{Jar: jar},
		timeout: timeout,
		log:     log.With("module", "api"),
	}, nil
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) error {
	return c.do(ctx, http.MethodPost, loginPath, nil, creds.Normalize(), nil)
}

func (c *HTTPClient) ListShifts(ctx context.Context, page int) (*models.FormListResponse, error) {
	if page < 1 {
		page = 1
	}
	q := url.Values{"page": {strconv.Itoa(page)}}

	var out models.FormListResponse
	if err := c.do(ctx, http.MethodGet, shiftPath, q, nil, &out); err != nil {
		return nil, err
	}
	if out.Results == nil {
		out.Results = []models.SubmittedFormRecord{}
	}
	return &out, nil
}

func (c *HTTPClient) GetShift(ctx context.Context, id string) (*models.SubmittedFormRecord, error) {
	var out models.SubmittedFormRecord
	if err := c.do(ctx, http.MethodGet, shiftItemPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreateShift(ctx context.Context, form models.StatusForm) (*models.SubmittedFormRecord, error) {
	var out models.SubmittedFormRecord
	if err := c.do(ctx, http.MethodPost, shiftPath, nil, form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateShift replaces the record. Some backend versions answer with an
// empty body; the sent form is returned in that case.
func (c *HTTPClient) UpdateShift(ctx context.Context, id string, form models.StatusForm) (*models.SubmittedFormRecord, error) {
	out := models.SubmittedFormRecord{ID: models.FlexString(id), StatusForm: form}
	if err := c.do(ctx, http.MethodPut, shiftItemPath(id), nil, form, &out); err != nil && !errors.Is(err, errEmptyBody) {
		return nil, err
	}
	return &out, nil
}

var errEmptyBody = errors.New("empty response body")

func shiftItemPath(id string) string {
	return shiftPath + url.PathEscape(id) + "/"
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u := c.base.ResolveReference(&url.URL{Path: path})
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "backend request failed", "method", method, "path", path, "request_id", reqID, "error", err)
		return mapTransportError(err)
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "backend request", "method", method, "path", path, "status", resp.StatusCode,
		"request_id", reqID, "elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapStatus(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return mapTransportError(err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("decode %s %s response: %w", method, path, errEmptyBody)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func mapTransportError(err error) error {
	// the caller gave up; that is not the backend's fault
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func mapStatus(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	msg := http.StatusText(resp.StatusCode)
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		switch {
		case payload.Message != "":
			msg = payload.Message
		case payload.Detail != "":
			msg = payload.Detail
		}
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
