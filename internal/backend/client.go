// Package backend is the typed HTTP client for the analysis backend: the
// external collaborator that scores risk, raises alerts and accepts file
// uploads. The dashboard never retries; every failure is surfaced once.
package backend

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/amlwatch/dashboard/internal/domain"
)

const defaultTimeout = 30 * time.Second

// StatusError is a non-2xx backend response. The body text is the
// human-readable message surfaced to upload slots and error panels.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	body := e.Body
	if body == "" {
		body = "unknown error"
	}
	return fmt.Sprintf("backend %d: %s", e.Code, body)
}

// Client talks to the analysis backend over HTTP.
type Client struct {
	base    string
	http    *fasthttp.Client
	timeout time.Duration
	log     zerolog.Logger
}

// New creates a client for the backend at base, e.g.
// "http://localhost:8000/api/v1".
func New(base string, log zerolog.Logger) *Client {
	return &Client{
		base:    strings.TrimRight(base, "/"),
		http:    &fasthttp.Client{},
		timeout: defaultTimeout,
		log:     log,
	}
}

// Search looks up customers matching the free-text query. Backend ranking
// order is preserved.
func (c *Client) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	var results []domain.SearchResult
	path := "/customer/search?q=" + url.QueryEscape(query)
	if err := c.do(ctx, fasthttp.MethodGet, path, nil, "", &results); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return results, nil
}

// Overview fetches the full aggregate for one business contact number.
func (c *Client) Overview(ctx context.Context, bcn string) (*domain.CustomerOverview, error) {
	var overview domain.CustomerOverview
	path := "/customer/" + url.PathEscape(bcn) + "/overview"
	if err := c.do(ctx, fasthttp.MethodGet, path, nil, "", &overview); err != nil {
		return nil, fmt.Errorf("overview %q: %w", bcn, err)
	}
	return &overview, nil
}

// Upload posts one file to the backend's upload endpoint for the given
// file-type slug as a single-file multipart body.
func (c *Client) Upload(ctx context.Context, slug, filename string, content []byte) (*domain.UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("upload %s: build form: %w", slug, err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("upload %s: write form: %w", slug, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("upload %s: finalize form: %w", slug, err)
	}

	var result domain.UploadResult
	path := "/upload/" + url.PathEscape(slug)
	if err := c.do(ctx, fasthttp.MethodPost, path, body.Bytes(), mw.FormDataContentType(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Status reports which datasets are currently present server-side.
func (c *Client) Status(ctx context.Context) (domain.UploadStatusMap, error) {
	status := domain.EmptyUploadStatus()
	if err := c.do(ctx, fasthttp.MethodGet, "/upload/status", nil, "", &status); err != nil {
		return nil, fmt.Errorf("upload status: %w", err)
	}
	return status, nil
}

// Clear drops all uploaded data server-side.
func (c *Client) Clear(ctx context.Context) error {
	if err := c.do(ctx, fasthttp.MethodDelete, "/upload/clear", nil, "", nil); err != nil {
		return fmt.Errorf("clear data: %w", err)
	}
	return nil
}

// do performs one round-trip and decodes a 2xx body into out (when out is
// non-nil). Context deadlines are honoured by tightening the client
// deadline; there is no other cancellation path in fasthttp's Do.
func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.base + path)
	req.Header.SetMethod(method)
	if body != nil {
		req.SetBody(body)
		req.Header.SetContentType(contentType)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	start := time.Now()
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("backend call")

	code := resp.StatusCode()
	if code < fasthttp.StatusOK || code >= fasthttp.StatusMultipleChoices {
		return &StatusError{Code: code, Body: strings.TrimSpace(string(resp.Body()))}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
