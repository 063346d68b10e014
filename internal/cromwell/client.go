/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cromwell is a minimal client for the Cromwell workflows REST API.
package cromwell

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/friendsincode/cromwell_cli/internal/telemetry"
)

const (
	workflowsPath = "/api/workflows/v1"

	FieldWorkflowSource = "workflowSource"
	FieldWorkflowInputs = "workflowInputs"
)

// Options configures the HTTP client.
type Options struct {
	// Scheme defaults to https.
	Scheme             string
	Timeout            time.Duration
	InsecureSkipVerify bool
	// Transport overrides the default transport; used by tests.
	Transport http.RoundTripper
}

// Client talks to one Cromwell host.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a client for host (DNS name or IP, optionally with port).
func NewClient(host string, opts Options, logger zerolog.Logger) (*Client, error) {
	if host == "" {
		return nil, fmt.Errorf("host must not be empty")
	}
	scheme := opts.Scheme
	if scheme == "" {
		scheme = "https"
	}

	transport := opts.Transport
	if transport == nil {
		base := http.DefaultTransport.(*http.Transport).Clone()
		base.TLSClientConfig = &tls.Config{InsecureSkipVerify: opts.InsecureSkipVerify} //nolint:gosec
		transport = base
	}

	return &Client{
		baseURL: Endpoint(scheme, host),
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: telemetry.WrapTransport(transport),
		},
		logger: logger,
	}, nil
}

// Endpoint returns the workflows endpoint for host.
func Endpoint(scheme, host string) string {
	return fmt.Sprintf("%s://%s%s", scheme, host, workflowsPath)
}

// Submit posts a workflow source file and its inputs document. The
// workflowInputs part is sent even when inputs is empty.
func (c *Client) Submit(ctx context.Context, sourcePath, inputs string) (*Response, error) {
	return c.submit(ctx, sourcePath, &inputs)
}

// SubmitSource posts a workflow source file without a workflowInputs part.
func (c *Client) SubmitSource(ctx context.Context, sourcePath string) (*Response, error) {
	return c.submit(ctx, sourcePath, nil)
}

func (c *Client) submit(ctx context.Context, sourcePath string, inputs *string) (*Response, error) {
	ctx, span := telemetry.StartSpan(ctx, "cromwell.submit", attribute.String("workflow.source", sourcePath))
	defer span.End()

	c.logger.Info().Str("source", sourcePath).Str("url", c.baseURL).Msgf("run(%s) on %s", sourcePath, c.baseURL)

	src, err := os.Open(sourcePath)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("open workflow source: %w", err)
	}
	defer src.Close()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	part, err := mw.CreateFormFile(FieldWorkflowSource, filepath.Base(sourcePath))
	if err != nil {
		return nil, fmt.Errorf("create source part: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("read workflow source: %w", err)
	}

	if inputs != nil {
		if err := mw.WriteField(FieldWorkflowInputs, *inputs); err != nil {
			return nil, fmt.Errorf("write inputs field: %w", err)
		}
	} else {
		c.logger.Debug().Msg("no workflow inputs, omitting field")
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, body)
	if err != nil {
		return nil, fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.do(req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	return resp, nil
}

// Query lists workflows submitted since now minus days.
func (c *Client) Query(ctx context.Context, days int, now time.Time) (*Response, error) {
	ctx, span := telemetry.StartSpan(ctx, "cromwell.query", attribute.Int("query.days", days))
	defer span.End()

	c.logger.Info().Int("days", days).Msgf("query() on %s in past %d days", c.baseURL, days)

	params := url.Values{}
	params.Set("submission", SubmissionSince(now, days))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/query?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build query request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	return resp, nil
}

func (c *Client) do(req *http.Request) (*Response, error) {
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", httpResp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("cromwell request complete")

	return &Response{StatusCode: httpResp.StatusCode, Body: data}, nil
}

// SubmissionSince formats now-days in UTC as ISO-8601 with a trailing Z.
// Microseconds are included only when non-zero.
func SubmissionSince(now time.Time, days int) string {
	start := now.UTC().AddDate(0, 0, -days)
	layout := "2006-01-02T15:04:05"
	if start.Nanosecond()/int(time.Microsecond) != 0 {
		layout += ".000000"
	}
	return start.Format(layout) + "Z"
}
