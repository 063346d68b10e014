package cromwell

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type capturedRequest struct {
	method    string
	path      string
	accept    string
	query     url.Values
	source    string
	filename  string
	inputs    string
	hasInputs bool
}

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.method = r.Method
		captured.path = r.URL.Path
		captured.accept = r.Header.Get("Accept")
		captured.query = r.URL.Query()

		if r.Method == http.MethodPost {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("parse multipart: %v", err)
			}
			f, hdr, err := r.FormFile(FieldWorkflowSource)
			if err != nil {
				t.Errorf("missing workflow source: %v", err)
			} else {
				data, _ := io.ReadAll(f)
				f.Close()
				captured.source = string(data)
				captured.filename = hdr.Filename
			}
			_, captured.hasInputs = r.MultipartForm.Value[FieldWorkflowInputs]
			captured.inputs = r.FormValue(FieldWorkflowInputs)
		}

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func newTestClient(t *testing.T, srv *httptest.Server, insecure bool) *Client {
	t.Helper()
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	c, err := NewClient(u.Host, Options{InsecureSkipVerify: insecure, Timeout: 5 * time.Second}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func writeSource(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "parliament2.wdl")
	if err := os.WriteFile(path, []byte("workflow Parliament2 {}"), 0o600); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func TestSubmitSendsMultipart(t *testing.T) {
	srv, captured := newTestServer(t, http.StatusCreated, `{"id":"abc-123","status":"Submitted"}`)
	c := newTestClient(t, srv, true)

	resp, err := c.Submit(context.Background(), writeSource(t), `{"Parliament2.inBam":"s3://b/a.bam"}`)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if captured.method != http.MethodPost || captured.path != "/api/workflows/v1" {
		t.Fatalf("unexpected request %s %s", captured.method, captured.path)
	}
	if captured.accept != "application/json" {
		t.Fatalf("unexpected accept header %q", captured.accept)
	}
	if captured.source != "workflow Parliament2 {}" || captured.filename != "parliament2.wdl" {
		t.Fatalf("unexpected source part %q (%s)", captured.source, captured.filename)
	}
	if captured.inputs != `{"Parliament2.inBam":"s3://b/a.bam"}` {
		t.Fatalf("unexpected inputs %q", captured.inputs)
	}

	status, err := resp.DecodeStatus()
	if err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.ID != "abc-123" || status.Status != "Submitted" {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestSubmitWithoutInputsOmitsField(t *testing.T) {
	srv, captured := newTestServer(t, http.StatusCreated, `{}`)
	c := newTestClient(t, srv, true)

	if _, err := c.SubmitSource(context.Background(), writeSource(t)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if captured.hasInputs {
		t.Fatal("expected workflowInputs to be omitted")
	}
}

func TestSubmitSendsEmptyInputs(t *testing.T) {
	srv, captured := newTestServer(t, http.StatusCreated, `{}`)
	c := newTestClient(t, srv, true)

	if _, err := c.Submit(context.Background(), writeSource(t), ""); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !captured.hasInputs || captured.inputs != "" {
		t.Fatalf("expected empty workflowInputs part, got present=%v %q", captured.hasInputs, captured.inputs)
	}
}

func TestSubmitMissingSource(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusCreated, `{}`)
	c := newTestClient(t, srv, true)

	if _, err := c.Submit(context.Background(), filepath.Join(t.TempDir(), "missing.wdl"), "{}"); err == nil {
		t.Fatal("expected error for missing source file")
	}
}

func TestSubmitVerifiesTLSWhenAsked(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusCreated, `{}`)
	c := newTestClient(t, srv, false)

	if _, err := c.Submit(context.Background(), writeSource(t), "{}"); err == nil {
		t.Fatal("expected certificate verification failure")
	}
}

func TestQuerySendsSubmissionFilter(t *testing.T) {
	srv, captured := newTestServer(t, http.StatusOK, `{"results":[],"totalResultsCount":0}`)
	c := newTestClient(t, srv, true)

	now := time.Date(2024, 3, 2, 10, 30, 0, 0, time.UTC)
	resp, err := c.Query(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !resp.OK() {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if captured.method != http.MethodGet || captured.path != "/api/workflows/v1/query" {
		t.Fatalf("unexpected request %s %s", captured.method, captured.path)
	}
	if got := captured.query.Get("submission"); got != "2024-03-01T10:30:00Z" {
		t.Fatalf("unexpected submission filter %q", got)
	}
}

func TestSubmissionSince(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		days int
		want string
	}{
		{
			name: "whole seconds",
			now:  time.Date(2024, 3, 2, 10, 30, 0, 0, time.UTC),
			days: 1,
			want: "2024-03-01T10:30:00Z",
		},
		{
			name: "microseconds kept",
			now:  time.Date(2024, 3, 2, 10, 30, 0, 123456789, time.UTC),
			days: 7,
			want: "2024-02-24T10:30:00.123456Z",
		},
		{
			name: "converted to utc",
			now:  time.Date(2024, 1, 1, 1, 0, 0, 0, time.FixedZone("EST", -5*3600)),
			days: 1,
			want: "2023-12-31T06:00:00Z",
		},
		{
			name: "zero days",
			now:  time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
			days: 0,
			want: "2024-03-02T00:00:00Z",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SubmissionSince(tt.now, tt.days); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPrintSuccessIndentsJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Print(&buf, &Response{StatusCode: 201, Body: []byte(`{"id":"abc","status":"Submitted"}`)}); err != nil {
		t.Fatalf("print: %v", err)
	}
	want := "Success\n{\n  \"id\": \"abc\",\n  \"status\": \"Submitted\"\n}\n"
	if buf.String() != want {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestPrintErrorShowsStatusAndBody(t *testing.T) {
	var buf bytes.Buffer
	if err := Print(&buf, &Response{StatusCode: 500, Body: []byte("internal failure")}); err != nil {
		t.Fatalf("print: %v", err)
	}
	if buf.String() != "Error: 500\ninternal failure\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestPrintSuccessWithInvalidJSON(t *testing.T) {
	var buf bytes.Buffer
	err := Print(&buf, &Response{StatusCode: 200, Body: []byte("<html>")})
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !strings.HasPrefix(buf.String(), "Success\n") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestNewClientRequiresHost(t *testing.T) {
	if _, err := NewClient("", Options{}, zerolog.Nop()); err == nil {
		t.Fatal("expected error for empty host")
	}
}

func TestEndpoint(t *testing.T) {
	if got := Endpoint("https", "cromwell.example.org"); got != "https://cromwell.example.org/api/workflows/v1" {
		t.Fatalf("unexpected endpoint %q", got)
	}
}
