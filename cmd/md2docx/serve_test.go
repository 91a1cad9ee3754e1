package main

// Notes:
// - Handlers are tested through the chi router with httptest; the listener
//   in runServeCmd is only tested for flag and config errors.
// - The converter is mocked; status mapping is checked per failure kind.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	md2docx "github.com/alnah/go-md2docx"
	"github.com/alnah/go-md2docx/internal/config"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Multipart request builder
// ---------------------------------------------------------------------------

type formFileField struct {
	name, filename string
	data           []byte
}

func newMultipartRequest(t *testing.T, fields map[string]string, files ...formFileField) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.name, f.filename)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(f.data); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/convert", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newTestServer(mock *mockConverter) *server {
	return &server{
		conv:    mock,
		logger:  zap.NewNop(),
		maxBody: config.DefaultMaxBodyBytes,
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
	}
	return resp
}

// ---------------------------------------------------------------------------
// TestHandleConvert_Success - Document download
// ---------------------------------------------------------------------------

func TestHandleConvert_Success(t *testing.T) {
	t.Parallel()

	mock := newMockConverter()
	h := newTestServer(mock).routes(0)

	req := newMultipartRequest(t, map[string]string{
		"markdown": "# Hi",
		"strategy": "html",
		"title":    "T",
		"author":   "A",
		"subtitle": "S",
		"name":     "report",
	})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != md2docx.MIMEType {
		t.Errorf("Content-Type = %q", got)
	}
	_, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	if err != nil {
		t.Fatalf("bad Content-Disposition: %v", err)
	}
	if params["filename"] != "report.docx" {
		t.Errorf("filename = %q, want report.docx", params["filename"])
	}
	if rec.Header().Get("X-Request-ID") != "req-test" {
		t.Errorf("X-Request-ID = %q", rec.Header().Get("X-Request-ID"))
	}
	if rec.Body.String() != "PK mock docx" {
		t.Errorf("body = %q", rec.Body.String())
	}

	in := mock.getCalls()[0]
	if in.Markdown != "# Hi" || in.Strategy != md2docx.StrategyHTML || in.Title != "T" || in.Author != "A" || in.Subtitle != "S" {
		t.Errorf("Input = %+v", in)
	}
}

// ---------------------------------------------------------------------------
// TestHandleConvert_Uploads - File and template uploads, defaults
// ---------------------------------------------------------------------------

func TestHandleConvert_Uploads(t *testing.T) {
	t.Parallel()

	mock := newMockConverter()
	s := newTestServer(mock)
	s.strategy = "book"
	s.template = []byte("server default")
	h := s.routes(0)

	t.Run("file upload and template", func(t *testing.T) {
		req := newMultipartRequest(t, nil,
			formFileField{"file", "doc.md", []byte("# From File")},
			formFileField{"template", "ref.docx", []byte("uploaded template")},
		)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
		}
		calls := mock.getCalls()
		in := calls[len(calls)-1]
		if in.Markdown != "# From File" {
			t.Errorf("Markdown = %q", in.Markdown)
		}
		if string(in.Template) != "uploaded template" {
			t.Errorf("Template = %q", in.Template)
		}
		if in.Strategy != md2docx.StrategyBook {
			t.Errorf("Strategy = %q, want server default book", in.Strategy)
		}
		_, params, _ := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
		if params["filename"] != "documento_markdown.docx" {
			t.Errorf("filename = %q", params["filename"])
		}
	})

	t.Run("server template when none uploaded", func(t *testing.T) {
		req := newMultipartRequest(t, map[string]string{"markdown": "x"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		calls := mock.getCalls()
		if got := string(calls[len(calls)-1].Template); got != "server default" {
			t.Errorf("Template = %q, want server default", got)
		}
	})
}

// ---------------------------------------------------------------------------
// TestHandleConvert_ErrorStatus - Failure kind to HTTP status
// ---------------------------------------------------------------------------

func TestHandleConvert_ErrorStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind       md2docx.ErrorKind
		wantStatus int
	}{
		{md2docx.KindEmptyInput, http.StatusBadRequest},
		{md2docx.KindMalformedTemplate, http.StatusBadRequest},
		{md2docx.KindExternalToolFailed, http.StatusBadGateway},
		{md2docx.KindExternalToolUnavailable, http.StatusServiceUnavailable},
		{md2docx.KindUnexpectedTransform, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			t.Parallel()

			mock := newMockConverter()
			mock.convertFunc = func(context.Context, md2docx.Input) (*md2docx.Result, error) {
				return nil, &md2docx.ConversionError{Kind: tt.kind, Hint: "\n  hint: try again"}
			}
			core, logs := observer.New(zap.WarnLevel)
			s := newTestServer(mock)
			s.logger = zap.New(core)

			rec := httptest.NewRecorder()
			s.routes(0).ServeHTTP(rec, newMultipartRequest(t, map[string]string{"markdown": "x"}))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			resp := decodeError(t, rec)
			if resp.Kind != tt.kind.String() {
				t.Errorf("kind = %q, want %q", resp.Kind, tt.kind)
			}
			if resp.Hint != "try again" {
				t.Errorf("hint = %q", resp.Hint)
			}
			if resp.Error == "" {
				t.Error("error message is empty")
			}

			wantLogged := tt.wantStatus >= 500
			if got := logs.FilterMessage("conversion failed").Len() > 0; got != wantLogged {
				t.Errorf("server error logged = %v, want %v", got, wantLogged)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestHandleConvert_Diagnostic - External tool output reaches the client
// ---------------------------------------------------------------------------

func TestHandleConvert_Diagnostic(t *testing.T) {
	t.Parallel()

	const stderr = "pandoc: Unknown option --bogus at line 3"

	t.Run("tool failure carries stderr verbatim", func(t *testing.T) {
		t.Parallel()

		mock := newMockConverter()
		mock.convertFunc = func(context.Context, md2docx.Input) (*md2docx.Result, error) {
			return nil, &md2docx.ConversionError{
				Kind:       md2docx.KindExternalToolFailed,
				Err:        errors.New("exit status 64"),
				Diagnostic: stderr,
			}
		}

		rec := httptest.NewRecorder()
		newTestServer(mock).routes(0).ServeHTTP(rec, newMultipartRequest(t, map[string]string{"markdown": "x"}))

		if rec.Code != http.StatusBadGateway {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadGateway)
		}
		if got := decodeError(t, rec).Diagnostic; got != stderr {
			t.Errorf("diagnostic = %q, want %q", got, stderr)
		}
	})

	t.Run("omitted when empty", func(t *testing.T) {
		t.Parallel()

		mock := newMockConverter()
		mock.convertFunc = func(context.Context, md2docx.Input) (*md2docx.Result, error) {
			return nil, &md2docx.ConversionError{Kind: md2docx.KindEmptyInput}
		}

		rec := httptest.NewRecorder()
		newTestServer(mock).routes(0).ServeHTTP(rec, newMultipartRequest(t, map[string]string{"markdown": "x"}))

		if strings.Contains(rec.Body.String(), "diagnostic") {
			t.Errorf("body should omit diagnostic: %s", rec.Body.String())
		}
	})
}

// ---------------------------------------------------------------------------
// TestHandleConvert_BadRequests - Rejected before conversion
// ---------------------------------------------------------------------------

func TestHandleConvert_BadRequests(t *testing.T) {
	t.Parallel()

	t.Run("unknown strategy", func(t *testing.T) {
		t.Parallel()

		mock := newMockConverter()
		rec := httptest.NewRecorder()
		newTestServer(mock).routes(0).ServeHTTP(rec,
			newMultipartRequest(t, map[string]string{"markdown": "x", "strategy": "latex"}))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
		resp := decodeError(t, rec)
		if !strings.Contains(resp.Hint, "pandoc") {
			t.Errorf("hint should list strategies, got %q", resp.Hint)
		}
		if len(mock.getCalls()) != 0 {
			t.Error("converter should not be called")
		}
	})

	t.Run("not multipart", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader("markdown=x"))
		req.Header.Set("Content-Type", "text/plain")
		rec := httptest.NewRecorder()
		newTestServer(newMockConverter()).routes(0).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
		if decodeError(t, rec).Kind != "InvalidRequest" {
			t.Errorf("body = %q", rec.Body.String())
		}
	})

	t.Run("body too large", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(newMockConverter())
		s.maxBody = 64
		rec := httptest.NewRecorder()
		s.routes(0).ServeHTTP(rec, newMultipartRequest(t, map[string]string{"markdown": strings.Repeat("x", 1024)}))

		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, body %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		newTestServer(newMockConverter()).routes(0).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/convert", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d", rec.Code)
		}
	})
}

// ---------------------------------------------------------------------------
// TestRoutes_HealthAndRateLimit
// ---------------------------------------------------------------------------

func TestRoutes_Health(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newTestServer(newMockConverter()).routes(0).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `"ok"`) {
		t.Errorf("body = %q", body)
	}
}

func TestRoutes_RateLimit(t *testing.T) {
	t.Parallel()

	h := newTestServer(newMockConverter()).routes(2)

	var codes []int
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("first two requests should pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", codes[2])
	}
}

func TestRoutes_LogsRequests(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	s := newTestServer(newMockConverter())
	s.logger = zap.New(core)

	s.routes(0).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 request log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/healthz" {
		t.Errorf("path = %v", fields["path"])
	}
	if fields["status"] != int64(http.StatusOK) {
		t.Errorf("status = %v (%T)", fields["status"], fields["status"])
	}
	if id, _ := fields["request_id"].(string); id == "" {
		t.Error("request_id missing")
	}
}

// ---------------------------------------------------------------------------
// TestDownloadName
// ---------------------------------------------------------------------------

func TestDownloadName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"", "documento_markdown.docx"},
		{"  ", "documento_markdown.docx"},
		{"report", "report.docx"},
		{"report.DOCX", "report.docx"},
		{"../etc/passwd", "documento_markdown.docx"},
		{"a\\b", "documento_markdown.docx"},
		{"notes v2", "notes v2.docx"},
	}
	for _, tt := range tests {
		if got := downloadName(tt.in); got != tt.want {
			t.Errorf("downloadName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRunServeCmd_Errors - Startup validation
// ---------------------------------------------------------------------------

func TestRunServeCmd_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"unknown flag", []string{"--nope"}, ErrInvalidFlags},
		{"positional argument", []string{"extra"}, ErrInvalidFlags},
		{"bad strategy", []string{"-s", "latex"}, config.ErrInvalidValue},
		{"missing template", []string{"--template", "/nonexistent/ref.docx", "-q"}, ErrReadTemplate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			te := newTestEnv(newMockConverter())
			err := runServeCmd(context.Background(), tt.args, te.Environment)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
