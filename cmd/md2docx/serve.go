package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	md2docx "github.com/alnah/go-md2docx"
	"github.com/alnah/go-md2docx/internal/fileutil"
	"github.com/alnah/go-md2docx/internal/hints"
)

// Server tuning that is not exposed as configuration.
const (
	defaultDownloadName = "documento_markdown"
	multipartMemory     = 8 << 20
	readHeaderTimeout   = 10 * time.Second
	shutdownTimeout     = 15 * time.Second
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error      string `json:"error"`
	Kind       string `json:"kind"`
	Hint       string `json:"hint,omitempty"`
	Diagnostic string `json:"diagnostic,omitempty"` // external tool output, verbatim
}

// server handles the HTTP conversion endpoint.
type server struct {
	conv     CLIConverter
	logger   *zap.Logger
	maxBody  int64
	strategy string // used when the request names none
	template []byte // used when the request uploads none
}

// routes builds the router. requestsPerMinute <= 0 disables rate limiting.
func (s *server) routes(requestsPerMinute int) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	if requestsPerMinute > 0 {
		r.Use(httprate.LimitByIP(requestsPerMinute, time.Minute))
	}

	r.Get("/healthz", s.handleHealth)
	r.Post("/convert", s.handleConvert)
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleConvert reads a multipart form and answers with the .docx.
//
// Fields: markdown (text) or file (upload), strategy, title, author,
// subtitle, year, name (download name) and template (upload).
func (s *server) handleConvert(w http.ResponseWriter, r *http.Request) {
	tooLarge := errorResponse{
		Error: fmt.Sprintf("request body exceeds %d bytes", s.maxBody),
		Kind:  "RequestTooLarge",
	}
	if r.ContentLength > s.maxBody {
		writeJSON(w, http.StatusRequestEntityTooLarge, tooLarge)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, tooLarge)
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form: " + err.Error(), Kind: "InvalidRequest"})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	markdown, err := formText(r, "markdown", "file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "InvalidRequest"})
		return
	}

	template, err := formFile(r, "template")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "InvalidRequest"})
		return
	}
	if template == nil {
		template = s.template
	}

	name := r.FormValue("strategy")
	if name == "" {
		name = s.strategy
	}
	strategy, err := md2docx.ParseStrategy(name)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: err.Error(),
			Kind:  "InvalidRequest",
			Hint:  strings.TrimPrefix(hints.ForUnknownStrategy(md2docx.Strategies()), "\n  hint: "),
		})
		return
	}

	res, err := s.conv.Convert(r.Context(), md2docx.Input{
		Markdown: markdown,
		Strategy: strategy,
		Template: template,
		Title:    r.FormValue("title"),
		Author:   r.FormValue("author"),
		Subtitle: r.FormValue("subtitle"),
		Year:     r.FormValue("year"),
	})
	if err != nil {
		s.writeConversionError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": downloadName(r.FormValue("name")),
	}))
	w.Header().Set("X-Request-ID", res.RequestID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.DOCX)
}

func (s *server) writeConversionError(w http.ResponseWriter, r *http.Request, err error) {
	kind := md2docx.KindOf(err)
	status := statusForKind(kind)
	if status >= http.StatusInternalServerError {
		s.logger.Warn("conversion failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Stringer("kind", kind),
			zap.Error(err),
		)
	}
	resp := errorResponse{
		Error: err.Error(),
		Kind:  kind.String(),
		Hint:  strings.TrimPrefix(md2docx.HintOf(err), "\n  hint: "),
	}
	var ce *md2docx.ConversionError
	if errors.As(err, &ce) {
		resp.Diagnostic = ce.Diagnostic
	}
	writeJSON(w, status, resp)
}

// statusForKind maps a failure kind onto an HTTP status.
func statusForKind(kind md2docx.ErrorKind) int {
	switch kind {
	case md2docx.KindEmptyInput, md2docx.KindMalformedTemplate:
		return http.StatusBadRequest
	case md2docx.KindExternalToolFailed:
		return http.StatusBadGateway
	case md2docx.KindExternalToolUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// formText returns the text field, or the content of the upload field when
// the text field is absent.
func formText(r *http.Request, field, fileField string) (string, error) {
	if v := r.FormValue(field); v != "" {
		return v, nil
	}
	data, err := formFile(r, fileField)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// formFile reads an optional upload. A missing field yields nil.
func formFile(r *http.Request, field string) ([]byte, error) {
	f, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", field, err)
	}
	defer func(f multipart.File) { _ = f.Close() }(f)

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", field, err)
	}
	return data, nil
}

// downloadName returns "<name>.docx", falling back to the default name for
// empty or unsafe values.
func downloadName(name string) string {
	name = strings.TrimSpace(name)
	if len(name) >= len(docxExt) && strings.EqualFold(name[len(name)-len(docxExt):], docxExt) {
		name = name[:len(name)-len(docxExt)]
	}
	if fileutil.ValidateName(name) != nil {
		name = defaultDownloadName
	}
	return name + docxExt
}

// logRequests logs one line per request with status and latency.
func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// runServeCmd starts the HTTP endpoint and blocks until ctx is cancelled.
func runServeCmd(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	envCfg := loadEnvConfig(env.Getenv)
	warnUnknownEnvVars(env.Stderr, env.Environ())

	cfg, err := resolveConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	mergeConversionFlags(&flags.conversion, cfg)
	setIf(&cfg.Server.Addr, flags.addr)
	if flags.maxBodyBytes > 0 {
		cfg.Server.MaxBodyBytes = flags.maxBodyBytes
	}
	if flags.rateLimit > 0 {
		cfg.Server.RequestsPerMinute = flags.rateLimit
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := serveLogger(flags.common.verbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	template, err := loadTemplate(cfg.Conversion.Template)
	if err != nil {
		return err
	}

	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return err
	}
	conv, err := env.NewConverter(
		md2docx.WithTimeout(timeout),
		md2docx.WithLogger(logger),
		md2docx.WithPandocPath(cfg.Conversion.PandocPath),
		md2docx.WithAssetPath(cfg.Assets.BasePath),
		md2docx.WithClock(env.Now),
	)
	if err != nil {
		return err
	}

	s := &server{
		conv:     conv,
		logger:   logger,
		maxBody:  cfg.Server.MaxBodyBytes,
		strategy: cfg.Conversion.Strategy,
		template: template,
	}
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.routes(cfg.Server.RequestsPerMinute),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Listening on %s\n", cfg.Server.Addr)
	}
	logger.Info("server started", zap.String("addr", cfg.Server.Addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func serveLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
