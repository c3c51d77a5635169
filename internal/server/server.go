// Package server exposes the tokenizer over a small HTTP JSON API:
// GET /health, GET /vocab, POST /encode, and POST /decode.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/example/go-bpetok/internal/config"
)

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// Encoder turns text into token ids.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]uint32, error)
}

// Decoder turns token ids back into text.
type Decoder interface {
	Decode(ctx context.Context, ids []uint32) (string, error)
}

// VocabDescriber reports vocabulary metadata for GET /vocab.
type VocabDescriber interface {
	DescribeVocab() (size, maxEntryLen int)
}

// VocabInfo is the GET /vocab response body.
type VocabInfo struct {
	Size        int `json:"size"`
	MaxEntryLen int `json:"max_entry_len"`
}

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxTextBytes   int
	workers        int
	requestTimeout time.Duration
	logger         *slog.Logger
}

func defaultOptions() options {
	return options{
		maxTextBytes:   4096,
		workers:        2,
		requestTimeout: 60 * time.Second,
		logger:         slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxTextBytes sets the maximum allowed text length in bytes for POST /encode.
func WithMaxTextBytes(n int) Option {
	return func(o *options) { o.maxTextBytes = n }
}

// WithWorkers sets the maximum number of concurrent encode/decode calls.
// Zero disables throttling.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithRequestTimeout sets the per-request deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

// handler holds the dependencies needed to serve HTTP requests.
type handler struct {
	enc   Encoder
	dec   Decoder
	vocab VocabDescriber
	opts  options
	sem   chan struct{} // semaphore for worker pool
	log   *slog.Logger
}

// NewHandler returns an http.Handler serving /health, /vocab, POST /encode,
// and POST /decode.
func NewHandler(enc Encoder, dec Decoder, vocab VocabDescriber, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		enc:   enc,
		dec:   dec,
		vocab: vocab,
		opts:  opts,
		log:   opts.logger,
	}
	if opts.workers > 0 {
		h.sem = make(chan struct{}, opts.workers)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/vocab", h.handleVocab)
	mux.HandleFunc("/encode", h.handleEncode)
	mux.HandleFunc("/decode", h.handleDecode)
	return mux
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildVersion(),
	})
}

func (h *handler) handleVocab(w http.ResponseWriter, _ *http.Request) {
	size, maxEntryLen := h.vocab.DescribeVocab()
	writeJSON(w, http.StatusOK, VocabInfo{Size: size, MaxEntryLen: maxEntryLen})
}

type encodeRequest struct {
	Text string `json:"text"`
}

type encodeResponse struct {
	Tokens []uint32 `json:"tokens"`
	Count  int      `json:"count"`
}

func (h *handler) handleEncode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req encodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text field is required")
		return
	}

	if len(req.Text) > h.opts.maxTextBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("text exceeds maximum size of %d bytes", h.opts.maxTextBytes))
		return
	}

	ctx, cancel, ok := h.acquire(w, r)
	if !ok {
		return
	}
	defer cancel()

	start := time.Now()
	ids, err := h.enc.Encode(ctx, req.Text)
	durationMS := time.Since(start).Milliseconds()

	if err != nil {
		h.log.ErrorContext(r.Context(), "encode failed",
			slog.Int("text_len", len(req.Text)),
			slog.Int64("duration_ms", durationMS),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.log.InfoContext(r.Context(), "encode complete",
		slog.Int("text_len", len(req.Text)),
		slog.Int("tokens", len(ids)),
		slog.Int64("duration_ms", durationMS),
	)

	if ids == nil {
		ids = []uint32{}
	}
	writeJSON(w, http.StatusOK, encodeResponse{Tokens: ids, Count: len(ids)})
}

type decodeRequest struct {
	Tokens []uint32 `json:"tokens"`
}

type decodeResponse struct {
	Text string `json:"text"`
}

func (h *handler) handleDecode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req decodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	ctx, cancel, ok := h.acquire(w, r)
	if !ok {
		return
	}
	defer cancel()

	text, err := h.dec.Decode(ctx, req.Tokens)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, decodeResponse{Text: text})
}

// acquire claims a worker slot (honouring cancellation while waiting) and
// applies the per-request timeout. It reports false after writing an error
// response when the slot cannot be claimed.
func (h *handler) acquire(w http.ResponseWriter, r *http.Request) (context.Context, context.CancelFunc, bool) {
	if h.sem != nil {
		select {
		case h.sem <- struct{}{}:
			// slot acquired
		case <-r.Context().Done():
			writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for worker")
			return nil, nil, false
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.requestTimeout)

	release := func() {
		cancel()
		if h.sem != nil {
			<-h.sem
		}
	}

	return ctx, release, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server — wires handler into net/http.Server with graceful shutdown
// ---------------------------------------------------------------------------

// Codec bundles the three handler dependencies; satisfied by codec.Service.
type Codec interface {
	Encoder
	Decoder
	VocabDescriber
}

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	cfg             config.Config
	codec           Codec
	shutdownTimeout time.Duration
}

func New(cfg config.Config, codec Codec) *Server {
	return &Server{
		cfg:             cfg,
		codec:           codec,
		shutdownTimeout: 30 * time.Second,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

func (s *Server) Start(ctx context.Context) error {
	h := NewHandler(s.codec, s.codec, s.codec,
		WithWorkers(s.cfg.Server.Workers),
		WithMaxTextBytes(s.cfg.Server.MaxTextBytes),
		WithRequestTimeout(time.Duration(s.cfg.Server.RequestTimeout)*time.Second),
	)

	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}

// ProbeHTTP checks the /health endpoint of a running server.
func ProbeHTTP(addr string) error {
	resp, err := http.Get("http://" + addr + "/health") //nolint:noctx
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %s", resp.Status)
	}
	return nil
}
