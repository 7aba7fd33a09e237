package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/kyriemtx/qrsrv/internal/qr"
	"go.uber.org/zap"
)

const svgPixelsPerModule = 8

type Options struct {
	// WriteTimeout bounds how long one response may take to write.
	WriteTimeout   time.Duration
	MaxUploadBytes int64
}

type Server struct {
	Gen  *qr.Generator
	Log  *zap.Logger
	Opts Options
}

func NewServer(gen *qr.Generator, log *zap.Logger, opts Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Server{Gen: gen, Log: log, Opts: opts}
}

func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.requestID, s.accessLog, s.recoverer)

	r.HandleFunc("/createQRCode", s.createQRCode).Methods("GET")
	r.HandleFunc("/createQRCode.svg", s.createQRCodeSVG).Methods("GET")
	r.HandleFunc("/parseQRCode", s.parseQRCode).Methods("POST")
	r.HandleFunc("/index", s.index).Methods("GET")
	r.HandleFunc("/healthz", s.healthz).Methods("GET")
	r.Handle("/", http.RedirectHandler("/index", http.StatusFound)).Methods("GET")
	return r
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	b, err := FS.ReadFile("templates/index.html")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("content-type", "text/html; charset=utf-8")
	_, _ = w.Write(b)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// createQRCode streams the PNG for ?codeContent. Blank content encodes the default.
func (s *Server) createQRCode(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.writeDeadline(w, r)
	defer cancel()

	w.Header().Set("content-type", "image/png")
	w.Header().Set("cache-control", "no-store")
	cw := &countingWriter{w: w}
	err := s.Gen.GenerateToStream(ctx, r.URL.Query().Get("codeContent"), cw)
	if err == nil {
		return
	}
	if cw.n == 0 {
		s.fail(w, r, err)
		return
	}
	// Headers are gone; all that is left is to record the truncation.
	s.Log.Warn("qr code stream interrupted",
		zap.String("request_id", requestIDFrom(r.Context())),
		zap.Int64("written", cw.n),
		zap.Error(err))
}

func (s *Server) createQRCodeSVG(w http.ResponseWriter, r *http.Request) {
	svg, err := s.Gen.SVG(r.URL.Query().Get("codeContent"), svgPixelsPerModule)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("content-type", "image/svg+xml")
	w.Header().Set("cache-control", "no-store")
	_, _ = w.Write(svg)
}

// parseQRCode decodes an uploaded image: multipart field "file", or the raw body.
func (s *Server) parseQRCode(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.Opts.MaxUploadBytes)

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("content-type"), "multipart/form-data") {
		f, _, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{"error": "upload too large"})
				return
			}
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": `missing upload field "file"`})
			return
		}
		defer f.Close()
		src = f
	} else if r.ContentLength == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "empty body"})
		return
	}

	text, err := s.Gen.DecodeReader(src)
	if err != nil {
		status := statusFor(err)
		s.logFailure(r, status, err)
		writeJSON(w, status, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"content": text})
}

// writeDeadline bounds the response write with both a connection write deadline and
// a context deadline, so a stalled client cannot hold the handler forever.
func (s *Server) writeDeadline(w http.ResponseWriter, r *http.Request) (context.Context, context.CancelFunc) {
	if s.Opts.WriteTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	deadline := time.Now().Add(s.Opts.WriteTimeout)
	if err := http.NewResponseController(w).SetWriteDeadline(deadline); err != nil && !errors.Is(err, http.ErrNotSupported) {
		s.Log.Debug("set write deadline", zap.Error(err))
	}
	return context.WithDeadline(r.Context(), deadline)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	s.logFailure(r, status, err)
	http.Error(w, err.Error(), status)
}

func (s *Server) logFailure(r *http.Request, status int, err error) {
	fields := []zap.Field{
		zap.String("request_id", requestIDFrom(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		s.Log.Error("request failed", fields...)
		return
	}
	s.Log.Info("request rejected", fields...)
}

// statusFor maps a qr error kind onto an HTTP status.
func statusFor(err error) int {
	if errors.Is(err, qr.ErrNoCode) {
		return http.StatusUnprocessableEntity
	}
	switch qr.KindOf(err) {
	case qr.KindInvalidInput:
		return http.StatusBadRequest
	case qr.KindNotFound:
		return http.StatusNotFound
	case qr.KindCodecFailure:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// ---- helpers ----

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
