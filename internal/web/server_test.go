package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/kyriemtx/qrsrv/internal/qr"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	gen := qr.NewGenerator(qr.Config{Options: qr.DefaultOptions(), OutputDir: t.TempDir()}, nil)
	s := NewServer(gen, nil, Options{WriteTimeout: 5 * time.Second})
	return s, s.Router()
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateQRCode(t *testing.T) {
	s, h := newTestServer(t)
	rec := do(h, httptest.NewRequest("GET", "/createQRCode?codeContent="+url.QueryEscape(" hello web "), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("content-type"); ct != "image/png" {
		t.Fatalf("content-type %q", ct)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("missing request id")
	}
	got, err := s.Gen.DecodeReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello web" {
		t.Fatalf("got %q", got)
	}
}

func TestCreateQRCodeBlankUsesDefault(t *testing.T) {
	s, h := newTestServer(t)
	rec := do(h, httptest.NewRequest("GET", "/createQRCode", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	got, err := s.Gen.DecodeReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	if got != "http://kyriemtx.com" {
		t.Fatalf("got %q", got)
	}
}

func TestCreateQRCodeTooLong(t *testing.T) {
	_, h := newTestServer(t)
	rec := do(h, httptest.NewRequest("GET", "/createQRCode?codeContent="+strings.Repeat("a", 5000), nil))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if strings.HasPrefix(rec.Header().Get("content-type"), "image/") {
		t.Fatal("error response still declared as image")
	}
}

func TestCreateQRCodeMethodNotAllowed(t *testing.T) {
	_, h := newTestServer(t)
	rec := do(h, httptest.NewRequest("POST", "/createQRCode", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestCreateQRCodeSVG(t *testing.T) {
	_, h := newTestServer(t)
	rec := do(h, httptest.NewRequest("GET", "/createQRCode.svg?codeContent=hello", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("content-type") != "image/svg+xml" {
		t.Fatalf("status %d content-type %q", rec.Code, rec.Header().Get("content-type"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("<svg")) {
		t.Fatal("not svg")
	}
}

func TestIndex(t *testing.T) {
	_, h := newTestServer(t)
	rec := do(h, httptest.NewRequest("GET", "/index", nil))
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("content-type"), "text/html") {
		t.Fatalf("status %d content-type %q", rec.Code, rec.Header().Get("content-type"))
	}
	if !strings.Contains(rec.Body.String(), "createQRCode") {
		t.Fatal("index page does not reference createQRCode")
	}

	rec = do(h, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusFound || rec.Header().Get("location") != "/index" {
		t.Fatalf("root: status %d location %q", rec.Code, rec.Header().Get("location"))
	}
}

func TestHealthz(t *testing.T) {
	_, h := newTestServer(t)
	rec := do(h, httptest.NewRequest("GET", "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Fatalf("status %d body %s", rec.Code, rec.Body)
	}
}

func multipartUpload(t *testing.T, field string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, "code.png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("POST", "/parseQRCode", &body)
	req.Header.Set("content-type", mw.FormDataContentType())
	return req
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestParseQRCodeMultipart(t *testing.T) {
	s, h := newTestServer(t)
	png, err := s.Gen.PNG("upload me")
	if err != nil {
		t.Fatal(err)
	}
	rec := do(h, multipartUpload(t, "file", png))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	if got := decodeJSON(t, rec)["content"]; got != "upload me" {
		t.Fatalf("got %v", got)
	}
}

func TestParseQRCodeRawBody(t *testing.T) {
	s, h := newTestServer(t)
	png, err := s.Gen.PNG("raw body")
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("POST", "/parseQRCode", bytes.NewReader(png))
	req.Header.Set("content-type", "image/png")
	rec := do(h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	if got := decodeJSON(t, rec)["content"]; got != "raw body" {
		t.Fatalf("got %v", got)
	}
}

func TestParseQRCodeRejects(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(h, multipartUpload(t, "other", []byte("x")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing field: expected 400, got %d", rec.Code)
	}

	rec = do(h, httptest.NewRequest("POST", "/parseQRCode", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty body: expected 400, got %d", rec.Code)
	}

	rec = do(h, multipartUpload(t, "file", []byte("definitely not an image")))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("garbage upload: expected 422, got %d", rec.Code)
	}
	if msg, _ := decodeJSON(t, rec)["error"].(string); !strings.Contains(msg, "unreadable image") {
		t.Fatalf("unexpected error message %q", msg)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec := do(h, req)
	if got := rec.Header().Get("X-Request-Id"); got != "abc-123" {
		t.Fatalf("got %q", got)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&qr.Error{Op: "x", Kind: qr.KindInvalidInput, Err: qr.ErrBlankContent}, http.StatusBadRequest},
		{&qr.Error{Op: "x", Kind: qr.KindNotFound, Err: qr.ErrNoImage}, http.StatusNotFound},
		{&qr.Error{Op: "x", Kind: qr.KindNotFound, Err: fmt.Errorf("%w: detail", qr.ErrNoCode)}, http.StatusUnprocessableEntity},
		{&qr.Error{Op: "x", Kind: qr.KindCodecFailure, Err: qr.ErrUnreadableImage}, http.StatusUnprocessableEntity},
		{&qr.Error{Op: "x", Kind: qr.KindIOFailure, Err: context.DeadlineExceeded}, http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := statusFor(c.err); got != c.want {
			t.Fatalf("statusFor(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}
