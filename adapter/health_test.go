package adapter

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

type fakeProber struct {
	err error
}

func (p *fakeProber) Probe() error { return p.err }

type testResponseWriter struct {
	headers http.Header
	status  int
	body    []byte
}

func (w *testResponseWriter) Header() http.Header {
	if w.headers == nil {
		w.headers = make(http.Header)
	}
	return w.headers
}

func (w *testResponseWriter) Write(b []byte) (int, error) {
	w.body = append(w.body, b...)
	return len(b), nil
}

func (w *testResponseWriter) WriteHeader(statusCode int) {
	w.status = statusCode
}

func TestHealthHandlerLive(t *testing.T) {
	h := NewHealthHandler(&fakeProber{}, time.Second)

	req, _ := http.NewRequest("GET", "/live", nil)
	rw := &testResponseWriter{}
	h.ServeHTTP(rw, req)
	if rw.status != 200 {
		t.Errorf("healthcheck: expected status 200, got %d", rw.status)
	}
}

func TestHealthHandlerProbeFailure(t *testing.T) {
	h := NewHealthHandler(&fakeProber{err: errors.New("bus wedged")}, time.Second)

	req, _ := http.NewRequest("GET", "/live", nil)
	rw := &testResponseWriter{}
	h.ServeHTTP(rw, req)
	if rw.status != 503 {
		t.Errorf("healthcheck: expected status 503, got %d", rw.status)
	}
}
