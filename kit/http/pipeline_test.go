package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/superj80820/session-auth/kit/code"
)

func TestPipeline(t *testing.T) {
	var visited []string
	record := func(name string) Stage {
		return Guard(name, func(w http.ResponseWriter, r *http.Request) (http.ResponseWriter, *http.Request, error) {
			visited = append(visited, name)
			return w, r, nil
		}, nil)
	}
	reject := Guard("reject", func(w http.ResponseWriter, r *http.Request) (http.ResponseWriter, *http.Request, error) {
		if r.URL.Path == "/forbidden" {
			return nil, nil, code.CreateErrorCode(http.StatusForbidden).AddCode(code.AccessDenied)
		}
		return w, r, nil
	}, nil)

	pipeline := CreatePipeline(record("first"), reject, record("second"))
	assert.Equal(t, []string{"first", "reject", "second"}, pipeline.Names())

	handler := pipeline.Then(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		visited = append(visited, "handler")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, []string{"first", "second", "handler"}, visited)
	assert.Equal(t, http.StatusOK, w.Code)

	visited = nil
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/forbidden", nil))
	assert.Equal(t, []string{"first"}, visited)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"status":"error","code":10,"message":"Access denied"}`, w.Body.String())
}

func TestCORSStage(t *testing.T) {
	handler := CreatePipeline(CORSStage(CORSConfig{
		AllowedOrigins:   []string{"http://localhost:5173/"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}, nil)).Then(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, testCase := range []struct {
		name        string
		method      string
		origin      string
		preflight   bool
		status      int
		allowOrigin string
	}{
		{name: "no origin", method: http.MethodGet, status: http.StatusOK},
		{name: "allowed origin", method: http.MethodGet, origin: "http://localhost:5173", status: http.StatusOK, allowOrigin: "http://localhost:5173"},
		{name: "other origin", method: http.MethodGet, origin: "http://evil.example", status: http.StatusForbidden},
		{name: "preflight", method: http.MethodOptions, origin: "http://localhost:5173", preflight: true, status: http.StatusNoContent, allowOrigin: "http://localhost:5173"},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			r := httptest.NewRequest(testCase.method, "/", nil)
			if testCase.origin != "" {
				r.Header.Set("Origin", testCase.origin)
			}
			if testCase.preflight {
				r.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)
			assert.Equal(t, testCase.status, w.Code)
			assert.Equal(t, testCase.allowOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestBodyLimitStage(t *testing.T) {
	handler := CreatePipeline(BodyLimitStage(8, nil)).Then(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("short")))
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("far too long")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestSecurityHeadersStage(t *testing.T) {
	for _, hsts := range []bool{true, false} {
		w := httptest.NewRecorder()
		CreatePipeline(SecurityHeadersStage(hsts)).
			Then(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, hsts, w.Header().Get("Strict-Transport-Security") != "")
	}
}

func TestReadUserIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	r.Header.Set("X-Forwarded-For", "1.1.1.1")
	r.Header.Set("X-Real-Ip", "2.2.2.2")
	assert.Equal(t, "10.0.0.1", ReadUserIP(r), "headers from an untrusted peer are ignored")
}

func TestIPResolver(t *testing.T) {
	resolver, err := CreateIPResolver([]string{"10.0.0.0/8", "192.168.1.1"})
	require.Nil(t, err)

	for _, testCase := range []struct {
		name       string
		remoteAddr string
		forwarded  string
		realIP     string
		expect     string
	}{
		{name: "untrusted peer spoofing forwarded for", remoteAddr: "9.9.9.9:1234", forwarded: "1.1.1.1", expect: "9.9.9.9"},
		{name: "untrusted peer spoofing real ip", remoteAddr: "9.9.9.9:1234", realIP: "2.2.2.2", expect: "9.9.9.9"},
		{name: "trusted peer", remoteAddr: "10.0.0.1:1234", forwarded: "1.1.1.1", expect: "1.1.1.1"},
		{name: "client prepends a fake hop", remoteAddr: "10.0.0.1:1234", forwarded: "6.6.6.6, 1.1.1.1", expect: "1.1.1.1"},
		{name: "chain of trusted proxies", remoteAddr: "192.168.1.1:80", forwarded: "1.1.1.1, 10.0.0.2", expect: "1.1.1.1"},
		{name: "garbage hop skipped", remoteAddr: "10.0.0.1:1234", forwarded: "1.1.1.1, not-an-ip", expect: "1.1.1.1"},
		{name: "trusted peer with real ip only", remoteAddr: "10.0.0.1:1234", realIP: "2.2.2.2", expect: "2.2.2.2"},
		{name: "trusted peer without headers", remoteAddr: "10.0.0.1:1234", expect: "10.0.0.1"},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = testCase.remoteAddr
			if testCase.forwarded != "" {
				r.Header.Set("X-Forwarded-For", testCase.forwarded)
			}
			if testCase.realIP != "" {
				r.Header.Set("X-Real-Ip", testCase.realIP)
			}
			assert.Equal(t, testCase.expect, resolver.ClientIP(r))
		})
	}

	_, err = CreateIPResolver([]string{"not-a-proxy"})
	assert.NotNil(t, err)
	_, err = CreateIPResolver([]string{"10.0.0.0/99"})
	assert.NotNil(t, err)
}
