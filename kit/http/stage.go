package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/superj80820/session-auth/kit/code"
	loggerKit "github.com/superj80820/session-auth/kit/logger"
)

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// CORSStage lets requests without an Origin header through untouched and
// rejects origins outside the allow list with 403.
func CORSStage(config CORSConfig, logger *loggerKit.Logger) Stage {
	allowed := make(map[string]bool, len(config.AllowedOrigins))
	for _, origin := range config.AllowedOrigins {
		allowed[strings.TrimRight(origin, "/")] = true
	}
	methods := strings.Join(config.AllowedMethods, ", ")
	headers := strings.Join(config.AllowedHeaders, ", ")

	return Guard("cors", func(w http.ResponseWriter, r *http.Request) (http.ResponseWriter, *http.Request, error) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return w, r, nil
		}
		w.Header().Add("Vary", "Origin")
		if !allowed[origin] {
			return nil, nil, code.CreateErrorCode(http.StatusForbidden).AddCode(code.OriginNotAllowed)
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		if config.AllowCredentials {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.Header().Set("Access-Control-Allow-Methods", methods)
			w.Header().Set("Access-Control-Allow-Headers", headers)
			if config.MaxAge > 0 {
				w.Header().Set("Access-Control-Max-Age", strconv.Itoa(int(config.MaxAge/time.Second)))
			}
			w.WriteHeader(http.StatusNoContent)
			return nil, nil, ErrResponded
		}
		return w, r, nil
	}, logger)
}

// SecurityHeadersStage sets the usual hardening headers. HSTS is only sent
// when hsts is true since it pins the host to https.
func SecurityHeadersStage(hsts bool) Stage {
	return Guard("security-headers", func(w http.ResponseWriter, r *http.Request) (http.ResponseWriter, *http.Request, error) {
		header := w.Header()
		header.Set("Content-Security-Policy", "default-src 'self';base-uri 'self';font-src 'self' https: data:;form-action 'self';frame-ancestors 'self';img-src 'self' data:;object-src 'none';script-src 'self';style-src 'self' https: 'unsafe-inline'")
		header.Set("Cross-Origin-Opener-Policy", "same-origin")
		header.Set("Cross-Origin-Resource-Policy", "same-origin")
		header.Set("Origin-Agent-Cluster", "?1")
		header.Set("Referrer-Policy", "no-referrer")
		header.Set("X-Content-Type-Options", "nosniff")
		header.Set("X-DNS-Prefetch-Control", "off")
		header.Set("X-Download-Options", "noopen")
		header.Set("X-Frame-Options", "SAMEORIGIN")
		header.Set("X-Permitted-Cross-Domain-Policies", "none")
		header.Set("X-XSS-Protection", "0")
		if hsts {
			header.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
		}
		return w, r, nil
	}, nil)
}

func CompressionStage() Stage {
	return Stage{
		Name: "compression",
		Wrap: func(next http.Handler) http.Handler {
			return gzhttp.GzipHandler(next)
		},
	}
}

// BodyLimitStage caps request bodies at limit bytes. Declared lengths over the
// cap fail right away, chunked bodies fail once the decoder reads past it.
func BodyLimitStage(limit int64, logger *loggerKit.Logger) Stage {
	return Guard("body-limit", func(w http.ResponseWriter, r *http.Request) (http.ResponseWriter, *http.Request, error) {
		if r.ContentLength > limit {
			return nil, nil, code.CreateErrorCode(http.StatusRequestEntityTooLarge)
		}
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		return w, r, nil
	}, logger)
}
