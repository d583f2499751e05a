package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/superj80820/session-auth/kit/code"
	utilKit "github.com/superj80820/session-auth/kit/util"
	"go.opentelemetry.io/otel/trace"
)

type ctxKeyType int

const (
	_CTX_IP_KEY ctxKeyType = iota
	_CTX_HOST
	_CTX_URL_PATH
	_CTX_METHOD
	_CTX_USER_AGENT
	_CTX_TRACE_ID
	_CTX_TOKEN
	_CTX_REQUEST_ID
	_CTX_PRINCIPAL
	_CTX_SPAN
)

// CustomBeforeCtx copies request metadata into ctx. The access token is read
// from the tokenCookieName cookie only. The client ip comes from ipResolver.
func CustomBeforeCtx(tracer trace.Tracer, tokenCookieName string, ipResolver *IPResolver) func(ctx context.Context, r *http.Request) context.Context {
	return func(ctx context.Context, r *http.Request) context.Context {
		var token string
		if cookie, err := r.Cookie(tokenCookieName); err == nil {
			token = cookie.Value
		}
		ctx = AddToken(ctx, token)
		ctx = context.WithValue(ctx, _CTX_HOST, r.Host)
		ctx = context.WithValue(ctx, _CTX_URL_PATH, r.URL.Path)
		ctx = context.WithValue(ctx, _CTX_METHOD, r.Method)
		ctx = context.WithValue(ctx, _CTX_USER_AGENT, r.UserAgent())
		ctx = context.WithValue(ctx, _CTX_IP_KEY, ipResolver.ClientIP(r))
		ctx = AddRequestID(ctx)

		ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path)
		ctx = context.WithValue(ctx, _CTX_SPAN, span)

		ctx = AddTraceID(ctx, span.SpanContext().TraceID().String())

		return ctx
	}
}

func CustomAfterCtx(ctx context.Context, w http.ResponseWriter) context.Context {
	w.Header().Set("X-B3-TraceId", GetTraceID(ctx))
	return ctx
}

// CustomFinalizer ends the request span opened by CustomBeforeCtx.
func CustomFinalizer(ctx context.Context, code int, r *http.Request) {
	if span, ok := ctx.Value(_CTX_SPAN).(trace.Span); ok {
		span.End()
	}
}

func getString(ctx context.Context, key ctxKeyType) string {
	val, _ := ctx.Value(key).(string)
	return val
}

func GetTraceID(ctx context.Context) string {
	return getString(ctx, _CTX_TRACE_ID)
}

func AddTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, _CTX_TRACE_ID, traceID)
}

func GetIP(ctx context.Context) string {
	return getString(ctx, _CTX_IP_KEY)
}

func GetURL(ctx context.Context) string {
	return getString(ctx, _CTX_URL_PATH)
}

func GetMethod(ctx context.Context) string {
	return getString(ctx, _CTX_METHOD)
}

func GetUserAgent(ctx context.Context) string {
	return getString(ctx, _CTX_USER_AGENT)
}

func AddPrincipal(ctx context.Context, principal any) context.Context {
	return context.WithValue(ctx, _CTX_PRINCIPAL, principal)
}

// GetPrincipal returns what the auth middleware attached to ctx.
func GetPrincipal[T any](ctx context.Context) (T, bool) {
	principal, ok := ctx.Value(_CTX_PRINCIPAL).(T)
	return principal, ok
}

func AddToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, _CTX_TOKEN, token)
}

func GetToken(ctx context.Context) string {
	return getString(ctx, _CTX_TOKEN)
}

func AddRequestID(ctx context.Context) context.Context {
	return context.WithValue(ctx, _CTX_REQUEST_ID, utilKit.GetSnowflakeIDInt64())
}

func GetRequestID(ctx context.Context) int64 {
	val, _ := ctx.Value(_CTX_REQUEST_ID).(int64)
	return val
}

func WriteErrorResponse(w http.ResponseWriter, err error) {
	errorCode := code.CreateHTTPError(code.ParseErrorCode(err))

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(errorCode.HTTPCode)
	json.NewEncoder(w).Encode(errorCode)
}

func EncodeHTTPErrorResponse() func(ctx context.Context, err error, w http.ResponseWriter) {
	return func(ctx context.Context, err error, w http.ResponseWriter) {
		if err == nil {
			panic("encodeError with nil error")
		}

		CustomAfterCtx(ctx, w)

		WriteErrorResponse(w, err)
	}
}
