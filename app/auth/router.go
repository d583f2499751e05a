package main

import (
	"net/http"
	"time"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	deliveryHTTP "github.com/superj80820/session-auth/auth/delivery/http"
	"github.com/superj80820/session-auth/domain"
	"github.com/superj80820/session-auth/kit/code"
	httpKit "github.com/superj80820/session-auth/kit/http"
	httpMiddlewareKit "github.com/superj80820/session-auth/kit/http/middleware"
	httpTransportKit "github.com/superj80820/session-auth/kit/http/transport"
	loggerKit "github.com/superj80820/session-auth/kit/logger"
	"go.opentelemetry.io/otel/trace"
)

const (
	SYSTEM_NAME  = "system"
	SERVICE_NAME = "auth"

	bodyLimit = 10 << 10
)

type services struct {
	authUseCase    domain.AuthUseCase
	accountUseCase domain.AccountUseCase
	csrfRepo       domain.CSRFRepo
	loginRateLimit httpMiddlewareKit.PassFunc
	ipResolver     *httpKit.IPResolver
	tracer         trace.Tracer
	logger         *loggerKit.Logger
}

func createPipeline(cfg *config, svc *services, sessionCookie deliveryHTTP.SessionCookie) *httpKit.Pipeline {
	return httpKit.CreatePipeline(
		httpKit.CORSStage(httpKit.CORSConfig{
			AllowedOrigins:   cfg.allowedOrigins(),
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders:   []string{"Content-Type", "X-XSRF-TOKEN", "X-CSRF-TOKEN"},
			AllowCredentials: true,
			MaxAge:           10 * time.Minute,
		}, svc.logger),
		httpKit.SecurityHeadersStage(cfg.isProduction()),
		httpKit.CompressionStage(),
		httpKit.BodyLimitStage(bodyLimit, svc.logger),
		deliveryHTTP.CSRFStage(svc.csrfRepo, sessionCookie, svc.logger),
	)
}

func createHandler(cfg *config, svc *services) http.Handler {
	sessionCookie := deliveryHTTP.CreateSessionCookie(cfg.isProduction())

	customMiddleware := endpoint.Chain(
		httpMiddlewareKit.CreateLoggingMiddleware(svc.logger),
		httpMiddlewareKit.CreateMetrics(SYSTEM_NAME, SERVICE_NAME),
	)
	loginRateLimitMiddleware := httpMiddlewareKit.CreateRateLimitMiddleware(httpMiddlewareKit.KeyByIP, svc.loginRateLimit)
	authMiddleware := httpMiddlewareKit.CreateAuthMiddleware(svc.authUseCase.Verify)
	adminMiddleware := deliveryHTTP.CreateRoleMiddleware(domain.NewRoleSet(domain.RoleAdmin))

	options := []httptransport.ServerOption{
		httptransport.ServerBefore(httpKit.CustomBeforeCtx(svc.tracer, deliveryHTTP.AccessTokenCookieName, svc.ipResolver)),
		httptransport.ServerAfter(httpKit.CustomAfterCtx),
		httptransport.ServerErrorEncoder(httpKit.EncodeHTTPErrorResponse()),
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(svc.logger.Kit())),
		httptransport.ServerFinalizer(httpKit.CustomFinalizer),
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpKit.WriteErrorResponse(w, code.CreateErrorCode(http.StatusNotFound))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpKit.WriteErrorResponse(w, code.CreateErrorCode(http.StatusMethodNotAllowed))
	})

	r.Methods("GET").Path("/").Handler(
		httptransport.NewServer(
			customMiddleware(deliveryHTTP.MakeHealthEndpoint()),
			httpTransportKit.DecodeEmptyRequest,
			httpTransportKit.EncodeJsonResponse,
			options...,
		))
	r.Methods("GET").Path("/auth/csrf-token").Handler(
		httptransport.NewServer(
			customMiddleware(deliveryHTTP.MakeCSRFTokenEndpoint()),
			httpTransportKit.DecodeEmptyRequest,
			httpTransportKit.EncodeJsonResponse,
			options...,
		))
	r.Methods("POST").Path("/auth/register").Handler(
		httptransport.NewServer(
			customMiddleware(deliveryHTTP.MakeAuthRegisterEndpoint(svc.authUseCase)),
			deliveryHTTP.DecodeAuthRegisterRequest,
			deliveryHTTP.EncodeAuthRegisterResponse(sessionCookie),
			options...,
		))
	r.Methods("POST").Path("/auth/login").Handler(
		httptransport.NewServer(
			customMiddleware(loginRateLimitMiddleware(deliveryHTTP.MakeAuthLoginEndpoint(svc.authUseCase))),
			deliveryHTTP.DecodeAuthLoginRequest,
			deliveryHTTP.EncodeAuthSessionResponse(sessionCookie),
			options...,
		))
	r.Methods("POST").Path("/auth/logout").Handler(
		httptransport.NewServer(
			customMiddleware(deliveryHTTP.MakeAuthLogoutEndpoint(svc.authUseCase)),
			deliveryHTTP.DecodeRefreshTokenRequest,
			deliveryHTTP.EncodeAuthLogoutResponse(sessionCookie),
			options...,
		))
	r.Methods("POST").Path("/auth/refresh-token").Handler(
		httptransport.NewServer(
			customMiddleware(deliveryHTTP.MakeAuthRefreshTokenEndpoint(svc.authUseCase)),
			deliveryHTTP.DecodeRefreshTokenRequest,
			deliveryHTTP.EncodeAuthSessionResponse(sessionCookie),
			options...,
		))
	r.Methods("GET").Path("/users/profile").Handler(
		httptransport.NewServer(
			customMiddleware(authMiddleware(deliveryHTTP.MakeUserProfileEndpoint(svc.accountUseCase))),
			httpTransportKit.DecodeEmptyRequest,
			httpTransportKit.EncodeJsonResponse,
			options...,
		))
	r.Methods("PUT").Path("/users/profile").Handler(
		httptransport.NewServer(
			customMiddleware(authMiddleware(deliveryHTTP.MakeUserProfileUpdateEndpoint(svc.accountUseCase))),
			deliveryHTTP.DecodeUserProfileUpdateRequest,
			httpTransportKit.EncodeJsonResponse,
			options...,
		))
	r.Methods("GET").Path("/users/{id}").Handler(
		httptransport.NewServer(
			customMiddleware(authMiddleware(adminMiddleware(deliveryHTTP.MakeUserGetEndpoint(svc.accountUseCase)))),
			deliveryHTTP.DecodeUserGetRequest,
			httpTransportKit.EncodeJsonResponse,
			options...,
		))
	if cfg.enableMetric {
		r.Methods("GET").Path("/metrics").Handler(promhttp.Handler())
	}

	return createPipeline(cfg, svc, sessionCookie).Then(r)
}
