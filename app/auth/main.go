package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/pkg/errors"
	accountMongoRepo "github.com/superj80820/session-auth/auth/repository/account/mongo"
	accountORMRepo "github.com/superj80820/session-auth/auth/repository/account/orm"
	csrfRepo "github.com/superj80820/session-auth/auth/repository/csrf"
	sessionMongoRepo "github.com/superj80820/session-auth/auth/repository/session/mongo"
	sessionORMRepo "github.com/superj80820/session-auth/auth/repository/session/orm"
	jwtTokenRepo "github.com/superj80820/session-auth/auth/repository/token/jwt"
	accountUseCase "github.com/superj80820/session-auth/auth/usecase/account"
	authUseCase "github.com/superj80820/session-auth/auth/usecase/auth"
	sessionUseCase "github.com/superj80820/session-auth/auth/usecase/session"
	"github.com/superj80820/session-auth/domain"
	httpKit "github.com/superj80820/session-auth/kit/http"
	loggerKit "github.com/superj80820/session-auth/kit/logger"
	mongoKit "github.com/superj80820/session-auth/kit/mongo"
	ormKit "github.com/superj80820/session-auth/kit/orm"
	redisKit "github.com/superj80820/session-auth/kit/redis"
	traceKit "github.com/superj80820/session-auth/kit/trace"
	utilKit "github.com/superj80820/session-auth/kit/util"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

type stores struct {
	accountRepo        domain.AccountRepo
	refreshSessionRepo domain.RefreshSessionRepo
	close              func()
}

func createStores(ctx context.Context, cfg *config, logger *loggerKit.Logger) (*stores, error) {
	if cfg.storeDriver == storeDriverMongo {
		client, err := mongoKit.CreateClient(ctx, cfg.mongoURI, 10*time.Second)
		if err != nil {
			return nil, errors.Wrap(err, "create mongo client failed")
		}
		db := client.Database(cfg.mongoDatabase)

		var (
			accountRepo        domain.AccountRepo
			refreshSessionRepo domain.RefreshSessionRepo
		)
		// each constructor ensures its own indexes
		eg, egCtx := errgroup.WithContext(ctx)
		eg.Go(func() (err error) {
			accountRepo, err = accountMongoRepo.CreateAccountRepo(egCtx, db)
			return errors.Wrap(err, "create account repo failed")
		})
		eg.Go(func() (err error) {
			refreshSessionRepo, err = sessionMongoRepo.CreateRefreshSessionRepo(egCtx, db)
			return errors.Wrap(err, "create refresh session repo failed")
		})
		if err := eg.Wait(); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &stores{
			accountRepo:        accountRepo,
			refreshSessionRepo: refreshSessionRepo,
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					logger.Error("disconnect mongo failed", loggerKit.Error(err))
				}
			},
		}, nil
	}

	var useDB ormKit.Option
	switch cfg.storeDriver {
	case storeDriverSQLite:
		useDB = ormKit.UseSQLite(cfg.ormDSN)
	case storeDriverPostgres:
		useDB = ormKit.UsePostgres(cfg.ormDSN)
	case storeDriverMySQL:
		useDB = ormKit.UseMySQL(cfg.ormDSN)
	}
	var options []ormKit.Option
	if cfg.env == "development" {
		options = append(options, ormKit.WithQueryLog)
	}
	db, err := ormKit.CreateDB(useDB, options...)
	if err != nil {
		return nil, errors.Wrap(err, "create orm db failed")
	}
	accountRepo, err := accountORMRepo.CreateAccountRepo(db)
	if err != nil {
		return nil, errors.Wrap(err, "create account repo failed")
	}
	refreshSessionRepo, err := sessionORMRepo.CreateRefreshSessionRepo(db)
	if err != nil {
		return nil, errors.Wrap(err, "create refresh session repo failed")
	}
	return &stores{
		accountRepo:        accountRepo,
		refreshSessionRepo: refreshSessionRepo,
		close: func() {
			if err := db.Close(); err != nil {
				logger.Error("close orm db failed", loggerKit.Error(err))
			}
		},
	}, nil
}

func main() {
	if err := loadEnvFile(); err != nil {
		panic(err)
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logLevel := loggerKit.InfoLevel
	if cfg.env == "development" {
		logLevel = loggerKit.DebugLevel
	}
	logger, err := loggerKit.NewLogger(cfg.logPath, logLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	storage, err := createStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("create stores failed", loggerKit.Error(err))
	}
	defer storage.close()

	singletonCache, err := redisKit.CreateCache(ctx, cfg.redisAddr, cfg.redisPassword, cfg.redisDB)
	if err != nil {
		logger.Fatal("create redis cache failed", loggerKit.Error(err))
	}
	defer singletonCache.Close()
	loginRateLimit := utilKit.CreateCacheRateLimit(
		singletonCache,
		cfg.loginRateLimitMax,
		cfg.loginRateLimitWindow,
		utilKit.WithKeyPrefix("rate-limit:login:"),
	)

	var tracer trace.Tracer
	if cfg.enableTracer {
		var shutdown traceKit.ShutdownFunc
		tracer, shutdown, err = traceKit.CreateTracer(ctx, SERVICE_NAME, traceKit.WithEnvironment(cfg.env))
		if err != nil {
			logger.Fatal("create tracer failed", loggerKit.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.Error("shutdown tracer failed", loggerKit.Error(err))
			}
		}()
	} else {
		tracer = traceKit.CreateNoOpTracer()
	}

	tokenRepo, err := jwtTokenRepo.CreateTokenRepo(cfg.jwtSecret, cfg.accessTokenTTL, cfg.refreshTokenTTL)
	if err != nil {
		logger.Fatal("create token repo failed", loggerKit.Error(err))
	}
	auth, err := authUseCase.CreateAuthUseCase(storage.accountRepo, storage.refreshSessionRepo, tokenRepo, logger)
	if err != nil {
		logger.Fatal("create auth use case failed", loggerKit.Error(err))
	}
	account, err := accountUseCase.CreateAccountUseCase(storage.accountRepo, logger)
	if err != nil {
		logger.Fatal("create account use case failed", loggerKit.Error(err))
	}
	purgeScheduler, err := sessionUseCase.CreateScheduler(
		cfg.sessionPurgeSpec,
		sessionUseCase.CreateSessionPurgeUseCase(storage.refreshSessionRepo, logger),
		logger,
	)
	if err != nil {
		logger.Fatal("create session purge scheduler failed", loggerKit.Error(err))
	}

	ipResolver, err := httpKit.CreateIPResolver(cfg.trustedProxies)
	if err != nil {
		logger.Fatal("create ip resolver failed", loggerKit.Error(err))
	}

	handler := createHandler(cfg, &services{
		authUseCase:    auth,
		accountUseCase: account,
		csrfRepo:       csrfRepo.CreateCSRFRepo(),
		loginRateLimit: loginRateLimit.Pass,
		ipResolver:     ipResolver,
		tracer:         tracer,
		logger:         logger,
	})

	g := new(run.Group)
	{
		httpSrv := http.Server{
			Addr:              ":" + cfg.port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Add(func() error {
			logger.Info("server running", loggerKit.String("addr", httpSrv.Addr), loggerKit.String("store", cfg.storeDriver))
			if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}, func(err error) {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				logger.Error("shutdown http server failed", loggerKit.Error(err))
			}
		})
	}
	g.Add(purgeScheduler.Run, purgeScheduler.Stop)
	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

	if err := g.Run(); err != nil {
		var signalErr run.SignalError
		if !errors.As(err, &signalErr) {
			logger.Error("server stopped", loggerKit.Error(err))
			return
		}
	}
	logger.Info("server stopped")
}
