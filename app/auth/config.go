package main

import (
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	httpKit "github.com/superj80820/session-auth/kit/http"
	utilKit "github.com/superj80820/session-auth/kit/util"
)

const (
	storeDriverMongo    = "mongo"
	storeDriverSQLite   = "sqlite"
	storeDriverPostgres = "postgres"
	storeDriverMySQL    = "mysql"
)

type config struct {
	env  string
	port string

	jwtSecret       string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration

	frontendURL      string
	corsExtraOrigins []string

	storeDriver   string
	ormDSN        string
	mongoURI      string
	mongoDatabase string

	redisAddr     string
	redisPassword string
	redisDB       int

	trustedProxies       []string
	loginRateLimitMax    int
	loginRateLimitWindow time.Duration
	sessionPurgeSpec     string

	enableTracer bool
	enableMetric bool
	logPath      string
}

func (c *config) isProduction() bool {
	return c.env == "production"
}

func (c *config) allowedOrigins() []string {
	return append([]string{c.frontendURL}, c.corsExtraOrigins...)
}

// loadEnvFile reads .env into the process environment when the file exists.
// Variables already set win.
func loadEnvFile(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "load env file failed")
	}
	return nil
}

func loadConfig() (*config, error) {
	c := &config{
		env:  utilKit.GetEnvString("ENV", ""),
		port: utilKit.GetEnvString("PORT", "5002"),

		jwtSecret:       utilKit.GetEnvString("JWT_SECRET", ""),
		accessTokenTTL:  utilKit.GetEnvDuration("ACCESS_TOKEN_TTL", time.Hour),
		refreshTokenTTL: utilKit.GetEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		frontendURL:      utilKit.GetEnvString("FRONTEND_URL", "http://localhost:5173"),
		corsExtraOrigins: utilKit.GetEnvStringSlice("CORS_EXTRA_ORIGINS", []string{"http://localhost:5003"}),

		storeDriver:   utilKit.GetEnvString("STORE_DRIVER", storeDriverMongo),
		ormDSN:        utilKit.GetEnvString("ORM_DSN", ""),
		mongoURI:      utilKit.GetEnvString("MONGO_URI", ""),
		mongoDatabase: utilKit.GetEnvString("MONGO_DATABASE", "auth"),

		redisAddr:     utilKit.GetEnvString("REDIS_ADDR", "localhost:6379"),
		redisPassword: utilKit.GetEnvString("REDIS_PASSWORD", ""),
		redisDB:       utilKit.GetEnvInt("REDIS_DB", 0),

		trustedProxies:       utilKit.GetEnvStringSlice("TRUSTED_PROXIES", nil),
		loginRateLimitMax:    utilKit.GetEnvInt("LOGIN_RATE_LIMIT_MAX", 5),
		loginRateLimitWindow: utilKit.GetEnvDuration("LOGIN_RATE_LIMIT_WINDOW", 15*time.Minute),
		sessionPurgeSpec:     utilKit.GetEnvString("SESSION_PURGE_SPEC", "@every 1h"),

		enableTracer: utilKit.GetEnvBool("ENABLE_TRACER", false),
		enableMetric: utilKit.GetEnvBool("ENABLE_METRIC", false),
		logPath:      utilKit.GetEnvString("LOG_PATH", "./go.log"),
	}
	if c.storeDriver == storeDriverSQLite && c.ormDSN == "" {
		c.ormDSN = "auth.db"
	}
	return c, c.validate()
}

func (c *config) validate() error {
	var missing []string
	if c.jwtSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.env == "" {
		missing = append(missing, "ENV")
	}
	switch c.storeDriver {
	case storeDriverMongo:
		if c.mongoURI == "" {
			missing = append(missing, "MONGO_URI")
		}
	case storeDriverPostgres, storeDriverMySQL:
		if c.ormDSN == "" {
			missing = append(missing, "ORM_DSN")
		}
	case storeDriverSQLite:
	default:
		return errors.Errorf("STORE_DRIVER must be one of mongo, sqlite, postgres, mysql, got %q", c.storeDriver)
	}
	if len(missing) > 0 {
		return errors.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	switch c.env {
	case "development", "production", "test":
	default:
		return errors.Errorf(`ENV must be either "development", "production", or "test", got %q`, c.env)
	}
	if c.accessTokenTTL <= 0 || c.refreshTokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	if c.loginRateLimitMax <= 0 || c.loginRateLimitWindow < time.Second {
		return errors.New("login rate limit needs a positive max and a window of at least one second")
	}
	if _, err := httpKit.CreateIPResolver(c.trustedProxies); err != nil {
		return errors.Wrap(err, "TRUSTED_PROXIES")
	}
	return nil
}
