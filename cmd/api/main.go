package main

import (
	"expvar"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"souq/internal/auth"
	"souq/internal/cache"
	"souq/internal/db"
	"souq/internal/domain/storage"
	"souq/internal/i18n"
	"souq/internal/mailer"
	"souq/internal/ratelimiter"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "1.0.0"

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		fmt.Printf("Invalid %s, defaulting to %d\n", key, fallback)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		fmt.Printf("Invalid %s, defaulting to %t\n", key, fallback)
		return fallback
	}
	return b
}

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	return ratelimiter.Config{
		RequestsPerTimeFrame: getEnvInt("RATELIMITER_REQUESTS_COUNT", 200),
		TimeFrame:            5 * time.Second,
		Enabled:              getEnvBool("RATE_LIMITER_ENABLED", false),
	}
}

func loadConfig() config {
	return config{
		addr:        getEnv("ADDR", ":8080"),
		env:         getEnv("ENV", "development"),
		frontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		db: dbConfig{
			addr:        os.Getenv("DB_ADDR"),
			maxConns:    int32(getEnvInt("DB_MAX_CONNS", 30)),
			maxIdleTime: getEnv("DB_MAX_IDLE_TIME", "15m"),
		},
		redis: redisConfig{
			addr:     os.Getenv("REDIS_ADDR"),
			password: os.Getenv("REDIS_PASSWORD"),
			db:       getEnvInt("REDIS_DB", 0),
		},
		mail: mailConfig{
			host:      os.Getenv("SMTP_HOST"),
			port:      getEnvInt("SMTP_PORT", 587),
			username:  os.Getenv("SMTP_USERNAME"),
			password:  os.Getenv("SMTP_PASSWORD"),
			fromEmail: getEnv("MAIL_FROM_EMAIL", "orders@souq.local"),
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
			token: tokenConfig{
				secret:        os.Getenv("AUTH_TOKEN_SECRET"),
				refreshSecret: os.Getenv("AUTH_TOKEN_REFRESH_SECRET"),
				iss:           "souq",
				aud:           "souq-clients",
			},
			adminEmail: os.Getenv("ADMIN_EMAIL"),
		},
		cloudinaryURL: os.Getenv("CLOUDINARY_URL"),
		rateLimiter:   LoadRateLimiterConfig(),
		store: storeConfig{
			currency:    getEnv("STORE_CURRENCY", "SAR"),
			orderSecret: getEnv("ORDER_NUMBER_SECRET", "souq"),
		},
	}
}

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(os.Stdout), zapcore.InfoLevel)

	return zap.New(core).Sugar(), nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := loadConfig()

	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	if cfg.auth.token.secret == "" || cfg.auth.token.refreshSecret == "" {
		logger.Fatal("AUTH_TOKEN_SECRET and AUTH_TOKEN_REFRESH_SECRET must be set")
	}

	// Database
	pool, err := db.New(cfg.db.addr, db.Options{MaxConns: cfg.db.maxConns, MaxIdleTime: cfg.db.maxIdleTime})
	if err != nil {
		logger.Fatal(err)
	}
	defer pool.Close()
	logger.Info("database connection pool established")

	if err := db.Migrate(pool); err != nil {
		logger.Fatal(err)
	}

	messages, err := i18n.NewMessages()
	if err != nil {
		logger.Fatal(err)
	}

	app := &application{
		config:        cfg,
		logger:        logger,
		store:         storage.NewContainer(pool, cfg.store.orderSecret),
		messages:      messages,
		authenticator: auth.NewJWTAuthenticator(cfg.auth.token.secret, cfg.auth.token.refreshSecret, cfg.auth.token.aud, cfg.auth.token.iss),
		now:           time.Now,
	}

	// Images
	if cfg.cloudinaryURL != "" {
		cld, err := cloudinary.NewFromURL(cfg.cloudinaryURL)
		if err != nil {
			logger.Fatal(err)
		}
		app.images = &cloudinaryImages{cld: cld}
	} else {
		logger.Warn("CLOUDINARY_URL not set, image uploads disabled")
	}

	// Category cache
	var redisClient *redis.Client
	if cfg.redis.addr != "" {
		redisClient, err = cache.Connect(cfg.redis.addr, cfg.redis.password, cfg.redis.db)
		if err != nil {
			logger.Warnw("redis unavailable, category cache disabled", "error", err)
		} else {
			defer redisClient.Close()
		}
	}
	app.categoryCache = cache.NewCategories(redisClient, cache.DefaultTTL, logger)

	// Mail
	if smtp, err := mailer.NewSMTP(cfg.mail.host, cfg.mail.port, cfg.mail.username, cfg.mail.password, cfg.mail.fromEmail); err == nil {
		app.mailer = smtp
	} else {
		logger.Warnw("order confirmation emails disabled", "error", err)
	}

	// Rate limiter
	if cfg.rateLimiter.Enabled {
		rl := ratelimiter.NewFixedWindowLimiter(cfg.rateLimiter.RequestsPerTimeFrame, cfg.rateLimiter.TimeFrame)
		app.rateLimiter = rl
		app.every(time.Minute, "sweep rate limiter", func() error {
			rl.Sweep()
			return nil
		})
	}

	app.deactivateExpiredAdsEvery(15 * time.Minute)

	// Metrics collected at /api/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(func() any {
		s := pool.Stat()
		return map[string]any{
			"total_conns":    s.TotalConns(),
			"idle_conns":     s.IdleConns(),
			"acquired_conns": s.AcquiredConns(),
		}
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
