package main

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"souq/internal/auth"
	"souq/internal/cache"
	"souq/internal/domain/storage"
	"souq/internal/i18n"
	"souq/internal/mailer"
	"souq/internal/ratelimiter"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         *storage.Container
	logger        *zap.SugaredLogger
	images        imageStore
	mailer        mailer.Client
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
	categoryCache *cache.Categories
	messages      *i18n.Messages
	now           func() time.Time
}

type config struct {
	addr          string
	env           string
	frontendURL   string
	db            dbConfig
	redis         redisConfig
	mail          mailConfig
	auth          authConfig
	cloudinaryURL string
	rateLimiter   ratelimiter.Config
	store         storeConfig
}

type authConfig struct {
	basic      basicConfig
	token      tokenConfig
	adminEmail string
}

type tokenConfig struct {
	secret        string
	refreshSecret string
	iss           string
	aud           string
}

type basicConfig struct {
	user string
	pass string
}

type mailConfig struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
}

type dbConfig struct {
	addr        string
	maxConns    int32
	maxIdleTime string
}

type redisConfig struct {
	addr     string
	password string
	db       int
}

type storeConfig struct {
	currency    string
	orderSecret string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{app.config.frontendURL, "https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Language", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(app.LanguageMiddleware)
	if app.rateLimiter != nil {
		r.Use(app.RateLimiterMiddleware)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", app.registerUserHandler)
			r.Post("/login", app.loginHandler)
			r.Post("/refresh", app.refreshTokenHandler)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", app.listProductsHandler)
			r.Get("/{productID}", app.getProductHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware, app.RequireAdmin)
				r.Get("/admin-list", app.adminListProductsHandler)
				r.Post("/", app.createProductHandler)
				r.Put("/{productID}", app.updateProductHandler)
				r.Delete("/{productID}", app.deleteProductHandler)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", app.listCategoriesHandler)
			r.Get("/{categoryID}", app.getCategoryHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware, app.RequireAdmin)
				r.Get("/admin-list", app.adminListCategoriesHandler)
				r.Post("/", app.createCategoryHandler)
				r.Put("/{categoryID}", app.updateCategoryHandler)
				r.Delete("/{categoryID}", app.deleteCategoryHandler)
				r.Post("/{categoryID}/subcategories", app.createSubCategoryHandler)
				r.Delete("/{categoryID}/subcategories/{subID}", app.deleteSubCategoryHandler)
			})
		})

		r.Route("/advertisements", func(r chi.Router) {
			r.Get("/", app.listActiveAdsHandler)
			r.Post("/{adID}/impression", app.trackImpressionHandler)
			r.Post("/{adID}/click", app.trackClickHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware, app.RequireAdmin)
				r.Get("/admin-list", app.adminListAdsHandler)
				r.Post("/", app.createAdHandler)
				r.Post("/reorder", app.reorderAdsHandler)
				r.Put("/{adID}", app.updateAdHandler)
				r.Delete("/{adID}", app.deleteAdHandler)
				r.Post("/{adID}/toggle", app.toggleAdHandler)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)

			r.Get("/users/me", app.getCurrentUserHandler)
			r.With(app.RequireAdmin).Get("/users/admin-list", app.adminListUsersHandler)

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", app.getWishlistHandler)
				r.Post("/{productID}", app.addToWishlistHandler)
				r.Delete("/{productID}", app.removeFromWishlistHandler)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", app.getCartHandler)
				r.Delete("/", app.clearCartHandler)
				r.Post("/items", app.addCartItemHandler)
				r.Patch("/items/{productID}", app.updateCartItemHandler)
				r.Delete("/items/{productID}", app.removeCartItemHandler)
			})

			r.Route("/discounts", func(r chi.Router) {
				r.Post("/validate", app.validateDiscountHandler)

				r.Group(func(r chi.Router) {
					r.Use(app.RequireAdmin)
					r.Get("/admin-list", app.adminListDiscountsHandler)
					r.Post("/", app.createDiscountHandler)
					r.Put("/{discountID}", app.updateDiscountHandler)
					r.Delete("/{discountID}", app.deleteDiscountHandler)
				})
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", app.checkoutHandler)
				r.Get("/", app.listMyOrdersHandler)
				r.With(app.RequireAdmin).Get("/admin-list", app.adminListOrdersHandler)
				r.Get("/{orderID}", app.getOrderHandler)
				r.With(app.RequireAdmin).Patch("/{orderID}/status", app.updateOrderStatusHandler)
			})
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	app.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"env":     app.config.env,
		"version": version,
	})
}
