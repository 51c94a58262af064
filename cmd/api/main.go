package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/seatbook/seatbook-api/internal/config"
	"github.com/seatbook/seatbook-api/internal/domain/booking"
	"github.com/seatbook/seatbook-api/internal/domain/library"
	"github.com/seatbook/seatbook-api/internal/domain/payment"
	"github.com/seatbook/seatbook-api/internal/domain/settings"
	"github.com/seatbook/seatbook-api/internal/domain/settlement"
	"github.com/seatbook/seatbook-api/internal/middleware"
	"github.com/seatbook/seatbook-api/internal/pkg/database"
	"github.com/seatbook/seatbook-api/internal/pkg/events"
	"github.com/seatbook/seatbook-api/internal/pkg/jwt"
	"github.com/seatbook/seatbook-api/internal/pkg/logger"
	"github.com/seatbook/seatbook-api/internal/pkg/razorpay"
	pkgresponse "github.com/seatbook/seatbook-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Str("booking_timezone", cfg.BookingTimezone).
		Msg("Starting SeatBook API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	var publisher events.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	} else {
		log.Warn().Msg("AMQP_URL not set, booking events are not published")
	}

	if cfg.RazorpayKeySecret == "" {
		log.Warn().Msg("RAZORPAY_KEY_SECRET not set, payment verification will reject every signature")
	}

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)
	loc := cfg.Location()

	// ---------- Repositories ----------
	settingsRepo := settings.NewRepository(db)
	libraryRepo := library.NewRepository(db)
	bookingRepo := booking.NewRepository(db)
	ledgerRepo := settlement.NewRepository(db)

	// ---------- Services ----------
	settingsService := settings.NewService(settingsRepo, settings.NewRedisCache(redis, cfg.SettingsCacheTTL))
	libraryService := library.NewService(libraryRepo)
	bookingService := booking.NewService(bookingRepo, libraryRepo, settingsService, publisher, loc)
	settlementService := settlement.NewService(ledgerRepo, loc)

	gateway := razorpay.NewClient(razorpay.Config{
		BaseURL:   cfg.RazorpayBaseURL,
		KeyID:     cfg.RazorpayKeyID,
		KeySecret: cfg.RazorpayKeySecret,
		Timeout:   time.Duration(cfg.RazorpayTimeoutSeconds) * time.Second,
	})
	paymentService := payment.NewService(
		bookingRepo,
		payment.NewConfirmer(db, bookingRepo, ledgerRepo),
		gateway,
		razorpay.NewVerifier(cfg.RazorpayKeySecret),
		settingsService,
		publisher,
	)

	limiter := middleware.NewRateLimiter(redis, cfg.RateLimitEnabled)

	r := newRouter(cfg, routerDeps{
		jwt:        jwtService,
		limiter:    limiter,
		settings:   settings.NewHandler(settingsService),
		libraries:  library.NewHandler(libraryService),
		bookings:   booking.NewHandler(bookingService),
		payments:   payment.NewHandler(paymentService),
		settlement: settlement.NewHandler(settlementService),
		ready: func(ctx context.Context) error {
			return db.PingContext(ctx)
		},
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

type routerDeps struct {
	jwt        *jwt.Service
	limiter    *middleware.RateLimiter
	settings   *settings.Handler
	libraries  *library.Handler
	bookings   *booking.Handler
	payments   *payment.Handler
	settlement *settlement.Handler
	ready      func(ctx context.Context) error
}

func newRouter(cfg *config.Config, d routerDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if d.ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.ready(ctx); err != nil {
				pkgresponse.Error(w, http.StatusServiceUnavailable, "UNAVAILABLE", "database unreachable")
				return
			}
		}
		pkgresponse.OK(w, map[string]string{"status": "ok"})
	})

	authMiddleware := middleware.Auth(d.jwt)
	writeLimit := d.limiter.Limit("booking_write", cfg.RateLimitBookingPerMinute)

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/time-slots", d.libraries.Routes(authMiddleware))
		r.Mount("/bookings", d.bookings.Routes(authMiddleware, writeLimit))
		r.Mount("/payments", d.payments.Routes(authMiddleware, writeLimit))

		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RequireAdmin())

			r.Mount("/settings", d.settings.Routes())
			r.Get("/commission-report", d.settlement.CommissionReport)
			r.Get("/libraries/{id}/transactions", d.settlement.ListByLibrary)
			d.libraries.RegisterAdminRoutes(r)
			r.Get("/bookings", d.bookings.ListAll)
		})
	})

	return r
}
