package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"

	"dotplatform/internal/domain/notifications"
	"dotplatform/internal/domain/payroll"
	"dotplatform/internal/domain/payslip"
	"dotplatform/internal/platform/config"
	"dotplatform/internal/platform/db"
	"dotplatform/internal/platform/jobs"
	"dotplatform/internal/platform/sqlite"
	"dotplatform/internal/platform/workerpool"
	notificationshandler "dotplatform/internal/transport/http/handlers/notifications"
	payrollhandler "dotplatform/internal/transport/http/handlers/payroll"
	"dotplatform/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	Router  http.Handler
	Payroll *payroll.Service
	Jobs    *jobs.Service

	ping    func(context.Context) error
	closers []func()
}

type stores struct {
	payroll       payroll.StoreAPI
	notifications notifications.StoreAPI
	runs          jobs.RunStore
	idempotency   middleware.IdempotencyStore
	ping          func(context.Context) error
	close         func()
}

var exposedHeaders = []string{
	middleware.RequestIDHeader, "X-Total-Count", "X-Payslip-Path", "Content-Disposition",
	"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After", "Idempotent-Replayed",
}

// NewLogger builds the JSON logger shared by the app and the request logger.
func NewLogger(cfg config.Config) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(cfg.Environment != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "dotplatform-payroll"),
		slog.String("env", cfg.Environment),
	)
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		conn, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return stores{}, fmt.Errorf("sqlite open failed: %w", err)
		}
		if cfg.RunMigrations {
			if err := sqlite.Migrate(conn); err != nil {
				conn.Close()
				return stores{}, fmt.Errorf("sqlite migrations failed: %w", err)
			}
		}
		return stores{
			payroll:       payroll.NewSQLiteStore(conn),
			notifications: notifications.NewSQLiteStore(conn),
			runs:          jobs.NewSQLiteStore(conn),
			idempotency:   middleware.NewSQLiteIdempotencyStore(conn),
			ping:          conn.PingContext,
			close:         func() { conn.Close() },
		}, nil
	default:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return stores{}, fmt.Errorf("db connect failed: %w", err)
		}
		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool); err != nil {
				pool.Close()
				return stores{}, fmt.Errorf("migrations failed: %w", err)
			}
		}
		return stores{
			payroll:       payroll.NewStore(pool),
			notifications: notifications.NewStore(pool),
			runs:          jobs.NewStore(pool),
			idempotency:   middleware.NewIdempotencyStore(pool),
			ping:          pool.Ping,
			close:         pool.Close,
		}, nil
	}
}

// New opens the configured store and wires every service and route. The job
// queue is not started; call App.Start.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, ping: st.ping, closers: []func(){st.close}}

	files, err := payslip.NewFileStore(cfg.PayslipDir)
	if err != nil {
		app.Close()
		return nil, err
	}

	pool := workerpool.New(cfg.PayrollWorkers, cfg.PayrollWorkers*4)
	app.closers = append(app.closers, pool.Close)

	notifier := notifications.New(st.notifications)
	app.Payroll = payroll.NewService(st.payroll, notifier, pool, payroll.Options{
		Location:      loc,
		PremiumPolicy: payroll.PremiumPolicy(cfg.PremiumPolicy),
		Rates: payroll.AllowanceRates{
			MealDailyRate:      cfg.MealDailyRate,
			TransportDailyRate: cfg.TransportDailyRate,
			SpouseMonthly:      cfg.SpouseAllowance,
			ChildMonthly:       cfg.ChildAllowance,
			LongevityPerYear:   cfg.LongevityPerYear,
		},
	})
	app.Jobs = jobs.New(st.runs, app.Payroll, cfg.JobQueueSize, cfg.PayrollRunInterval, loc)

	generator := payslip.NewGenerator(payslip.PDFOptions{FontPath: cfg.PayslipFontPath})
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader, middleware.IdempotencyKeyHeader},
		ExposedHeaders:   exposedHeaders,
		MaxAge:           300,
	}))
	router.Use(httplog.RequestLogger(slog.Default(), &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := app.ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
			r.Use(middleware.HeavyRequestRateLimit(cfg.RateLimitPerMinute, time.Minute))
			payrollHandler := payrollhandler.NewHandler(app.Payroll, generator, files, app.Jobs)
			payrollHandler.Idempotency = st.idempotency
			payrollHandler.RegisterRoutes(r)
		})

		notificationsHandler := notificationshandler.NewHandler(notifier)
		notificationsHandler.RegisterRoutes(r)
	})

	app.Router = router
	return app, nil
}

// Start runs the job worker and, when configured, the monthly scheduler.
func (a *App) Start(ctx context.Context) {
	a.Jobs.Start(ctx)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	slog.SetDefault(NewLogger(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()
	app.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("server shutdown failed", "err", err)
		}
	}()

	slog.Info("payroll server listening", "addr", cfg.Addr, "storeDriver", cfg.StoreDriver)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
}
