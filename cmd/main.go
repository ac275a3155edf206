// cmd/main.go is the application entry point.
// It wires together all layers and runs them under a supervisor tree.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/auth"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/clock"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/config"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/database"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/handler"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/logging"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/notify"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/repository"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/scheduler"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/service"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/supervisor"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 1. Connect to PostgreSQL and apply migrations ─────────────────────
	pool, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logging.Info().Msg("connected to PostgreSQL")

	// ── 2. Wire up layers ────────────────────────────────────────────────
	loc, err := cfg.Booking.Location()
	if err != nil {
		return err
	}
	clk := clock.NewSystem(loc)
	policy := cfg.Booking.Policy()

	users := repository.NewUserRepository(pool)
	locations := repository.NewLocationRepository(pool)
	events := repository.NewEventRepository(pool)
	bookings := repository.NewBookingRepository(pool)
	feedback := repository.NewFeedbackRepository(pool)

	dispatcher := notify.NewDispatcher(notify.NewSender(cfg.SMTP), cfg.SMTP.Timeout)
	defer dispatcher.Wait()

	userSvc := service.NewUserService(users)
	bookingSvc := service.NewBookingService(bookings, events, locations, users, dispatcher, clk,
		service.WithBookingPolicy(policy))
	feedbackSvc := service.NewFeedbackService(bookings, feedback, clk)
	eventSvc := service.NewEventService(events, locations, bookings, users, dispatcher, clk,
		service.WithEventPolicy(policy),
		service.WithUpcomingLimit(cfg.Booking.UpcomingLimit),
		service.WithDefaultCapacity(cfg.Booking.DefaultCapacity))
	reminderSvc := service.NewReminderService(events, locations, bookings, users, dispatcher, clk,
		service.WithReminderPolicy(policy),
		service.WithReminderConcurrency(cfg.Reminder.MaxConcurrent),
		service.WithSendRate(cfg.Reminder.SendRate, cfg.Reminder.SendBurst))

	tokens, err := auth.NewManager(cfg.Auth)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	// ── 3. Build the router ───────────────────────────────────────────────
	router := handler.NewRouter(handler.Services{
		Bookings:  bookingSvc,
		Events:    eventSvc,
		Feedback:  feedbackSvc,
		Dashboard: service.NewDashboardService(bookingSvc, feedbackSvc),
		Locations: service.NewLocationService(locations),
		Users:     userSvc,
		Reminders: reminderSvc,
	}, auth.NewAuthenticator(tokens, userSvc), pool, handler.RouterConfig{
		CORSOrigins:       cfg.Server.CORSOrigins,
		RateLimitRequests: cfg.Server.RateLimitRequests,
		RateLimitWindow:   cfg.Server.RateLimitWindow,
	})

	// ── 4. Run services under supervision until a signal arrives ─────────
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree := supervisor.New(supervisor.Config{ShutdownTimeout: cfg.Server.ShutdownTimeout})
	tree.AddAPIService(supervisor.NewHTTPService(srv, addr, cfg.Server.ShutdownTimeout))
	if cfg.Reminder.Enabled {
		daily, err := scheduler.NewDaily("reminders", cfg.Reminder.RunAt, clk, func(ctx context.Context) error {
			_, err := reminderSvc.Run(ctx)
			return err
		})
		if err != nil {
			return err
		}
		tree.AddJobService(daily)
	}

	err = tree.Serve(ctx)
	logging.Info().Msg("shutting down, waiting for pending notifications")
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("supervisor: %w", err)
	}
	if report, _ := tree.UnstoppedServiceReport(); len(report) > 0 {
		logging.Warn().Int("services", len(report)).Msg("services did not stop in time")
	}
	return nil
}
