package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"
	_ "time/tzdata"

	"golang.org/x/sync/errgroup"

	"bookings/internal/backend"
	"bookings/internal/cli"
	"bookings/internal/config"
	"bookings/internal/core"
	"bookings/internal/dashboard"
	apphttp "bookings/internal/http"
	applog "bookings/internal/log"
	"bookings/internal/remote"
	"bookings/internal/scheduler"
	"bookings/internal/store"
	"bookings/internal/view"
	"bookings/internal/websocket"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()
	core.Location = cfg.Location()

	ctx, stop := cli.ShutdownContext(logger)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Dashboard exited with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *applog.Logger) error {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return err
	}
	if res.Cleanup != nil {
		defer res.Cleanup()
	}
	client := remote.NewClient(res.Caller, cfg.RemoteTimeout)

	hub := websocket.NewHub(logger)
	tmpl, err := view.ParseTemplates()
	if err != nil {
		return err
	}
	page := view.NewPage(hub)
	charts := view.NewChartBoard(hub)
	calendar := view.NewCalendarBoard(hub)
	sections := view.NewSections(view.Section(cfg.InitialSection), calendar, hub)
	renderer := view.NewRenderer(tmpl, page, charts, calendar, logger)

	var (
		sinks   []dashboard.EventSink
		history dashboard.History
		checks  = map[string]func(context.Context) error{}
	)
	journal := cli.InitJournal(logger, cfg.JournalDBPath)
	if journal != nil {
		defer journal.Close()
		sinks = append(sinks, journal)
		history = journal
		checks["journal"] = journal.Ping
	}
	if publisher := cli.InitAMQP(ctx, logger, cfg.AMQPURL, cfg.AMQPExchange); publisher != nil {
		defer publisher.Close()
		sinks = append(sinks, publisher)
		checks["amqp"] = publisher.Ping
	}

	dash := dashboard.New(client, store.New(), renderer, sections, dashboard.Options{
		ExpenseDelete: cfg.RemoteExpenseDelete,
		Sink:          dashboard.Sinks(sinks...),
		History:       history,
		Logger:        logger,
	})

	sched := scheduler.New(logger)
	if err := sched.AddRefresh(cfg.RefreshSpec, dash); err != nil {
		return err
	}
	if journal != nil {
		retention := cfg.JournalRetention
		err := sched.Add("journal-prune", "@daily", func(ctx context.Context) {
			if _, err := journal.Prune(ctx, time.Now().Add(-retention)); err != nil {
				logger.Warn("Journal prune failed", applog.FieldError, err)
			}
		})
		if err != nil {
			return err
		}
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:            cfg.Addr(),
		Token:           cfg.DashboardToken,
		WritesPerMinute: cfg.WritesPerMinute,
		Backend:         cfg.RemoteBackend,
	}, apphttp.Deps{
		Dashboard: dash,
		Page:      page,
		Charts:    charts,
		Calendar:  calendar,
		Sections:  sections,
		Renderer:  renderer,
		Live:      hub.Handler(),
		Checks:    checks,
		Logger:    logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return sched.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("Starting bookings dashboard",
			"addr", cfg.Addr(),
			applog.FieldBackend, cfg.RemoteBackend,
			"journal", journal != nil,
			"token_guard", cfg.DashboardToken != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
