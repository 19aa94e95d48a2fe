package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/annedoesstuff/budgetBenzin/internal/api/http"
	"github.com/annedoesstuff/budgetBenzin/internal/config"
	"github.com/annedoesstuff/budgetBenzin/internal/fuel"
	"github.com/annedoesstuff/budgetBenzin/internal/fuel/sources"
	"github.com/annedoesstuff/budgetBenzin/internal/logging"
	"github.com/annedoesstuff/budgetBenzin/internal/scheduler"
	"github.com/annedoesstuff/budgetBenzin/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logg := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	// Documents are either served over HTTP or read from the job's output folder.
	var fetcher sources.Fetcher
	if cfg.SourceBaseURL != "" {
		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
		fetcher = sources.NewHTTPFetcher(httpClient, cfg.SourceBaseURL, cfg.FetchMaxRetries)
	} else {
		fetcher = sources.NewDirFetcher(cfg.SourceDir)
	}

	source, err := sources.New(cfg.SourceLayout, fetcher, cfg.PricesDocument, cfg.StationsDocument)
	if err != nil {
		log.Fatalf("failed to create source: %v", err)
	}

	memStore := store.NewMemoryStore(cfg.HistoryMaxSnapshots, cfg.HistoryMaxAge)
	service := fuel.NewService(memStore, source, cfg.PriceFormat, logg)

	// A failed first load is served as an error until a refresh succeeds.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 2*cfg.HTTPTimeout+time.Second)
	_ = service.Load(loadCtx)
	cancelLoad()

	sched := scheduler.New(service, cfg.RefreshInterval, 2*cfg.HTTPTimeout+time.Second, logg)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "budgetbenzin",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "budgetbenzin",
		})
	})

	httpapi.RegisterRoutes(app, service, httpapi.Options{
		DefaultFuel: cfg.DefaultFuel,
		Location:    cfg.Location,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logg.Error("fiber server stopped", "error", err)
		}
	}()
	logg.Info("listening", "port", cfg.Port, "source", source.Name())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logg.Error("error during shutdown", "error", err)
	}
}
