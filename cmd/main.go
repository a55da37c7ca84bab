package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/celestiaorg/faceswap/config"
	"github.com/celestiaorg/faceswap/internal/appctx"
	"github.com/celestiaorg/faceswap/internal/events"
	"github.com/celestiaorg/faceswap/internal/executor"
	"github.com/celestiaorg/faceswap/internal/jobs"
	"github.com/celestiaorg/faceswap/internal/logger"
	"github.com/celestiaorg/faceswap/internal/services"
	"github.com/celestiaorg/faceswap/internal/staging"
	"github.com/celestiaorg/faceswap/internal/types"
	"github.com/celestiaorg/faceswap/pkg/api/v1/handlers"
	"github.com/celestiaorg/faceswap/pkg/api/v1/routes"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logger.Fatal(err)
	}
	logger.InitializeAndConfigure()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	st, err := staging.NewManager(cfg.UploadDir, cfg.OutputDir)
	if err != nil {
		logger.Fatalf("Failed to prepare staging directories: %v", err)
	}

	pipeline, err := executor.NewCommand(cfg.PipelineCommand)
	if err != nil {
		logger.Fatalf("Invalid pipeline command: %v", err)
	}
	pipeline.Dir = cfg.PipelineWorkdir

	defaults, err := cfg.Defaults()
	if err != nil {
		logger.Fatalf("Failed to load parameter defaults: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Jobs created by the server live in memory
	apiJobs := jobs.NewMemoryStore()
	bus := events.NewBus(events.EventChannelSize)
	stats := services.NewJobStats(bus)
	bus.Start(ctx)
	jobManager := jobs.NewManager(jobs.StoreSet{appctx.API: apiJobs}, bus)

	processService := services.NewProcessService(st, jobManager, pipeline, defaults)

	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		BodyLimit:             cfg.MaxUploadMB << 20,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(logger.APILogger())

	routes.RegisterRoutes(app,
		handlers.NewProcessHandler(processService),
		handlers.NewHealthHandler(st, stats),
		handlers.NewJobHandler(jobManager),
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go services.LaunchOutputJanitor(ctx, &wg, st, services.JanitorConfig{
		Retention: cfg.OutputRetention,
		Interval:  cfg.JanitorInterval,
		Jobs:      apiJobs,
	})

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Errorf("Server shutdown failed: %v", err)
		}
	}()

	logger.InfoWithFields("Starting faceswap API server", map[string]interface{}{
		"address":    cfg.Address(),
		"upload_dir": st.UploadDir(),
		"output_dir": st.OutputDir(),
		"pipeline":   cfg.PipelineCommand,
	})
	if err := app.Listen(cfg.Address()); err != nil {
		logger.Errorf("Server stopped: %v", err)
		stop()
	}

	wg.Wait()
	logger.Info("Server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(types.ErrResponse(
		utils.StatusMessage(code), err.Error(),
	))
}
