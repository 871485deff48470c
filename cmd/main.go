package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chenBenjamin97/lunge-classifier/pkg/api"
	"github.com/chenBenjamin97/lunge-classifier/pkg/config"
	"github.com/chenBenjamin97/lunge-classifier/pkg/landmarker"
	"github.com/chenBenjamin97/lunge-classifier/pkg/pose"
	"github.com/chenBenjamin97/lunge-classifier/pkg/store"
	"github.com/chenBenjamin97/lunge-classifier/pkg/utils"
	"github.com/chenBenjamin97/lunge-classifier/pkg/video"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	os.Exit(start(".", run))
}

//start loads configuration from configDir, sets up logging and signal handling and calls runner.
//It returns the process exit code once every deferred cleanup ran.
func start(configDir string, runner func(ctx context.Context, cfg *config.Config) error) int {
	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Could not load configuration, got '%v'\n", err)
		return 1
	}

	if err := utils.InitLogger(cfg.Log.Mode); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Could not initialize logger, got '%v'\n", err)
		return 1
	}
	defer utils.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runner(ctx, cfg); err != nil {
		utils.Logger.Error("lunge classifier stopped", zap.Error(err))
		return 1
	}

	return 0
}

func run(ctx context.Context, cfg *config.Config) error {
	sessionID := uuid.NewString()

	results := newResultStore(ctx, cfg)
	defer results.Close()

	classifier := pose.NewClassifier(pose.Options{CorrectedRightBound: cfg.Classifier.CorrectedRightBound})

	if cfg.HTTP.Enabled {
		srv := startServer(cfg, api.NewHandler(classifier, results, sessionID))
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				utils.Logger.Warn("http server shutdown", zap.Error(err))
			}
		}()
	}

	helper := landmarker.NewProcess(cfg.Detector)
	if err := helper.Start(ctx); err != nil {
		return err
	}
	defer helper.Close()

	camera, err := video.OpenCamera(cfg.Capture.Source, cfg.Capture.BufferSize, cfg.Capture.PollInterval)
	if err != nil {
		return err
	}
	defer camera.Close()

	display := video.NewWindowDisplay(cfg.Capture.WindowTitle)
	defer display.Close()

	live := &video.Live{
		SessionID:    sessionID,
		Source:       camera,
		Detector:     video.NewEncodingDetector(helper),
		Classifier:   classifier,
		Store:        results,
		Display:      display,
		RecordPath:   cfg.Capture.RecordPath,
		PollInterval: cfg.Capture.PollInterval,
	}

	return live.Run(ctx)
}

//newResultStore returns redis backed storage when enabled and reachable, in memory storage otherwise
func newResultStore(ctx context.Context, cfg *config.Config) store.ResultStore {
	if !cfg.Redis.Enabled {
		return store.NewMemoryStore()
	}

	redisStore := store.NewRedisStore(&cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := redisStore.Ping(pingCtx); err != nil {
		utils.Logger.Warn("redis connection failed, keeping results in memory", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		redisStore.Close()
		return store.NewMemoryStore()
	}

	utils.Logger.Info("redis connected successfully", zap.String("addr", cfg.Redis.Addr))
	return redisStore
}

func startServer(cfg *config.Config, h *api.Handler) *http.Server {
	gin.SetMode(cfg.HTTP.Mode)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: api.SetRouter(h),
	}

	go func() {
		utils.Logger.Info("http server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.Error("http server failed", zap.Error(err))
		}
	}()

	return srv
}
