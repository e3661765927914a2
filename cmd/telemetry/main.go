// Command telemetry runs a drive and streams it over a websocket at /ws in real time,
// one row per time step. The drive document is the file argument or DRIVE_FILE.
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

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rabid-robot/motion-engine/internal/config"
	"github.com/rabid-robot/motion-engine/internal/drive"
	"github.com/rabid-robot/motion-engine/internal/engine"
	"github.com/rabid-robot/motion-engine/internal/logging"
	"github.com/rabid-robot/motion-engine/internal/telemetry"
)

func main() {
	cfg, loaded := config.Load()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error configuring logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	if !loaded {
		logger.Debug("no .env file found, using environment variables")
	}

	if len(os.Args) > 1 {
		cfg.DriveFile = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, logger); err != nil {
		logger.Error("telemetry stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	if cfg.DriveFile == "" {
		return errors.New("no drive document: pass a file or set DRIVE_FILE")
	}
	data, err := os.ReadFile(cfg.DriveFile)
	if err != nil {
		return fmt.Errorf("reading drive document: %w", err)
	}
	input, err := engine.Parse(cfg.DriveFile, data)
	if err != nil {
		return err
	}
	e, err := engine.New(input, engine.WithLogger(logger))
	if err != nil {
		return err
	}
	driveLog, err := e.Run(ctx)
	if err != nil {
		return err
	}

	hub := telemetry.NewHub(logger)
	setpoints := &drive.Recorder{}
	player, err := telemetry.NewPlayer(hub, driveLog,
		telemetry.WithLoop(cfg.TelemetryLoop),
		telemetry.WithPlayerDriver(setpoints),
		telemetry.WithPlayerLogger(logger),
	)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{
		Addr:              cfg.TelemetryAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	// Playback ending also ends the server.
	gctx, cancel := context.WithCancel(gctx)
	defer cancel()
	g.Go(func() error {
		logger.Info("telemetry listening", zap.String("addr", srv.Addr), zap.String("run_id", driveLog.Meta.RunID))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("telemetry server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		defer cancel()
		err := player.Play(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info("telemetry finished", zap.Int("setpoints", len(setpoints.Setpoints())))
	return err
}
