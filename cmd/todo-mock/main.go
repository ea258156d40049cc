// Package main runs an in-memory task service for local development.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"todo/internal/fakeremote"
	"todo/internal/service"
)

func main() {
	var (
		addr     string
		logLevel string
		seed     bool
	)
	pflag.StringVar(&addr, "addr", "localhost:8080", "listen address")
	pflag.StringVar(&logLevel, "log-level", "INFO", "log level: DEBUG, INFO or ERROR")
	pflag.BoolVar(&seed, "seed", false, "start with a few sample tasks")
	pflag.Parse()

	log := mustMakeLogger(logLevel)

	if err := run(addr, seed, log); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(addr string, seed bool, log *slog.Logger) error {
	log.Info("starting todo-mock server")

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var mw []gin.HandlerFunc
	if log.Enabled(ctx, slog.LevelDebug) {
		mw = append(mw, gin.LoggerWithWriter(os.Stderr))
	}
	remote := fakeremote.New(nil, mw...)
	if seed {
		remote.Seed(sampleTasks(time.Now())...)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           remote.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Debug("shutting down todo-mock server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to shut down", "error", err)
		}
	}()

	log.Info("todo-mock server is running", "address", addr, "base_url", fmt.Sprintf("http://%s/", addr))

	// blocking
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %v", err)
	}
	return nil
}

func sampleTasks(now time.Time) []service.Task {
	day := now.Truncate(24 * time.Hour)
	return []service.Task{
		{ID: "sample-1", Description: "Water the plants", CreatedDate: day, DueDate: day.AddDate(0, 0, 1)},
		{ID: "sample-2", Description: "Renew passport", CreatedDate: day.AddDate(0, 0, -3), DueDate: day.AddDate(0, 1, 0)},
		{ID: "sample-3", Description: "Book dentist", CreatedDate: day.AddDate(0, 0, -7), DueDate: day.AddDate(0, 0, -1), Completed: true},
	}
}

func mustMakeLogger(levelStr string) *slog.Logger {
	var level slog.Level
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
