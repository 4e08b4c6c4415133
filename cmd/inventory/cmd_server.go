package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-inventory-ledger/internal/cache"
	"go-inventory-ledger/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// inventory serve: migrate, seed, and start the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(true)
		if err != nil {
			return err
		}
		defer rt.close()

		if err := server.Seed(cmd.Context(), rt.db, rt.cfg.Auth, rt.log.Named("seed")); err != nil {
			return err
		}

		rdb := cache.NewRedisClient(rt.cfg.Redis.Addr, rt.cfg.Redis.Password)
		categories := cache.NewCategories(rdb, rt.cfg.Redis.CategoryTTL)
		defer categories.Close()
		if rdb != nil {
			if err := categories.Ping(cmd.Context()); err != nil {
				rt.log.Warn("redis unreachable, category cache degraded", zap.Error(err))
			}
		}

		app := server.New(rt.cfg, rt.db, categories, rt.log)

		errCh := make(chan error, 1)
		go func() {
			rt.log.Info("listening", zap.String("port", rt.cfg.Server.Port), zap.String("env", rt.cfg.Server.Env))
			errCh <- app.Listen(":" + rt.cfg.Server.Port)
		}()

		// Wait for interrupt signal to gracefully shutdown
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case err := <-errCh:
			return err
		case sig := <-quit:
			rt.log.Info("shutting down server", zap.String("signal", sig.String()))
		}

		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			rt.log.Error("server forced to shutdown", zap.Error(err))
			return err
		}
		rt.log.Info("server exited")
		return nil
	},
}
