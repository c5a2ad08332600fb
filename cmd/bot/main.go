package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ytakhs/lol-jinro-bot/internal/config"
	"github.com/ytakhs/lol-jinro-bot/internal/discord"
	"github.com/ytakhs/lol-jinro-bot/internal/httpapi"
	"github.com/ytakhs/lol-jinro-bot/internal/registry"
	"github.com/ytakhs/lol-jinro-bot/internal/riot"
	"github.com/ytakhs/lol-jinro-bot/internal/session"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := run(log); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("exiting", zap.Error(err))
	}
}

func run(log *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := registry.New(ctx)
	directory := riot.NewClient(cfg.RiotAPIKey, cfg.RiotRegion)

	sessionCfg := session.Config{
		BanPickDuration:  cfg.BanPickDuration,
		ThinkingDuration: cfg.ThinkingDuration,
		TimerWarning:     cfg.TimerWarning,
		PollInterval:     cfg.PollInterval,
		PollMaxAttempts:  cfg.PollMaxAttempts,
	}

	bot, err := discord.New(cfg.DiscordToken, reg, directory, sessionCfg, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.SetupRoutes(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return bot.Run(ctx)
	})

	g.Go(func() error {
		log.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
