// Package discord is the chat surface: it turns guild messages into session
// commands and delivers the sessions' announcements, DMs, and nickname
// updates back through the gateway.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/ytakhs/lol-jinro-bot/internal/registry"
	"github.com/ytakhs/lol-jinro-bot/internal/session"
)

type Bot struct {
	session *discordgo.Session
	handler *Handler
	log     *zap.Logger
}

func New(token string, reg *registry.Registry, dir Directory, cfg session.Config, log *zap.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	b := &Bot{
		session: dg,
		handler: NewHandler(dg, reg, dir, cfg, log),
		log:     log,
	}
	dg.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		b.handler.HandleMessage(m)
	})
	return b, nil
}

// Run opens the gateway connection and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	b.log.Info("gateway connected")
	<-ctx.Done()
	if err := b.session.Close(); err != nil {
		b.log.Warn("gateway close", zap.Error(err))
	}
	return ctx.Err()
}
