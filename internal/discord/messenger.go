package discord

import (
	"sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/ytakhs/lol-jinro-bot/internal/engine"
	"github.com/ytakhs/lol-jinro-bot/internal/text"
)

// Sender is the slice of *discordgo.Session the bot needs, split out so the
// handlers and the messenger are testable without a gateway connection.
type Sender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildMemberNickname(guildID, userID, nickname string, options ...discordgo.RequestOption) error
}

// Messenger implements session.Messenger for one venue (a guild text
// channel). Every method is best-effort: a failed API call is logged and
// swallowed, never surfaced to game logic.
type Messenger struct {
	sender    Sender
	guildID   string
	channelID string
	bindings  *bindingIndex
	log       *zap.Logger
}

func NewMessenger(sender Sender, guildID, channelID string, bindings *bindingIndex, log *zap.Logger) *Messenger {
	return &Messenger{
		sender:    sender,
		guildID:   guildID,
		channelID: channelID,
		bindings:  bindings,
		log:       log.With(zap.String("venue", channelID)),
	}
}

func (m *Messenger) SendToVenue(content string) {
	if _, err := m.sender.ChannelMessageSend(m.channelID, content); err != nil {
		m.log.Warn("venue send failed", zap.Error(err))
	}
}

func (m *Messenger) SendDirect(player engine.PlayerID, content string) {
	ch, err := m.sender.UserChannelCreate(string(player))
	if err != nil {
		m.log.Warn("dm channel create failed", zap.String("player", string(player)), zap.Error(err))
		return
	}
	if _, err := m.sender.ChannelMessageSend(ch.ID, content); err != nil {
		m.log.Warn("dm send failed", zap.String("player", string(player)), zap.Error(err))
	}
}

func (m *Messenger) SetDisplayedIdentity(player engine.PlayerID, label string) {
	if err := m.sender.GuildMemberNickname(m.guildID, string(player), label); err != nil {
		m.log.Warn("nickname change failed", zap.String("player", string(player)), zap.Error(err))
	}
}

func (m *Messenger) RequestAccountBinding(player engine.PlayerID) {
	m.bindings.expect(string(player), m.channelID)
	m.SendDirect(player, text.BindingRequest)
}

// bindingIndex routes direct messages back to the venue they belong to:
// which users owe us a summoner name, and which venue each known user plays
// in. Shared across venues, guarded by its own lock because messengers call
// in from session goroutines.
type bindingIndex struct {
	mu      sync.Mutex
	pending map[string]string // userID -> venue awaiting a summoner name
	venueOf map[string]string // userID -> venue of their current game
}

func newBindingIndex() *bindingIndex {
	return &bindingIndex{
		pending: make(map[string]string),
		venueOf: make(map[string]string),
	}
}

func (b *bindingIndex) expect(userID, venue string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[userID] = venue
	b.venueOf[userID] = venue
}

// pendingVenue reports the venue waiting on this user's summoner name.
func (b *bindingIndex) pendingVenue(userID string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	venue, ok := b.pending[userID]
	return venue, ok
}

func (b *bindingIndex) resolve(userID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pending, userID)
}

func (b *bindingIndex) venue(userID string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	venue, ok := b.venueOf[userID]
	return venue, ok
}

func (b *bindingIndex) forget(userID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pending, userID)
	delete(b.venueOf, userID)
}
