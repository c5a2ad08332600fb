package discord

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/ytakhs/lol-jinro-bot/internal/engine"
	"github.com/ytakhs/lol-jinro-bot/internal/registry"
	"github.com/ytakhs/lol-jinro-bot/internal/riot"
	"github.com/ytakhs/lol-jinro-bot/internal/session"
	"github.com/ytakhs/lol-jinro-bot/internal/text"
	"github.com/ytakhs/lol-jinro-bot/pkg/types"
)

const resolveTimeout = 10 * time.Second

// Directory is the match-directory surface the chat layer needs: the
// session collaborator plus summoner-name resolution for the binding flow.
type Directory interface {
	session.Directory
	ResolveAccount(ctx context.Context, name string) (string, error)
}

// Handler routes chat commands into sessions. A venue is a guild text
// channel; its session is created on the first command seen there.
type Handler struct {
	sender    Sender
	registry  *registry.Registry
	directory Directory
	bindings  *bindingIndex
	cfg       session.Config
	log       *zap.Logger
}

func NewHandler(sender Sender, reg *registry.Registry, dir Directory, cfg session.Config, log *zap.Logger) *Handler {
	return &Handler{
		sender:    sender,
		registry:  reg,
		directory: dir,
		bindings:  newBindingIndex(),
		cfg:       cfg,
		log:       log,
	}
}

func (h *Handler) HandleMessage(m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if m.GuildID == "" {
		h.handleDirect(m)
		return
	}
	if !strings.HasPrefix(m.Content, "/") {
		return
	}
	h.handleCommand(m)
}

func (h *Handler) handleCommand(m *discordgo.MessageCreate) {
	fields := strings.Fields(m.Content)
	s := h.ensureSession(m.GuildID, m.ChannelID)
	author := engine.PlayerID(m.Author.ID)
	label := displayName(m)

	var err error
	switch fields[0] {
	case "/help":
		h.reply(m.ChannelID, text.Help)
		return

	case "/host":
		err = askErr(s, func(r chan error) session.Msg {
			return session.JoinHost{ID: author, Label: label, Reply: r}
		})

	case "/join":
		team, ok := engine.Team(""), false
		if len(fields) > 1 {
			team, ok = engine.ParseTeam(fields[1])
		}
		if !ok {
			err = engine.ErrInvalidTeam
			break
		}
		err = askErr(s, func(r chan error) session.Msg {
			return session.JoinTeam{ID: author, Label: label, Team: team, Reply: r}
		})

	case "/quit":
		err = askErr(s, func(r chan error) session.Msg {
			return session.Leave{ID: author, Reply: r}
		})
		if err == nil {
			h.bindings.forget(m.Author.ID)
		}

	case "/reset":
		err = askErr(s, func(r chan error) session.Msg {
			return session.Reset{Issuer: author, Reply: r}
		})

	case "/start":
		err = askErr(s, func(r chan error) session.Msg {
			return session.StartGame{Issuer: author, BanPick: parseMinutes(fields, 1), Reply: r}
		})

	case "/finish":
		err = askErr(s, func(r chan error) session.Msg {
			return session.FinishMatch{Issuer: author, Thinking: parseMinutes(fields, 1), Reply: r}
		})

	case "/vote":
		err = h.castVote(s, author, fields)
		if err == nil {
			h.reply(m.ChannelID, text.VoteAccepted)
		}

	case "/aggregate":
		err = askErr(s, func(r chan error) session.Msg {
			return session.Aggregate{Issuer: author, Reply: r}
		})

	case "/status":
		h.handleStatus(s, m)
		return

	default:
		h.reply(m.ChannelID, text.UnknownCommand)
		return
	}

	if err != nil {
		if !session.IsExpected(err) {
			h.log.Error("command failed", zap.String("command", fields[0]), zap.Error(err))
		}
		h.reply(m.ChannelID, text.ForError(err))
	}
}

func (h *Handler) handleStatus(s *session.Session, m *discordgo.MessageCreate) {
	blind := askStatus(s, true, true)
	h.reply(m.ChannelID, text.RenderSnapshot(blind))

	// The host additionally gets the revealing view, in private.
	if blind.Host != nil && blind.Host.ID == m.Author.ID {
		full := askStatus(s, false, false)
		h.dm(m.Author.ID, text.RenderSnapshot(full))
	}
}

// handleDirect deals with DMs: a pending summoner-name reply, or a vote
// cast away from the venue.
func (h *Handler) handleDirect(m *discordgo.MessageCreate) {
	content := strings.TrimSpace(m.Content)

	if strings.HasPrefix(content, "/vote") {
		venue, ok := h.bindings.venue(m.Author.ID)
		if !ok {
			h.reply(m.ChannelID, text.NotInAnyGame)
			return
		}
		s := h.getSession(venue)
		if s == nil {
			h.reply(m.ChannelID, text.NotInAnyGame)
			return
		}
		if err := h.castVote(s, engine.PlayerID(m.Author.ID), strings.Fields(content)); err != nil {
			h.reply(m.ChannelID, text.ForError(err))
			return
		}
		h.reply(m.ChannelID, text.VoteAccepted)
		return
	}

	venue, ok := h.bindings.pendingVenue(m.Author.ID)
	if !ok {
		h.reply(m.ChannelID, text.UnknownCommand)
		return
	}
	h.completeBinding(m, venue, content)
}

func (h *Handler) completeBinding(m *discordgo.MessageCreate, venue, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	accountID, err := h.directory.ResolveAccount(ctx, name)
	switch {
	case errors.Is(err, riot.ErrAccountNotFound):
		h.reply(m.ChannelID, text.BindingNotFound)
		return
	case err != nil:
		h.log.Warn("account resolution failed", zap.Error(err))
		h.reply(m.ChannelID, text.BindingFailed)
		return
	}

	s := h.getSession(venue)
	if s == nil {
		h.reply(m.ChannelID, text.NotInAnyGame)
		return
	}
	err = askErr(s, func(r chan error) session.Msg {
		return session.BindAccount{ID: engine.PlayerID(m.Author.ID), AccountID: accountID, Reply: r}
	})
	if err != nil {
		h.reply(m.ChannelID, text.ForError(err))
		return
	}
	h.bindings.resolve(m.Author.ID)
	h.reply(m.ChannelID, text.BindingDone)
}

func (h *Handler) castVote(s *session.Session, voter engine.PlayerID, fields []string) error {
	if len(fields) < 2 {
		return engine.ErrInvalidVoteTarget
	}
	target, err := strconv.Atoi(fields[1])
	if err != nil {
		return engine.ErrInvalidVoteTarget
	}
	return askErr(s, func(r chan error) session.Msg {
		return session.CastVote{Voter: voter, Target: target, Reply: r}
	})
}

func (h *Handler) ensureSession(guildID, channelID string) *session.Session {
	reply := make(chan *session.Session, 1)
	h.registry.Inbox() <- registry.Ensure{
		Venue: channelID,
		Make: func(ctx context.Context) *session.Session {
			msn := NewMessenger(h.sender, guildID, channelID, h.bindings, h.log)
			return session.New(ctx, channelID, msn, h.directory, h.cfg, h.log)
		},
		Reply: reply,
	}
	return <-reply
}

func (h *Handler) getSession(venue string) *session.Session {
	reply := make(chan *session.Session, 1)
	h.registry.Inbox() <- registry.Get{Venue: venue, Reply: reply}
	return <-reply
}

func (h *Handler) reply(channelID, content string) {
	if _, err := h.sender.ChannelMessageSend(channelID, content); err != nil {
		h.log.Warn("reply failed", zap.Error(err))
	}
}

func (h *Handler) dm(userID, content string) {
	ch, err := h.sender.UserChannelCreate(userID)
	if err != nil {
		h.log.Warn("dm channel create failed", zap.Error(err))
		return
	}
	if _, err := h.sender.ChannelMessageSend(ch.ID, content); err != nil {
		h.log.Warn("dm failed", zap.Error(err))
	}
}

func askErr(s *session.Session, build func(chan error) session.Msg) error {
	reply := make(chan error, 1)
	s.Inbox() <- build(reply)
	return <-reply
}

func askStatus(s *session.Session, blind, mention bool) types.Snapshot {
	reply := make(chan types.Snapshot, 1)
	s.Inbox() <- session.GetStatus{Blind: blind, Mention: mention, Reply: reply}
	return <-reply
}

func parseMinutes(fields []string, i int) time.Duration {
	if len(fields) <= i {
		return 0
	}
	minutes, err := strconv.Atoi(fields[i])
	if err != nil || minutes <= 0 {
		return 0
	}
	return time.Duration(minutes) * time.Minute
}

func displayName(m *discordgo.MessageCreate) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	if m.Author.GlobalName != "" {
		return m.Author.GlobalName
	}
	return m.Author.Username
}
