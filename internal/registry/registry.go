// Package registry owns the process-wide venue → session map. Sessions are
// created lazily on first touch and live until removed or shutdown; venues
// never share state.
package registry

import (
	"context"

	"github.com/ytakhs/lol-jinro-bot/internal/session"
)

type Msg interface{ isRegistryMsg() }

// Ensure returns the venue's session, creating it with Make if absent.
type Ensure struct {
	Venue string
	Make  func(ctx context.Context) *session.Session
	Reply chan *session.Session
}

type Get struct {
	Venue string
	Reply chan *session.Session // nil if absent
}

type Remove struct{ Venue string }

type Shutdown struct{}

func (Ensure) isRegistryMsg()   {}
func (Get) isRegistryMsg()      {}
func (Remove) isRegistryMsg()   {}
func (Shutdown) isRegistryMsg() {}

type Registry struct {
	inbox    chan Msg
	sessions map[string]*session.Session
	ctx      context.Context
	cancel   context.CancelFunc
}

func New(parent context.Context) *Registry {
	ctx, cancel := context.WithCancel(parent)
	r := &Registry{
		inbox:    make(chan Msg, 64),
		sessions: make(map[string]*session.Session),
		ctx:      ctx,
		cancel:   cancel,
	}
	go r.loop()
	return r
}

func (r *Registry) Inbox() chan<- Msg { return r.inbox }

func (r *Registry) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Ensure:
				if s := r.sessions[msg.Venue]; s != nil {
					msg.Reply <- s
					break
				}
				s := msg.Make(r.ctx)
				r.sessions[msg.Venue] = s
				msg.Reply <- s

			case Get:
				msg.Reply <- r.sessions[msg.Venue]

			case Remove:
				if s := r.sessions[msg.Venue]; s != nil {
					s.Inbox() <- session.Shutdown{}
					delete(r.sessions, msg.Venue)
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Registry) shutdown() {
	for venue, s := range r.sessions {
		s.Inbox() <- session.Shutdown{}
		delete(r.sessions, venue)
	}
	r.cancel()
}
